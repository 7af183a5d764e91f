package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProcurementStatus enum constants
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusPurchased = "PURCHASED"
	StatusCompleted = "COMPLETED"
)

// ProcurementRequest represents one procurement action from draft to completion.
// Amount is derived from items and recomputed on every save; the allocation's
// used_amount is only touched when the request reaches COMPLETED.
type ProcurementRequest struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title        string            `gorm:"type:varchar(255);not null" json:"title"`
	Description  string            `gorm:"type:text" json:"description"`
	Status       string            `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Amount       decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0" json:"amount"` // = sum of item line totals
	AllocationID uuid.UUID         `gorm:"type:uuid;not null;index" json:"allocation_id"`
	Allocation   *BudgetAllocation `gorm:"foreignKey:AllocationID" json:"allocation,omitempty"`
	RequestedBy  *uuid.UUID        `gorm:"type:uuid;index" json:"requested_by"`
	Requester    *User             `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	Items        []ProcurementItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
	Approvals    []Approval        `gorm:"foreignKey:RequestID" json:"approvals,omitempty"`
	Proofs       []Proof           `gorm:"foreignKey:RequestID" json:"proofs,omitempty"`
	SubmittedAt  *time.Time        `json:"submitted_at"`
	PurchasedAt  *time.Time        `json:"purchased_at"`
	CompletedAt  *time.Time        `json:"completed_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"` // archival for non-draft requests
}

// ProcurementItem is a single line of a procurement request
type ProcurementItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Unit      string          `gorm:"type:varchar(50);not null" json:"unit"` // pcs, box, ream...
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"` // quantity * unit_cost
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
