package model

import (
	"time"

	"github.com/google/uuid"
)

// Approval decision enum constants
const (
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Approval records a single approve/reject decision on a procurement request.
// Remarks are optional on approval and mandatory on rejection.
type Approval struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"request_id"`
	Status     string     `gorm:"type:varchar(20);not null" json:"status"` // APPROVED or REJECTED
	Remarks    string     `gorm:"type:text" json:"remarks"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	Approver   *User      `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
