package model

import (
	"time"

	"github.com/google/uuid"
)

// ProofType enum constants
const (
	ProofTypeOfficialReceipt = "OFFICIAL_RECEIPT"
	ProofTypeDeliveryReceipt = "DELIVERY_RECEIPT"
	ProofTypeInvoice         = "INVOICE"
)

// Proof is an uploaded document evidencing that a purchase occurred.
// Proofs attach only while the request is PURCHASED, and at least one
// must exist before the request can be marked COMPLETED.
type Proof struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"request_id"`
	Type        string     `gorm:"type:varchar(30);not null" json:"type"` // OFFICIAL_RECEIPT, DELIVERY_RECEIPT, INVOICE
	FilePath    string     `gorm:"type:text;not null" json:"file_path"`
	FileName    string     `gorm:"type:varchar(255);not null" json:"file_name"`
	Description string     `gorm:"type:text" json:"description"`
	UploadedBy  *uuid.UUID `gorm:"type:uuid" json:"uploaded_by"`
	Uploader    *User      `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
