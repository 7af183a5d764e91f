package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget is the annual envelope allocations are carved from
type Budget struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FiscalYear  int             `gorm:"not null;uniqueIndex" json:"fiscal_year"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Description string          `gorm:"type:text" json:"description"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Program represents a municipal program or office receiving budget allocations
type Program struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Classification is the expense classification bucket (PS / MOOE / CO)
type Classification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ObjectOfExpenditure is the finest-grained account line under a classification
type ObjectOfExpenditure struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code             string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name             string          `gorm:"type:varchar(255);not null" json:"name"`
	ClassificationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"classification_id"`
	Classification   *Classification `gorm:"foreignKey:ClassificationID" json:"classification,omitempty"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BudgetAllocation is one budget bucket: program x classification x object of
// expenditure for a fiscal-year budget. used_amount advances only when a
// procurement request funded by the allocation reaches COMPLETED.
type BudgetAllocation struct {
	ID               uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BudgetID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"budget_id"`
	Budget           *Budget              `gorm:"foreignKey:BudgetID" json:"budget,omitempty"`
	ProgramID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"program_id"`
	Program          *Program             `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	ObjectID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"object_id"`
	Object           *ObjectOfExpenditure `gorm:"foreignKey:ObjectID" json:"object,omitempty"`
	AllocatedAmount  decimal.Decimal      `gorm:"type:decimal(18,4);not null" json:"allocated_amount"`
	UsedAmount       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0" json:"used_amount"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	DeletedAt        gorm.DeletedAt       `gorm:"index" json:"-"`
}

// Remaining returns the balance still available on the allocation
func (a *BudgetAllocation) Remaining() decimal.Decimal {
	return a.AllocatedAmount.Sub(a.UsedAmount)
}
