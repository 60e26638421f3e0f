package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Construction tracks a renovation/build project on a property.
// Spent is set by hand; nothing keeps it equal to the sum of expenses.
type Construction struct {
	ID                string              `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID         string              `gorm:"type:uuid;index;not null" json:"companyId"`
	Company           *Company            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PropertyID        string              `gorm:"type:uuid;index;not null" json:"propertyId"`
	Property          *Property           `json:"-"`
	Name              string              `gorm:"size:200;not null" json:"name"`
	Description       *string             `gorm:"type:text" json:"description"`
	Status            ConstructionStatus  `gorm:"size:20;not null;default:planejamento" json:"status"`
	Budget            decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"budget"`
	Spent             decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0" json:"spent"`
	StartDate         *time.Time          `json:"startDate"`
	EndDate           *time.Time          `json:"endDate"`
	ExpectedEndDate   *time.Time          `json:"expectedEndDate"`
	Progress          int                 `gorm:"not null;default:0" json:"progress"`
	Contractor        *string             `gorm:"size:200" json:"contractor"`
	ContractorContact *string             `gorm:"size:200" json:"contractorContact"`
	Notes             *string             `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type ConstructionTask struct {
	ID             string              `gorm:"type:uuid;primaryKey" json:"id"`
	ConstructionID string              `gorm:"type:uuid;index;not null" json:"constructionId"`
	Construction   *Construction       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name           string              `gorm:"size:200;not null" json:"name"`
	Description    *string             `gorm:"type:text" json:"description"`
	Status         TaskStatus          `gorm:"size:20;not null;default:pendente" json:"status"`
	Priority       TaskPriority        `gorm:"size:10;not null;default:media" json:"priority"`
	StartDate      *time.Time          `json:"startDate"`
	EndDate        *time.Time          `json:"endDate"`
	AssignedTo     *string             `gorm:"size:200" json:"assignedTo"`
	EstimatedCost  decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"estimatedCost"`
	ActualCost     decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"actualCost"`
	Progress       int                 `gorm:"not null;default:0" json:"progress"`
	SortOrder      int                 `gorm:"not null;default:0" json:"order"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type ConstructionExpense struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	ConstructionID string          `gorm:"type:uuid;index;not null" json:"constructionId"`
	Construction   *Construction   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Description    string          `gorm:"size:255;not null" json:"description"`
	Category       ExpenseCategory `gorm:"size:20;not null;default:material" json:"category"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	ExpenseDate    time.Time       `gorm:"not null" json:"expenseDate"`
	Supplier       *string         `gorm:"size:200" json:"supplier"`
	Receipt        *string         `gorm:"size:255" json:"receipt"`
	Notes          *string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `json:"createdAt"`
}
