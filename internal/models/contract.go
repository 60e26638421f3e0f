package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Contract struct {
	ID         string              `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID  string              `gorm:"type:uuid;index;not null" json:"companyId"`
	Company    *Company            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Type       ContractType        `gorm:"size:20;not null" json:"type"`
	PropertyID string              `gorm:"type:uuid;index;not null" json:"propertyId"`
	Property   *Property           `json:"-"`
	ClientID   string              `gorm:"type:uuid;index;not null" json:"clientId"`
	Client     *Client             `json:"-"`
	Value      decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"value"`
	StartDate  time.Time           `gorm:"not null" json:"startDate"`
	EndDate    *time.Time          `json:"endDate"`
	Status     ContractStatus      `gorm:"size:20;not null;default:ativo" json:"status"`
	Terms      *string             `gorm:"type:text" json:"terms"`
	Commission decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"commission"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}
