package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property - imóvel
type Property struct {
	ID            string              `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID     string              `gorm:"type:uuid;index;not null" json:"companyId"`
	Company       *Company            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title         string              `gorm:"size:200;not null" json:"title"`
	Description   *string             `gorm:"type:text" json:"description"`
	Type          PropertyType        `gorm:"size:20;not null" json:"type"`
	Status        PropertyStatus      `gorm:"size:20;not null;default:disponivel" json:"status"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	Area          decimal.NullDecimal `gorm:"type:numeric(8,2)" json:"area"`
	Bedrooms      *int                `json:"bedrooms"`
	Bathrooms     *int                `json:"bathrooms"`
	ParkingSpaces *int                `json:"parkingSpaces"`
	Address       string              `gorm:"size:255;not null" json:"address"`
	Neighborhood  string              `gorm:"size:100;not null" json:"neighborhood"`
	City          string              `gorm:"size:100;not null" json:"city"`
	State         string              `gorm:"size:50;not null" json:"state"`
	ZipCode       string              `gorm:"size:20;not null" json:"zipCode"`
	Images        []string            `gorm:"type:text;serializer:json" json:"images"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}
