package models

import "time"

// Company is the tenant root; every other row belongs to exactly one.
type Company struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Document  string    `gorm:"size:32;not null;uniqueIndex" json:"document"` // CNPJ
	Email     string    `gorm:"size:200;not null" json:"email"`
	Phone     *string   `gorm:"size:50" json:"phone"`
	Address   *string   `gorm:"size:255" json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}
