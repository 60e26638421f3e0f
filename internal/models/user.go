package models

import "time"

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    string    `gorm:"type:uuid;index;not null" json:"companyId"`
	Company      *Company  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Email        string    `gorm:"size:200;not null" json:"email"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Role         UserRole  `gorm:"size:20;not null;default:corretor" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}
