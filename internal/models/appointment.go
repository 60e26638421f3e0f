package models

import "time"

const DefaultAppointmentDuration = 60

type Appointment struct {
	ID              string            `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID       string            `gorm:"type:uuid;index;not null" json:"companyId"`
	ClientID        string            `gorm:"type:uuid;index;not null" json:"clientId"`
	Client          *Client           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PropertyID      *string           `gorm:"type:uuid;index" json:"propertyId"`
	Property        *Property         `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Type            AppointmentType   `gorm:"size:20;not null" json:"type"`
	Status          AppointmentStatus `gorm:"size:20;not null;default:agendado" json:"status"`
	ScheduledAt     time.Time         `gorm:"not null;index" json:"scheduledAt"`
	DurationMinutes int               `gorm:"not null;default:60" json:"durationMinutes"`
	Notes           *string           `gorm:"type:text" json:"notes"`
	AgentName       *string           `gorm:"size:200" json:"agentName"`
	Channel         *Channel          `gorm:"size:20" json:"channel"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}
