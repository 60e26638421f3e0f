package models

import "time"

type ActivityType string

const (
	ActivityPropertyCreated     ActivityType = "property_created"
	ActivityLeadCreated         ActivityType = "lead_created"
	ActivityContractSigned      ActivityType = "contract_signed"
	ActivityClientInteraction   ActivityType = "client_interaction"
	ActivityAppointmentCreated  ActivityType = "appointment_created"
	ActivityAppointmentUpdated  ActivityType = "appointment_updated"
	ActivityTransactionCreated  ActivityType = "transaction_created"
	ActivityConstructionCreated ActivityType = "construction_created"
)

// Activity is an append-only feed entry shown on the dashboard.
type Activity struct {
	ID          string       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   string       `gorm:"type:uuid;index;not null" json:"companyId"`
	Company     *Company     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID      *string      `gorm:"type:uuid" json:"userId"`
	Type        ActivityType `gorm:"size:50;not null" json:"type"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	EntityType  *string      `gorm:"size:50" json:"entityType"`
	EntityID    *string      `gorm:"type:uuid" json:"entityId"`
	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
}
