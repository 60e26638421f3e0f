package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a CRM contact. Stage, LastContactAt and NextFollowUp are also
// written as side effects of interactions and appointments.
type Client struct {
	ID            string              `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID     string              `gorm:"type:uuid;index;not null" json:"companyId"`
	Company       *Company            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name          string              `gorm:"size:200;not null" json:"name"`
	Email         string              `gorm:"size:200;not null" json:"email"`
	Phone         string              `gorm:"size:50;not null" json:"phone"`
	Document      *string             `gorm:"size:32" json:"document"` // CPF/CNPJ
	Type          ClientType          `gorm:"size:20;not null" json:"type"`
	Stage         ClientStage         `gorm:"size:30;not null;default:novo;index" json:"stage"`
	Source        *string             `gorm:"size:100" json:"source"`
	Tags          []string            `gorm:"type:text;serializer:json" json:"tags"`
	PipelineValue decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"pipelineValue"`
	Address       *string             `gorm:"size:255" json:"address"`
	Notes         *string             `gorm:"type:text" json:"notes"`
	LastContactAt *time.Time          `json:"lastContactAt"`
	NextFollowUp  *time.Time          `gorm:"index" json:"nextFollowUp"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// ClientInteraction is an immutable contact log entry.
type ClientInteraction struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    string          `gorm:"type:uuid;index;not null" json:"companyId"`
	ClientID     string          `gorm:"type:uuid;index;not null" json:"clientId"`
	Client       *Client         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Type         InteractionType `gorm:"size:30;not null" json:"type"`
	Channel      *Channel        `gorm:"size:20" json:"channel"`
	Summary      string          `gorm:"type:text;not null" json:"summary"`
	OccurredAt   time.Time       `gorm:"not null" json:"occurredAt"`
	NextSteps    *string         `gorm:"type:text" json:"nextSteps"`
	NextFollowUp *time.Time      `json:"nextFollowUp"`
	Stage        *ClientStage    `gorm:"size:30" json:"stage"`
	CreatedBy    *string         `gorm:"size:200" json:"createdBy"`
	CreatedAt    time.Time       `json:"createdAt"`
}
