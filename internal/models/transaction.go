package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction - receita ou despesa, opcionalmente ligada a um contrato
type Transaction struct {
	ID          string            `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   string            `gorm:"type:uuid;index;not null" json:"companyId"`
	Company     *Company          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Type        TransactionType   `gorm:"size:20;not null" json:"type"`
	Category    string            `gorm:"size:50;not null" json:"category"` // aluguel, venda, comissao, manutencao...
	Description string            `gorm:"size:255;not null" json:"description"`
	Amount      decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	DueDate     time.Time         `gorm:"not null" json:"dueDate"`
	PaidDate    *time.Time        `json:"paidDate"`
	Status      TransactionStatus `gorm:"size:20;not null;default:pendente" json:"status"`
	ContractID  *string           `gorm:"type:uuid;index" json:"contractId"`
	Contract    *Contract         `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time         `json:"createdAt"`
}
