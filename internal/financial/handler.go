package financial

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const msgNotFound = "Transação não encontrada"

// -------------------------
// Request Types
// -------------------------

// CreateTransactionRequest accepts amount as number or string. An empty
// contractId means no contract.
type CreateTransactionRequest struct {
	Type        models.TransactionType   `json:"type"`
	Category    string                   `json:"category"`
	Description string                   `json:"description"`
	Amount      *models.Amount           `json:"amount"`
	DueDate     *models.DateTime         `json:"dueDate"`
	PaidDate    *models.DateTime         `json:"paidDate"`
	Status      models.TransactionStatus `json:"status"`
	ContractID  *string                  `json:"contractId"`
}

// UpdateTransactionRequest leaves contractId untouched when it is empty or
// null.
type UpdateTransactionRequest struct {
	Type        *models.TransactionType   `json:"type"`
	Category    *string                   `json:"category"`
	Description *string                   `json:"description"`
	Amount      *models.Amount            `json:"amount"`
	DueDate     *models.DateTime          `json:"dueDate"`
	PaidDate    *models.DateTime          `json:"paidDate"`
	Status      *models.TransactionStatus `json:"status"`
	ContractID  *string                   `json:"contractId"`
}

func contractID(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func required(v *apperror.ValidationError, field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, "campo obrigatório")
	}
	return value
}

func (r *CreateTransactionRequest) toModel(companyID string) (*models.Transaction, error) {
	v := &apperror.ValidationError{}
	t := &models.Transaction{
		CompanyID:   companyID,
		Type:        r.Type,
		Category:    required(v, "category", r.Category),
		Description: required(v, "description", r.Description),
		PaidDate:    r.PaidDate.Ptr(),
		Status:      r.Status,
		ContractID:  contractID(r.ContractID),
	}
	if t.Type == "" {
		v.Add("type", "campo obrigatório")
	}
	if r.Amount == nil {
		v.Add("amount", "campo obrigatório")
	} else {
		t.Amount = r.Amount.Decimal
	}
	if r.DueDate == nil {
		v.Add("dueDate", "campo obrigatório")
	} else {
		t.DueDate = r.DueDate.Time
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *UpdateTransactionRequest) apply(t *models.Transaction) error {
	v := &apperror.ValidationError{}
	if r.Type != nil {
		t.Type = *r.Type
	}
	if r.Category != nil {
		t.Category = required(v, "category", *r.Category)
	}
	if r.Description != nil {
		t.Description = required(v, "description", *r.Description)
	}
	if r.Amount != nil {
		t.Amount = r.Amount.Decimal
	}
	if r.DueDate != nil {
		t.DueDate = r.DueDate.Time
	}
	if r.PaidDate != nil {
		t.PaidDate = r.PaidDate.Ptr()
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if id := contractID(r.ContractID); id != nil {
		t.ContractID = id
	}
	return v.OrNil()
}

// -------------------------
// Transaction CRUD
// -------------------------

// GET /api/transactions
func ListTransactionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext(), auth.CompanyID(c))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar transações")
		}
		return c.JSON(list)
	}
}

// GET /api/transactions/:id
func GetTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.Get(c.UserContext(), auth.CompanyID(c), c.Params("id"))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar transação")
		}
		return c.JSON(view)
	}
}

// POST /api/transactions
func CreateTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransactionRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}
		t, err := body.toModel(auth.CompanyID(c))
		if err != nil {
			return err
		}
		if err := svc.Create(c.UserContext(), auth.UserID(c), t); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao criar transação")
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// PUT /api/transactions/:id
func UpdateTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateTransactionRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}
		t, err := svc.Update(c.UserContext(), auth.CompanyID(c), c.Params("id"), body.apply)
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao atualizar transação")
		}
		return c.JSON(t)
	}
}

// DELETE /api/transactions/:id
func DeleteTransactionHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.DeleteTransaction(c.UserContext(), auth.CompanyID(c), c.Params("id")); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao deletar transação")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -----------------------------------
// GET /api/financial-summary/monthly
// ?year=2025&month=12
// -----------------------------------
func MonthlySummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		year := c.QueryInt("year", now.Year())
		month := c.QueryInt("month", int(now.Month()))
		if year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "Ano inválido")
		}
		if month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "Mês inválido")
		}

		summary, err := svc.Monthly(c.UserContext(), auth.CompanyID(c), year, time.Month(month))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao calcular resumo financeiro")
		}
		return c.JSON(summary)
	}
}
