package contracts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const msgNotFound = "Contrato não encontrado"

// -------------------------
// Request Types
// -------------------------

type CreateContractRequest struct {
	Type       models.ContractType   `json:"type"`
	PropertyID string                `json:"propertyId"`
	ClientID   string                `json:"clientId"`
	Value      *decimal.Decimal      `json:"value"`
	StartDate  *models.DateTime      `json:"startDate"`
	EndDate    *models.DateTime      `json:"endDate"`
	Status     models.ContractStatus `json:"status"`
	Terms      *string               `json:"terms"`
	Commission decimal.NullDecimal   `json:"commission"`
}

type UpdateContractRequest struct {
	Type       *models.ContractType   `json:"type"`
	PropertyID *string                `json:"propertyId"`
	ClientID   *string                `json:"clientId"`
	Value      *decimal.Decimal       `json:"value"`
	StartDate  *models.DateTime       `json:"startDate"`
	EndDate    *models.DateTime       `json:"endDate"`
	Status     *models.ContractStatus `json:"status"`
	Terms      *string                `json:"terms"`
	Commission *decimal.Decimal       `json:"commission"`
}

func checkValue(v *apperror.ValidationError, value *decimal.Decimal) {
	if value != nil && value.IsNegative() {
		v.Add("value", "não pode ser negativo")
	}
}

func (r *CreateContractRequest) toModel(companyID string) (*models.Contract, error) {
	v := &apperror.ValidationError{}
	c := &models.Contract{
		CompanyID:  companyID,
		Type:       r.Type,
		PropertyID: strings.TrimSpace(r.PropertyID),
		ClientID:   strings.TrimSpace(r.ClientID),
		EndDate:    r.EndDate.Ptr(),
		Status:     r.Status,
		Terms:      r.Terms,
		Commission: r.Commission,
	}
	if c.Type == "" {
		v.Add("type", "campo obrigatório")
	}
	if c.PropertyID == "" {
		v.Add("propertyId", "campo obrigatório")
	}
	if c.ClientID == "" {
		v.Add("clientId", "campo obrigatório")
	}
	if r.Value == nil {
		v.Add("value", "campo obrigatório")
	} else {
		checkValue(v, r.Value)
		c.Value = *r.Value
	}
	if r.StartDate == nil {
		v.Add("startDate", "campo obrigatório")
	} else {
		c.StartDate = r.StartDate.Time
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *UpdateContractRequest) apply(c *models.Contract) error {
	v := &apperror.ValidationError{}
	if r.Type != nil {
		c.Type = *r.Type
	}
	if r.PropertyID != nil {
		c.PropertyID = strings.TrimSpace(*r.PropertyID)
		if c.PropertyID == "" {
			v.Add("propertyId", "campo obrigatório")
		}
	}
	if r.ClientID != nil {
		c.ClientID = strings.TrimSpace(*r.ClientID)
		if c.ClientID == "" {
			v.Add("clientId", "campo obrigatório")
		}
	}
	if r.Value != nil {
		checkValue(v, r.Value)
		c.Value = *r.Value
	}
	if r.StartDate != nil {
		c.StartDate = r.StartDate.Time
	}
	if r.EndDate != nil {
		c.EndDate = r.EndDate.Ptr()
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	if r.Terms != nil {
		c.Terms = r.Terms
	}
	if r.Commission != nil {
		c.Commission = decimal.NewNullDecimal(*r.Commission)
	}
	return v.OrNil()
}

// -------------------------
// Contract CRUD
// -------------------------

// GET /api/contracts
func ListContractsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext(), auth.CompanyID(c))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar contratos")
		}
		return c.JSON(list)
	}
}

// GET /api/contracts/:id
func GetContractHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.Get(c.UserContext(), auth.CompanyID(c), c.Params("id"))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar contrato")
		}
		return c.JSON(view)
	}
}

// POST /api/contracts
func CreateContractHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateContractRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}
		contract, err := body.toModel(auth.CompanyID(c))
		if err != nil {
			return err
		}
		if err := svc.Create(c.UserContext(), auth.UserID(c), contract); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao criar contrato")
		}
		return c.Status(fiber.StatusCreated).JSON(contract)
	}
}

// PUT /api/contracts/:id
func UpdateContractHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateContractRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}
		contract, err := svc.Update(c.UserContext(), auth.CompanyID(c), c.Params("id"), body.apply)
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao atualizar contrato")
		}
		return c.JSON(contract)
	}
}

// DELETE /api/contracts/:id
func DeleteContractHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.DeleteContract(c.UserContext(), auth.CompanyID(c), c.Params("id")); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao deletar contrato")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
