package clients

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const msgNotFound = "Cliente não encontrado"

// -------------------------
// Request Types
// -------------------------

type CreateClientRequest struct {
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	Document      *string             `json:"document"`
	Type          models.ClientType   `json:"type"`
	Stage         models.ClientStage  `json:"stage"`
	Source        *string             `json:"source"`
	Tags          []string            `json:"tags"`
	PipelineValue decimal.NullDecimal `json:"pipelineValue"`
	Address       *string             `json:"address"`
	Notes         *string             `json:"notes"`
	NextFollowUp  *models.DateTime    `json:"nextFollowUp"`
}

type UpdateClientRequest struct {
	Name          *string             `json:"name"`
	Email         *string             `json:"email"`
	Phone         *string             `json:"phone"`
	Document      *string             `json:"document"`
	Type          *models.ClientType  `json:"type"`
	Stage         *models.ClientStage `json:"stage"`
	Source        *string             `json:"source"`
	Tags          []string            `json:"tags"`
	PipelineValue *decimal.Decimal    `json:"pipelineValue"`
	Address       *string             `json:"address"`
	Notes         *string             `json:"notes"`
	LastContactAt *models.DateTime    `json:"lastContactAt"`
	NextFollowUp  *models.DateTime    `json:"nextFollowUp"`
}

type CreateInteractionRequest struct {
	Type         models.InteractionType `json:"type"`
	Channel      *models.Channel        `json:"channel"`
	Summary      string                 `json:"summary"`
	OccurredAt   *models.DateTime       `json:"occurredAt"`
	NextSteps    *string                `json:"nextSteps"`
	NextFollowUp *models.DateTime       `json:"nextFollowUp"`
	Stage        *models.ClientStage    `json:"stage"`
	CreatedBy    *string                `json:"createdBy"`
}

func required(v *apperror.ValidationError, field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, "campo obrigatório")
	}
	return value
}

func (r *CreateClientRequest) toModel(companyID string) (*models.Client, error) {
	v := &apperror.ValidationError{}
	c := &models.Client{
		CompanyID:     companyID,
		Name:          required(v, "name", r.Name),
		Email:         required(v, "email", r.Email),
		Phone:         required(v, "phone", r.Phone),
		Document:      r.Document,
		Type:          r.Type,
		Stage:         r.Stage,
		Source:        r.Source,
		Tags:          r.Tags,
		PipelineValue: r.PipelineValue,
		Address:       r.Address,
		Notes:         r.Notes,
		NextFollowUp:  r.NextFollowUp.Ptr(),
	}
	if c.Type == "" {
		v.Add("type", "campo obrigatório")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *UpdateClientRequest) apply(c *models.Client) error {
	v := &apperror.ValidationError{}
	if r.Name != nil {
		c.Name = required(v, "name", *r.Name)
	}
	if r.Email != nil {
		c.Email = required(v, "email", *r.Email)
	}
	if r.Phone != nil {
		c.Phone = required(v, "phone", *r.Phone)
	}
	if r.Document != nil {
		c.Document = r.Document
	}
	if r.Type != nil {
		c.Type = *r.Type
	}
	if r.Stage != nil {
		c.Stage = *r.Stage
	}
	if r.Source != nil {
		c.Source = r.Source
	}
	if r.Tags != nil {
		c.Tags = r.Tags
	}
	if r.PipelineValue != nil {
		c.PipelineValue = decimal.NewNullDecimal(*r.PipelineValue)
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.Notes != nil {
		c.Notes = r.Notes
	}
	if r.LastContactAt != nil {
		c.LastContactAt = r.LastContactAt.Ptr()
	}
	if r.NextFollowUp != nil {
		c.NextFollowUp = r.NextFollowUp.Ptr()
	}
	return v.OrNil()
}

// -------------------------
// Client CRUD
// -------------------------

// GET /api/clients
func ListClientsHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := store.ListClients(c.UserContext(), auth.CompanyID(c))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar clientes")
		}
		return c.JSON(list)
	}
}

// GET /api/clients/:id
func GetClientHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		client, err := store.GetClient(c.UserContext(), auth.CompanyID(c), c.Params("id"))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar cliente")
		}
		return c.JSON(client)
	}
}

// POST /api/clients
func CreateClientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateClientRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		client, err := body.toModel(auth.CompanyID(c))
		if err != nil {
			return err
		}
		if err := svc.Create(c.UserContext(), auth.UserID(c), client); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao criar cliente")
		}
		return c.Status(fiber.StatusCreated).JSON(client)
	}
}

// PUT /api/clients/:id
func UpdateClientHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateClientRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		client, err := store.UpdateClient(c.UserContext(), auth.CompanyID(c), c.Params("id"), body.apply)
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao atualizar cliente")
		}
		return c.JSON(client)
	}
}

// DELETE /api/clients/:id
func DeleteClientHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.DeleteClient(c.UserContext(), auth.CompanyID(c), c.Params("id")); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao deletar cliente")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Pipeline / interactions
// -------------------------

// GET /api/clients/pipeline
func PipelineHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := svc.Pipeline(c.UserContext(), auth.CompanyID(c))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao calcular funil")
		}
		return c.JSON(summary)
	}
}

// GET /api/clients/:id/interactions
func ListInteractionsHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := auth.CompanyID(c)
		clientID := c.Params("id")
		if _, err := store.GetClient(c.UserContext(), companyID, clientID); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar interações")
		}

		list, err := store.ListInteractions(c.UserContext(), companyID, clientID)
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar interações")
		}
		return c.JSON(list)
	}
}

// POST /api/clients/:id/interactions
func CreateInteractionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInteractionRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		interaction, _, err := svc.RecordInteraction(c.UserContext(), auth.CompanyID(c), auth.UserID(c), c.Params("id"), InteractionInput{
			Type:         body.Type,
			Channel:      body.Channel,
			Summary:      body.Summary,
			OccurredAt:   body.OccurredAt.Ptr(),
			NextSteps:    body.NextSteps,
			NextFollowUp: body.NextFollowUp.Ptr(),
			Stage:        body.Stage,
			CreatedBy:    body.CreatedBy,
		})
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao registrar interação")
		}
		return c.Status(fiber.StatusCreated).JSON(interaction)
	}
}
