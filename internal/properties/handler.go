package properties

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/oarthurdev/vortex-gestao/internal/activity"
	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const (
	msgNotFound = "Imóvel não encontrado"
)

// -------------------------
// Request Types
// -------------------------

type CreatePropertyRequest struct {
	Title         string                `json:"title"`
	Description   *string               `json:"description"`
	Type          models.PropertyType   `json:"type"`
	Status        models.PropertyStatus `json:"status"`
	Price         *decimal.Decimal      `json:"price"`
	Area          decimal.NullDecimal   `json:"area"`
	Bedrooms      *int                  `json:"bedrooms"`
	Bathrooms     *int                  `json:"bathrooms"`
	ParkingSpaces *int                  `json:"parkingSpaces"`
	Address       string                `json:"address"`
	Neighborhood  string                `json:"neighborhood"`
	City          string                `json:"city"`
	State         string                `json:"state"`
	ZipCode       string                `json:"zipCode"`
	Images        []string              `json:"images"`
}

// UpdatePropertyRequest applies only the fields present in the body.
type UpdatePropertyRequest struct {
	Title         *string                `json:"title"`
	Description   *string                `json:"description"`
	Type          *models.PropertyType   `json:"type"`
	Status        *models.PropertyStatus `json:"status"`
	Price         *decimal.Decimal       `json:"price"`
	Area          *decimal.Decimal       `json:"area"`
	Bedrooms      *int                   `json:"bedrooms"`
	Bathrooms     *int                   `json:"bathrooms"`
	ParkingSpaces *int                   `json:"parkingSpaces"`
	Address       *string                `json:"address"`
	Neighborhood  *string                `json:"neighborhood"`
	City          *string                `json:"city"`
	State         *string                `json:"state"`
	ZipCode       *string                `json:"zipCode"`
	Images        []string               `json:"images"`
}

func requireText(v *apperror.ValidationError, field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, "campo obrigatório")
	}
	return value
}

func checkCounts(v *apperror.ValidationError, counts map[string]*int) {
	for field, n := range counts {
		if n != nil && *n < 0 {
			v.Add(field, "não pode ser negativo")
		}
	}
}

func (r *CreatePropertyRequest) toModel(companyID string) (*models.Property, error) {
	v := &apperror.ValidationError{}
	p := &models.Property{
		CompanyID:     companyID,
		Title:         requireText(v, "title", r.Title),
		Description:   r.Description,
		Type:          r.Type,
		Status:        r.Status,
		Area:          r.Area,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		ParkingSpaces: r.ParkingSpaces,
		Address:       requireText(v, "address", r.Address),
		Neighborhood:  requireText(v, "neighborhood", r.Neighborhood),
		City:          requireText(v, "city", r.City),
		State:         requireText(v, "state", r.State),
		ZipCode:       requireText(v, "zipCode", r.ZipCode),
		Images:        r.Images,
	}
	if p.Type == "" {
		v.Add("type", "campo obrigatório")
	}
	if p.Status == "" {
		p.Status = models.PropertyDisponivel
	}
	switch {
	case r.Price == nil:
		v.Add("price", "campo obrigatório")
	case r.Price.IsNegative():
		v.Add("price", "não pode ser negativo")
	default:
		p.Price = *r.Price
	}
	checkCounts(v, map[string]*int{"bedrooms": r.Bedrooms, "bathrooms": r.Bathrooms, "parkingSpaces": r.ParkingSpaces})
	if p.Images == nil {
		p.Images = []string{}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *UpdatePropertyRequest) apply(p *models.Property) error {
	v := &apperror.ValidationError{}
	setText := func(field string, src *string, dst *string) {
		if src != nil {
			*dst = requireText(v, field, *src)
		}
	}
	setText("title", r.Title, &p.Title)
	setText("address", r.Address, &p.Address)
	setText("neighborhood", r.Neighborhood, &p.Neighborhood)
	setText("city", r.City, &p.City)
	setText("state", r.State, &p.State)
	setText("zipCode", r.ZipCode, &p.ZipCode)

	if r.Description != nil {
		p.Description = r.Description
	}
	if r.Type != nil {
		p.Type = *r.Type
	}
	// Any status may follow any other.
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.Price != nil {
		if r.Price.IsNegative() {
			v.Add("price", "não pode ser negativo")
		}
		p.Price = *r.Price
	}
	if r.Area != nil {
		p.Area = decimal.NewNullDecimal(*r.Area)
	}
	checkCounts(v, map[string]*int{"bedrooms": r.Bedrooms, "bathrooms": r.Bathrooms, "parkingSpaces": r.ParkingSpaces})
	if r.Bedrooms != nil {
		p.Bedrooms = r.Bedrooms
	}
	if r.Bathrooms != nil {
		p.Bathrooms = r.Bathrooms
	}
	if r.ParkingSpaces != nil {
		p.ParkingSpaces = r.ParkingSpaces
	}
	if r.Images != nil {
		p.Images = r.Images
	}
	return v.OrNil()
}

// -------------------------
// Property CRUD
// -------------------------

// GET /api/properties
func ListPropertiesHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := store.ListProperties(c.UserContext(), auth.CompanyID(c))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar imóveis")
		}
		return c.JSON(list)
	}
}

// GET /api/properties/:id
func GetPropertyHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := store.GetProperty(c.UserContext(), auth.CompanyID(c), c.Params("id"))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar imóvel")
		}
		return c.JSON(p)
	}
}

// POST /api/properties
func CreatePropertyHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePropertyRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		companyID := auth.CompanyID(c)
		property, err := body.toModel(companyID)
		if err != nil {
			return err
		}

		ctx := c.UserContext()
		err = store.Transact(ctx, func(tx storage.Storage) error {
			if err := tx.CreateProperty(ctx, property); err != nil {
				return err
			}
			return activity.Record(ctx, tx, activity.Entry{
				CompanyID:   companyID,
				UserID:      auth.UserID(c),
				Type:        models.ActivityPropertyCreated,
				Title:       "Imóvel cadastrado",
				Description: fmt.Sprintf("%s foi cadastrado no sistema", property.Title),
				EntityType:  "property",
				EntityID:    property.ID,
			})
		})
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao criar imóvel")
		}

		return c.Status(fiber.StatusCreated).JSON(property)
	}
}

// PUT /api/properties/:id
func UpdatePropertyHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdatePropertyRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		p, err := store.UpdateProperty(c.UserContext(), auth.CompanyID(c), c.Params("id"), body.apply)
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao atualizar imóvel")
		}
		return c.JSON(p)
	}
}

// DELETE /api/properties/:id
func DeletePropertyHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.DeleteProperty(c.UserContext(), auth.CompanyID(c), c.Params("id")); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao deletar imóvel")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
