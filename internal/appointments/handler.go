package appointments

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const msgNotFound = "Agendamento não encontrado"

type CreateAppointmentRequest struct {
	ClientID        string                   `json:"clientId"`
	PropertyID      *string                  `json:"propertyId"`
	Type            models.AppointmentType   `json:"type"`
	Status          models.AppointmentStatus `json:"status"`
	ScheduledAt     *models.DateTime         `json:"scheduledAt"`
	DurationMinutes *int                     `json:"durationMinutes"`
	Notes           *string                  `json:"notes"`
	AgentName       *string                  `json:"agentName"`
	Channel         *models.Channel          `json:"channel"`
}

type UpdateAppointmentRequest struct {
	ClientID        *string                   `json:"clientId"`
	PropertyID      *string                   `json:"propertyId"`
	Type            *models.AppointmentType   `json:"type"`
	Status          *models.AppointmentStatus `json:"status"`
	ScheduledAt     *models.DateTime          `json:"scheduledAt"`
	DurationMinutes *int                      `json:"durationMinutes"`
	Notes           *string                   `json:"notes"`
	AgentName       *string                   `json:"agentName"`
	Channel         *models.Channel           `json:"channel"`
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func queryDate(c *fiber.Ctx, v *apperror.ValidationError, field string) *time.Time {
	raw := c.Query(field)
	if raw == "" {
		return nil
	}
	t, err := models.ParseDateTime(raw)
	if err != nil {
		v.Add(field, err.Error())
		return nil
	}
	return &t
}

// parseFilter reads status, clientId, upcoming, limit, fromDate and toDate.
func parseFilter(c *fiber.Ctx) (storage.AppointmentFilter, error) {
	var f storage.AppointmentFilter
	v := &apperror.ValidationError{}

	if s := c.Query("status"); s != "" {
		st := models.AppointmentStatus(s)
		if !st.Valid() {
			v.Add("status", "status do agendamento inválido")
		}
		f.Status = &st
	}
	f.ClientID = c.Query("clientId")
	f.Upcoming = c.QueryBool("upcoming", false)
	f.Limit = c.QueryInt("limit", 0)
	if f.Limit < 0 {
		v.Add("limit", "não pode ser negativo")
	}
	f.From = queryDate(c, v, "fromDate")
	f.To = queryDate(c, v, "toDate")
	return f, v.OrNil()
}

// GET /api/appointments
func ListAppointmentsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		list, err := svc.List(c.UserContext(), auth.CompanyID(c), f)
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar agendamentos")
		}
		return c.JSON(list)
	}
}

// GET /api/appointments/:id
func GetAppointmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.Get(c.UserContext(), auth.CompanyID(c), c.Params("id"))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar agendamento")
		}
		return c.JSON(view)
	}
}

// POST /api/appointments
func CreateAppointmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAppointmentRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		a, err := svc.Create(c.UserContext(), auth.CompanyID(c), auth.UserID(c), CreateInput{
			ClientID:        strings.TrimSpace(body.ClientID),
			PropertyID:      nonEmpty(body.PropertyID),
			Type:            body.Type,
			Status:          body.Status,
			ScheduledAt:     body.ScheduledAt.Ptr(),
			DurationMinutes: body.DurationMinutes,
			Notes:           body.Notes,
			AgentName:       body.AgentName,
			Channel:         body.Channel,
		})
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao criar agendamento")
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// PUT /api/appointments/:id
func UpdateAppointmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateAppointmentRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		a, err := svc.Update(c.UserContext(), auth.CompanyID(c), auth.UserID(c), c.Params("id"), UpdateInput{
			ClientID:        body.ClientID,
			PropertyID:      body.PropertyID,
			Type:            body.Type,
			Status:          body.Status,
			ScheduledAt:     body.ScheduledAt.Ptr(),
			DurationMinutes: body.DurationMinutes,
			Notes:           body.Notes,
			AgentName:       body.AgentName,
			Channel:         body.Channel,
		})
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao atualizar agendamento")
		}
		return c.JSON(a)
	}
}

// DELETE /api/appointments/:id
func DeleteAppointmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), auth.CompanyID(c), c.Params("id")); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao deletar agendamento")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
