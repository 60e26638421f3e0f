// Package appointments schedules visits and meetings and keeps the linked
// client's stage and follow-up date in step with them.
package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oarthurdev/vortex-gestao/internal/activity"
	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/pipeline"
	"github.com/oarthurdev/vortex-gestao/internal/realtime"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type Service struct {
	store storage.Storage
	bus   realtime.Broadcaster
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store storage.Storage, bus realtime.Broadcaster, log *zap.Logger) *Service {
	return &Service{store: store, bus: bus, log: log, now: time.Now}
}

// View is an appointment with the names the calendar shows.
type View struct {
	models.Appointment
	ClientName    string  `json:"clientName"`
	PropertyTitle *string `json:"propertyTitle"`
}

type CreateInput struct {
	ClientID        string
	PropertyID      *string
	Type            models.AppointmentType
	Status          models.AppointmentStatus
	ScheduledAt     *time.Time
	DurationMinutes *int
	Notes           *string
	AgentName       *string
	Channel         *models.Channel
}

// UpdateInput carries only the fields being changed. An empty PropertyID
// detaches the property.
type UpdateInput struct {
	ClientID        *string
	PropertyID      *string
	Type            *models.AppointmentType
	Status          *models.AppointmentStatus
	ScheduledAt     *time.Time
	DurationMinutes *int
	Notes           *string
	AgentName       *string
	Channel         *models.Channel
}

func validDuration(v *apperror.ValidationError, d *int) {
	if d != nil && *d <= 0 {
		v.Add("durationMinutes", "deve ser maior que zero")
	}
}

// checkRefs resolves client and property under the caller's company. A
// miss is a payload error, not a 404.
func checkRefs(ctx context.Context, tx storage.Storage, companyID, clientID string, propertyID *string) error {
	if _, err := tx.GetClient(ctx, companyID, clientID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperror.Invalid("clientId", "cliente não encontrado")
		}
		return err
	}
	if propertyID != nil {
		if _, err := tx.GetProperty(ctx, companyID, *propertyID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperror.Invalid("propertyId", "imóvel não encontrado")
			}
			return err
		}
	}
	return nil
}

// couple moves the client after an appointment write: the follow-up is
// always the appointment time, the stage follows the pipeline rules.
func couple(ctx context.Context, tx storage.Storage, a *models.Appointment, trigger pipeline.Trigger) error {
	_, err := tx.UpdateClient(ctx, a.CompanyID, a.ClientID, func(c *models.Client) error {
		at := a.ScheduledAt
		c.NextFollowUp = &at
		c.Stage, _ = pipeline.NextStage(c.Stage, pipeline.Event{
			Trigger:           trigger,
			AppointmentStatus: a.Status,
		})
		return nil
	})
	return err
}

func (s *Service) Create(ctx context.Context, companyID, userID string, in CreateInput) (*models.Appointment, error) {
	v := &apperror.ValidationError{}
	if in.ClientID == "" {
		v.Add("clientId", "campo obrigatório")
	}
	if in.Type == "" {
		v.Add("type", "campo obrigatório")
	}
	if in.ScheduledAt == nil {
		v.Add("scheduledAt", "campo obrigatório")
	}
	validDuration(v, in.DurationMinutes)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	a := &models.Appointment{
		CompanyID:       companyID,
		ClientID:        in.ClientID,
		PropertyID:      in.PropertyID,
		Type:            in.Type,
		Status:          in.Status,
		ScheduledAt:     *in.ScheduledAt,
		DurationMinutes: models.DefaultAppointmentDuration,
		Notes:           in.Notes,
		AgentName:       in.AgentName,
		Channel:         in.Channel,
	}
	if a.Status == "" {
		a.Status = models.AppointmentAgendado
	}
	if in.DurationMinutes != nil {
		a.DurationMinutes = *in.DurationMinutes
	}

	err := s.store.Transact(ctx, func(tx storage.Storage) error {
		if err := checkRefs(ctx, tx, companyID, a.ClientID, a.PropertyID); err != nil {
			return err
		}
		if err := tx.CreateAppointment(ctx, a); err != nil {
			return err
		}
		if err := couple(ctx, tx, a, pipeline.AppointmentCreated); err != nil {
			return err
		}
		return activity.Record(ctx, tx, activity.Entry{
			CompanyID:   companyID,
			UserID:      userID,
			Type:        models.ActivityAppointmentCreated,
			Title:       "Agendamento criado",
			Description: fmt.Sprintf("%s agendado para %s", a.Type, a.ScheduledAt.Format("02/01/2006 15:04")),
			EntityType:  "appointment",
			EntityID:    a.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, companyID, realtime.EventAppointmentCreated, a)
	return a, nil
}

func (s *Service) Update(ctx context.Context, companyID, userID, id string, in UpdateInput) (*models.Appointment, error) {
	v := &apperror.ValidationError{}
	if in.ClientID != nil && *in.ClientID == "" {
		v.Add("clientId", "campo obrigatório")
	}
	validDuration(v, in.DurationMinutes)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	var updated *models.Appointment
	err := s.store.Transact(ctx, func(tx storage.Storage) error {
		current, err := tx.GetAppointment(ctx, companyID, id)
		if err != nil {
			return err
		}

		clientID := current.ClientID
		if in.ClientID != nil {
			clientID = *in.ClientID
		}
		propertyID := current.PropertyID
		if in.PropertyID != nil {
			propertyID = nil
			if *in.PropertyID != "" {
				propertyID = in.PropertyID
			}
		}
		if err := checkRefs(ctx, tx, companyID, clientID, propertyID); err != nil {
			return err
		}

		updated, err = tx.UpdateAppointment(ctx, companyID, id, func(a *models.Appointment) error {
			a.ClientID = clientID
			a.PropertyID = propertyID
			if in.Type != nil {
				a.Type = *in.Type
			}
			if in.Status != nil {
				a.Status = *in.Status
			}
			if in.ScheduledAt != nil {
				a.ScheduledAt = *in.ScheduledAt
			}
			if in.DurationMinutes != nil {
				a.DurationMinutes = *in.DurationMinutes
			}
			if in.Notes != nil {
				a.Notes = in.Notes
			}
			if in.AgentName != nil {
				a.AgentName = in.AgentName
			}
			if in.Channel != nil {
				a.Channel = in.Channel
			}
			return nil
		})
		if err != nil {
			return err
		}

		if err := couple(ctx, tx, updated, pipeline.AppointmentUpdated); err != nil {
			return err
		}
		return activity.Record(ctx, tx, activity.Entry{
			CompanyID:   companyID,
			UserID:      userID,
			Type:        models.ActivityAppointmentUpdated,
			Title:       "Agendamento atualizado",
			Description: fmt.Sprintf("Status: %s", updated.Status),
			EntityType:  "appointment",
			EntityID:    updated.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, companyID, realtime.EventAppointmentUpdated, updated)
	return updated, nil
}

// Delete leaves the client untouched.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	if err := s.store.DeleteAppointment(ctx, companyID, id); err != nil {
		return err
	}
	s.notify(ctx, companyID, realtime.EventAppointmentDeleted, map[string]string{"id": id})
	return nil
}

// notify runs after commit; delivery problems never reach the caller.
func (s *Service) notify(ctx context.Context, companyID, event string, payload any) {
	s.bus.Broadcast(ctx, companyID, realtime.Message{Type: event, Payload: payload})
	s.log.Debug("appointment event broadcast", zap.String("event", event), zap.String("company_id", companyID))
}

func (s *Service) List(ctx context.Context, companyID string, f storage.AppointmentFilter) ([]View, error) {
	if f.Upcoming && f.Now.IsZero() {
		f.Now = s.now()
	}
	list, err := s.store.ListAppointments(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, companyID, list)
}

func (s *Service) Get(ctx context.Context, companyID, id string) (*View, error) {
	a, err := s.store.GetAppointment(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	views, err := s.enrich(ctx, companyID, []models.Appointment{*a})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) enrich(ctx context.Context, companyID string, list []models.Appointment) ([]View, error) {
	out := make([]View, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}

	clients, err := s.store.ListClients(ctx, companyID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}

	props, err := s.store.ListProperties(ctx, companyID)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(props))
	for _, p := range props {
		titles[p.ID] = p.Title
	}

	for _, a := range list {
		v := View{Appointment: a, ClientName: names[a.ClientID]}
		if a.PropertyID != nil {
			if t, ok := titles[*a.PropertyID]; ok {
				v.PropertyTitle = &t
			}
		}
		out = append(out, v)
	}
	return out, nil
}
