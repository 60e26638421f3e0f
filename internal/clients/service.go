package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oarthurdev/vortex-gestao/internal/activity"
	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/pipeline"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type Service struct {
	store storage.Storage
	now   func() time.Time
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store, now: time.Now}
}

// Create stores a new client; leads also get a lead_created activity.
func (s *Service) Create(ctx context.Context, userID string, c *models.Client) error {
	if c.Stage == "" {
		c.Stage = models.StageNovo
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return s.store.Transact(ctx, func(tx storage.Storage) error {
		if err := tx.CreateClient(ctx, c); err != nil {
			return err
		}
		if c.Type != models.ClientLead {
			return nil
		}
		return activity.Record(ctx, tx, activity.Entry{
			CompanyID:   c.CompanyID,
			UserID:      userID,
			Type:        models.ActivityLeadCreated,
			Title:       "Novo lead cadastrado",
			Description: fmt.Sprintf("%s foi cadastrado como lead", c.Name),
			EntityType:  "client",
			EntityID:    c.ID,
		})
	})
}

// InteractionInput is a decoded interaction payload. A nil OccurredAt means
// now.
type InteractionInput struct {
	Type         models.InteractionType
	Channel      *models.Channel
	Summary      string
	OccurredAt   *time.Time
	NextSteps    *string
	NextFollowUp *time.Time
	Stage        *models.ClientStage
	CreatedBy    *string
}

// RecordInteraction logs an interaction and moves the client along: the
// contact time always, the follow-up date and stage only when supplied.
func (s *Service) RecordInteraction(ctx context.Context, companyID, userID, clientID string, in InteractionInput) (*models.ClientInteraction, *models.Client, error) {
	v := &apperror.ValidationError{}
	if strings.TrimSpace(in.Summary) == "" {
		v.Add("summary", "resumo é obrigatório")
	}
	if in.Type == "" {
		v.Add("type", "campo obrigatório")
	}
	if err := v.OrNil(); err != nil {
		return nil, nil, err
	}

	occurredAt := s.now()
	if in.OccurredAt != nil {
		occurredAt = *in.OccurredAt
	}

	interaction := &models.ClientInteraction{
		CompanyID:    companyID,
		ClientID:     clientID,
		Type:         in.Type,
		Channel:      in.Channel,
		Summary:      strings.TrimSpace(in.Summary),
		OccurredAt:   occurredAt,
		NextSteps:    in.NextSteps,
		NextFollowUp: in.NextFollowUp,
		Stage:        in.Stage,
		CreatedBy:    in.CreatedBy,
	}

	var client *models.Client
	err := s.store.Transact(ctx, func(tx storage.Storage) error {
		if _, err := tx.GetClient(ctx, companyID, clientID); err != nil {
			return err
		}
		if err := tx.CreateInteraction(ctx, interaction); err != nil {
			return err
		}

		var err error
		client, err = tx.UpdateClient(ctx, companyID, clientID, func(c *models.Client) error {
			t := interaction.OccurredAt
			c.LastContactAt = &t
			if interaction.NextFollowUp != nil {
				f := *interaction.NextFollowUp
				c.NextFollowUp = &f
			}
			c.Stage, _ = pipeline.NextStage(c.Stage, pipeline.Event{
				Trigger: pipeline.InteractionRecorded,
				Stage:   interaction.Stage,
			})
			return nil
		})
		if err != nil {
			return err
		}

		return activity.Record(ctx, tx, activity.Entry{
			CompanyID:   companyID,
			UserID:      userID,
			Type:        models.ActivityClientInteraction,
			Title:       "Interação registrada",
			Description: fmt.Sprintf("%s: %s", client.Name, interaction.Summary),
			EntityType:  "client",
			EntityID:    clientID,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return interaction, client, nil
}

// Pipeline summarizes the company's clients as of now.
func (s *Service) Pipeline(ctx context.Context, companyID string) (pipeline.Summary, error) {
	list, err := s.store.ListClients(ctx, companyID)
	if err != nil {
		return pipeline.Summary{}, err
	}
	return pipeline.Summarize(list, s.now()), nil
}
