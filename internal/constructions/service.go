// Package constructions tracks renovation and build projects on properties,
// with their task lists and expense ledgers.
package constructions

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oarthurdev/vortex-gestao/internal/activity"
	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type Service struct {
	store storage.Storage
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// View adds what the construction board shows next to each project.
// ExpensesTotal is reported alongside Spent; the two are not reconciled.
type View struct {
	models.Construction
	PropertyTitle  *string         `json:"propertyTitle"`
	TasksTotal     int             `json:"tasksTotal"`
	TasksCompleted int             `json:"tasksCompleted"`
	ExpensesTotal  decimal.Decimal `json:"expensesTotal"`
}

func checkProperty(ctx context.Context, tx storage.Storage, companyID, propertyID string) error {
	if _, err := tx.GetProperty(ctx, companyID, propertyID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperror.Invalid("propertyId", "imóvel não encontrado")
		}
		return err
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID string, c *models.Construction) error {
	if c.Status == "" {
		c.Status = models.ConstructionPlanejamento
	}
	return s.store.Transact(ctx, func(tx storage.Storage) error {
		if err := checkProperty(ctx, tx, c.CompanyID, c.PropertyID); err != nil {
			return err
		}
		if err := tx.CreateConstruction(ctx, c); err != nil {
			return err
		}
		return activity.Record(ctx, tx, activity.Entry{
			CompanyID:   c.CompanyID,
			UserID:      userID,
			Type:        models.ActivityConstructionCreated,
			Title:       "Obra cadastrada",
			Description: fmt.Sprintf("%s foi cadastrada", c.Name),
			EntityType:  "construction",
			EntityID:    c.ID,
		})
	})
}

func (s *Service) Update(ctx context.Context, companyID, id string, mutate func(*models.Construction) error) (*models.Construction, error) {
	var updated *models.Construction
	err := s.store.Transact(ctx, func(tx storage.Storage) error {
		var err error
		updated, err = tx.UpdateConstruction(ctx, companyID, id, mutate)
		if err != nil {
			return err
		}
		return checkProperty(ctx, tx, companyID, updated.PropertyID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) List(ctx context.Context, companyID string) ([]View, error) {
	list, err := s.store.ListConstructions(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, companyID, list)
}

func (s *Service) Get(ctx context.Context, companyID, id string) (*View, error) {
	c, err := s.store.GetConstruction(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	views, err := s.details(ctx, companyID, []models.Construction{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) details(ctx context.Context, companyID string, list []models.Construction) ([]View, error) {
	out := make([]View, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}

	props, err := s.store.ListProperties(ctx, companyID)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(props))
	for _, p := range props {
		titles[p.ID] = p.Title
	}

	for _, c := range list {
		v := View{Construction: c, ExpensesTotal: decimal.Zero}
		if t, ok := titles[c.PropertyID]; ok {
			v.PropertyTitle = &t
		}

		tasks, err := s.store.ListTasks(ctx, companyID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("list tasks of %s: %w", c.ID, err)
		}
		v.TasksTotal = len(tasks)
		for _, t := range tasks {
			if t.Status == models.TaskConcluida {
				v.TasksCompleted++
			}
		}

		expenses, err := s.store.ListExpenses(ctx, companyID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("list expenses of %s: %w", c.ID, err)
		}
		for _, e := range expenses {
			v.ExpensesTotal = v.ExpensesTotal.Add(e.Amount)
		}
		out = append(out, v)
	}
	return out, nil
}

// -------------------------
// Tasks / expenses
// -------------------------

func (s *Service) CreateTask(ctx context.Context, companyID string, t *models.ConstructionTask) error {
	if t.Status == "" {
		t.Status = models.TaskPendente
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedia
	}
	return s.store.CreateTask(ctx, companyID, t)
}

func (s *Service) CreateExpense(ctx context.Context, companyID string, e *models.ConstructionExpense) error {
	if e.Category == "" {
		e.Category = models.ExpenseMaterial
	}
	return s.store.CreateExpense(ctx, companyID, e)
}
