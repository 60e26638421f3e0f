package activity

import (
	"context"
	"fmt"

	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

// Entry describes one feed item. UserID and the entity reference are
// optional.
type Entry struct {
	CompanyID   string
	UserID      string
	Type        models.ActivityType
	Title       string
	Description string
	EntityType  string
	EntityID    string
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Record appends an activity. Callers run it inside the same Transact as the
// write it describes.
func Record(ctx context.Context, store storage.ActivityStore, e Entry) error {
	a := models.Activity{
		CompanyID:   e.CompanyID,
		UserID:      optional(e.UserID),
		Type:        e.Type,
		Title:       e.Title,
		Description: optional(e.Description),
		EntityType:  optional(e.EntityType),
		EntityID:    optional(e.EntityID),
	}
	if err := store.CreateActivity(ctx, &a); err != nil {
		return fmt.Errorf("activity: registro falhou: %w", err)
	}
	return nil
}
