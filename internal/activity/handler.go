package activity

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// GET /api/activities?limit=10
func ListActivitiesHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", defaultLimit)
		if limit <= 0 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}

		list, err := store.ListActivities(c.UserContext(), auth.CompanyID(c), limit)
		if err != nil {
			return apperror.Wrap(err, "", "Erro ao buscar atividades")
		}
		return c.JSON(list)
	}
}
