package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

func TestRecordOptionalFields(t *testing.T) {
	store := storage.NewMemStorage()
	ctx := context.Background()
	require.NoError(t, Record(ctx, store, Entry{
		CompanyID: "c1", Type: models.ActivityLeadCreated, Title: "Novo lead",
		EntityType: "client", EntityID: "x",
	}))

	list, err := store.ListActivities(ctx, "c1", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].UserID)
	assert.Nil(t, list[0].Description)
	require.NotNil(t, list[0].EntityType)
	assert.Equal(t, "client", *list[0].EntityType)
}

func TestListActivitiesHandlerLimit(t *testing.T) {
	store := storage.NewMemStorage()
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		require.NoError(t, Record(ctx, store, Entry{CompanyID: "c1", Type: models.ActivityPropertyCreated, Title: fmt.Sprint(i)}))
	}
	require.NoError(t, Record(ctx, store, Entry{CompanyID: "c2", Type: models.ActivityPropertyCreated, Title: "other"}))

	app := fiber.New()
	app.Get("/activities", func(c *fiber.Ctx) error {
		c.Locals(auth.CtxCompanyIDKey, "c1")
		return c.Next()
	}, ListActivitiesHandler(store))

	count := func(path string) int {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var out []models.Activity
		require.NoError(t, json.Unmarshal(raw, &out))
		for _, a := range out {
			assert.Equal(t, "c1", a.CompanyID)
		}
		return len(out)
	}

	assert.Equal(t, 10, count("/activities"))
	assert.Equal(t, 3, count("/activities?limit=3"))
	assert.Equal(t, 10, count("/activities?limit=-1"))
}
