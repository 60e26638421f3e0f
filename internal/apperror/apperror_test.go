package apperror

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type payload struct {
	Stage  models.ClientStage `json:"stage"`
	Amount int                `json:"amount"`
	When   *models.DateTime   `json:"when"`
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: Handler(zap.NewNop())})
	app.Post("/bind", func(c *fiber.Ctx) error {
		var p payload
		if err := BindJSON(c, &p); err != nil {
			return err
		}
		return c.JSON(p)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return Wrap(storage.ErrNotFound, "Cliente não encontrado", "Erro ao buscar cliente")
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return Wrap(storage.ErrConflict, "x", "y")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return Wrap(errors.New("db down"), "x", "Erro ao buscar clientes")
	})
	app.Get("/raw", func(c *fiber.Ctx) error {
		return errors.New("raw")
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func firstField(t *testing.T, body map[string]any) string {
	t.Helper()
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, errs)
	return errs[0].(map[string]any)["field"].(string)
}

func TestBindJSONUnknownEnum(t *testing.T) {
	code, body := do(t, newApp(), "POST", "/bind", `{"stage":"ganho"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Dados inválidos", body["message"])
	assert.Equal(t, "stage", firstField(t, body))
}

func TestBindJSONWrongType(t *testing.T) {
	code, body := do(t, newApp(), "POST", "/bind", `{"amount":"dez"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "amount", firstField(t, body))
}

func TestBindJSONBadDate(t *testing.T) {
	code, _ := do(t, newApp(), "POST", "/bind", `{"when":"ontem"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestBindJSONMalformedAndEmpty(t *testing.T) {
	code, body := do(t, newApp(), "POST", "/bind", `{"stage":`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "body", firstField(t, body))

	code, _ = do(t, newApp(), "POST", "/bind", ``)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestBindJSONValid(t *testing.T) {
	code, body := do(t, newApp(), "POST", "/bind", `{"stage":"proposta","amount":3,"when":"2024-01-10T10:00"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "proposta", body["stage"])
}

func TestWrapMapping(t *testing.T) {
	app := newApp()

	code, body := do(t, app, "GET", "/missing", "")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Cliente não encontrado", body["message"])

	code, _ = do(t, app, "GET", "/conflict", "")
	assert.Equal(t, fiber.StatusConflict, code)

	code, body = do(t, app, "GET", "/boom", "")
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Erro ao buscar clientes", body["message"])

	code, body = do(t, app, "GET", "/raw", "")
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Erro interno do servidor", body["message"])
}

func TestValidationErrorOrNil(t *testing.T) {
	var v ValidationError
	assert.NoError(t, v.OrNil())
	v.Add("summary", "obrigatório")
	assert.Error(t, v.OrNil())
	assert.Contains(t, v.Error(), "summary")
}
