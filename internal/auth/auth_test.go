package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/config"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

var testCfg = &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef"}

func newTestApp(store storage.Storage) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperror.Handler(zap.NewNop())})
	app.Post("/auth/register", RegisterHandler(testCfg, store))
	app.Post("/auth/login", LoginHandler(testCfg, store))
	protected := app.Group("", JWTMiddleware(testCfg))
	protected.Get("/auth/me", MeHandler(store))
	protected.Get("/admin-only", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString(CompanyID(c))
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path string, body any, token string) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func registerOwner(t *testing.T, app *fiber.App) AuthResponse {
	t.Helper()
	code, raw := send(t, app, "POST", "/auth/register", RegisterRequest{
		Username: "Ana", Password: "segredo123", Name: "Ana Souza", Email: "ana@example.com",
		Company: &NewCompanyRequest{Name: "Alfa Imóveis", Document: "11.111.111/0001-11", Email: "contato@alfa.example"},
	}, "")
	require.Equal(t, fiber.StatusCreated, code, string(raw))
	var out AuthResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRegisterNewCompanyMakesAdmin(t *testing.T) {
	app := newTestApp(storage.NewMemStorage())
	out := registerOwner(t, app)

	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "ana", out.User.Username)
	assert.Equal(t, models.RoleAdmin, out.User.Role)

	claims, err := ParseToken(testCfg.JWTSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.CompanyID, claims.CompanyID)

	code, raw := send(t, app, "GET", "/admin-only", nil, out.Token)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, out.User.CompanyID, string(raw))
}

func TestRegisterJoinCompany(t *testing.T) {
	app := newTestApp(storage.NewMemStorage())
	owner := registerOwner(t, app)

	code, raw := send(t, app, "POST", "/auth/register", RegisterRequest{
		Username: "bruno", Password: "segredo123", Name: "Bruno", Email: "bruno@example.com",
		CompanyID: owner.User.CompanyID,
	}, "")
	require.Equal(t, fiber.StatusCreated, code, string(raw))
	var out AuthResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, models.RoleCorretor, out.User.Role)

	code, _ = send(t, app, "GET", "/admin-only", nil, out.Token)
	assert.Equal(t, fiber.StatusForbidden, code)

	// Duplicate username.
	code, _ = send(t, app, "POST", "/auth/register", RegisterRequest{
		Username: "bruno", Password: "segredo123", Name: "Bruno", Email: "b2@example.com",
		CompanyID: owner.User.CompanyID,
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(storage.NewMemStorage())
	code, raw := send(t, app, "POST", "/auth/register", RegisterRequest{Username: "x", Password: "1"}, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, string(raw), "password")
	assert.Contains(t, string(raw), "companyId")

	code, _ = send(t, app, "POST", "/auth/register", RegisterRequest{
		Username: "x", Password: "segredo123", Name: "X", Email: "x@example.com",
		CompanyID: "00000000-0000-0000-0000-000000000000",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestLogin(t *testing.T) {
	store := storage.NewMemStorage()
	app := newTestApp(store)
	owner := registerOwner(t, app)

	code, raw := send(t, app, "POST", "/auth/login", LoginRequest{Username: "ANA", Password: "segredo123"}, "")
	require.Equal(t, fiber.StatusOK, code, string(raw))

	code, _ = send(t, app, "POST", "/auth/login", LoginRequest{Username: "ana", Password: "errada"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = send(t, app, "POST", "/auth/login", LoginRequest{Username: "ninguem", Password: "segredo123"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = send(t, app, "POST", "/auth/login", LoginRequest{
		Username: "ana", Password: "segredo123", CompanyID: "11111111-1111-1111-1111-111111111111",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	_, err := store.UpdateUser(context.Background(), owner.User.CompanyID, owner.User.ID, func(u *models.User) error {
		u.IsActive = false
		return nil
	})
	require.NoError(t, err)
	code, _ = send(t, app, "POST", "/auth/login", LoginRequest{Username: "ana", Password: "segredo123"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestMe(t *testing.T) {
	app := newTestApp(storage.NewMemStorage())
	owner := registerOwner(t, app)

	code, raw := send(t, app, "GET", "/auth/me", nil, owner.Token)
	require.Equal(t, fiber.StatusOK, code)
	var body struct {
		User    models.User       `json:"user"`
		Company map[string]string `json:"company"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, owner.User.ID, body.User.ID)
	assert.Equal(t, "Alfa Imóveis", body.Company["name"])
}

func TestJWTMiddlewareRejects(t *testing.T) {
	app := newTestApp(storage.NewMemStorage())

	code, _ := send(t, app, "GET", "/auth/me", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = send(t, app, "GET", "/auth/me", nil, "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTCustomClaims{
		UserID: "u", CompanyID: "c", Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})
	signed, err := expired.SignedString([]byte(testCfg.JWTSecret))
	require.NoError(t, err)
	code, _ = send(t, app, "GET", "/auth/me", nil, signed)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	other, err := GenerateToken("another-secret-another-secret-xx", &models.User{ID: "u", CompanyID: "c", Role: models.RoleAdmin})
	require.NoError(t, err)
	code, _ = send(t, app, "GET", "/auth/me", nil, other)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)
	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}
