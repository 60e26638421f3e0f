package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/config"
	"github.com/oarthurdev/vortex-gestao/internal/realtime"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type busRecorder struct {
	mu     sync.Mutex
	events []string
}

func (b *busRecorder) Broadcast(_ context.Context, companyID string, msg realtime.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, companyID+":"+msg.Type)
}

type harness struct {
	t   *testing.T
	app *fiber.App
	bus *busRecorder
}

func newHarness(t *testing.T) *harness {
	cfg := &config.Config{
		JWTSecret:   "0123456789abcdef0123456789abcdef",
		CORSOrigins: "http://localhost:5173",
	}
	bus := &busRecorder{}
	app := New(Deps{
		Config: cfg,
		Store:  storage.NewMemStorage(),
		Hub:    realtime.NewHub(zap.NewNop()),
		Bus:    bus,
		Log:    zap.NewNop(),
	})
	return &harness{t: t, app: app, bus: bus}
}

func (h *harness) do(method, path string, body any, token string) (int, []byte) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp.StatusCode, raw
}

// call expects status want and decodes the body into a map.
func (h *harness) call(method, path string, body any, token string, want int) map[string]any {
	h.t.Helper()
	code, raw := h.do(method, path, body, token)
	require.Equal(h.t, want, code, string(raw))
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(h.t, json.Unmarshal(raw, &out))
	}
	return out
}

func (h *harness) list(path, token string) []map[string]any {
	h.t.Helper()
	code, raw := h.do("GET", path, nil, token)
	require.Equal(h.t, fiber.StatusOK, code, string(raw))
	var out []map[string]any
	require.NoError(h.t, json.Unmarshal(raw, &out))
	return out
}

type tenant struct {
	token     string
	companyID string
	userID    string
}

func (h *harness) onboard(username, document string) tenant {
	h.t.Helper()
	res := h.call("POST", "/api/auth/register", map[string]any{
		"username": username, "password": "segredo123", "name": username, "email": username + "@example.com",
		"company": map[string]any{"name": "Imobiliária " + username, "document": document, "email": "contato@" + username + ".example"},
	}, "", fiber.StatusCreated)
	user := res["user"].(map[string]any)
	return tenant{token: res["token"].(string), companyID: user["companyId"].(string), userID: user["id"].(string)}
}

func (h *harness) property(tn tenant, title string) string {
	h.t.Helper()
	res := h.call("POST", "/api/properties", map[string]any{
		"title": title, "type": "apartamento", "price": "450000", "address": "Rua das Flores, 10",
		"neighborhood": "Centro", "city": "Curitiba", "state": "PR", "zipCode": "80000-000",
	}, tn.token, fiber.StatusCreated)
	return res["id"].(string)
}

func (h *harness) client(tn tenant, name, typ string) string {
	h.t.Helper()
	res := h.call("POST", "/api/clients", map[string]any{
		"name": name, "email": "c@example.com", "phone": "41999990000", "type": typ,
	}, tn.token, fiber.StatusCreated)
	return res["id"].(string)
}

func TestHealthAndAuthRequired(t *testing.T) {
	h := newHarness(t)
	h.call("GET", "/healthz", nil, "", fiber.StatusOK)

	res := h.call("GET", "/api/properties", nil, "", fiber.StatusUnauthorized)
	assert.NotEmpty(t, res["message"])
	h.call("GET", "/api/kpis", nil, "not-a-token", fiber.StatusUnauthorized)
}

func TestCompaniesDirectoryIsPublicAndMinimal(t *testing.T) {
	h := newHarness(t)
	a := h.onboard("alfa", "11.111.111/0001-11")

	list := h.list("/api/companies", "")
	require.Len(t, list, 1)
	assert.Equal(t, a.companyID, list[0]["id"])
	assert.Len(t, list[0], 2)
}

func TestTenantIsolation(t *testing.T) {
	h := newHarness(t)
	a := h.onboard("alfa", "11.111.111/0001-11")
	b := h.onboard("beta", "22.222.222/0001-22")

	propID := h.property(a, "Apto Batel")
	clientID := h.client(a, "Carlos", "lead")

	res := h.call("GET", "/api/properties/"+propID, nil, b.token, fiber.StatusNotFound)
	assert.Equal(t, "Imóvel não encontrado", res["message"])
	h.call("PUT", "/api/properties/"+propID, map[string]any{"status": "vendido"}, b.token, fiber.StatusNotFound)
	h.call("DELETE", "/api/clients/"+clientID, nil, b.token, fiber.StatusNotFound)
	h.call("POST", "/api/clients/"+clientID+"/interactions", map[string]any{"type": "email", "summary": "oi"}, b.token, fiber.StatusNotFound)

	assert.Empty(t, h.list("/api/properties", b.token))
	assert.Len(t, h.list("/api/properties", a.token), 1)

	// cross-company references in a payload are a 400, not a 404
	res = h.call("POST", "/api/appointments", map[string]any{
		"clientId": clientID, "type": "visita", "scheduledAt": "2030-01-10T14:00:00Z",
	}, b.token, fiber.StatusBadRequest)
	assert.Equal(t, "Dados inválidos", res["message"])

	got := h.call("GET", "/api/properties/"+propID, nil, a.token, fiber.StatusOK)
	assert.Equal(t, "disponivel", got["status"])
}

func TestAppointmentLifecycleDrivesClientStage(t *testing.T) {
	h := newHarness(t)
	a := h.onboard("alfa", "11.111.111/0001-11")
	clientID := h.client(a, "Carlos", "comprador")

	appt := h.call("POST", "/api/appointments", map[string]any{
		"clientId": clientID, "type": "visita", "scheduledAt": "2030-01-10T14:00",
	}, a.token, fiber.StatusCreated)
	assert.Equal(t, "agendado", appt["status"])
	assert.EqualValues(t, 60, appt["durationMinutes"])

	c := h.call("GET", "/api/clients/"+clientID, nil, a.token, fiber.StatusOK)
	assert.Equal(t, "visita_agendada", c["stage"])
	assert.Contains(t, c["nextFollowUp"], "2030-01-10T14:00:00")

	h.call("PUT", "/api/clients/"+clientID, map[string]any{"stage": "proposta"}, a.token, fiber.StatusOK)
	h.call("PUT", "/api/appointments/"+appt["id"].(string), map[string]any{"status": "realizado"}, a.token, fiber.StatusOK)

	c = h.call("GET", "/api/clients/"+clientID, nil, a.token, fiber.StatusOK)
	assert.Equal(t, "fechado", c["stage"])

	h.call("DELETE", "/api/appointments/"+appt["id"].(string), nil, a.token, fiber.StatusNoContent)
	c = h.call("GET", "/api/clients/"+clientID, nil, a.token, fiber.StatusOK)
	assert.Equal(t, "fechado", c["stage"])

	assert.Equal(t, []string{
		a.companyID + ":" + realtime.EventAppointmentCreated,
		a.companyID + ":" + realtime.EventAppointmentUpdated,
		a.companyID + ":" + realtime.EventAppointmentDeleted,
	}, h.bus.events)

	pipe := h.call("GET", "/api/clients/pipeline", nil, a.token, fiber.StatusOK)
	stages := pipe["stages"].([]any)
	assert.Len(t, stages, 6)
}

func TestInteractionAndValidation(t *testing.T) {
	h := newHarness(t)
	a := h.onboard("alfa", "11.111.111/0001-11")
	clientID := h.client(a, "Carlos", "lead")

	res := h.call("POST", "/api/clients/"+clientID+"/interactions", map[string]any{
		"type": "whatsapp", "summary": "", "stage": "qualificado",
	}, a.token, fiber.StatusBadRequest)
	errs := res["errors"].([]any)
	assert.Equal(t, "summary", errs[0].(map[string]any)["field"])

	res = h.call("POST", "/api/clients", map[string]any{
		"name": "X", "email": "x@example.com", "phone": "1", "type": "lead", "stage": "arquivado",
	}, a.token, fiber.StatusBadRequest)
	errs = res["errors"].([]any)
	assert.Equal(t, "stage", errs[0].(map[string]any)["field"])

	h.call("POST", "/api/clients/"+clientID+"/interactions", map[string]any{
		"type": "whatsapp", "summary": "Cliente pediu opções no Batel", "stage": "qualificado",
	}, a.token, fiber.StatusCreated)
	c := h.call("GET", "/api/clients/"+clientID, nil, a.token, fiber.StatusOK)
	assert.Equal(t, "qualificado", c["stage"])
	assert.NotNil(t, c["lastContactAt"])

	assert.Len(t, h.list("/api/clients/"+clientID+"/interactions", a.token), 1)
}

func TestContractTransactionAndDashboard(t *testing.T) {
	h := newHarness(t)
	a := h.onboard("alfa", "11.111.111/0001-11")
	propID := h.property(a, "Casa Água Verde")
	clientID := h.client(a, "Beatriz", "locatario")

	contract := h.call("POST", "/api/contracts", map[string]any{
		"type": "locacao", "propertyId": propID, "clientId": clientID, "value": "3200", "startDate": "2024-06-01",
	}, a.token, fiber.StatusCreated)
	assert.Equal(t, "ativo", contract["status"])

	p := h.call("GET", "/api/properties/"+propID, nil, a.token, fiber.StatusOK)
	assert.Equal(t, "alugado", p["status"])

	tx := h.call("POST", "/api/transactions", map[string]any{
		"type": "receita", "category": "aluguel", "description": "Aluguel junho",
		"amount": "3200,50", "dueDate": "2024-06-05", "contractId": "",
	}, a.token, fiber.StatusCreated)
	assert.Equal(t, "3200.5", tx["amount"])
	assert.Nil(t, tx["contractId"])

	h.call("POST", "/api/transactions", map[string]any{
		"type": "receita", "category": "aluguel", "description": "x", "amount": 10, "dueDate": "2024-06-05", "contractId": "missing",
	}, a.token, fiber.StatusBadRequest)

	list := h.list("/api/contracts", a.token)
	require.Len(t, list, 1)
	assert.Equal(t, "Beatriz", list[0]["client"].(map[string]any)["name"])

	acts := h.list("/api/activities?limit=2", a.token)
	require.Len(t, acts, 2)
	types := []any{acts[0]["type"], acts[1]["type"]}
	assert.Contains(t, types, "contract_signed")

	kpis := h.call("GET", "/api/kpis", nil, a.token, fiber.StatusOK)
	assert.EqualValues(t, 1, kpis["activeProperties"])
	assert.EqualValues(t, 1, kpis["activeContracts"])
	assert.Equal(t, "R$ 0.0K", kpis["monthlyRevenue"])

	code, raw := h.do("GET", "/api/reports/transactions.xlsx", nil, a.token)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "PK", string(raw[:2]))
}

func TestConstructionNesting(t *testing.T) {
	h := newHarness(t)
	a := h.onboard("alfa", "11.111.111/0001-11")
	b := h.onboard("beta", "22.222.222/0001-22")
	propID := h.property(a, "Sobrado")

	h.call("POST", "/api/constructions", map[string]any{"propertyId": propID, "name": "Reforma"}, b.token, fiber.StatusBadRequest)
	cons := h.call("POST", "/api/constructions", map[string]any{"propertyId": propID, "name": "Reforma"}, a.token, fiber.StatusCreated)
	id := cons["id"].(string)

	h.call("POST", "/api/constructions/"+id+"/tasks", map[string]any{"name": "Demolição", "status": "concluida"}, a.token, fiber.StatusCreated)
	h.call("POST", "/api/constructions/"+id+"/expenses", map[string]any{"description": "Caçamba", "amount": "450,00", "expenseDate": "2024-06-02"}, a.token, fiber.StatusCreated)
	h.call("POST", "/api/constructions/"+id+"/tasks", map[string]any{"name": "x"}, b.token, fiber.StatusNotFound)

	view := h.call("GET", "/api/constructions/"+id, nil, a.token, fiber.StatusOK)
	assert.EqualValues(t, 1, view["tasksCompleted"])
	assert.Equal(t, "450", view["expensesTotal"])
	assert.Equal(t, "Sobrado", view["propertyTitle"])
}

func TestUserAdministration(t *testing.T) {
	h := newHarness(t)
	a := h.onboard("alfa", "11.111.111/0001-11")

	res := h.call("POST", "/api/auth/register", map[string]any{
		"username": "joao", "password": "segredo123", "name": "João", "email": "joao@example.com", "companyId": a.companyID,
	}, "", fiber.StatusCreated)
	corretor := res["token"].(string)
	assert.Equal(t, "corretor", res["user"].(map[string]any)["role"])

	h.call("POST", "/api/users", map[string]any{"username": "x", "password": "segredo123", "name": "X", "email": "x@example.com"}, corretor, fiber.StatusForbidden)
	created := h.call("POST", "/api/users", map[string]any{"username": "fin", "password": "segredo123", "name": "Fin", "email": "fin@example.com", "role": "financeiro"}, a.token, fiber.StatusCreated)
	assert.Equal(t, a.companyID, created["companyId"])
	assert.Nil(t, created["passwordHash"])

	assert.Len(t, h.list("/api/users", corretor), 3)

	h.call("PUT", "/api/users/"+a.userID, map[string]any{"isActive": false}, a.token, fiber.StatusBadRequest)
	h.call("PUT", "/api/users/"+created["id"].(string), map[string]any{"isActive": false}, a.token, fiber.StatusOK)
	h.call("POST", "/api/auth/login", auth.LoginRequest{Username: "fin", Password: "segredo123"}, "", fiber.StatusUnauthorized)
}

// Every id taken from the URL must outlive the request that carried it.
func TestRouteIDsSurviveLaterRequests(t *testing.T) {
	h := newHarness(t)
	a := h.onboard("alfa", "11.111.111/0001-11")
	propID := h.property(a, "Sobrado")
	clientID := h.client(a, "Carlos", "lead")

	h.call("PUT", "/api/clients/"+clientID, map[string]any{"stage": "proposta"}, a.token, fiber.StatusOK)
	h.call("POST", "/api/clients/"+clientID+"/interactions", map[string]any{
		"type": "contato_telefonico", "summary": "Retorno sobre a proposta",
	}, a.token, fiber.StatusCreated)
	h.call("PUT", "/api/properties/"+propID, map[string]any{"status": "manutencao"}, a.token, fiber.StatusOK)

	cons := h.call("POST", "/api/constructions", map[string]any{"propertyId": propID, "name": "Reforma"}, a.token, fiber.StatusCreated)
	consID := cons["id"].(string)
	task := h.call("POST", "/api/constructions/"+consID+"/tasks", map[string]any{"name": "Pintura"}, a.token, fiber.StatusCreated)
	h.call("PUT", "/api/constructions/"+consID+"/tasks/"+task["id"].(string), map[string]any{"status": "concluida"}, a.token, fiber.StatusOK)
	h.call("POST", "/api/constructions/"+consID+"/expenses", map[string]any{
		"description": "Tinta", "amount": "320", "expenseDate": "2024-06-02",
	}, a.token, fiber.StatusCreated)

	// unrelated traffic reusing request buffers
	for i := 0; i < 3; i++ {
		h.call("GET", "/api/kpis", nil, a.token, fiber.StatusOK)
		h.call("GET", "/api/companies", nil, "", fiber.StatusOK)
	}

	clients := h.list("/api/clients", a.token)
	require.Len(t, clients, 1)
	assert.Equal(t, clientID, clients[0]["id"])
	assert.Equal(t, "proposta", clients[0]["stage"])
	h.call("GET", "/api/clients/"+clientID, nil, a.token, fiber.StatusOK)

	interactions := h.list("/api/clients/"+clientID+"/interactions", a.token)
	require.Len(t, interactions, 1)
	assert.Equal(t, clientID, interactions[0]["clientId"])

	p := h.call("GET", "/api/properties/"+propID, nil, a.token, fiber.StatusOK)
	assert.Equal(t, propID, p["id"])

	tasks := h.list("/api/constructions/"+consID+"/tasks", a.token)
	require.Len(t, tasks, 1)
	assert.Equal(t, consID, tasks[0]["constructionId"])
	assert.Equal(t, "concluida", tasks[0]["status"])
	require.Len(t, h.list("/api/constructions/"+consID+"/expenses", a.token), 1)

	var entityIDs []any
	for _, act := range h.list("/api/activities?limit=100", a.token) {
		entityIDs = append(entityIDs, act["entityId"])
	}
	assert.Contains(t, entityIDs, clientID)
}
