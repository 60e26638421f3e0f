package appointments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/realtime"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type recorder struct {
	mu   sync.Mutex
	msgs []struct {
		company string
		msg     realtime.Message
	}
}

func (r *recorder) Broadcast(_ context.Context, companyID string, msg realtime.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, struct {
		company string
		msg     realtime.Message
	}{companyID, msg})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.msg.Type)
	}
	return out
}

const (
	companyA = "company-a"
	companyB = "company-b"
)

type env struct {
	store *storage.MemStorage
	bus   *recorder
	svc   *Service
}

func newEnv() env {
	store := storage.NewMemStorage()
	bus := &recorder{}
	return env{store: store, bus: bus, svc: NewService(store, bus, zap.NewNop())}
}

func (e env) client(t *testing.T, company string, stage models.ClientStage) *models.Client {
	t.Helper()
	c := &models.Client{CompanyID: company, Name: "Cliente " + string(stage), Email: "c@example.com", Phone: "1", Type: models.ClientComprador, Stage: stage}
	require.NoError(t, e.store.CreateClient(context.Background(), c))
	return c
}

func (e env) property(t *testing.T, company string) *models.Property {
	t.Helper()
	p := &models.Property{CompanyID: company, Title: "Casa Jardim", Type: models.PropertyCasa, Status: models.PropertyDisponivel, Price: decimal.NewFromInt(1)}
	require.NoError(t, e.store.CreateProperty(context.Background(), p))
	return p
}

func (e env) stageOf(t *testing.T, c *models.Client) *models.Client {
	t.Helper()
	got, err := e.store.GetClient(context.Background(), c.CompanyID, c.ID)
	require.NoError(t, err)
	return got
}

func at(h int) *time.Time {
	v := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(h) * time.Hour)
	return &v
}

func TestCreateDefaultsAndCoupling(t *testing.T) {
	e := newEnv()
	c := e.client(t, companyA, models.StageNovo)

	a, err := e.svc.Create(context.Background(), companyA, "u1", CreateInput{
		ClientID: c.ID, Type: models.AppointmentVisita, ScheduledAt: at(10),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentAgendado, a.Status)
	assert.Equal(t, 60, a.DurationMinutes)

	got := e.stageOf(t, c)
	assert.Equal(t, models.StageVisitaAgendada, got.Stage)
	assert.True(t, at(10).Equal(*got.NextFollowUp))
	assert.Equal(t, []string{realtime.EventAppointmentCreated}, e.bus.types())
	assert.Equal(t, companyA, e.bus.msgs[0].company)
}

func TestCreateCoupling(t *testing.T) {
	cases := []struct {
		name   string
		from   models.ClientStage
		status models.AppointmentStatus
		want   models.ClientStage
	}{
		{"realizado closes", models.StageQualificado, models.AppointmentRealizado, models.StageFechado},
		{"cancelado keeps novo", models.StageNovo, models.AppointmentCancelado, models.StageNovo},
		{"confirmado from novo", models.StageNovo, models.AppointmentConfirmado, models.StageVisitaAgendada},
		{"agendado keeps proposta", models.StageProposta, models.AppointmentAgendado, models.StageProposta},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv()
			c := e.client(t, companyA, tc.from)
			_, err := e.svc.Create(context.Background(), companyA, "", CreateInput{
				ClientID: c.ID, Type: models.AppointmentReuniao, Status: tc.status, ScheduledAt: at(1),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, e.stageOf(t, c).Stage)
		})
	}
}

func TestCreateValidatesReferences(t *testing.T) {
	e := newEnv()
	foreign := e.client(t, companyB, models.StageNovo)
	mine := e.client(t, companyA, models.StageNovo)
	foreignProp := e.property(t, companyB)

	_, err := e.svc.Create(context.Background(), companyA, "", CreateInput{
		ClientID: foreign.ID, Type: models.AppointmentVisita, ScheduledAt: at(1),
	})
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "clientId", ve.Fields[0].Field)

	_, err = e.svc.Create(context.Background(), companyA, "", CreateInput{
		ClientID: mine.ID, PropertyID: &foreignProp.ID, Type: models.AppointmentVisita, ScheduledAt: at(1),
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "propertyId", ve.Fields[0].Field)

	_, err = e.svc.Create(context.Background(), companyA, "", CreateInput{ClientID: mine.ID})
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)

	assert.Equal(t, models.StageNovo, e.stageOf(t, mine).Stage)
	assert.Empty(t, e.bus.types())
}

func TestUpdateRealizadoForcesFechado(t *testing.T) {
	for _, from := range models.ClientStages {
		t.Run(string(from), func(t *testing.T) {
			e := newEnv()
			c := e.client(t, companyA, models.StageQualificado)
			a, err := e.svc.Create(context.Background(), companyA, "", CreateInput{
				ClientID: c.ID, Type: models.AppointmentVisita, ScheduledAt: at(1),
			})
			require.NoError(t, err)
			_, err = e.store.UpdateClient(context.Background(), companyA, c.ID, func(cl *models.Client) error {
				cl.Stage = from
				return nil
			})
			require.NoError(t, err)

			st := models.AppointmentRealizado
			_, err = e.svc.Update(context.Background(), companyA, "", a.ID, UpdateInput{Status: &st})
			require.NoError(t, err)
			assert.Equal(t, models.StageFechado, e.stageOf(t, c).Stage)
		})
	}
}

func TestUpdateCancelRevertsOnlyFromVisitaAgendada(t *testing.T) {
	for _, from := range models.ClientStages {
		t.Run(string(from), func(t *testing.T) {
			e := newEnv()
			c := e.client(t, companyA, from)
			a := &models.Appointment{CompanyID: companyA, ClientID: c.ID, Type: models.AppointmentVisita, Status: models.AppointmentAgendado, ScheduledAt: *at(5), DurationMinutes: 60}
			require.NoError(t, e.store.CreateAppointment(context.Background(), a))

			st := models.AppointmentCancelado
			_, err := e.svc.Update(context.Background(), companyA, "", a.ID, UpdateInput{Status: &st})
			require.NoError(t, err)

			want := from
			if from == models.StageVisitaAgendada {
				want = models.StageQualificado
			}
			assert.Equal(t, want, e.stageOf(t, c).Stage)
		})
	}
}

func TestUpdateRescheduleMovesFollowUp(t *testing.T) {
	e := newEnv()
	c := e.client(t, companyA, models.StageProposta)
	a, err := e.svc.Create(context.Background(), companyA, "", CreateInput{ClientID: c.ID, Type: models.AppointmentVisita, ScheduledAt: at(1)})
	require.NoError(t, err)

	updated, err := e.svc.Update(context.Background(), companyA, "", a.ID, UpdateInput{ScheduledAt: at(48)})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentAgendado, updated.Status)

	got := e.stageOf(t, c)
	assert.Equal(t, models.StageProposta, got.Stage)
	assert.True(t, at(48).Equal(*got.NextFollowUp))
	assert.Equal(t, []string{realtime.EventAppointmentCreated, realtime.EventAppointmentUpdated}, e.bus.types())
}

func TestUpdateOtherCompanyNotFound(t *testing.T) {
	e := newEnv()
	c := e.client(t, companyA, models.StageNovo)
	a, err := e.svc.Create(context.Background(), companyA, "", CreateInput{ClientID: c.ID, Type: models.AppointmentVisita, ScheduledAt: at(1)})
	require.NoError(t, err)

	st := models.AppointmentRealizado
	_, err = e.svc.Update(context.Background(), companyB, "", a.ID, UpdateInput{Status: &st})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, e.svc.Delete(context.Background(), companyB, a.ID), storage.ErrNotFound)
	assert.Equal(t, models.StageVisitaAgendada, e.stageOf(t, c).Stage)
}

func TestDeleteLeavesClient(t *testing.T) {
	e := newEnv()
	c := e.client(t, companyA, models.StageNovo)
	a, err := e.svc.Create(context.Background(), companyA, "", CreateInput{ClientID: c.ID, Type: models.AppointmentVisita, ScheduledAt: at(1)})
	require.NoError(t, err)

	require.NoError(t, e.svc.Delete(context.Background(), companyA, a.ID))
	got := e.stageOf(t, c)
	assert.Equal(t, models.StageVisitaAgendada, got.Stage)
	assert.Equal(t, realtime.EventAppointmentDeleted, e.bus.types()[1])
}

func TestListEnrichesNames(t *testing.T) {
	e := newEnv()
	c := e.client(t, companyA, models.StageNovo)
	p := e.property(t, companyA)
	_, err := e.svc.Create(context.Background(), companyA, "", CreateInput{ClientID: c.ID, PropertyID: &p.ID, Type: models.AppointmentVisita, ScheduledAt: at(1)})
	require.NoError(t, err)

	list, err := e.svc.List(context.Background(), companyA, storage.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.Name, list[0].ClientName)
	require.NotNil(t, list[0].PropertyTitle)
	assert.Equal(t, "Casa Jardim", *list[0].PropertyTitle)

	other, err := e.svc.List(context.Background(), companyB, storage.AppointmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}
