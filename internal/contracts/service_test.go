package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type fixture struct {
	store    *storage.MemStorage
	svc      *Service
	property *models.Property
	client   *models.Client
}

func setup(t *testing.T, status models.PropertyStatus) fixture {
	t.Helper()
	store := storage.NewMemStorage()
	ctx := context.Background()

	p := &models.Property{CompanyID: "company-a", Title: "Apto Centro", Type: models.PropertyApartamento, Status: status, Price: decimal.NewFromInt(350000), Address: "Rua A, 1"}
	require.NoError(t, store.CreateProperty(ctx, p))
	c := &models.Client{CompanyID: "company-a", Name: "Maria", Email: "maria@example.com", Phone: "11", Type: models.ClientLocatario, Stage: models.StageNovo}
	require.NoError(t, store.CreateClient(ctx, c))

	return fixture{store: store, svc: NewService(store), property: p, client: c}
}

func (f fixture) contract(typ models.ContractType) *models.Contract {
	return &models.Contract{
		CompanyID:  "company-a",
		Type:       typ,
		PropertyID: f.property.ID,
		ClientID:   f.client.ID,
		Value:      decimal.NewFromInt(2500),
		StartDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateFlipsPropertyStatus(t *testing.T) {
	cases := []struct {
		typ  models.ContractType
		from models.PropertyStatus
		want models.PropertyStatus
	}{
		{models.ContractLocacao, models.PropertyDisponivel, models.PropertyAlugado},
		{models.ContractVenda, models.PropertyDisponivel, models.PropertyVendido},
		// no precondition on the current status
		{models.ContractLocacao, models.PropertyVendido, models.PropertyAlugado},
		{models.ContractVenda, models.PropertyManutencao, models.PropertyVendido},
	}
	for _, tc := range cases {
		t.Run(string(tc.typ)+"/"+string(tc.from), func(t *testing.T) {
			f := setup(t, tc.from)
			ctx := context.Background()
			c := f.contract(tc.typ)

			require.NoError(t, f.svc.Create(ctx, "user-1", c))
			assert.NotEmpty(t, c.ID)
			assert.Equal(t, models.ContractAtivo, c.Status)

			p, err := f.store.GetProperty(ctx, "company-a", f.property.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Status)

			acts, err := f.store.ListActivities(ctx, "company-a", 10)
			require.NoError(t, err)
			require.Len(t, acts, 1)
			assert.Equal(t, models.ActivityContractSigned, acts[0].Type)
			assert.Equal(t, "Novo contrato assinado", acts[0].Title)
			assert.Equal(t, "Contrato de "+string(tc.typ)+" foi assinado", *acts[0].Description)
			assert.Equal(t, c.ID, *acts[0].EntityID)
		})
	}
}

func TestCreateRejectsForeignReferences(t *testing.T) {
	f := setup(t, models.PropertyDisponivel)
	ctx := context.Background()

	c := f.contract(models.ContractVenda)
	c.CompanyID = "company-b"
	err := f.svc.Create(ctx, "", c)

	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)

	list, err := f.store.ListContracts(ctx, "company-b")
	require.NoError(t, err)
	assert.Empty(t, list)

	p, err := f.store.GetProperty(ctx, "company-a", f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyDisponivel, p.Status)
}

func TestUpdateRevalidatesMovedReferences(t *testing.T) {
	f := setup(t, models.PropertyDisponivel)
	ctx := context.Background()
	c := f.contract(models.ContractLocacao)
	require.NoError(t, f.svc.Create(ctx, "", c))

	updated, err := f.svc.Update(ctx, "company-a", c.ID, func(ct *models.Contract) error {
		ct.Status = models.ContractRenovado
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContractRenovado, updated.Status)

	_, err = f.svc.Update(ctx, "company-a", c.ID, func(ct *models.Contract) error {
		ct.ClientID = "missing"
		return nil
	})
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)

	got, err := f.store.GetContract(ctx, "company-a", c.ID)
	require.NoError(t, err)
	assert.Equal(t, f.client.ID, got.ClientID)

	_, err = f.svc.Update(ctx, "company-b", c.ID, func(*models.Contract) error { return nil })
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListJoinsPropertyAndClient(t *testing.T) {
	f := setup(t, models.PropertyDisponivel)
	ctx := context.Background()
	c := f.contract(models.ContractLocacao)
	require.NoError(t, f.svc.Create(ctx, "", c))

	list, err := f.svc.List(ctx, "company-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Property)
	require.NotNil(t, list[0].Client)
	assert.Equal(t, "Apto Centro", list[0].Property.Title)
	assert.Equal(t, models.PropertyAlugado, list[0].Property.Status)
	assert.Equal(t, "Maria", list[0].Client.Name)

	view, err := f.svc.Get(ctx, "company-a", c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, view.ID)

	_, err = f.svc.Get(ctx, "company-b", c.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRequestValidation(t *testing.T) {
	neg := decimal.NewFromInt(-1)
	_, err := (&CreateContractRequest{Value: &neg}).toModel("company-a")
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)

	fields := map[string]bool{}
	for _, fe := range ve.Fields {
		fields[fe.Field] = true
	}
	for _, want := range []string{"type", "propertyId", "clientId", "value", "startDate"} {
		assert.True(t, fields[want], want)
	}
}
