// Package dashboard computes the headline numbers and the revenue chart
// shown on the home screen.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type KPIs struct {
	ActiveProperties int `json:"activeProperties"`
	ActiveContracts  int `json:"activeContracts"`
	MonthlyLeads     int `json:"monthlyLeads"`
	// MonthlyRevenue is the display string ("R$ 12.5K"); the exact figure
	// is MonthlyRevenueValue.
	MonthlyRevenue      string          `json:"monthlyRevenue"`
	MonthlyRevenueValue decimal.Decimal `json:"monthlyRevenueValue"`
}

func sameMonth(t, now time.Time) bool {
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}

// FormatThousands renders an amount the way the dashboard card shows it.
func FormatThousands(v decimal.Decimal) string {
	return fmt.Sprintf("R$ %sK", v.Div(decimal.NewFromInt(1000)).StringFixed(1))
}

// Compute derives the KPIs for the calendar month containing now.
func Compute(props []models.Property, contracts []models.Contract, clients []models.Client, txs []models.Transaction, now time.Time) KPIs {
	var k KPIs
	for _, p := range props {
		if p.Status == models.PropertyDisponivel || p.Status == models.PropertyAlugado {
			k.ActiveProperties++
		}
	}
	for _, c := range contracts {
		if c.Status == models.ContractAtivo {
			k.ActiveContracts++
		}
	}
	for _, c := range clients {
		if c.Type == models.ClientLead && sameMonth(c.CreatedAt, now) {
			k.MonthlyLeads++
		}
	}
	revenue := decimal.Zero
	for _, t := range txs {
		if t.Type == models.TransactionReceita && t.Status == models.TransactionPago &&
			t.PaidDate != nil && sameMonth(*t.PaidDate, now) {
			revenue = revenue.Add(t.Amount)
		}
	}
	k.MonthlyRevenueValue = revenue
	k.MonthlyRevenue = FormatThousands(revenue)
	return k
}

func Load(ctx context.Context, store storage.Storage, companyID string, now time.Time) (KPIs, error) {
	props, err := store.ListProperties(ctx, companyID)
	if err != nil {
		return KPIs{}, err
	}
	contracts, err := store.ListContracts(ctx, companyID)
	if err != nil {
		return KPIs{}, err
	}
	clients, err := store.ListClients(ctx, companyID)
	if err != nil {
		return KPIs{}, err
	}
	txs, err := store.ListTransactions(ctx, companyID)
	if err != nil {
		return KPIs{}, err
	}
	return Compute(props, contracts, clients, txs, now), nil
}

// GET /api/kpis
func KPIHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		k, err := Load(c.UserContext(), store, auth.CompanyID(c), time.Now())
		if err != nil {
			return apperror.Wrap(err, "Dados não encontrados", "Erro ao buscar KPIs")
		}
		return c.JSON(k)
	}
}
