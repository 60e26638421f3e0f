package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type ChartPoint struct {
	Label   string          `json:"label"` // bucket start, 2006-01-02
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type ChartTotals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type RevenueChart struct {
	Period      string       `json:"period"` // daily | weekly | monthly
	From        string       `json:"from"`
	To          string       `json:"to"`
	Points      []ChartPoint `json:"points"`
	GrandTotals ChartTotals  `json:"grandTotals"`
}

func defaultCount(period string) int {
	switch period {
	case "weekly":
		return 8
	case "monthly":
		return 12
	}
	return 7
}

// buckets returns count bucket starts ending with the one containing now.
func buckets(period string, count int, now time.Time) []time.Time {
	loc := now.Location()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	out := make([]time.Time, count)
	for i := 0; i < count; i++ {
		back := count - 1 - i
		switch period {
		case "weekly":
			out[i] = end.AddDate(0, 0, -7*back)
		case "monthly":
			first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			out[i] = first.AddDate(0, -back, 0)
		default:
			out[i] = end.AddDate(0, 0, -back)
		}
	}
	return out
}

func next(period string, t time.Time) time.Time {
	switch period {
	case "weekly":
		return t.AddDate(0, 0, 7)
	case "monthly":
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

// Chart buckets paid transactions by paidDate.
func Chart(txs []models.Transaction, period string, count int, now time.Time) RevenueChart {
	starts := buckets(period, count, now)
	points := make([]ChartPoint, len(starts))
	for i, s := range starts {
		points[i] = ChartPoint{Label: s.Format("2006-01-02"), Revenue: decimal.Zero, Expense: decimal.Zero}
	}
	last := next(period, starts[len(starts)-1])

	for _, t := range txs {
		if t.Status != models.TransactionPago || t.PaidDate == nil {
			continue
		}
		paid := t.PaidDate.In(now.Location())
		if paid.Before(starts[0]) || !paid.Before(last) {
			continue
		}
		i := len(starts) - 1
		for i > 0 && paid.Before(starts[i]) {
			i--
		}
		switch t.Type {
		case models.TransactionReceita:
			points[i].Revenue = points[i].Revenue.Add(t.Amount)
		case models.TransactionDespesa:
			points[i].Expense = points[i].Expense.Add(t.Amount)
		}
	}

	totals := ChartTotals{Revenue: decimal.Zero, Expense: decimal.Zero}
	for i := range points {
		points[i].Net = points[i].Revenue.Sub(points[i].Expense)
		totals.Revenue = totals.Revenue.Add(points[i].Revenue)
		totals.Expense = totals.Expense.Add(points[i].Expense)
	}
	totals.Net = totals.Revenue.Sub(totals.Expense)

	return RevenueChart{
		Period:      period,
		From:        starts[0].Format("2006-01-02"),
		To:          last.AddDate(0, 0, -1).Format("2006-01-02"),
		Points:      points,
		GrandTotals: totals,
	}
}

// GET /api/dashboard/revenue-chart?period=monthly&count=6
func RevenueChartHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := c.Query("period", "daily")
		switch period {
		case "daily", "weekly", "monthly":
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Período inválido")
		}
		count := c.QueryInt("count", defaultCount(period))
		if count <= 0 || count > 366 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantidade inválida")
		}

		txs, err := store.ListTransactions(c.UserContext(), auth.CompanyID(c))
		if err != nil {
			return apperror.Wrap(err, "Dados não encontrados", "Erro ao montar gráfico")
		}
		return c.JSON(Chart(txs, period, count, time.Now()))
	}
}
