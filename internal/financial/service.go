// Package financial records receitas and despesas and summarizes them per
// month.
package financial

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oarthurdev/vortex-gestao/internal/activity"
	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type Service struct {
	store storage.Storage
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

type ContractRef struct {
	ID     string                `json:"id"`
	Type   models.ContractType   `json:"type"`
	Status models.ContractStatus `json:"status"`
	Value  decimal.Decimal       `json:"value"`
}

// View is a transaction with the contract it settles, if any.
type View struct {
	models.Transaction
	ContractSummary *ContractRef `json:"contract"`
}

func checkContract(ctx context.Context, tx storage.Storage, companyID string, contractID *string) error {
	if contractID == nil {
		return nil
	}
	if _, err := tx.GetContract(ctx, companyID, *contractID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperror.Invalid("contractId", "contrato não encontrado")
		}
		return err
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID string, t *models.Transaction) error {
	if t.Status == "" {
		t.Status = models.TransactionPendente
	}
	return s.store.Transact(ctx, func(tx storage.Storage) error {
		if err := checkContract(ctx, tx, t.CompanyID, t.ContractID); err != nil {
			return err
		}
		if err := tx.CreateTransaction(ctx, t); err != nil {
			return err
		}
		return activity.Record(ctx, tx, activity.Entry{
			CompanyID:   t.CompanyID,
			UserID:      userID,
			Type:        models.ActivityTransactionCreated,
			Title:       "Transação registrada",
			Description: fmt.Sprintf("%s de R$ %s: %s", t.Type, t.Amount.StringFixed(2), t.Description),
			EntityType:  "transaction",
			EntityID:    t.ID,
		})
	})
}

func (s *Service) Update(ctx context.Context, companyID, id string, mutate func(*models.Transaction) error) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.store.Transact(ctx, func(tx storage.Storage) error {
		var err error
		updated, err = tx.UpdateTransaction(ctx, companyID, id, mutate)
		if err != nil {
			return err
		}
		return checkContract(ctx, tx, companyID, updated.ContractID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) List(ctx context.Context, companyID string) ([]View, error) {
	list, err := s.store.ListTransactions(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, companyID, list)
}

func (s *Service) Get(ctx context.Context, companyID, id string) (*View, error) {
	t, err := s.store.GetTransaction(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	views, err := s.join(ctx, companyID, []models.Transaction{*t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) join(ctx context.Context, companyID string, list []models.Transaction) ([]View, error) {
	out := make([]View, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}
	contracts, err := s.store.ListContracts(ctx, companyID)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]*ContractRef, len(contracts))
	for _, c := range contracts {
		refs[c.ID] = &ContractRef{ID: c.ID, Type: c.Type, Status: c.Status, Value: c.Value}
	}
	for _, t := range list {
		v := View{Transaction: t}
		if t.ContractID != nil {
			v.ContractSummary = refs[*t.ContractID]
		}
		out = append(out, v)
	}
	return out, nil
}

// -------------------------
// Monthly summary
// -------------------------

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type Block struct {
	Items []CategoryTotal `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type MonthlySummary struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Revenue   Block           `json:"revenue"`
	Expenses  Block           `json:"expenses"`
	NetProfit decimal.Decimal `json:"netProfit"`
	Pending   decimal.Decimal `json:"pending"`
}

// effectiveDate is the paid date for settled rows and the due date for the
// rest.
func effectiveDate(t *models.Transaction) time.Time {
	if t.Status == models.TransactionPago && t.PaidDate != nil {
		return *t.PaidDate
	}
	return t.DueDate
}

func block(byCategory map[string]decimal.Decimal) Block {
	b := Block{Items: make([]CategoryTotal, 0, len(byCategory)), Total: decimal.Zero}
	for cat, total := range byCategory {
		b.Items = append(b.Items, CategoryTotal{Category: cat, Total: total})
		b.Total = b.Total.Add(total)
	}
	sort.Slice(b.Items, func(i, j int) bool { return b.Items[i].Category < b.Items[j].Category })
	return b
}

// Summarize totals paid receitas and despesas of the month by category.
// Unpaid rows due in the month are reported as Pending (receitas minus
// despesas).
func Summarize(list []models.Transaction, year int, month time.Month) MonthlySummary {
	revenue := map[string]decimal.Decimal{}
	expenses := map[string]decimal.Decimal{}
	pending := decimal.Zero

	for i := range list {
		t := &list[i]
		d := effectiveDate(t)
		if d.Year() != year || d.Month() != month {
			continue
		}
		if t.Status != models.TransactionPago {
			if t.Type == models.TransactionReceita {
				pending = pending.Add(t.Amount)
			} else {
				pending = pending.Sub(t.Amount)
			}
			continue
		}
		switch t.Type {
		case models.TransactionReceita:
			revenue[t.Category] = revenue[t.Category].Add(t.Amount)
		case models.TransactionDespesa:
			expenses[t.Category] = expenses[t.Category].Add(t.Amount)
		}
	}

	s := MonthlySummary{
		Year:     year,
		Month:    int(month),
		Revenue:  block(revenue),
		Expenses: block(expenses),
		Pending:  pending,
	}
	s.NetProfit = s.Revenue.Total.Sub(s.Expenses.Total)
	return s
}

func (s *Service) Monthly(ctx context.Context, companyID string, year int, month time.Month) (MonthlySummary, error) {
	list, err := s.store.ListTransactions(ctx, companyID)
	if err != nil {
		return MonthlySummary{}, err
	}
	return Summarize(list, year, month), nil
}
