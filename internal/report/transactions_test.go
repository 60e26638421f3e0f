package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/oarthurdev/vortex-gestao/internal/models"
)

func TestTransactionsWorkbook(t *testing.T) {
	due := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	paid := due.AddDate(0, 0, 2)
	contract := "contract-1"
	list := []models.Transaction{
		{Type: models.TransactionReceita, Category: "aluguel", Description: "Aluguel maio", Amount: decimal.RequireFromString("2500.50"), DueDate: due, PaidDate: &paid, Status: models.TransactionPago, ContractID: &contract},
		{Type: models.TransactionDespesa, Category: "manutencao", Description: "Pintura", Amount: decimal.NewFromInt(500), DueDate: due, Status: models.TransactionPago},
		{Type: models.TransactionReceita, Category: "venda", Description: "Sinal", Amount: decimal.NewFromInt(1000), DueDate: due, Status: models.TransactionPendente},
	}

	data, err := Transactions(list)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetTransactions, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetTransactions)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, transactionHeader, rows[0])
	assert.Equal(t, "receita", rows[1][0])
	assert.Equal(t, "2500.5", rows[1][3])
	assert.Equal(t, "12/05/2024", rows[1][5])
	assert.Equal(t, "contract-1", rows[1][7])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 5)
	assert.Equal(t, []string{"pago", "2500.5", "500", "2000.5"}, summary[2])
	assert.Equal(t, []string{"total", "3500.5", "500", "3000.5"}, summary[4])
}

func TestTransactionsWorkbookEmpty(t *testing.T) {
	data, err := Transactions(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetTransactions)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
