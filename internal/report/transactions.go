// Package report exports company data as spreadsheets.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const (
	SheetTransactions = "Transações"
	SheetSummary      = "Resumo"
)

var transactionHeader = []string{
	"Tipo", "Categoria", "Descrição", "Valor", "Vencimento", "Pagamento", "Status", "Contrato",
}

var columnWidths = []float64{12, 18, 40, 14, 14, 14, 12, 38}

var summaryStatuses = []models.TransactionStatus{
	models.TransactionPendente,
	models.TransactionPago,
	models.TransactionVencido,
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("header style %s: %w", cell, err)
		}
	}
	return nil
}

func dateCell(t *time.Time) any {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

// Transactions builds the workbook: one row per transaction plus a summary
// sheet with receita and despesa totals per status.
func Transactions(list []models.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for _, name := range []string{SheetTransactions, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(SheetTransactions)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := writeHeader(f, SheetTransactions, transactionHeader, headerStyle); err != nil {
		return nil, err
	}
	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetTransactions, col, col, w); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	receita := map[models.TransactionStatus]decimal.Decimal{}
	despesa := map[models.TransactionStatus]decimal.Decimal{}

	for i, t := range list {
		row := i + 2
		contract := ""
		if t.ContractID != nil {
			contract = *t.ContractID
		}
		values := []any{
			string(t.Type), t.Category, t.Description, t.Amount.InexactFloat64(),
			dateCell(&t.DueDate), dateCell(t.PaidDate), string(t.Status), contract,
		}
		for col, v := range values {
			if err := setCell(f, SheetTransactions, col+1, row, v); err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", row, col+1, err)
			}
		}

		switch t.Type {
		case models.TransactionReceita:
			receita[t.Status] = receita[t.Status].Add(t.Amount)
		case models.TransactionDespesa:
			despesa[t.Status] = despesa[t.Status].Add(t.Amount)
		}
	}

	if err := f.SetPanes(SheetTransactions, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze panes: %w", err)
	}

	if err := writeHeader(f, SheetSummary, []string{"Status", "Receitas", "Despesas", "Saldo"}, headerStyle); err != nil {
		return nil, err
	}
	totalIn, totalOut := decimal.Zero, decimal.Zero
	row := 2
	for _, st := range summaryStatuses {
		in, out := receita[st], despesa[st]
		totalIn, totalOut = totalIn.Add(in), totalOut.Add(out)
		for col, v := range []any{string(st), in.InexactFloat64(), out.InexactFloat64(), in.Sub(out).InexactFloat64()} {
			if err := setCell(f, SheetSummary, col+1, row, v); err != nil {
				return nil, err
			}
		}
		row++
	}
	for col, v := range []any{"total", totalIn.InexactFloat64(), totalOut.InexactFloat64(), totalIn.Sub(totalOut).InexactFloat64()} {
		if err := setCell(f, SheetSummary, col+1, row, v); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// GET /api/reports/transactions.xlsx
func TransactionsHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := store.ListTransactions(c.UserContext(), auth.CompanyID(c))
		if err != nil {
			return apperror.Wrap(err, "Dados não encontrados", "Erro ao gerar relatório")
		}

		data, err := Transactions(list)
		if err != nil {
			return apperror.Wrap(err, "Dados não encontrados", "Erro ao gerar relatório")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Attachment(fmt.Sprintf("transacoes-%s.xlsx", time.Now().Format("2006-01-02")))
		return c.Send(data)
	}
}
