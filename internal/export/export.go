// Package export writes transaction history to spreadsheets.
package export

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/inovacc/bidmatch/internal/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet transactions are written to
const SheetName = "Transactions"

var headers = []string{
	"Date",
	"Reference",
	"Description",
	"Amount",
	"Currency",
	"Status",
}

// TransactionsXLSX writes txs to w as an .xlsx workbook, one row per
// transaction in the order given.
func TransactionsXLSX(w io.Writer, txs []model.Transaction, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	f := excelize.NewFile()

	defer func() {
		_ = f.Close()
	}()

	// rename the default sheet rather than leaving an empty Sheet1
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(SheetName, 1, 1, bold)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	for i, tx := range txs {
		row := i + 2

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		if tx.CreatedAt.IsZero() {
			write(1, "")
		} else {
			write(1, tx.CreatedAt.Format(model.DateLayout))
		}

		write(2, tx.ID)
		write(3, tx.Description)
		write(4, tx.Amount)
		write(5, tx.Currency)
		write(6, tx.Status)

		cell, _ := excelize.CoordinatesToCellName(4, row)
		_ = f.SetCellStyle(SheetName, cell, cell, money)
	}

	_ = f.SetColWidth(SheetName, "A", "B", 14)
	_ = f.SetColWidth(SheetName, "C", "C", 48)
	_ = f.SetColWidth(SheetName, "D", "F", 14)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("transactions exported", slog.Int("rows", len(txs)))

	return nil
}
