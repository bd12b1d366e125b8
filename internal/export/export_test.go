package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/inovacc/bidmatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTransactionsXLSX(t *testing.T) {
	txs := []model.Transaction{
		{ID: 501, Amount: 49.5, Currency: "USD", Status: "paid", Description: "Pro plan, monthly", CreatedAt: time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC)},
		{ID: 502, Amount: 0, Currency: "USD", Status: "refunded", Description: "Trial"},
	}

	var buf bytes.Buffer
	require.NoError(t, TransactionsXLSX(&buf, txs, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)

	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, headers, rows[0])
	assert.Equal(t, "2025-01-03", rows[1][0])
	assert.Equal(t, "501", rows[1][1])
	assert.Equal(t, "Pro plan, monthly", rows[1][2])
	assert.Equal(t, "paid", rows[1][5])
	assert.Equal(t, "", rows[2][0], "missing date stays blank")

	amount, err := f.GetCellValue(SheetName, "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "49.5", amount)
}

func TestTransactionsXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TransactionsXLSX(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)

	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
