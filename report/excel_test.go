package report

import (
	"bytes"
	"testing"
	"time"

	"tpv/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDailyCashSheet(t *testing.T) {
	records := []model.DailyCash{
		{Date: time.Date(2026, 10, 14, 23, 0, 0, 0, time.UTC), Total: 120.5, Income: 120.5},
		{Date: time.Date(2026, 10, 15, 23, 0, 0, 0, time.UTC), Total: 80, Income: 80},
	}

	buf, err := DailyCashSheet(records)
	require.NoError(t, err)

	xl, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows(cashSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Fecha", "Total", "Ingresos"}, rows[0])
	assert.Equal(t, "2026-10-14", rows[1][0])
	assert.Equal(t, "120.5", rows[1][1])
	assert.Equal(t, []string{"Total", "200.5", "200.5"}, rows[3])
}

func productWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadProductRows(t *testing.T) {
	buf := productWorkbook(t, [][]any{
		{"nombre", "tipo", "precio", "stock"},
		{"Croquetas", "tapaRacion", "7,50", "40"},
		{"Agua", "bebida", "1.8"},
		{"", "plato", "9", "1"},
		{"Tarta", "postre", "gratis", "3"},
		{"Pan"},
		{"Caña", "bebida", "2", "-1"},
	})

	rows, skipped, err := ReadProductRows(buf)
	require.NoError(t, err)

	assert.Equal(t, []ProductRow{
		{Name: "Croquetas", Kind: "tapaRacion", Price: 7.5, Stock: 40},
		{Name: "Agua", Kind: "bebida", Price: 1.8, Stock: 0},
	}, rows)
	assert.Equal(t, []SkippedRow{
		{Row: 4, Reason: "sin nombre"},
		{Row: 5, Reason: "precio no válido"},
		{Row: 6, Reason: "fila incompleta"},
		{Row: 7, Reason: "stock no válido"},
	}, skipped)
}

func TestReadProductRowsRejectsGarbage(t *testing.T) {
	_, _, err := ReadProductRows(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}
