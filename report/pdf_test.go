package report

import (
	"bytes"
	"testing"
	"time"

	"tpv/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDaily() Daily {
	return Daily{
		Date: time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC),
		Tables: []model.ClosedTable{
			{Number: 4, Total: 15, PaymentMethod: model.PaymentBreakdown{Cash: 10, Card: 5}},
			{Number: 7, Total: 20, PaymentMethod: model.PaymentBreakdown{Cash: 20, Card: 0}},
		},
		Total: 35,
	}
}

func TestDailyLines(t *testing.T) {
	d := sampleDaily()

	assert.Equal(t, "Informe Diario", d.Title())
	assert.Equal(t, "Fecha: 16/10/2026", d.DateLine())
	assert.Equal(t, "Total del Día: 35.00 €", d.TotalLine())

	blocks := d.TableLines()
	require.Len(t, blocks, 2)
	assert.Equal(t, []string{
		"Mesa 4:",
		"  Total: 15.00 €",
		"  Método de Pago: Efectivo - 10.00 €, Tarjeta - 5.00 €",
	}, blocks[0])
	assert.Equal(t, "Mesa 7:", blocks[1][0])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "informe-diario-2026-10-16.pdf", Filename(sampleDaily().Date))
}

func TestDailyPDF(t *testing.T) {
	out, err := DailyPDF(sampleDaily())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestDailyPDFWithoutTables(t *testing.T) {
	out, err := DailyPDF(Daily{Date: time.Now()})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
