package report

import (
	"bytes"
	"fmt"
	"time"

	"tpv/model"

	"github.com/go-pdf/fpdf"
)

// Daily is the content of the report sent when the register closes.
type Daily struct {
	Date   time.Time
	Tables []model.ClosedTable
	Total  float64
}

func (d Daily) Title() string { return "Informe Diario" }

func (d Daily) DateLine() string {
	return "Fecha: " + d.Date.Format("02/01/2006")
}

// TableLines returns the three lines printed for each closed table.
func (d Daily) TableLines() [][]string {
	blocks := make([][]string, 0, len(d.Tables))
	for _, t := range d.Tables {
		blocks = append(blocks, []string{
			fmt.Sprintf("Mesa %d:", t.Number),
			fmt.Sprintf("  Total: %.2f €", t.Total),
			fmt.Sprintf("  Método de Pago: Efectivo - %.2f €, Tarjeta - %.2f €", t.PaymentMethod.Cash, t.PaymentMethod.Card),
		})
	}
	return blocks
}

func (d Daily) TotalLine() string {
	return fmt.Sprintf("Total del Día: %.2f €", d.Total)
}

// Filename is the attachment name, keyed by the ISO date of the close.
func Filename(date time.Time) string {
	return "informe-diario-" + date.Format("2006-01-02") + ".pdf"
}

// DailyPDF renders the report. Core fonts are cp1252, so text goes through the
// translator to keep accents and the euro sign.
func DailyPDF(d Daily) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(d.Title(), true)
	pdf.SetCreationDate(d.Date)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr(d.Title()), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, tr(d.DateLine()), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	for _, block := range d.TableLines() {
		for _, line := range block {
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(d.TotalLine()), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
