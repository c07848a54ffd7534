package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tpv/model"

	"github.com/xuri/excelize/v2"
)

const cashSheet = "Caja diaria"

// DailyCashSheet writes the daily cash records as a workbook with a totals row.
func DailyCashSheet(records []model.DailyCash) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", cashSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(cashSheet, "A1", &[]any{"Fecha", "Total", "Ingresos"}); err != nil {
		return nil, err
	}

	var total, income float64
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(cashSheet, cell, &[]any{r.Date.Format("2006-01-02"), r.Total, r.Income}); err != nil {
			return nil, err
		}
		total += r.Total
		income += r.Income
	}

	cell, err := excelize.CoordinatesToCellName(1, len(records)+2)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(cashSheet, cell, &[]any{"Total", total, income}); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

// ProductRow is one line of a product import sheet: nombre, tipo, precio, stock.
type ProductRow struct {
	Name  string
	Kind  string
	Price float64
	Stock int
}

// SkippedRow explains why a sheet row was left out. Row numbers are 1-based as
// shown by spreadsheet software.
type SkippedRow struct {
	Row    int    `json:"fila"`
	Reason string `json:"motivo"`
}

// ReadProductRows parses the first sheet of a workbook, skipping the header row.
// Rows that cannot be parsed are reported and skipped.
func ReadProductRows(r io.Reader) ([]ProductRow, []SkippedRow, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer xl.Close()

	rows, err := xl.GetRows(xl.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, nil
	}

	var (
		products []ProductRow
		skipped  []SkippedRow
	)
	for i, row := range rows[1:] {
		n := i + 2
		if len(row) < 3 {
			skipped = append(skipped, SkippedRow{Row: n, Reason: "fila incompleta"})
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			skipped = append(skipped, SkippedRow{Row: n, Reason: "sin nombre"})
			continue
		}
		price, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(row[2]), ",", ".", 1), 64)
		if err != nil || price < 0 {
			skipped = append(skipped, SkippedRow{Row: n, Reason: "precio no válido"})
			continue
		}
		stock := 0
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			stock, err = strconv.Atoi(strings.TrimSpace(row[3]))
			if err != nil || stock < 0 {
				skipped = append(skipped, SkippedRow{Row: n, Reason: "stock no válido"})
				continue
			}
		}
		products = append(products, ProductRow{
			Name:  name,
			Kind:  strings.TrimSpace(row[1]),
			Price: price,
			Stock: stock,
		})
	}
	return products, skipped, nil
}
