package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/zombor/cashclose/internal/closing"
)

const exportSheet = "Closings"

var exportHeader = []string{
	"Date", "Shift",
	"System Total", "System Cash", "System Electronic", "System Delivery",
	"Real Total", "Real Cash", "Real Electronic", "Real Delivery",
	"Expenses", "Difference", "Status",
}

func exportAmounts(r *closing.DailyReport) []decimal.Decimal {
	return []decimal.Decimal{
		r.SystemTotal, r.SystemBreakdown.Cash, r.SystemBreakdown.Electronic, r.SystemBreakdown.DeliveryApps,
		r.RealTotal, r.RealBreakdown.Cash, r.RealBreakdown.Electronic, r.RealBreakdown.DeliveryApps,
		r.Expenses, r.Difference,
	}
}

// FormatCSV renders the reports one row each under the fixed header. Fields
// are joined as is: no quoting and no trailing newline.
func FormatCSV(reports []*closing.DailyReport) string {
	var b strings.Builder
	b.WriteString(strings.Join(exportHeader, ","))
	for _, r := range reports {
		row := make([]string, 0, len(exportHeader))
		row = append(row, r.Date, r.ShiftNumber)
		for _, v := range exportAmounts(r) {
			row = append(row, v.String())
		}
		row = append(row, string(r.Status))

		b.WriteByte('\n')
		b.WriteString(strings.Join(row, ","))
	}
	return b.String()
}

// WriteCSV writes FormatCSV output to w
func WriteCSV(w io.Writer, reports []*closing.DailyReport) error {
	if _, err := io.WriteString(w, FormatCSV(reports)); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the same table as FormatCSV as a workbook with numeric cells
func WriteXLSX(w io.Writer, reports []*closing.DailyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range reports {
		row := []interface{}{r.Date, r.ShiftNumber}
		for _, v := range exportAmounts(r) {
			row = append(row, v.InexactFloat64())
		}
		row = append(row, string(r.Status))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("locating row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}
