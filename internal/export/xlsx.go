package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ghosh9691/mmelParser/internal/mmel"
)

const (
	sheetEntries = "Entries"
	sheetSummary = "Summary"
)

// XLSX writes a workbook with an "Entries" sheet holding the same
// columns as CSV and a "Summary" sheet of counts.
func XLSX(w io.Writer, entries []mmel.Entry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetEntries); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, sheetEntries, 1, toAny(columns)); err != nil {
		return err
	}
	for i := range entries {
		e := &entries[i]
		cells := toAny(row(e))
		// Keep numeric columns numeric.
		cells[3], cells[4], cells[7], cells[8] = e.Occurrence, e.Line, e.QuantityInstalled, e.QuantityRequired
		if err := setRow(f, sheetEntries, i+2, cells); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheetEntries, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	st := Summarize(entries)
	rows := [][]any{
		{"Metric", "Value"},
		{"Entries", st.Entries},
		{"Unique item numbers", st.UniqueItems},
	}
	for _, c := range mmel.Categories {
		rows = append(rows, []any{"Category " + c, st.ByCategory[c]})
	}
	rows = append(rows,
		[]any{"No category", st.NoCategory},
		[]any{"With maintenance procedures", st.WithMaintenance},
		[]any{"With operational procedures", st.WithOperational},
		[]any{"With remarks", st.WithRemarks},
	)
	for i, r := range rows {
		if err := setRow(f, sheetSummary, i+1, r); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, n int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("set %s row %d: %w", sheet, n, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
