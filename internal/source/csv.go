package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSV handles table exports. Each record becomes one line with its
// non-empty cells joined by single spaces.
type CSV struct{}

func (p *CSV) Lines(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var buf strings.Builder
	for _, row := range records {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		buf.WriteString(strings.Join(cells, " "))
		buf.WriteByte('\n')
	}
	return SplitLines(buf.String()), nil
}
