// Package export writes parsed entries as JSON, CSV or XLSX.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ghosh9691/mmelParser/internal/mmel"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name. An empty name selects JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the HTTP media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Write encodes entries to w in format f.
func Write(w io.Writer, f Format, entries []mmel.Entry) error {
	switch f {
	case FormatCSV:
		return CSV(w, entries, false)
	case FormatXLSX:
		return XLSX(w, entries)
	default:
		return JSON(w, entries)
	}
}

// JSON writes entries as an indented JSON array. A nil slice is written
// as [].
func JSON(w io.Writer, entries []mmel.Entry) error {
	if entries == nil {
		entries = []mmel.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Stats summarizes a list of entries.
type Stats struct {
	Entries         int
	ByCategory      map[string]int
	NoCategory      int
	WithMaintenance int
	WithOperational int
	WithRemarks     int
	UniqueItems     int
}

// Summarize computes Stats over entries.
func Summarize(entries []mmel.Entry) Stats {
	st := Stats{Entries: len(entries), ByCategory: make(map[string]int, len(mmel.Categories))}
	for _, c := range mmel.Categories {
		st.ByCategory[c] = 0
	}
	items := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		items[e.ItemNumber] = struct{}{}
		if mmel.IsCategory(e.DeferralCategory) {
			st.ByCategory[e.DeferralCategory]++
		} else {
			st.NoCategory++
		}
		if len(e.MaintenanceProcedures) > 0 {
			st.WithMaintenance++
		}
		if len(e.OperationalProcedures) > 0 {
			st.WithOperational++
		}
		if e.RemarksSummary != "" {
			st.WithRemarks++
		}
	}
	st.UniqueItems = len(items)
	return st
}
