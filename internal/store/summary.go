package store

import (
	"context"
	"strings"

	"github.com/ghosh9691/mmelParser/internal/mmel"
)

// Summary aggregates the stored entries of one document family.
type Summary struct {
	Family          string         `json:"family"`
	Documents       int            `json:"documents"`
	Entries         int            `json:"entries"`
	ByCategory      map[string]int `json:"by_category"`
	NoCategory      int            `json:"no_category"`
	WithMaintenance int            `json:"with_maintenance"`
	WithOperational int            `json:"with_operational"`
	WithRemarks     int            `json:"with_remarks"`
	UniqueItems     int            `json:"unique_items"`
}

const familyJoin = ` FROM entries e JOIN documents d ON d.id = e.document_id WHERE UPPER(TRIM(d.family)) = ?`

// Summary computes statistics over every stored document of family.
func (s *Store) Summary(ctx context.Context, family string) (*Summary, error) {
	fam := normalizeFamily(family)
	sum := &Summary{Family: fam, ByCategory: make(map[string]int, len(mmel.Categories))}
	for _, c := range mmel.Categories {
		sum.ByCategory[c] = 0
	}

	counts := []struct {
		dst   *int
		query string
	}{
		{&sum.Documents, "SELECT COUNT(*) FROM documents d WHERE UPPER(TRIM(d.family)) = ?"},
		{&sum.Entries, "SELECT COUNT(*)" + familyJoin},
		{&sum.UniqueItems, "SELECT COUNT(DISTINCT e.item_number)" + familyJoin},
		{&sum.WithRemarks, "SELECT COUNT(*)" + familyJoin + " AND e.remarks_summary <> ''"},
		{&sum.WithMaintenance, "SELECT COUNT(*)" + familyJoin +
			" AND EXISTS (SELECT 1 FROM maintenance_procedures m WHERE m.entry_id = e.id)"},
		{&sum.WithOperational, "SELECT COUNT(*)" + familyJoin +
			" AND EXISTS (SELECT 1 FROM operational_procedures o WHERE o.entry_id = e.id)"},
	}
	for _, c := range counts {
		if err := s.db.GetContext(ctx, c.dst, s.db.Rebind(c.query), fam); err != nil {
			return nil, wrap("summary", err)
		}
	}

	var byCat []struct {
		Category string `db:"category"`
		N        int    `db:"n"`
	}
	err := s.db.SelectContext(ctx, &byCat, s.db.Rebind(
		"SELECT e.deferral_category AS category, COUNT(*) AS n"+familyJoin+" GROUP BY e.deferral_category"), fam)
	if err != nil {
		return nil, wrap("summary by category", err)
	}
	for _, row := range byCat {
		if row.Category == "" {
			sum.NoCategory = row.N
			continue
		}
		sum.ByCategory[row.Category] = row.N
	}
	return sum, nil
}

func normalizeFamily(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
