package scanner

import (
	"log/slog"
	"strings"

	"github.com/ghosh9691/mmelParser/internal/classify"
	"github.com/ghosh9691/mmelParser/internal/mmel"
	"github.com/ghosh9691/mmelParser/internal/remarks"
)

// ParseContext is the mutable state of one dialect scan. It is created
// fresh for every document and must not be shared between scans.
type ParseContext struct {
	Family  string
	Section string // code of the most recent section header

	entries     []mmel.Entry
	occurrences map[string]int
	quality     mmel.Quality
	log         *slog.Logger
}

func newParseContext(family string, log *slog.Logger) *ParseContext {
	return &ParseContext{
		Family:      family,
		entries:     []mmel.Entry{},
		occurrences: make(map[string]int),
		log:         log,
	}
}

// itemNumber rebuilds the canonical identifier for a boundary token.
func (c *ParseContext) itemNumber(tag classify.Tag, line int) string {
	b := tag.Boundary
	if b == nil || b.Qualified {
		return tag.Value
	}

	section := c.Section
	if tag.Prefix != "" {
		switch {
		case section == "":
			section = tag.Prefix
		case section != tag.Prefix:
			c.quality.SectionMismatch++
			c.log.Debug("item prefix disagrees with section",
				"line", line, "item", tag.Value, "section", c.Section)
		}
	}
	if section == "" {
		return tag.Suffix
	}
	return section + b.Join + tag.Suffix
}

// assemble merges scanned fields and classified remarks into an Entry and
// appends it. Appended entries are never modified again.
func (c *ParseContext) assemble(tag classify.Tag, line int, f Fields) {
	item := c.itemNumber(tag, line)
	c.occurrences[item]++

	r := remarks.Classify(f.Remarks)
	entry := mmel.Entry{
		DocumentFamily:        c.Family,
		SectionCode:           c.Section,
		ItemNumber:            item,
		Occurrence:            c.occurrences[item],
		Line:                  line,
		Title:                 cleanTitle(strings.Join(f.Title, " ")),
		DeferralCategory:      f.Category,
		QuantityInstalled:     f.QuantityInstalled,
		QuantityRequired:      f.QuantityRequired,
		RemarksSummary:        r.Summary,
		RemarksSteps:          r.Steps,
		MaintenanceProcedures: r.Maintenance,
		OperationalProcedures: r.Operational,
	}

	c.quality.Entries++
	if entry.SectionCode == "" {
		c.quality.MissingSection++
		c.log.Warn("item before any section header", "line", line, "item", item)
	}
	if entry.DeferralCategory == "" {
		c.quality.MissingCategory++
		c.log.Debug("no deferral category found", "line", line, "item", item)
	}
	if entry.Title == "" {
		c.quality.MissingTitle++
		c.log.Debug("no title found", "line", line, "item", item)
	}
	if missing := f.MissingQuantities(); len(missing) > 0 {
		c.quality.MissingQuantity++
		c.log.Debug("quantity not found", "line", line, "item", item, "fields", missing)
	}

	c.entries = append(c.entries, entry)
}

// cleanTitle strips decorative run markers and collapses whitespace.
func cleanTitle(s string) string {
	s = strings.ReplaceAll(s, "***", "")
	return strings.Join(strings.Fields(s), " ")
}
