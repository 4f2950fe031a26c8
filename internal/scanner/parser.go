// Package scanner reconstructs equipment-list entries from the flat line
// sequence of one document.
//
// A Parser picks a dialect for the caller's document-family label and runs
// it over the lines. Each scan owns its ParseContext, so one Parser may be
// used from many goroutines.
package scanner

import (
	"log/slog"
	"time"

	"github.com/ghosh9691/mmelParser/internal/mmel"
)

// Result is the output of one parse.
type Result struct {
	Family  string       `json:"family"`
	Dialect string       `json:"dialect"`
	Entries []mmel.Entry `json:"entries"`
	Quality mmel.Quality `json:"quality"`
}

// Parser is the entry point of the parsing core.
type Parser struct {
	registry *Registry
	log      *slog.Logger
}

// New returns a parser over reg. A nil registry uses the built-in table.
func New(reg *Registry, log *slog.Logger) *Parser {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Parser{registry: reg, log: log}
}

// Registry returns the family table the parser dispatches on.
func (p *Parser) Registry() *Registry {
	return p.registry
}

// Parse runs the dialect registered for family over lines. The only error
// is an unrecognized family, which wraps ErrUnknownFamily.
func (p *Parser) Parse(lines []string, family string) (*Result, error) {
	s, err := p.registry.Lookup(family)
	if err != nil {
		return nil, err
	}

	log := p.log.With("family", family)
	start := time.Now()
	entries, quality := s.Scan(lines, family, log)

	log.Info("parsed document",
		"dialect", s.Name(),
		"lines", len(lines),
		"entries", len(entries),
		"missing_category", quality.MissingCategory,
		"missing_title", quality.MissingTitle,
		"missing_quantity", quality.MissingQuantity,
		"missing_section", quality.MissingSection,
		"combined_misses", quality.CombinedMisses,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Family:  family,
		Dialect: s.Name(),
		Entries: entries,
		Quality: quality,
	}, nil
}
