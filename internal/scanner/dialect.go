package scanner

import (
	"log/slog"

	"github.com/ghosh9691/mmelParser/internal/classify"
	"github.com/ghosh9691/mmelParser/internal/mmel"
)

// Scanner turns the line sequence of one document into entries.
type Scanner interface {
	Name() string
	Scan(lines []string, family string, log *slog.Logger) ([]mmel.Entry, mmel.Quality)
}

// Dialect is a Scanner parameterized by a line grammar and a field-order
// policy. All dialects share one scan loop.
type Dialect struct {
	name    string
	grammar *classify.Grammar
	policy  Policy
}

// NewDialect builds a dialect from a grammar and policy.
func NewDialect(name string, g *classify.Grammar, p Policy) *Dialect {
	return &Dialect{name: name, grammar: g, policy: p}
}

var (
	// Linear is the one-field-per-line layout used by most families.
	Linear = NewDialect("linear", &classify.Linear, Policy{Combined: CombinedNone})

	// Tabular handles wide-body documents that emit each row as one line.
	Tabular = NewDialect("tabular", &classify.Tabular, Policy{Combined: CombinedAnchored, InlineQuantities: true})

	// Legacy handles per-section short numbering such as "31-1" or "21-12B".
	Legacy = NewDialect("legacy", &classify.Legacy, Policy{Combined: CombinedSearch, InlineQuantities: true})
)

func (d *Dialect) Name() string { return d.name }

// Grammar returns the line grammar of the dialect.
func (d *Dialect) Grammar() *classify.Grammar { return d.grammar }

// Scan walks lines once, emitting one entry per item boundary in document
// order. It never fails: field-inference misses are counted in the
// returned Quality.
func (d *Dialect) Scan(lines []string, family string, log *slog.Logger) ([]mmel.Entry, mmel.Quality) {
	if log == nil {
		log = slog.Default()
	}
	ctx := newParseContext(family, log.With("dialect", d.name))
	cur := NewCursor(lines, d.grammar)

	for !cur.Done() {
		line := cur.Line()
		tag := cur.Advance()

		switch tag.Kind {
		case classify.SectionHeader:
			ctx.Section = tag.Value
		case classify.PageFurniture:
			ctx.quality.FurnitureLines++
		case classify.ItemBoundary:
			if d.grammar.IsOutOfItem(tag.Text) {
				continue
			}
			body, furniture := cur.UntilNextBoundary()
			ctx.quality.FurnitureLines += furniture
			if tag.Rest != "" {
				body = append([]classify.Tag{inlineTag(tag.Rest)}, body...)
			}

			fields, miss := extractFields(d.policy, body)
			if miss {
				ctx.quality.CombinedMisses++
				ctx.log.Debug("combined pattern missed, scanned lines", "line", line, "item", tag.Value)
			}
			ctx.assemble(tag, line, fields)
		}
	}
	return ctx.entries, ctx.quality
}

// inlineTag classifies the text that followed an identifier on its
// boundary line. Only category and digit tokens keep their kind.
func inlineTag(text string) classify.Tag {
	tag := classify.Tag{Kind: classify.Bare, Text: text}
	switch {
	case mmel.IsCategory(text):
		tag.Kind = classify.CategoryToken
		tag.Value = text
	case classify.IsDigits(text):
		tag.Kind = classify.DigitToken
		tag.Value = text
	}
	return tag
}
