package scanner

import "github.com/ghosh9691/mmelParser/internal/classify"

// Cursor walks the line sequence of one document, classifying lines
// against the active grammar on demand.
type Cursor struct {
	lines   []string
	grammar *classify.Grammar
	pos     int

	peeked    classify.Tag
	peekedPos int
}

// NewCursor returns a cursor positioned on the first line.
func NewCursor(lines []string, g *classify.Grammar) *Cursor {
	return &Cursor{lines: lines, grammar: g, peekedPos: -1}
}

// Done reports whether every line has been consumed.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.lines)
}

// Line returns the 1-based number of the next line.
func (c *Cursor) Line() int {
	return c.pos + 1
}

// Peek classifies the next line without consuming it.
func (c *Cursor) Peek() classify.Tag {
	if c.Done() {
		return classify.Tag{Kind: classify.Blank}
	}
	if c.peekedPos != c.pos {
		c.peeked = classify.Classify(c.lines[c.pos], c.grammar)
		c.peekedPos = c.pos
	}
	return c.peeked
}

// Advance consumes the next line and returns its tag.
func (c *Cursor) Advance() classify.Tag {
	tag := c.Peek()
	if !c.Done() {
		c.pos++
	}
	return tag
}

// UntilNextBoundary consumes the body of the current item: every line up
// to, but not including, the next item boundary or section header. Blank
// lines and page furniture are dropped; furniture reports how many
// furniture lines were skipped.
func (c *Cursor) UntilNextBoundary() (body []classify.Tag, furniture int) {
	for !c.Done() {
		tag := c.Peek()
		switch tag.Kind {
		case classify.ItemBoundary, classify.SectionHeader:
			return body, furniture
		case classify.Blank:
		case classify.PageFurniture:
			furniture++
		default:
			body = append(body, tag)
		}
		c.pos++
	}
	return body, furniture
}
