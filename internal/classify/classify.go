// Package classify tags single lines of an equipment-list document.
//
// Classification is a pure function of the line text and the active
// Grammar. Scanners call it for every line they consume.
package classify

import (
	"regexp"
	"strings"

	"github.com/ghosh9691/mmelParser/internal/mmel"
)

// Kind is the classification of one line.
type Kind int

const (
	Blank Kind = iota
	SectionHeader
	ItemBoundary
	PageFurniture
	CategoryToken
	DigitToken
	Bare
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case SectionHeader:
		return "section_header"
	case ItemBoundary:
		return "item_boundary"
	case PageFurniture:
		return "page_furniture"
	case CategoryToken:
		return "category"
	case DigitToken:
		return "digits"
	default:
		return "bare"
	}
}

// Tag is the result of classifying a line.
type Tag struct {
	Kind Kind
	Text string // the trimmed line

	// Value is the section code, raw item identifier, category letter or
	// digit string, depending on Kind.
	Value string

	// Item boundaries only.
	Boundary *Boundary
	Prefix   string // section code embedded in the identifier, if any
	Suffix   string // abbreviated part of the identifier, if any
	Rest     string // inline text after the identifier; section title for headers
}

// MatchKind selects how a furniture Rule compares against a line.
type MatchKind int

const (
	Exact MatchKind = iota
	Prefix
	Contains
)

// Rule is one entry of a boilerplate allow-list.
type Rule struct {
	Match MatchKind
	Text  string
}

// Matches reports whether line is covered by the rule.
func (r Rule) Matches(line string) bool {
	switch r.Match {
	case Exact:
		return line == r.Text
	case Prefix:
		return strings.HasPrefix(line, r.Text)
	case Contains:
		return strings.Contains(line, r.Text)
	}
	return false
}

// Boundary is one item-numbering grammar. Pattern uses the named groups
// id (required), prefix, suffix and rest.
type Boundary struct {
	Name    string
	Pattern *regexp.Regexp

	// Qualified identifiers are used verbatim. Otherwise the item number
	// is rebuilt as section code + Join + suffix.
	Qualified bool
	Join      string
}

// Grammar is the per-dialect description of section headers, item
// boundaries and page furniture.
type Grammar struct {
	Name    string
	Section *regexp.Regexp // group 1 is the code, group 2 the title

	// Boundaries are tried in order; the first match wins, so
	// fully-qualified forms are listed before abbreviated ones.
	Boundaries []Boundary

	Furniture []Rule

	// OutOfItem lines are skipped only while no item is being scanned,
	// e.g. table-of-contents rows.
	OutOfItem []Rule
}

// Classify tags one line. The line is trimmed before matching.
func Classify(line string, g *Grammar) Tag {
	line = strings.TrimSpace(line)
	tag := Tag{Kind: Bare, Text: line}

	if line == "" {
		tag.Kind = Blank
		return tag
	}
	if m := g.Section.FindStringSubmatch(line); m != nil {
		tag.Kind = SectionHeader
		tag.Value = m[1]
		if len(m) > 2 {
			tag.Rest = strings.TrimSpace(m[2])
		}
		return tag
	}
	for i := range g.Boundaries {
		b := &g.Boundaries[i]
		m := b.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		tag.Kind = ItemBoundary
		tag.Boundary = b
		for j, name := range b.Pattern.SubexpNames() {
			switch name {
			case "id":
				tag.Value = m[j]
			case "prefix":
				tag.Prefix = m[j]
			case "suffix":
				tag.Suffix = m[j]
			case "rest":
				tag.Rest = strings.TrimSpace(m[j])
			}
		}
		return tag
	}
	if g.IsFurniture(line) {
		tag.Kind = PageFurniture
		return tag
	}
	if mmel.IsCategory(line) {
		tag.Kind = CategoryToken
		tag.Value = line
		return tag
	}
	if IsDigits(line) {
		tag.Kind = DigitToken
		tag.Value = line
	}
	return tag
}

// IsFurniture reports whether a trimmed line is known page boilerplate.
func (g *Grammar) IsFurniture(line string) bool {
	return matchAny(g.Furniture, line)
}

// IsOutOfItem reports whether a trimmed line should be skipped while
// searching for the next item boundary.
func (g *Grammar) IsOutOfItem(line string) bool {
	return matchAny(g.OutOfItem, line)
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func matchAny(rules []Rule, line string) bool {
	for _, r := range rules {
		if r.Matches(line) {
			return true
		}
	}
	return false
}
