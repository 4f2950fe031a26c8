package scanner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ghosh9691/mmelParser/internal/classify"
)

// Fields is the raw field set recovered for one item.
type Fields struct {
	Title             []string
	Category          string
	QuantityInstalled int
	QuantityRequired  int
	Remarks           []string

	// Set when the quantity was read from a valid digit token. A zero
	// quantity that was never found stays false.
	InstalledFound bool
	RequiredFound  bool
}

// setInstalled and setRequired record a quantity token. Overflowing digit
// runs are left unset.
func (f *Fields) setInstalled(s string) {
	f.QuantityInstalled, f.InstalledFound = parseQuantity(s)
}

func (f *Fields) setRequired(s string) {
	f.QuantityRequired, f.RequiredFound = parseQuantity(s)
}

// MissingQuantities names the quantity fields that were never found.
func (f Fields) MissingQuantities() []string {
	var missing []string
	if !f.InstalledFound {
		missing = append(missing, "installed")
	}
	if !f.RequiredFound {
		missing = append(missing, "required")
	}
	return missing
}

// CombinedMode selects the single-pattern match tried on the joined text
// of an item before falling back to the line state machine.
type CombinedMode int

const (
	CombinedNone     CombinedMode = iota
	CombinedAnchored              // "<title> <cat> <qty> <qty> <remarks>" over the whole text
	CombinedSearch                // "<cat> <qty> <qty> <remarks>" anywhere; title precedes it
)

// Policy holds the field-ordering choices of a dialect.
type Policy struct {
	Combined CombinedMode

	// InlineQuantities lets the state machine accept "C 2 1 ..." and
	// "2 1 ..." rows in addition to one token per line.
	InlineQuantities bool
}

type state int

const (
	stateTitle state = iota
	stateQuantityInstalledPending
	stateQuantityRequiredPending
	stateRemarks
)

var (
	anchoredRe    = regexp.MustCompile(`^(.+?)\s+([A-D])\s+(\d+)\s+(\d+)\s*(.*)$`)
	searchRe      = regexp.MustCompile(`\b([A-D])\s+(\d+)\s+(\d+)\s+(.+)$`)
	requiredRe    = regexp.MustCompile(`^(\d+)(?:\s+(.*))?$`)
	categoryRowRe = regexp.MustCompile(`^([A-D])\s+(\d+)\s+(\d+)\s*(.*)$`)
	quantityRowRe = regexp.MustCompile(`^(\d+)\s+(\d+)(?:\s+(.*))?$`)
)

// extractFields runs the fallback chain for one item: the combined
// pattern, when the policy has one, then the line state machine. miss
// reports that a combined pattern was tried and did not match.
func extractFields(p Policy, lines []classify.Tag) (f Fields, miss bool) {
	if p.Combined != CombinedNone {
		if f, ok := matchCombined(p.Combined, joinText(lines)); ok {
			return f, false
		}
		miss = true
	}
	return scanLines(p, lines), miss
}

// matchCombined applies a combined pattern to the joined text of an item.
func matchCombined(mode CombinedMode, blob string) (Fields, bool) {
	var f Fields
	switch mode {
	case CombinedAnchored:
		m := anchoredRe.FindStringSubmatch(blob)
		if m == nil {
			return f, false
		}
		f.Title = nonEmpty(m[1])
		f.Category = m[2]
		f.setInstalled(m[3])
		f.setRequired(m[4])
		f.Remarks = nonEmpty(m[5])
		return f, true
	case CombinedSearch:
		loc := searchRe.FindStringSubmatchIndex(blob)
		if loc == nil {
			return f, false
		}
		f.Title = nonEmpty(blob[:loc[0]])
		f.Category = blob[loc[2]:loc[3]]
		f.setInstalled(blob[loc[4]:loc[5]])
		f.setRequired(blob[loc[6]:loc[7]])
		f.Remarks = nonEmpty(blob[loc[8]:loc[9]])
		return f, true
	}
	return f, false
}

// scanLines is the line-by-line state machine shared by every dialect.
func scanLines(p Policy, lines []classify.Tag) Fields {
	var f Fields
	st := stateTitle

	for _, tag := range lines {
		text := tag.Text
		switch st {
		case stateTitle:
			if tag.Kind == classify.CategoryToken {
				f.Category = tag.Value
				st = stateQuantityInstalledPending
				continue
			}
			if p.InlineQuantities {
				if m := categoryRowRe.FindStringSubmatch(text); m != nil {
					f.Category = m[1]
					f.setInstalled(m[2])
					f.setRequired(m[3])
					f.Remarks = append(f.Remarks, nonEmpty(m[4])...)
					st = stateRemarks
					continue
				}
				if m := quantityRowRe.FindStringSubmatch(text); m != nil {
					f.setInstalled(m[1])
					f.setRequired(m[2])
					f.Remarks = append(f.Remarks, nonEmpty(m[3])...)
					st = stateRemarks
					continue
				}
			}
			f.Title = append(f.Title, text)
		case stateQuantityInstalledPending:
			switch {
			case tag.Kind == classify.DigitToken:
				f.setInstalled(tag.Value)
				st = stateQuantityRequiredPending
			case p.InlineQuantities && quantityRowRe.MatchString(text):
				m := quantityRowRe.FindStringSubmatch(text)
				f.setInstalled(m[1])
				f.setRequired(m[2])
				f.Remarks = append(f.Remarks, nonEmpty(m[3])...)
				st = stateRemarks
			case f.Category != "":
				f.Remarks = append(f.Remarks, text)
				st = stateRemarks
			default:
				f.Title = append(f.Title, text)
			}
		case stateQuantityRequiredPending:
			if m := requiredRe.FindStringSubmatch(text); m != nil {
				f.setRequired(m[1])
				f.Remarks = append(f.Remarks, nonEmpty(m[2])...)
			} else {
				f.Remarks = append(f.Remarks, text)
			}
			st = stateRemarks
		case stateRemarks:
			f.Remarks = append(f.Remarks, text)
		}
	}
	return f
}

func joinText(lines []classify.Tag) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.Text)
	}
	return strings.Join(parts, " ")
}

func nonEmpty(s string) []string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return []string{s}
}

// parseQuantity parses a digit run. Values that overflow int are reported
// as not found and read as 0.
func parseQuantity(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
