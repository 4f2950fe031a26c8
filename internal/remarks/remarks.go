// Package remarks splits the remarks column of one item into procedure
// lists and itemized steps.
package remarks

import (
	"regexp"
	"sort"
	"strings"
)

const (
	MaintenanceMarker = "(M)"
	OperationalMarker = "(O)"
)

// Result is the classified remarks of one item.
type Result struct {
	Summary     string
	Steps       []string
	Maintenance []string
	Operational []string
}

var (
	// One or more adjacent markers, e.g. "(M)", "(M)(O)", "(O) (M)".
	markerGroupRe = regexp.MustCompile(`(?:\([MO]\)\s*)+`)

	// "a) text", "a. text", "1) text", "12. text" at the start of a fragment.
	leadingLabelRe = regexp.MustCompile(`^(?:[a-zA-Z]|\d{1,2})[.)]\s+`)

	// "(a) text" or "(1) text" at the start or after whitespace.
	inlineLabelRe = regexp.MustCompile(`(?:^|\s)(\((?:[a-z]|\d{1,2})\))\s+`)
)

// Classify builds the summary, procedure lists and steps from the remark
// fragments of one item, in order. Fragments are the remark lines for
// line-oriented dialects or a single blob for combined-pattern matches.
func Classify(fragments []string) Result {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}

	r := Result{
		Summary:     strings.Join(parts, " "),
		Steps:       []string{},
		Maintenance: []string{},
		Operational: []string{},
	}
	r.Maintenance, r.Operational = procedures(r.Summary)
	for _, p := range parts {
		r.Steps = append(r.Steps, steps(p)...)
	}
	return r
}

// procedures attributes the text following each marker group to the
// categories named in the group. A fragment carrying both markers lands in
// both lists.
func procedures(text string) (maintenance, operational []string) {
	maintenance, operational = []string{}, []string{}
	groups := markerGroupRe.FindAllStringIndex(text, -1)
	for i, g := range groups {
		end := len(text)
		if i+1 < len(groups) {
			end = groups[i+1][0]
		}
		body := strings.TrimSpace(text[g[1]:end])
		if body == "" {
			continue
		}
		group := strings.Join(strings.Fields(text[g[0]:g[1]]), "")
		fragment := group + " " + body
		if strings.Contains(group, MaintenanceMarker) {
			maintenance = append(maintenance, fragment)
		}
		if strings.Contains(group, OperationalMarker) {
			operational = append(operational, fragment)
		}
	}

	if len(maintenance) == 0 && len(operational) == 0 {
		switch {
		case strings.Contains(text, MaintenanceMarker):
			maintenance = append(maintenance, text)
		case strings.Contains(text, OperationalMarker):
			operational = append(operational, text)
		}
	}
	return maintenance, operational
}

// steps extracts itemized sub-points from one fragment. A step runs from
// its label to the next label, the next marker group, or the end of text.
func steps(fragment string) []string {
	type span struct{ start, end int }
	var labels []span

	if loc := leadingLabelRe.FindStringIndex(fragment); loc != nil {
		labels = append(labels, span{loc[0], loc[1]})
	}
	for _, m := range inlineLabelRe.FindAllStringSubmatchIndex(fragment, -1) {
		if len(labels) > 0 && labels[0].start == m[2] {
			continue
		}
		labels = append(labels, span{m[2], m[1]})
	}
	if len(labels) == 0 {
		return nil
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].start < labels[j].start })

	stops := make([]int, 0, len(labels))
	for _, l := range labels {
		stops = append(stops, l.start)
	}
	for _, g := range markerGroupRe.FindAllStringIndex(fragment, -1) {
		stops = append(stops, g[0])
	}
	sort.Ints(stops)

	var out []string
	for _, l := range labels {
		end := len(fragment)
		for _, s := range stops {
			if s >= l.end {
				end = s
				break
			}
		}
		if text := strings.TrimSpace(fragment[l.end:end]); text != "" {
			out = append(out, text)
		}
	}
	return out
}
