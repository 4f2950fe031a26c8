package classify

import "regexp"

// Boilerplate shared by every FAA master list.
var regulatorHeaders = []string{
	"U.S. DEPARTMENT OF TRANSPORTATION",
	"FEDERAL AVIATION ADMINISTRATION",
	"MASTER MINIMUM EQUIPMENT LIST",
	"AIRCRAFT:",
	"DATE:",
}

// Linear is the grammar for lists that print every field on its own line:
// a bare item number such as "21-21-01" (or "-21-01" with the chapter
// implied), then title lines, category, installed and required quantities.
var Linear = Grammar{
	Name:    "linear",
	Section: regexp.MustCompile(`^(\d{2})\.\s+(.+)$`),
	Boundaries: []Boundary{
		{
			Name:      "qualified",
			Pattern:   regexp.MustCompile(`^(?P<id>\d{2}-\d{2}-\d{2}(?:-\d{2})*)$`),
			Qualified: true,
		},
		{
			Name:    "chapter_implied",
			Pattern: regexp.MustCompile(`^(?P<id>(?P<suffix>-\d{2}-\d{2}(?:-\d{2})*))$`),
		},
	},
	Furniture: join(
		prefixes(regulatorHeaders...),
		prefixes(
			"REVISION NO.",
			"PAGE NO.",
			"Airbus",
			"TABLE KEY",
			"1. REPAIR CATEGORY",
			"2. NO. INSTALLED",
			"3. NO. REQUIRED",
			"4. REMARKS OR EXCEPTIONS",
		),
		exact("Item", "Change", "Bar", "Sequence No."),
	),
}

// Tabular is the grammar for wide-body lists typeset as a full table,
// where the item number shares a line with the start of the title
// ("21-21-01 Recirculation Fan" or "03-04 Bulk Cargo Heater").
var Tabular = Grammar{
	Name:    "tabular",
	// Headers are typeset in capitals; mixed-case remark lines such as
	// "10 minutes after start" must not start a section.
	Section: regexp.MustCompile(`^(\d{2})\s+([A-Z][A-Z0-9 &/,()'.-]{3,})$`),
	Boundaries: []Boundary{
		{
			Name:      "qualified",
			Pattern:   regexp.MustCompile(`^(?P<id>\d{2}-\d{2}-\d{2})\s+(?P<rest>.+)$`),
			Qualified: true,
		},
		{
			Name:    "sequence",
			Pattern: regexp.MustCompile(`^(?P<id>(?P<suffix>\d{2}-\d{2}))\s+(?P<rest>.+)$`),
			Join:    "-",
		},
	},
	Furniture: join(
		prefixes(regulatorHeaders...),
		prefixes(
			"REVISION NO",
			"PAGE:",
			"SYSTEM &",
			"SEQUENCE",
			"ITEM",
			"NUMBER",
			"REQUIRED FOR DISPATCH",
			"REMARKS OR EXCEPTIONS",
			"1.", "2.", "3.", "4.",
		),
		exact("A-380"),
	),
}

// Legacy is the grammar for older Boeing lists that number items per
// chapter ("31-1", "31-1A") with the title inline.
var Legacy = Grammar{
	Name:    "legacy",
	Section: regexp.MustCompile(`^(\d{2})\.\s+(.+)$`),
	Boundaries: []Boundary{
		{
			Name:    "chapter_sequence",
			Pattern: regexp.MustCompile(`^(?P<id>(?P<prefix>\d{2})-(?P<suffix>\d{1,2}[A-Z]?))\s+(?P<rest>.+)$`),
			Join:    "-",
		},
	},
	Furniture: join(
		prefixes(regulatorHeaders...),
		prefixes(
			"REVISION NO",
			"PAGE NO",
			"TABLE KEY",
			"1. REPAIR CATEGORY",
			"2. NO. INSTALLED",
			"3. NO. REQUIRED",
			"4. REMARKS OR EXCEPTIONS",
			"Sequence No.",
			"B-747-400",
			"|",
		),
		exact("Item", "Change", "Bar"),
	),
	OutOfItem: join(
		prefixes(
			"TABLE OF CONTENTS",
			"SYSTEM",
			"REV NO.",
			"HIGHLIGHTS OF CHANGE",
		),
		[]Rule{{Match: Contains, Text: "thru"}},
	),
}

func prefixes(texts ...string) []Rule {
	rules := make([]Rule, 0, len(texts))
	for _, t := range texts {
		rules = append(rules, Rule{Match: Prefix, Text: t})
	}
	return rules
}

func exact(texts ...string) []Rule {
	rules := make([]Rule, 0, len(texts))
	for _, t := range texts {
		rules = append(rules, Rule{Match: Exact, Text: t})
	}
	return rules
}

func join(groups ...[]Rule) []Rule {
	var out []Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
