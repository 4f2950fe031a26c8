package mmel

// Entry is one dispatch-deferral item recovered from an equipment list.
type Entry struct {
	DocumentFamily        string   `json:"documentFamily"`
	SectionCode           string   `json:"sectionCode"`
	ItemNumber            string   `json:"itemNumber"`
	Occurrence            int      `json:"occurrence"` // 1-based count of ItemNumber within the document
	Line                  int      `json:"line"`       // 1-based input line of the item boundary
	Title                 string   `json:"title"`
	DeferralCategory      string   `json:"deferralCategory"`
	QuantityInstalled     int      `json:"quantityInstalled"`
	QuantityRequired      int      `json:"quantityRequired"`
	RemarksSummary        string   `json:"remarksSummary"`
	RemarksSteps          []string `json:"remarksSteps"`
	MaintenanceProcedures []string `json:"maintenanceProcedures"`
	OperationalProcedures []string `json:"operationalProcedures"`
}

// Categories lists the valid deferral categories in display order.
var Categories = []string{"A", "B", "C", "D"}

// IsCategory reports whether s is a deferral category letter.
func IsCategory(s string) bool {
	switch s {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

// HasProcedures reports whether either procedure list is populated.
func (e Entry) HasProcedures() bool {
	return len(e.MaintenanceProcedures) > 0 || len(e.OperationalProcedures) > 0
}

// Quality counts field-inference misses and other data-quality signals
// observed while scanning one document. None of them abort a parse.
type Quality struct {
	Entries         int `json:"entries"`
	MissingCategory int `json:"missing_category"`
	MissingTitle    int `json:"missing_title"`
	MissingQuantity int `json:"missing_quantity"`
	MissingSection  int `json:"missing_section"`
	CombinedMisses  int `json:"combined_misses"`
	SectionMismatch int `json:"section_mismatch"`
	FurnitureLines  int `json:"furniture_lines"`
}

// Add accumulates other into q.
func (q *Quality) Add(other Quality) {
	q.Entries += other.Entries
	q.MissingCategory += other.MissingCategory
	q.MissingTitle += other.MissingTitle
	q.MissingQuantity += other.MissingQuantity
	q.MissingSection += other.MissingSection
	q.CombinedMisses += other.CombinedMisses
	q.SectionMismatch += other.SectionMismatch
	q.FurnitureLines += other.FurnitureLines
}
