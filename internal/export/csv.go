package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ghosh9691/mmelParser/internal/mmel"
)

// BOM is the UTF-8 byte order mark Excel needs to detect the encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// ListSeparator joins list fields inside one cell.
const ListSeparator = " | "

var columns = []string{
	"Document Family",
	"Section",
	"Item Number",
	"Occurrence",
	"Line",
	"Title",
	"Category",
	"Installed",
	"Required",
	"Remarks",
	"Remarks Steps",
	"Maintenance Procedures",
	"Operational Procedures",
}

// CSV writes a header row and one row per entry. withBOM prefixes the
// output with a UTF-8 byte order mark.
func CSV(w io.Writer, entries []mmel.Entry, withBOM bool) error {
	if withBOM {
		if _, err := w.Write(BOM); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range entries {
		if err := cw.Write(row(&entries[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(e *mmel.Entry) []string {
	return []string{
		e.DocumentFamily,
		e.SectionCode,
		e.ItemNumber,
		strconv.Itoa(e.Occurrence),
		strconv.Itoa(e.Line),
		e.Title,
		e.DeferralCategory,
		strconv.Itoa(e.QuantityInstalled),
		strconv.Itoa(e.QuantityRequired),
		e.RemarksSummary,
		strings.Join(e.RemarksSteps, ListSeparator),
		strings.Join(e.MaintenanceProcedures, ListSeparator),
		strings.Join(e.OperationalProcedures, ListSeparator),
	}
}
