package scanner

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parse(t *testing.T, family string, lines []string) *Result {
	t.Helper()
	res, err := New(nil, discardLogger()).Parse(lines, family)
	require.NoError(t, err)
	return res
}

var airConditioning = []string{
	"21. Air Conditioning",
	"21-21-01",
	"Recirculation Fan",
	"C",
	"2",
	"0 (M)(O) May be inoperative provided associated system is inoperative.",
	"21-21-02",
	"Cabin Fan",
	"C",
	"2",
	"1",
}

func TestParse_LinearRoundTrip(t *testing.T) {
	res := parse(t, "A320", airConditioning)
	require.Len(t, res.Entries, 2)

	e := res.Entries[0]
	assert.Equal(t, "A320", e.DocumentFamily)
	assert.Equal(t, "21", e.SectionCode)
	assert.Equal(t, "21-21-01", e.ItemNumber)
	assert.Equal(t, "Recirculation Fan", e.Title)
	assert.Equal(t, "C", e.DeferralCategory)
	assert.Equal(t, 2, e.QuantityInstalled)
	assert.Equal(t, 0, e.QuantityRequired)
	assert.Equal(t, 2, e.Line)
	assert.Equal(t, 1, e.Occurrence)

	frag := "(M)(O) May be inoperative provided associated system is inoperative."
	assert.Equal(t, frag, e.RemarksSummary)
	assert.Equal(t, []string{frag}, e.MaintenanceProcedures)
	assert.Equal(t, []string{frag}, e.OperationalProcedures)

	second := res.Entries[1]
	assert.Equal(t, "21-21-02", second.ItemNumber)
	assert.Equal(t, "Cabin Fan", second.Title)
	assert.Equal(t, 1, second.QuantityRequired)
	assert.Empty(t, second.RemarksSummary)

	assert.Equal(t, "linear", res.Dialect)
	assert.Equal(t, 2, res.Quality.Entries)
	assert.Zero(t, res.Quality.MissingSection)
}

func TestParse_LegacyAbbreviatedNumbering(t *testing.T) {
	res := parse(t, "B747-400", []string{
		"31. Indicating/Recording",
		"31-1 Flight Data Recorder",
		"A",
		"1",
		"0",
		"May be inoperative for one flight.",
	})
	require.Len(t, res.Entries, 1)

	e := res.Entries[0]
	assert.Equal(t, "31", e.SectionCode)
	assert.Equal(t, "31-1", e.ItemNumber)
	assert.Equal(t, "Flight Data Recorder", e.Title)
	assert.Equal(t, "A", e.DeferralCategory)
	assert.Equal(t, 1, e.QuantityInstalled)
	assert.Equal(t, 0, e.QuantityRequired)
	assert.Equal(t, "May be inoperative for one flight.", e.RemarksSummary)
	assert.Zero(t, res.Quality.CombinedMisses)
}

func TestParse_LegacyFallsBackToLineScan(t *testing.T) {
	res := parse(t, "B747-400", []string{
		"31. Indicating/Recording",
		"31-12B Clock",
		"C",
		"3",
		"2",
	})
	require.Len(t, res.Entries, 1)

	e := res.Entries[0]
	assert.Equal(t, "31-12B", e.ItemNumber)
	assert.Equal(t, "Clock", e.Title)
	assert.Equal(t, "C", e.DeferralCategory)
	assert.Equal(t, 3, e.QuantityInstalled)
	assert.Equal(t, 2, e.QuantityRequired)
	assert.Equal(t, 1, res.Quality.CombinedMisses)
}

func TestParse_LegacyPrefixMismatchUsesSection(t *testing.T) {
	res := parse(t, "B747-400", []string{
		"31. Indicating/Recording",
		"32-1 Misfiled Item C 1 0 Remarks here.",
	})
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "31-1", res.Entries[0].ItemNumber)
	assert.Equal(t, 1, res.Quality.SectionMismatch)
}

func TestParse_LegacyWithoutSectionKeepsTokenPrefix(t *testing.T) {
	res := parse(t, "B747-400", []string{"31-1 Flight Data Recorder A 1 0 Remarks."})
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "", res.Entries[0].SectionCode)
	assert.Equal(t, "31-1", res.Entries[0].ItemNumber)
	assert.Equal(t, 1, res.Quality.MissingSection)
}

func TestParse_LegacySkipsTableOfContentsRows(t *testing.T) {
	res := parse(t, "B747-400", []string{
		"TABLE OF CONTENTS",
		"21-1 thru 21-5",
		"21. Air Conditioning",
		"21-1 Pack A 2 1 One may be inoperative.",
	})
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "21-1", res.Entries[0].ItemNumber)
	assert.Equal(t, "Pack", res.Entries[0].Title)
}

func TestParse_TabularCombinedRow(t *testing.T) {
	res := parse(t, "A380", []string{
		"21 AIR CONDITIONING",
		"21-21-01 Recirculation Fan *** C 2 1 (M) May be inoperative.",
		"03-04 Bulk Cargo Heater",
		"C",
		"1",
	})
	require.Len(t, res.Entries, 2)

	first := res.Entries[0]
	assert.Equal(t, "21-21-01", first.ItemNumber)
	assert.Equal(t, "Recirculation Fan", first.Title)
	assert.Equal(t, "C", first.DeferralCategory)
	assert.Equal(t, 2, first.QuantityInstalled)
	assert.Equal(t, 1, first.QuantityRequired)
	assert.Equal(t, []string{"(M) May be inoperative."}, first.MaintenanceProcedures)

	second := res.Entries[1]
	assert.Equal(t, "21-03-04", second.ItemNumber)
	assert.Equal(t, "Bulk Cargo Heater", second.Title)
	assert.Equal(t, "C", second.DeferralCategory)
	assert.Equal(t, 1, second.QuantityInstalled)
	assert.Equal(t, 0, second.QuantityRequired)
	assert.Equal(t, 1, res.Quality.CombinedMisses)
}

func TestParse_MissingInstalledQuantity(t *testing.T) {
	res := parse(t, "A320", []string{
		"36. Pneumatic",
		"36-11-01",
		"Bleed Valve",
		"B",
		"May be inoperative provided the engine is not used for starting.",
	})
	require.Len(t, res.Entries, 1)

	e := res.Entries[0]
	assert.Equal(t, "B", e.DeferralCategory)
	assert.Equal(t, 0, e.QuantityInstalled)
	assert.Equal(t, 0, e.QuantityRequired)
	assert.Equal(t, "May be inoperative provided the engine is not used for starting.", e.RemarksSummary)
	assert.Equal(t, 1, res.Quality.MissingQuantity)
}

func TestParse_QuantitiesNeverFound(t *testing.T) {
	res := parse(t, "A320", []string{"21. Air", "21-21-01", "Fan", "C", "(M) May be inoperative."})
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "C", res.Entries[0].DeferralCategory)
	assert.Equal(t, 1, res.Quality.MissingQuantity)

	res = parse(t, "A320", []string{"21. Air", "21-21-01", "Fan", "C", "99999999999999999999999", "0"})
	require.Len(t, res.Entries, 1)
	assert.Equal(t, 0, res.Entries[0].QuantityInstalled)
	assert.Equal(t, 1, res.Quality.MissingQuantity)

	res = parse(t, "A320", []string{"21. Air", "21-21-01", "Fan", "C", "2", "1"})
	assert.Zero(t, res.Quality.MissingQuantity)
}

func TestParse_LegacyCategoryRowIsNotTitle(t *testing.T) {
	res := parse(t, "B747-400", []string{"31. Indicating", "31-1 A 1 0 (M) May be inoperative."})
	require.Len(t, res.Entries, 1)

	e := res.Entries[0]
	assert.Equal(t, "", e.Title)
	assert.Equal(t, "A", e.DeferralCategory)
	assert.Equal(t, 1, e.QuantityInstalled)
	assert.Equal(t, 0, e.QuantityRequired)
	assert.Equal(t, 1, res.Quality.MissingTitle)
	assert.Zero(t, res.Quality.MissingQuantity)
}

func TestParse_TabularCategoryRowIsNotTitle(t *testing.T) {
	res := parse(t, "A380", []string{"21 AIR CONDITIONING", "21-21-01 C 2 0 (M) x"})
	require.Len(t, res.Entries, 1)

	e := res.Entries[0]
	assert.Equal(t, "", e.Title)
	assert.Equal(t, "C", e.DeferralCategory)
	assert.Equal(t, 2, e.QuantityInstalled)
	assert.Equal(t, 0, e.QuantityRequired)
	assert.Equal(t, 1, res.Quality.MissingTitle)
}

func TestParse_TabularMixedCaseLineStaysInRemarks(t *testing.T) {
	res := parse(t, "A380", []string{
		"21 AIR CONDITIONING",
		"21-21-01 Recirculation Fan C 2 1 (O) Restart pack",
		"10 minutes after start",
	})
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "21", res.Entries[0].SectionCode)
	assert.Contains(t, res.Entries[0].OperationalProcedures[0], "10 minutes after start")
}

func TestParse_BoundaryBeforeSection(t *testing.T) {
	res := parse(t, "A320", []string{"21-21-01", "Fan", "C", "1", "0"})
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "", res.Entries[0].SectionCode)
	assert.Equal(t, "21-21-01", res.Entries[0].ItemNumber)
	assert.Equal(t, 1, res.Quality.MissingSection)
}

func TestParse_LinearChapterImpliedNumbering(t *testing.T) {
	res := parse(t, "A350", []string{"21. Air Conditioning", "-21-01", "Fan", "C", "1", "0"})
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "21-21-01", res.Entries[0].ItemNumber)
}

func TestParse_SectionCarryForward(t *testing.T) {
	res := parse(t, "A320", []string{
		"21. Air Conditioning",
		"21-21-01", "Fan", "C", "1", "0",
		"21-21-02", "Valve", "C", "1", "0",
		"22. Auto Flight",
		"22-11-01", "Autopilot", "B", "2", "1",
	})
	require.Len(t, res.Entries, 3)
	assert.Equal(t, "21", res.Entries[0].SectionCode)
	assert.Equal(t, "21", res.Entries[1].SectionCode)
	assert.Equal(t, "22", res.Entries[2].SectionCode)
}

func TestParse_DuplicateItemsStayDistinct(t *testing.T) {
	res := parse(t, "A320", []string{
		"21. Air Conditioning",
		"21-21-01", "Fan (one engine)", "C", "2", "1",
		"21-21-01", "Fan (both engines)", "C", "2", "2",
	})
	require.Len(t, res.Entries, 2)
	assert.Equal(t, res.Entries[0].ItemNumber, res.Entries[1].ItemNumber)
	assert.Equal(t, 1, res.Entries[0].Occurrence)
	assert.Equal(t, 2, res.Entries[1].Occurrence)
	assert.Equal(t, "Fan (both engines)", res.Entries[1].Title)
}

func TestParse_OrderFollowsBoundaryLines(t *testing.T) {
	res := parse(t, "A320", airConditioning)
	for i := 1; i < len(res.Entries); i++ {
		assert.Less(t, res.Entries[i-1].Line, res.Entries[i].Line)
	}
}

func TestParse_IsIdempotent(t *testing.T) {
	p := New(nil, discardLogger())
	a, err := p.Parse(airConditioning, "A320")
	require.NoError(t, err)
	b, err := p.Parse(airConditioning, "A320")
	require.NoError(t, err)

	ja, err := json.Marshal(a.Entries)
	require.NoError(t, err)
	jb, err := json.Marshal(b.Entries)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}

func TestParse_ListsSerializeAsEmptyArrays(t *testing.T) {
	res := parse(t, "A320", []string{"21. Air", "21-21-01", "Fan", "C", "1", "0"})
	data, err := json.Marshal(res.Entries[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"remarksSteps":[]`)
	assert.Contains(t, string(data), `"maintenanceProcedures":[]`)
	assert.NotContains(t, string(data), "null")
}

func TestParse_FurnitureDoesNotLeak(t *testing.T) {
	res := parse(t, "A320", []string{
		"21. Air Conditioning",
		"21-21-01",
		"Recirculation",
		"REVISION NO. 12",
		"MASTER MINIMUM EQUIPMENT LIST",
		"Fan",
		"C", "1", "0",
	})
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "Recirculation Fan", res.Entries[0].Title)
	assert.Equal(t, 2, res.Quality.FurnitureLines)
}

func TestParse_UnknownFamily(t *testing.T) {
	_, err := New(nil, discardLogger()).Parse(airConditioning, "DC-3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFamily)
	assert.Contains(t, err.Error(), "DC-3")
}

func TestParse_FamilyCopiedVerbatim(t *testing.T) {
	res := parse(t, " a320 ", airConditioning)
	assert.Equal(t, " a320 ", res.Entries[0].DocumentFamily)
}

func TestParse_EmptyInput(t *testing.T) {
	res := parse(t, "A320", nil)
	assert.NotNil(t, res.Entries)
	assert.Empty(t, res.Entries)
}

func TestRegistry_Defaults(t *testing.T) {
	reg := DefaultRegistry()

	for family, dialect := range map[string]string{
		"A320":     "linear",
		"b787":     "linear",
		" A380 ":   "tabular",
		"B747-400": "legacy",
	} {
		s, err := reg.Lookup(family)
		require.NoError(t, err, family)
		assert.Equal(t, dialect, s.Name(), family)
	}

	fams := reg.Families()
	require.Len(t, fams, len(defaultFamilies))
	assert.Equal(t, "A320", fams[0].Family)
}

func TestLoadRegistry_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "families.yaml")
	require.NoError(t, os.WriteFile(path, []byte("families:\n  A321: linear\n  A380: legacy\n"), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	s, err := reg.Lookup("A321")
	require.NoError(t, err)
	assert.Equal(t, "linear", s.Name())

	s, err = reg.Lookup("A380")
	require.NoError(t, err)
	assert.Equal(t, "legacy", s.Name())
}

func TestLoadRegistry_UnknownDialect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "families.yaml")
	require.NoError(t, os.WriteFile(path, []byte("families:\n  A321: diagonal\n"), 0o644))

	_, err := LoadRegistry(path)
	assert.ErrorIs(t, err, ErrUnknownDialect)
}

func TestLoadRegistry_EmptyPath(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)
	_, err = reg.Lookup("A380")
	assert.NoError(t, err)
}
