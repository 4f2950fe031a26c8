package source

import (
	"strings"
	"testing"
)

func TestForFile_Dispatch(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"list.txt", "*source.Text"},
		{"list.MD", "*source.Markdown"},
		{"list.markdown", "*source.Markdown"},
		{"list.csv", "*source.CSV"},
		{"list.htm", "*source.HTML"},
		{"list.pdf", "*source.PDF"},
		{"list.docx", "*source.DOCX"},
	}
	for _, tt := range tests {
		s, err := ForFile(tt.filename, Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.filename, err)
		}
		if got := typeName(s); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.filename, tt.want, got)
		}
	}
}

func typeName(s Source) string {
	switch s.(type) {
	case *Text:
		return "*source.Text"
	case *Markdown:
		return "*source.Markdown"
	case *CSV:
		return "*source.CSV"
	case *HTML:
		return "*source.HTML"
	case *PDF:
		return "*source.PDF"
	case *DOCX:
		return "*source.DOCX"
	}
	return "unknown"
}

func TestForFile_Unsupported(t *testing.T) {
	if _, err := ForFile("list.xls", Options{}); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if IsSupportedExtension("list.xls") {
		t.Error("expected .xls to be unsupported")
	}
	if !IsSupportedExtension("LIST.PDF") {
		t.Error("expected .PDF to be supported")
	}
}

func TestForFile_PDFFallbackOption(t *testing.T) {
	s, err := ForFile("list.pdf", Options{FallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.(*PDF).FallbackPdftotext {
		t.Error("expected fallback option to be carried")
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("21. Air Conditioning  \r\n21-21-01\fRecirculation Fan\n\nC\n")
	want := []string{"21. Air Conditioning", "21-21-01", "Recirculation Fan", "", "C"}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplitLines_NormalizesCompatibilityForms(t *testing.T) {
	// Full-width digits and the "ﬁ" ligature come out of some PDF fonts.
	got := SplitLines("２１-２１-０１\nFlow ﬁlter")
	if got[0] != "21-21-01" {
		t.Errorf("expected %q, got %q", "21-21-01", got[0])
	}
	if got[1] != "Flow filter" {
		t.Errorf("expected %q, got %q", "Flow filter", got[1])
	}
}

func TestSplitLines_Empty(t *testing.T) {
	if got := SplitLines(""); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestText_Lines(t *testing.T) {
	lines, err := (&Text{}).Lines(strings.NewReader("36. Pneumatic\n\n36-11-01\nBleed Valve\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"36. Pneumatic", "", "36-11-01", "Bleed Valve"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, lines)
	}
}

func TestCSV_Lines(t *testing.T) {
	input := "21-21-01,Recirculation Fan,C,2,0\n,,,,\n\"21-21-02\", Cabin Fan ,C,2,1\n"
	lines, err := (&CSV{}).Lines(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"21-21-01 Recirculation Fan C 2 0", "", "21-21-02 Cabin Fan C 2 1"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, lines)
	}
}

func TestHTML_Lines(t *testing.T) {
	input := `<html><head><title>MMEL</title><style>p{}</style></head><body>
<h2>21. Air Conditioning</h2>
<table>
<tr><td>21-21-01</td><td>Recirculation <b>Fan</b></td></tr>
</table>
<p>C<br>2</p>
<script>var x = 1;</script>
</body></html>`
	lines, err := (&HTML{}).Lines(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"21. Air Conditioning", "21-21-01", "Recirculation Fan", "C", "2"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, lines)
	}
}

func TestMarkdown_Lines(t *testing.T) {
	input := "# 21. Air Conditioning\n\n21-21-01\nRecirculation Fan\n\nC\n"
	lines, err := (&Markdown{}).Lines(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"21. Air Conditioning", "21-21-01", "Recirculation Fan", "C"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, lines)
	}
}

func TestMarkdown_OrderedListKeepsNumber(t *testing.T) {
	input := "21. Air Conditioning\n\n21-21-01\n"
	lines, err := (&Markdown{}).Lines(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) == 0 || lines[0] != "21. Air Conditioning" {
		t.Errorf("expected first line %q, got %q", "21. Air Conditioning", lines)
	}
}

func TestPDF_InvalidInput(t *testing.T) {
	_, err := (&PDF{}).Lines(strings.NewReader("not a pdf"))
	if err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}
