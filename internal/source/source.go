// Package source turns uploaded documents into the ordered line sequence
// the scanners consume.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Source extracts the lines of one document in reading order.
type Source interface {
	Lines(r io.Reader) ([]string, error)
}

// Options configures the sources returned by ForFile.
type Options struct {
	// FallbackPdftotext retries PDF extraction with the pdftotext binary
	// when the Go reader fails.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate source for a filename.
func ForFile(filename string, opts Options) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &Text{}, nil
	case ".md", ".markdown":
		return &Markdown{}, nil
	case ".csv":
		return &CSV{}, nil
	case ".html", ".htm":
		return &HTML{}, nil
	case ".pdf":
		return &PDF{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCX{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// SplitLines normalizes extracted text and splits it into lines. Page
// breaks become line breaks, every line is NFKC-normalized and
// right-trimmed, and blank lines are kept.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.NewReplacer("\r", "\n", "\f", "\n").Replace(text)
	text = norm.NFKC.String(text)
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{}
	}

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}
	return lines
}
