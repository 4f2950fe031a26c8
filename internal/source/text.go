package source

import (
	"fmt"
	"io"
)

// Text handles plain text files, typically the output of an external
// PDF-to-text conversion.
type Text struct{}

func (p *Text) Lines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return SplitLines(string(data)), nil
}
