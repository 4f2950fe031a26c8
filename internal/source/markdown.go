package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown handles Markdown files using goldmark. Soft and hard breaks
// inside a paragraph keep their line structure, and ordered list items
// keep their numbers.
type Markdown struct{}

func (p *Markdown) Lines(r io.Reader) ([]string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument && !endsWithNewline(&buf) {
				buf.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.ListItem:
			// "21. Air Conditioning" parses as an ordered list; keep the number.
			if list, ok := node.Parent().(*ast.List); ok && list.IsOrdered() {
				idx := 0
				for sib := node.PreviousSibling(); sib != nil; sib = sib.PreviousSibling() {
					idx++
				}
				fmt.Fprintf(&buf, "%d%c ", list.Start+idx, list.Marker)
			}
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.HardLineBreak() || node.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}
	return SplitLines(buf.String()), nil
}

func endsWithNewline(b *bytes.Buffer) bool {
	return b.Len() == 0 || b.Bytes()[b.Len()-1] == '\n'
}
