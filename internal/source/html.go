package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTML handles HTML exports. Block elements and table cells end a line;
// <br> breaks one.
type HTML struct{}

func (p *HTML) Lines(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			t := strings.Join(strings.Fields(n.Data), " ")
			if t == "" {
				return
			}
			if !endsWithBreak(&buf) {
				buf.WriteByte(' ')
			}
			buf.WriteString(t)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head":
				return
			case "br":
				buf.WriteByte('\n')
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) && !endsWithBreak(&buf) {
			buf.WriteByte('\n')
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return SplitLines(buf.String()), nil
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "tr", "td", "th", "pre", "blockquote", "section", "article", "table",
		"h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func endsWithBreak(b *strings.Builder) bool {
	s := b.String()
	return s == "" || strings.HasSuffix(s, "\n")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
