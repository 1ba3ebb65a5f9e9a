package display

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is a heading found in converted formatter content.
type Section struct {
	Level int
	Title string
	Line  int
}

// Outline lists the headings of markdown in document order.
func Outline(markdown string) []Section {
	source := []byte(markdown)
	document := goldmark.DefaultParser().Parse(text.NewReader(source))

	var sections []Section
	_ = ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		line := 0
		if lines := h.Lines(); lines != nil && lines.Len() > 0 {
			line = 1 + bytes.Count(source[:lines.At(0).Start], []byte("\n"))
		}
		title := strings.TrimSpace(string(h.Text(source)))
		if title != "" {
			sections = append(sections, Section{Level: h.Level, Title: title, Line: line})
		}
		return ast.WalkSkipChildren, nil
	})
	return sections
}

// Outline lists the headings of every element attached under the named
// target.
func (r *Renderer) Outline(d *Document, name string) ([]Section, error) {
	var sections []Section
	for _, el := range d.Elements(name) {
		md, err := r.Markdown(el.Fragment)
		if err != nil {
			return nil, err
		}
		sections = append(sections, Outline(md)...)
	}
	return sections, nil
}
