package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// section is a heading-delimited slice of a markdown document.
type section struct {
	title string
	body  strings.Builder
}

func (s *section) text() string {
	body := strings.TrimSpace(s.body.String())
	if s.title == "" {
		return body
	}
	if body == "" {
		return s.title
	}
	return s.title + "\n" + body
}

// markdownSections splits a markdown document at level-1/2 headings so
// each chunk stays about one topic. Plain prose without headings comes
// back as a single section.
func markdownSections(source []byte) []*section {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	var sections []*section
	current := &section{}
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok && heading.Level <= 2 {
			if current.text() != "" {
				sections = append(sections, current)
			}
			current = &section{title: string(heading.Text(source))}
			continue
		}
		writeBlockText(&current.body, node, source)
	}
	if current.text() != "" {
		sections = append(sections, current)
	}
	return sections
}

// writeBlockText flattens a block node (and nested blocks, e.g. list
// items) into plain text lines.
func writeBlockText(b *strings.Builder, node ast.Node, source []byte) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(source))
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() == ast.TypeBlock {
			writeBlockText(b, child, source)
		}
	}
	b.WriteString("\n")
}
