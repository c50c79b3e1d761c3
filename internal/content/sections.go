package content

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is a titled part of a page.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Level   int    `json:"level"`
}

var parser = goldmark.New().Parser()

// ParseSections splits markdown into sections. Every heading starts a
// section; the blocks after it become its spoken content. Text before the
// first heading and sections without content are dropped.
func ParseSections(markdown string) []Section {
	source := []byte(markdown)
	doc := parser.Parse(text.NewReader(source))

	var sections []Section
	var current *Section
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		if content := SanitizeForSpeech(body.String()); content != "" {
			current.Content = content
			sections = append(sections, *current)
		}
		current = nil
		body.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			flush()
			current = &Section{
				Title: SanitizeForSpeech(inlineText(h, source)),
				Level: h.Level,
			}
			continue
		}
		if current == nil {
			continue
		}
		for _, line := range blockLines(n, source) {
			if cleaned := CleanMarkdown(line); cleaned != "" {
				body.WriteString(cleaned)
				body.WriteByte(' ')
			}
		}
	}
	flush()

	return sections
}

// inlineText concatenates the literal text under n.
func inlineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// blockLines returns the raw source lines of the text-bearing blocks under
// n. Code and raw HTML are not read aloud.
func blockLines(n ast.Node, source []byte) []string {
	var lines []string
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph, ast.KindTextBlock:
			segs := c.Lines()
			for i := 0; i < segs.Len(); i++ {
				seg := segs.At(i)
				lines = append(lines, string(seg.Value(source)))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return lines
}
