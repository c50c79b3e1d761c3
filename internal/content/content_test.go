package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/lexio-app/lexio/internal/apperr"
)

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"headers and emphasis", "# Title\n\nSome **bold** and *italic* with `code`.", "Title Some bold and italic with code."},
		{"links keep text", "[Go](https://go.dev) rocks ![logo](a.png)", "Go rocks"},
		{"lists", "- one\n- two\n1. three", "one two three"},
		{"code block", "```\nfmt.Println()\n```\nafter", "after"},
		{"rule", "a\n---\nb", "a b"},
		{"blockquote", "> quoted text", "quoted text"},
		{"whitespace", "  lots   of\n\n\n\nspace  ", "lots of space"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanMarkdown(tt.in); got != tt.want {
				t.Errorf("CleanMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeForSpeech(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"chrome phrases", "Click here to read more about Go", "to about Go"},
		{"breadcrumbs", "Docs » Guides » Install", "Docs. Guides. Install"},
		{"pipes", "Alpha | Beta", "Alpha. Beta"},
		{"quotes and dashes", "“Quoted” — it’s fine", `"Quoted" - it's fine`},
		{"spaced punctuation", "Hello . World ..", "Hello. World."},
		{"compatibility forms", "ﬁne ＡＢＣ", "fine ABC"},
		{"case insensitive", "SUBSCRIBE now", "now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForSpeech(tt.in); got != tt.want {
				t.Errorf("SanitizeForSpeech(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits", "short text", 200, "short text"},
		{"word boundary", "one two three", 8, "one two..."},
		{"no space", "abcdefghij", 4, "abcd..."},
		{"collapses whitespace", "a   b\n\nc", 200, "a b c"},
		{"default length", strings.Repeat("word ", 100), 0, strings.TrimSpace(strings.Repeat("word ", 40)) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.in, tt.max); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSections(t *testing.T) {
	md := strings.Join([]string{
		"Intro text before any heading.",
		"",
		"# First Heading",
		"",
		"Paragraph one with **bold**.",
		"Second line.",
		"",
		"- item a",
		"- item b",
		"",
		"## Empty",
		"",
		"### Third",
		"",
		"> quote here",
		"",
		"```go",
		"code()",
		"```",
		"",
		"Final words.",
	}, "\n")

	got := ParseSections(md)
	want := []Section{
		{Title: "First Heading", Content: "Paragraph one with bold. Second line. item a item b", Level: 1},
		{Title: "Third", Content: "quote here Final words.", Level: 3},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d sections, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("section %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseSectionsNoHeadings(t *testing.T) {
	if got := ParseSections("just a paragraph"); len(got) != 0 {
		t.Errorf("expected no sections, got %+v", got)
	}
}

func TestParseSectionsFormattedTitle(t *testing.T) {
	got := ParseSections("## The *Silk* Road\n\nCaravans crossed deserts.")
	if len(got) != 1 || got[0].Title != "The Silk Road" || got[0].Level != 2 {
		t.Errorf("ParseSections() = %+v", got)
	}
}

func testDocument() Document {
	return Document{
		Title:     "History",
		Text:      "plain text",
		CleanText: "clean text for the overview",
		Sections: []Section{
			{Title: "Trade", Content: "Trade networks grew."},
			{Title: "Plague", Content: "The black death spread."},
			{Title: "Mongols", Content: "The mongol empire expanded."},
		},
	}
}

func TestDocumentItems(t *testing.T) {
	doc := testDocument()

	item, ok := doc.SectionItem(1)
	if !ok || item.ID != "section-1" || item.Title != "Plague" {
		t.Errorf("SectionItem(1) = %+v, %v", item, ok)
	}
	if _, ok := doc.SectionItem(3); ok {
		t.Error("SectionItem(3) should not exist")
	}

	sum := doc.SummaryItem()
	if sum.ID != SummaryID || sum.Title != "Summary" || sum.Content != "clean text for the overview" {
		t.Errorf("SummaryItem() = %+v", sum)
	}

	doc.CleanText = ""
	if got := doc.SummaryItem().Content; got != "plain text" {
		t.Errorf("SummaryItem falls back to Text: %q", got)
	}
}

func TestDocumentCandidates(t *testing.T) {
	doc := testDocument()
	queued := map[string]bool{"section-1": true}

	got := doc.Candidates(func(id string) bool { return queued[id] })
	if len(got) != 2 || got[0].Index != 0 || got[1].Index != 2 {
		t.Errorf("Candidates() = %+v", got)
	}
	if all := doc.Candidates(nil); len(all) != 3 {
		t.Errorf("Candidates(nil) returned %d", len(all))
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://example.com/article", false},
		{"http://example.com", false},
		{"", true},
		{"   ", true},
		{"example.com", true},
		{"ftp://example.com", true},
		{"https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := ValidateURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("error %v is not a validation error", err)
			}
		})
	}
}
