package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lexio-app/lexio/internal/config"
	"github.com/lexio-app/lexio/internal/content"
	"github.com/lexio-app/lexio/internal/provider/elevenlabs"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	cfg = config.Default()
	m.Run()
}

func TestResolveVoice(t *testing.T) {
	voices := elevenlabs.PopularVoices
	tests := []struct {
		query string
		want  string
	}{
		{"HDA9tsk27wYi3uq0fPcK", "Stuart"},
		{"archer", "Archer"},
		{"stu", "Stuart"},
		{"jess", "Jessica Anne Bogart"},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			v, err := resolveVoice(voices, tc.query)
			if err != nil {
				t.Fatalf("resolveVoice: %v", err)
			}
			if v.Name != tc.want {
				t.Errorf("got %s, want %s", v.Name, tc.want)
			}
		})
	}

	if _, err := resolveVoice(voices, "zzzzqqq"); err == nil {
		t.Error("expected an error for an unknown voice")
	}
}

func TestVoiceTableMarksCurrent(t *testing.T) {
	out := voiceTable(elevenlabs.PopularVoices[:3], elevenlabs.PopularVoices[1].ID)
	for _, v := range elevenlabs.PopularVoices[:3] {
		if !strings.Contains(out, v.Name) {
			t.Errorf("table is missing %s", v.Name)
		}
	}
	var marked []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "●") {
			marked = append(marked, line)
		}
	}
	if len(marked) != 1 || !strings.Contains(marked[0], "Alexandra") {
		t.Errorf("marked rows = %q, want only Alexandra", marked)
	}
}

func TestDocumentMarkdown(t *testing.T) {
	doc := content.Document{
		URL:       "https://example.com/history",
		Title:     "Medieval Trade",
		CleanText: "Merchants crossed deserts and seas.",
		Sections: []content.Section{
			{Title: "Trade Networks", Content: "Caravans linked distant markets."},
			{Title: "Decline", Content: "Plague and war weakened the frontier."},
		},
	}
	md := documentMarkdown(doc)
	for _, want := range []string{
		"# Medieval Trade",
		"2 sections",
		"## Summary (0:",
		"## 1. Trade Networks (0:",
		"## 2. Decline (0:",
		"Plague and war weakened the frontier.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown is missing %q:\n%s", want, md)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{4.4, "0:04"},
		{59.6, "1:00"},
		{125, "2:05"},
	}
	for _, tc := range tests {
		if got := formatSeconds(tc.in); got != tc.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateStyle(t *testing.T) {
	if err := validateStyle("dark"); err != nil {
		t.Errorf("dark: %v", err)
	}
	if err := validateStyle("auto"); err != nil {
		t.Errorf("auto: %v", err)
	}
	if err := validateStyle("/does/not/exist.json"); err == nil {
		t.Error("expected an error for a missing style file")
	}
}

func TestRenderMarkdown(t *testing.T) {
	style = "notty"
	width = 60
	var b strings.Builder
	if err := renderMarkdown(&b, "# Title\n\nSome text."); err != nil {
		t.Fatalf("renderMarkdown: %v", err)
	}
	if !strings.Contains(b.String(), "Some text.") {
		t.Errorf("rendered output is missing the body: %q", b.String())
	}
}
