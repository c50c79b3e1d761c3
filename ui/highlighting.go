package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"
)

var (
	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("226")).
			Foreground(lipgloss.Color("0")).
			Bold(true)

	spokenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})
)

// HighlightWords wraps words to width and highlights word index highlight.
// Words before it are dimmed. It returns the rendered lines and the line
// that holds the highlighted word, or -1 when nothing is highlighted.
//
// The word slice must come from the same split the session scheduled, so
// index i on screen is index i in the timing schedule.
func HighlightWords(words []string, highlight, width int) ([]string, int) {
	var (
		lines     []string
		line      strings.Builder
		lineWidth int
		target    = -1
	)

	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}

	for i, w := range words {
		w = strings.ReplaceAll(w, "\n", " ")
		ww := runewidth.StringWidth(w)

		if width > 0 && lineWidth > 0 && lineWidth+1+ww > width {
			flush()
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}

		switch {
		case i == highlight:
			line.WriteString(highlightStyle.Render(w))
			target = len(lines)
		case highlight >= 0 && i < highlight:
			line.WriteString(spokenStyle.Render(w))
		default:
			line.WriteString(w)
		}
		lineWidth += ww
	}
	if lineWidth > 0 || len(lines) == 0 {
		flush()
	}

	return lines, target
}

// scrollTarget returns the viewport offset that keeps line visible about a
// third of the way down a viewport of the given height.
func scrollTarget(line, height, total int) int {
	if line < 0 || height <= 0 {
		return -1
	}
	off := line - height/3
	return max(0, min(off, total-height))
}
