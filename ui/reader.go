package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
)

const (
	statusBarHeight = 1
	headerHeight    = 2
	minQueueWidth   = 16
)

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true).
			Render

	statusBarPercentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFDFDF")).
				Background(lipgloss.Color("#A33A3A")).
				Render

	titleStyle = lipgloss.NewStyle().Bold(true)

	queueHeadingStyle = lipgloss.NewStyle().Foreground(fuchsia).Bold(true)
	queueCursorStyle  = lipgloss.NewStyle().Reverse(true)
	queueCurrentStyle = lipgloss.NewStyle().Foreground(green)
	queueDimStyle     = lipgloss.NewStyle().Foreground(gray)

	separatorStyle = lipgloss.NewStyle().Foreground(gray)

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"})
)

func lexioLogoView() string {
	return logoStyle(" Lexio ")
}

func (m *model) queueWidth() int {
	w := m.cfg.QueueWidth
	if w <= 0 {
		w = 34
	}
	return max(min(w, m.width/3), minQueueWidth)
}

func (m *model) setSize() {
	bodyHeight := m.height - headerHeight - statusBarHeight
	if m.help.ShowAll {
		bodyHeight -= lipgloss.Height(m.helpView())
	}
	bodyHeight = max(bodyHeight, 1)

	m.reader.Width = max(m.width-m.queueWidth()-1, 10)
	m.reader.Height = bodyHeight
	m.sections.SetSize(m.width, bodyHeight)
	m.help.Width = m.width
}

func (m model) View() string {
	if m.width == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView() + "\n")

	switch m.mode {
	case modeSections:
		b.WriteString(m.sections.View())
	case modeVoices:
		b.WriteString(m.fill(m.picker.view(m.width, m.reader.Height), m.reader.Height))
	default:
		b.WriteString(m.bodyView())
	}
	b.WriteString("\n")

	if m.mode == modeAsk {
		b.WriteString(m.ask.View())
	} else {
		m.statusBarView(&b)
	}

	if m.help.ShowAll {
		b.WriteString("\n" + m.helpView())
	}
	return b.String()
}

func (m model) headerView() string {
	doc := m.deps.Document
	title := doc.Title
	if title == "" {
		title = "Untitled"
	}
	title = truncate.StringWithTail(title, uint(max(m.width-2, 1)), ellipsis) //nolint:gosec
	if m.cfg.Hyperlinks && doc.URL != "" {
		title = termenv.Hyperlink(doc.URL, title)
	}
	line := " " + titleStyle.Render(title)

	bar := m.status.ProgressBar(max(m.width-2, 0))
	if bar == "" {
		bar = queueDimStyle.Render(fmt.Sprintf("%d sections · %d queued", len(doc.Sections), len(m.queue.Items)))
	}
	return line + "\n " + bar
}

func (m model) bodyView() string {
	qw := m.queueWidth()
	h := m.reader.Height

	queueCol := lipgloss.NewStyle().Width(qw).Height(h).MaxHeight(h).Render(m.queueView(qw, h))
	sep := separatorStyle.Render(strings.TrimSuffix(strings.Repeat("│\n", h), "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, queueCol, sep, m.reader.View())
}

func (m model) queueView(width, height int) string {
	var lines []string
	lines = append(lines, queueHeadingStyle.Render(fmt.Sprintf(" Queue (%d)", len(m.queue.Items))))

	for i, item := range m.queue.Items {
		marker := "  "
		if i == m.queue.CurrentIndex {
			marker = "• "
			if m.status.IsActive() || m.status.NeedsSpinner() {
				marker = "▶ "
			}
		}
		title := runewidth.Truncate(item.Title, max(width-3, 1), ellipsis)
		row := " " + marker + title
		switch {
		case i == m.cursor:
			row = queueCursorStyle.Render(runewidth.FillRight(row, width))
		case i == m.queue.CurrentIndex:
			row = queueCurrentStyle.Render(row)
		}
		lines = append(lines, row)
	}
	if len(m.queue.Items) == 0 {
		lines = append(lines, queueDimStyle.Render(" (empty)"))
	}

	var flags []string
	if m.queue.Repeat {
		flags = append(flags, "repeat")
	}
	if m.queue.Shuffle {
		flags = append(flags, "shuffle")
	}
	if len(flags) > 0 {
		lines = append(lines, "", queueDimStyle.Render(" "+strings.Join(flags, " · ")))
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m model) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	logo := lexioLogoView()

	percent := math.Max(minPercent, math.Min(maxPercent, m.status.progress))
	progress := statusBarPercentStyle(fmt.Sprintf(" %3.f%% ", percent*percentToStringMagnitude))
	helpNote := statusBarHelpStyle(" ? Help ")

	style := statusBarNoteStyle
	var note string
	switch {
	case m.statusMessage != "":
		note = m.statusMessage
		style = statusBarMessageStyle
		if m.statusIsError {
			style = statusBarErrorStyle
		}
	default:
		note = m.status.CompactStatus()
		if m.status.NeedsSpinner() {
			note = m.spinner.View() + " Generating audio for " + m.status.title
		}
		if m.status.voice != "" {
			note += " · " + m.status.voice
		}
	}

	avail := max(0, m.width-
		ansi.PrintableRuneWidth(logo)-
		ansi.PrintableRuneWidth(progress)-
		ansi.PrintableRuneWidth(helpNote))
	note = truncate.StringWithTail(" "+note+" ", uint(avail), ellipsis) //nolint:gosec
	padding := max(0, avail-ansi.PrintableRuneWidth(note))

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		style(note),
		style(strings.Repeat(" ", padding)),
		progress,
		helpNote,
	)
}

func (m model) helpView() string {
	s := m.help.View(m.keys)
	if m.cfg.DetailedStatus {
		s = lipgloss.JoinHorizontal(lipgloss.Top, s, "    ", m.status.DetailedStatus(40))
	}
	s = "\n" + indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.width > 0 {
		lines := strings.Split(s, "\n")
		for i := range lines {
			n := max(m.width-ansi.PrintableRuneWidth(lines[i]), 0)
			lines[i] += strings.Repeat(" ", n)
		}
		s = strings.Join(lines, "\n")
	}
	return helpViewStyle.Render(s)
}

// fill pads s to exactly height lines.
func (m model) fill(s string, height int) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}

func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
