package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/lexio-app/lexio/internal/playback"
)

// StatusDisplay renders playback status for the status bar and the reader
// header.
type StatusDisplay struct {
	state     playback.State
	title     string
	word      string
	highlight int
	words     int
	elapsed   time.Duration
	total     time.Duration
	progress  float64
	speed     float64
	voice     string
	errorMsg  string
}

// NewStatusDisplay creates an idle status display.
func NewStatusDisplay() *StatusDisplay {
	return &StatusDisplay{
		state:     playback.StateIdle,
		highlight: -1,
		speed:     playback.DefaultSpeed,
	}
}

// Update copies a session snapshot into the display. words is the number of
// words in the loaded item.
func (s *StatusDisplay) Update(st playback.Status, words int) {
	s.state = st.State
	s.title = st.Title
	s.word = st.Word
	s.highlight = st.Highlight
	s.words = words
	s.elapsed = st.Elapsed
	s.total = st.Total
	s.progress = st.Progress()
	s.speed = st.Speed
	s.voice = st.Voice
	s.errorMsg = st.ErrMessage()
}

// SetVoiceName replaces the voice id shown with a display name.
func (s *StatusDisplay) SetVoiceName(name string) {
	s.voice = name
}

// CompactStatus returns a one-line status for the status bar.
func (s *StatusDisplay) CompactStatus() string {
	if s.errorMsg != "" {
		return lipgloss.NewStyle().Foreground(s.stateColor()).Render("✗ " + s.errorMsg)
	}
	if s.state == playback.StateIdle && s.title == "" {
		return ""
	}

	status := lipgloss.NewStyle().Foreground(s.stateColor()).
		Render(fmt.Sprintf("%s %s", s.stateIcon(), s.state))

	if s.state.Active() || s.state == playback.StateCompleted {
		counter := fmt.Sprintf(" %s/%s", formatDuration(s.elapsed), formatDuration(s.total))
		if s.words > 0 && s.highlight >= 0 {
			counter += fmt.Sprintf(" · word %d/%d", s.highlight+1, s.words)
		}
		status += lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(counter)
	}
	status += fmt.Sprintf(" · %.1fx", s.speed)
	return status
}

// DetailedStatus returns a multi-line summary for the help panel.
func (s *StatusDisplay) DetailedStatus(width int) string {
	var lines []string

	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Playback"))
	stateLine := fmt.Sprintf("State: %s %s", s.stateIcon(), s.state)
	lines = append(lines, lipgloss.NewStyle().Foreground(s.stateColor()).Render(stateLine))
	if s.title != "" {
		lines = append(lines, "Item: "+truncate.StringWithTail(s.title, uint(max(width-8, 1)), ellipsis)) //nolint:gosec
	}
	if s.total > 0 {
		lines = append(lines, fmt.Sprintf("Position: %s / %s", formatDuration(s.elapsed), formatDuration(s.total)))
		if width > 20 {
			lines = append(lines, s.renderProgressBar(width-4))
		}
	}
	lines = append(lines, fmt.Sprintf("Speed: %.1fx", s.speed))
	if s.voice != "" {
		lines = append(lines, "Voice: "+s.voice)
	}
	if s.errorMsg != "" {
		errLine := truncate.StringWithTail(s.errorMsg, uint(max(width-9, 1)), ellipsis) //nolint:gosec
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Render("Error: "+errLine))
	}

	return strings.Join(lines, "\n")
}

// ProgressBar returns a progress bar of the given width, or "" when there
// is nothing to show.
func (s *StatusDisplay) ProgressBar(width int) string {
	if s.total <= 0 || width < 10 {
		return ""
	}
	return s.renderProgressBar(width)
}

func (s *StatusDisplay) renderProgressBar(width int) string {
	if width < 10 {
		return ""
	}

	filledWidth := min(int(s.progress*float64(width)), width)
	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	filledStyle := lipgloss.NewStyle().Foreground(s.stateColor())
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#333333"))
	return filledStyle.Render(filled) + emptyStyle.Render(empty)
}

func (s *StatusDisplay) stateColor() lipgloss.Color {
	if s.errorMsg != "" {
		return lipgloss.Color("#FF0000")
	}
	switch s.state {
	case playback.StatePlaying:
		return lipgloss.Color("#00FF00")
	case playback.StatePaused:
		return lipgloss.Color("#FFFF00")
	case playback.StateLoading:
		return lipgloss.Color("#00AAFF")
	case playback.StateCompleted:
		return lipgloss.Color("#888888")
	case playback.StateError:
		return lipgloss.Color("#FF0000")
	default:
		return lipgloss.Color("#666666")
	}
}

func (s *StatusDisplay) stateIcon() string {
	switch s.state {
	case playback.StatePlaying:
		return "▶"
	case playback.StatePaused:
		return "⏸"
	case playback.StateLoading:
		return "⟳"
	case playback.StateCompleted:
		return "■"
	case playback.StateError:
		return "✗"
	default:
		return "○"
	}
}

// formatDuration formats a duration as m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "0:00"
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// IsActive reports whether an item is playing or paused.
func (s *StatusDisplay) IsActive() bool {
	return s.state.Active()
}

// NeedsSpinner reports whether audio is being generated.
func (s *StatusDisplay) NeedsSpinner() bool {
	return s.state == playback.StateLoading
}

// Reset returns the display to idle.
func (s *StatusDisplay) Reset() {
	*s = *NewStatusDisplay()
}
