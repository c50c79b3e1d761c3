package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"

	"github.com/lexio-app/lexio/internal/provider/elevenlabs"
)

var (
	pickerCursorStyle = lipgloss.NewStyle().Foreground(fuchsia).Bold(true)
	pickerMatchStyle  = lipgloss.NewStyle().Foreground(green).Underline(true)
	pickerDimStyle    = lipgloss.NewStyle().Foreground(gray)
)

// voiceSource adapts a voice list to fuzzy.Source.
type voiceSource []elevenlabs.Voice

func (v voiceSource) String(i int) string {
	return v[i].Name + " " + v[i].Gender + " " + v[i].Accent + " " + v[i].Description
}

func (v voiceSource) Len() int { return len(v) }

// voicePicker is a filterable voice list.
type voicePicker struct {
	voices  []elevenlabs.Voice
	input   textinput.Model
	matches fuzzy.Matches
	cursor  int
	current string
}

func newVoicePicker(voices []elevenlabs.Voice) voicePicker {
	ti := textinput.New()
	ti.Prompt = "Voice: "
	ti.Placeholder = "type to filter"
	ti.CharLimit = 64

	p := voicePicker{voices: voices, input: ti}
	p.filter()
	return p
}

func (p *voicePicker) open(current string) tea.Cmd {
	p.current = current
	p.input.Reset()
	p.filter()
	p.cursor = 0
	for i, m := range p.matches {
		if p.voices[m.Index].ID == current {
			p.cursor = i
		}
	}
	return p.input.Focus()
}

func (p *voicePicker) close() {
	p.input.Blur()
}

func (p *voicePicker) filter() {
	q := strings.TrimSpace(p.input.Value())
	if q == "" {
		p.matches = make(fuzzy.Matches, len(p.voices))
		for i := range p.voices {
			p.matches[i] = fuzzy.Match{Str: voiceSource(p.voices).String(i), Index: i}
		}
	} else {
		p.matches = fuzzy.FindFrom(q, voiceSource(p.voices))
	}
	if p.cursor >= len(p.matches) {
		p.cursor = max(len(p.matches)-1, 0)
	}
}

// selected returns the voice under the cursor.
func (p voicePicker) selected() (elevenlabs.Voice, bool) {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return elevenlabs.Voice{}, false
	}
	return p.voices[p.matches[p.cursor].Index], true
}

func (p voicePicker) update(msg tea.Msg) (voicePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "ctrl+p":
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		case "down", "ctrl+n":
			if p.cursor < len(p.matches)-1 {
				p.cursor++
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	before := p.input.Value()
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor = 0
		p.filter()
	}
	return p, cmd
}

func (p voicePicker) view(width, height int) string {
	var b strings.Builder
	b.WriteString(p.input.View() + "\n\n")

	rows := max(height-3, 1)
	start := 0
	if p.cursor >= rows {
		start = p.cursor - rows + 1
	}
	for i := start; i < len(p.matches) && i < start+rows; i++ {
		v := p.voices[p.matches[i].Index]
		marker := "  "
		if i == p.cursor {
			marker = pickerCursorStyle.Render("> ")
		}
		name := highlightMatches(v.Name, p.matches[i].MatchedIndexes)
		if v.ID == p.current {
			name += pickerDimStyle.Render(" (current)")
		}
		detail := fmt.Sprintf(" %s, %s. %s", v.Gender, v.Accent, v.Description)
		detail = truncate.StringWithTail(detail, uint(max(width-len(v.Name)-16, 0)), ellipsis) //nolint:gosec
		fmt.Fprintf(&b, "%s%s%s\n", marker, name, pickerDimStyle.Render(detail))
	}
	if len(p.matches) == 0 {
		b.WriteString(pickerDimStyle.Render("  No voices match.") + "\n")
	}
	return b.String()
}

// highlightMatches styles the runes of name matched by the fuzzy search.
// Matched indexes past the name fall in the description and are ignored.
func highlightMatches(name string, matched []int) string {
	if len(matched) == 0 {
		return name
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range name {
		if hit[i] {
			b.WriteString(pickerMatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
