// Package ui provides the listening TUI: the queue, the text of the item
// being read with the spoken word highlighted, and playback controls.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lexio-app/lexio/internal/apperr"
	"github.com/lexio-app/lexio/internal/config"
	"github.com/lexio-app/lexio/internal/content"
	"github.com/lexio-app/lexio/internal/playback"
	"github.com/lexio-app/lexio/internal/player"
	"github.com/lexio-app/lexio/internal/provider/elevenlabs"
	"github.com/lexio-app/lexio/internal/queue"
	"github.com/lexio-app/lexio/internal/recommend"
	"github.com/lexio-app/lexio/internal/timing"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "added"
	recommendTimeout     = 30 * time.Second
	ellipsis             = "…"
)

var (
	fuchsia = lipgloss.Color("#EE6FF8")
	green   = lipgloss.Color("#04B575")
	cream   = lipgloss.Color("#ECFD65")
	gray    = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
)

// VoiceStore persists the selected voice.
type VoiceStore interface {
	SetVoice(ctx context.Context, id string) error
}

// Deps are the collaborators the TUI drives.
type Deps struct {
	Controller  *player.Controller
	Document    content.Document
	Voices      []elevenlabs.Voice
	Recommender *recommend.Adapter // nil disables asking
	Prefs       VoiceStore         // nil skips persisting the voice

	// ConfigUpdates delivers reloaded configuration. May be nil.
	ConfigUpdates <-chan config.Config
}

// NewProgram returns a new Tea program.
func NewProgram(ctx context.Context, cfg Config, deps Deps) *tea.Program {
	log.Debug("Starting listening UI", "sections", len(deps.Document.Sections), "voices", len(deps.Voices))

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(ctx, cfg, deps), opts...)
}

type mode int

const (
	modeListen mode = iota
	modeSections
	modeVoices
	modeAsk
)

func (m mode) String() string {
	return map[mode]string{
		modeListen:   "listening",
		modeSections: "choosing sections",
		modeVoices:   "choosing a voice",
		modeAsk:      "asking",
	}[m]
}

type model struct {
	ctx    context.Context
	cfg    Config
	deps   Deps
	keys   keyMap
	events notifier
	mode   mode

	width  int
	height int

	queue  queue.State
	cursor int

	// Text of the loaded item, split the way the session schedules it.
	readerID   string
	readerText string
	words      []string
	highlight  int

	status   *StatusDisplay
	reader   viewport.Model
	sections list.Model
	picker   voicePicker
	ask      textinput.Model
	help     help.Model
	spinner  spinner.Model
	spinning bool
	asking   bool

	statusMessage string
	statusIsError bool
	statusID      int
}

func newModel(ctx context.Context, cfg Config, deps Deps) model {
	ask := textinput.New()
	ask.Prompt = "Ask: "
	ask.Placeholder = "e.g. tell me about the main argument"
	ask.CharLimit = 200
	ask.ShowSuggestions = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(fuchsia)

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := model{
		ctx:       ctx,
		cfg:       cfg,
		deps:      deps,
		keys:      newKeyMap(),
		events:    newNotifier(),
		highlight: -1,
		status:    NewStatusDisplay(),
		reader:    viewport.New(0, 0),
		sections:  newSectionList(),
		picker:    newVoicePicker(deps.Voices),
		ask:       ask,
		help:      h,
		spinner:   sp,
	}

	deps.Controller.Session().OnChange(func(playback.Status) { m.events.notify() })
	deps.Controller.Store().Subscribe(func(queue.State) { m.events.notify() })
	m.refresh()
	return m
}

func (m model) store() *queue.Store { return m.deps.Controller.Store() }

func (m model) session() *playback.Session { return m.deps.Controller.Session() }

func (m model) controller() *player.Controller { return m.deps.Controller }

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.events.wait(),
		waitForConfig(m.deps.ConfigUpdates),
	)
}

// refresh pulls the current queue and session state.
func (m *model) refresh() {
	m.queue = m.store().Snapshot()
	switch {
	case len(m.queue.Items) == 0:
		m.cursor = 0
	case m.cursor >= len(m.queue.Items):
		m.cursor = len(m.queue.Items) - 1
	}

	st := m.session().Status()
	item, ok := m.session().Item()
	if !ok {
		item, ok = m.queue.Current()
	}
	if !ok {
		item = queue.Item{}
	}
	if item.ID != m.readerID || item.Content != m.readerText {
		m.readerID = item.ID
		m.readerText = item.Content
		m.words = timing.Words(item.Content)
		m.reader.GotoTop()
	}

	m.status.Update(st, len(m.words))
	if v, found := elevenlabs.FindVoice(m.deps.Voices, st.Voice); found {
		m.status.SetVoiceName(v.Name)
	}
	m.highlight = st.Highlight
	m.renderReader()
}

func (m *model) renderReader() {
	if m.reader.Width <= 0 {
		return
	}
	if len(m.words) == 0 {
		m.reader.SetContent(pickerDimStyle.Render("Nothing queued. Press a to add a section or s for the summary."))
		return
	}

	lines, line := HighlightWords(m.words, m.highlight, m.reader.Width-1)
	m.reader.SetContent(strings.Join(lines, "\n"))
	if line >= 0 && (line < m.reader.YOffset || line >= m.reader.YOffset+m.reader.Height) {
		m.reader.SetYOffset(scrollTarget(line, m.reader.Height, len(lines)))
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.setSize()
		m.renderReader()
		return m, nil

	case refreshMsg:
		m.refresh()
		cmds = append(cmds, m.events.wait())
		if m.status.NeedsSpinner() && !m.spinning {
			m.spinning = true
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.status.NeedsSpinner() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case actionMsg:
		if msg.err != nil {
			log.Debug("Action failed", "error", msg.err)
			return m, m.showStatusMessage(apperr.Message(msg.err), true)
		}
		if msg.note != "" {
			return m, m.showStatusMessage(msg.note, false)
		}
		return m, nil

	case recommendMsg:
		m.asking = false
		return m, m.applyRecommendation(msg)

	case configMsg:
		cfg := config.Config(msg)
		m.session().SetSyncConfig(cfg.Sync)
		if err := m.session().SetVolume(cfg.Volume); err != nil {
			log.Warn("Unable to apply volume", "error", err)
		}
		log.Info("Configuration reloaded", "tick", cfg.Sync.TickInterval, "drift", cfg.Sync.SpeedDrift)
		return m, tea.Batch(
			m.showStatusMessage("Configuration reloaded", false),
			waitForConfig(m.deps.ConfigUpdates),
		)

	case statusMessageTimeoutMsg:
		if int(msg) == m.statusID {
			m.statusMessage = ""
			m.statusIsError = false
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSections:
			return m.updateSections(msg)
		case modeVoices:
			return m.updateVoices(msg)
		case modeAsk:
			return m.updateAsk(msg)
		default:
			return m.updateListen(msg)
		}
	}

	switch m.mode {
	case modeSections:
		var cmd tea.Cmd
		m.sections, cmd = m.sections.Update(msg)
		cmds = append(cmds, cmd)
	case modeAsk:
		var cmd tea.Cmd
		m.ask, cmd = m.ask.Update(msg)
		cmds = append(cmds, cmd)
	default:
		var cmd tea.Cmd
		m.reader, cmd = m.reader.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m model) updateListen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.controller()
	store := m.store()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.setSize()
		m.renderReader()
		return m, nil

	case key.Matches(msg, m.keys.PlayPause):
		return m, action(ctrl.Toggle, "")
	case key.Matches(msg, m.keys.Next):
		return m, action(ctrl.Next, "")
	case key.Matches(msg, m.keys.Previous):
		return m, action(ctrl.Previous, "")
	case key.Matches(msg, m.keys.Back):
		return m, action(ctrl.Back, "")
	case key.Matches(msg, m.keys.Forward):
		return m, action(ctrl.Forward, "")

	case key.Matches(msg, m.keys.Faster), key.Matches(msg, m.keys.Slower):
		dir := 1
		if key.Matches(msg, m.keys.Slower) {
			dir = -1
		}
		speed := ctrl.SetSpeed(cycleSpeed(m.session().Status().Speed, dir))
		m.refresh()
		return m, m.showStatusMessage(fmt.Sprintf("Speed %.1fx. Press space to play.", speed), false)

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.queue.Items)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Jump):
		if len(m.queue.Items) == 0 {
			return m, nil
		}
		i := m.cursor
		return m, action(func() error { return ctrl.JumpTo(i) }, "")

	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		to := m.cursor - 1
		if key.Matches(msg, m.keys.MoveDown) {
			to = m.cursor + 1
		}
		if to < 0 || to >= len(m.queue.Items) {
			return m, nil
		}
		if err := store.Reorder(m.cursor, to); err != nil {
			return m, m.showStatusMessage(err.Error(), true)
		}
		m.cursor = to
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Add):
		candidates := m.deps.Document.Candidates(store.IsPresent)
		if len(candidates) == 0 {
			return m, m.showStatusMessage("Every section is already queued", false)
		}
		m.mode = modeSections
		return m, m.sections.SetItems(sectionItems(candidates))

	case key.Matches(msg, m.keys.Summary):
		if !store.Add(m.deps.Document.SummaryItem()) {
			return m, m.showStatusMessage("Summary is already queued", false)
		}
		m.refresh()
		return m, m.showStatusMessage("Added summary", false)

	case key.Matches(msg, m.keys.Remove):
		if m.cursor >= len(m.queue.Items) {
			return m, nil
		}
		item := m.queue.Items[m.cursor]
		store.Remove(item.ID)
		m.refresh()
		return m, m.showStatusMessage("Removed "+item.Title, false)

	case key.Matches(msg, m.keys.Repeat):
		store.SetRepeat(!m.queue.Repeat)
		m.refresh()
		return m, m.showStatusMessage(fmt.Sprintf("Repeat %s", onOff(m.queue.Repeat)), false)

	case key.Matches(msg, m.keys.Shuffle):
		on := store.ToggleShuffle()
		m.refresh()
		return m, m.showStatusMessage(fmt.Sprintf("Shuffle %s", onOff(on)), false)

	case key.Matches(msg, m.keys.Voice):
		if len(m.deps.Voices) == 0 {
			return m, m.showStatusMessage("No voices available", true)
		}
		m.mode = modeVoices
		return m, m.picker.open(m.session().Status().Voice)

	case key.Matches(msg, m.keys.Ask):
		if m.deps.Recommender == nil {
			return m, m.showStatusMessage("Asking needs the recommender", true)
		}
		if m.asking {
			return m, m.showStatusMessage("Still thinking about the last question", false)
		}
		m.mode = modeAsk
		m.ask.Reset()
		suggestions := recommend.Suggestions(m.deps.Document.Candidates(m.store().IsPresent))
		m.ask.SetSuggestions(suggestions)
		m.ask.Placeholder = "e.g. " + strings.ToLower(suggestions[0]) + " (tab completes)"
		return m, m.ask.Focus()

	case key.Matches(msg, m.keys.Copy):
		text, title := m.readerText, m.status.title
		if text == "" {
			return m, nil
		}
		return m, action(func() error { return clipboard.WriteAll(text) }, "Copied "+title)
	}

	var cmd tea.Cmd
	m.reader, cmd = m.reader.Update(msg)
	return m, cmd
}

func (m model) updateSections(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sections.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.sections, cmd = m.sections.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc", "q":
		m.mode = modeListen
		return m, nil
	case "enter":
		entry, ok := m.sections.SelectedItem().(sectionEntry)
		if !ok {
			return m, nil
		}
		item, ok := m.deps.Document.SectionItem(entry.candidate.Index)
		if !ok || !m.store().Add(item) {
			return m, m.showStatusMessage(entry.candidate.Title+" is already queued", false)
		}
		m.sections.RemoveItem(m.sections.Index())
		if len(m.sections.Items()) == 0 {
			m.mode = modeListen
		}
		m.refresh()
		return m, m.showStatusMessage("Added "+item.Title, false)
	}

	var cmd tea.Cmd
	m.sections, cmd = m.sections.Update(msg)
	return m, cmd
}

func (m model) updateVoices(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.picker.close()
		m.mode = modeListen
		return m, nil
	case "enter":
		v, ok := m.picker.selected()
		m.picker.close()
		m.mode = modeListen
		if !ok {
			return m, nil
		}
		m.controller().SetVoice(v.ID)
		m.refresh()
		prefs, ctx := m.deps.Prefs, m.ctx
		return m, action(func() error {
			if prefs == nil {
				return nil
			}
			return prefs.SetVoice(ctx, v.ID)
		}, "Voice: "+v.Name)
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.update(msg)
	return m, cmd
}

func (m model) updateAsk(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ask.Blur()
		m.mode = modeListen
		return m, nil
	case "enter":
		query := strings.TrimSpace(m.ask.Value())
		m.ask.Blur()
		m.mode = modeListen
		if query == "" {
			return m, nil
		}
		m.asking = true
		return m, tea.Batch(
			m.showStatusMessage("Thinking…", false),
			recommendCmd(m.ctx, m, query),
		)
	}

	var cmd tea.Cmd
	m.ask, cmd = m.ask.Update(msg)
	return m, cmd
}

func (m *model) applyRecommendation(msg recommendMsg) tea.Cmd {
	if msg.err != nil {
		return m.showStatusMessage(apperr.Message(msg.err), true)
	}
	added := recommend.Apply(msg.result, m.store(), m.deps.Document)
	log.Info("Applied recommendation", "query", msg.query, "source", msg.result.Source, "added", added)
	m.refresh()

	text := firstLine(msg.result.Text)
	if added > 0 {
		text = fmt.Sprintf("%s (%d added)", text, added)
	}
	return m.showStatusMessage(text, false)
}

func (m *model) showStatusMessage(msg string, isError bool) tea.Cmd {
	m.statusMessage = msg
	m.statusIsError = isError
	m.statusID++
	return waitForStatusMessageTimeout(m.statusID)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
