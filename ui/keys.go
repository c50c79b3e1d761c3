package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PlayPause key.Binding
	Next      key.Binding
	Previous  key.Binding
	Back      key.Binding
	Forward   key.Binding
	Faster    key.Binding
	Slower    key.Binding

	Up       key.Binding
	Down     key.Binding
	Jump     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Add      key.Binding
	Summary  key.Binding
	Remove   key.Binding
	Repeat   key.Binding
	Shuffle  key.Binding

	Voice key.Binding
	Ask   key.Binding
	Copy  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next item")),
		Previous:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous item")),
		Back:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back 10s")),
		Forward:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "forward 10s")),
		Faster:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),

		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Jump:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selected")),
		MoveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add section")),
		Summary:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "add summary")),
		Remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Repeat:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		Shuffle:  key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "shuffle")),

		Voice: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "voice")),
		Ask:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "ask")),
		Copy:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy text")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Next, k.Add, k.Voice, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Next, k.Previous, k.Back, k.Forward, k.Faster, k.Slower},
		{k.Up, k.Down, k.Jump, k.MoveUp, k.MoveDown, k.Remove},
		{k.Add, k.Summary, k.Ask, k.Repeat, k.Shuffle},
		{k.Voice, k.Copy, k.Help, k.Quit},
	}
}

var speedSteps = []float64{0.7, 0.8, 0.9, 1.0, 1.1, 1.2}

// cycleSpeed returns the next speed step after cur in direction dir,
// wrapping at either end.
func cycleSpeed(cur float64, dir int) float64 {
	i := 0
	for j, s := range speedSteps {
		if cur >= s-0.001 {
			i = j
		}
	}
	i = (i + dir + len(speedSteps)) % len(speedSteps)
	return speedSteps[i]
}
