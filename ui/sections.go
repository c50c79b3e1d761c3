package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/lexio-app/lexio/internal/content"
)

// sectionEntry is a section offered for queueing.
type sectionEntry struct {
	candidate content.Candidate
}

func (e sectionEntry) Title() string       { return e.candidate.Title }
func (e sectionEntry) Description() string { return content.Summary(e.candidate.Content, 90) }
func (e sectionEntry) FilterValue() string { return e.candidate.Title }

func newSectionList() list.Model {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(fuchsia).BorderForeground(fuchsia)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(lipgloss.AdaptiveColor{Light: "#F793FF", Dark: "#AD58B4"}).BorderForeground(fuchsia)

	l := list.New(nil, d, 0, 0)
	l.Title = "Add a section"
	l.Styles.Title = l.Styles.Title.Background(fuchsia)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("section", "sections")
	l.DisableQuitKeybindings()
	return l
}

// sectionItems lists the candidates still available to add.
func sectionItems(candidates []content.Candidate) []list.Item {
	items := make([]list.Item, len(candidates))
	for i, c := range candidates {
		items[i] = sectionEntry{candidate: c}
	}
	return items
}
