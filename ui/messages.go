package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexio-app/lexio/internal/config"
	"github.com/lexio-app/lexio/internal/recommend"
)

type (
	// refreshMsg means the session or the queue changed.
	refreshMsg struct{}

	// actionMsg reports the outcome of a controller action.
	actionMsg struct {
		err  error
		note string
	}

	// recommendMsg carries a recommender reply.
	recommendMsg struct {
		query  string
		result recommend.Result
		err    error
	}

	// configMsg carries a reloaded configuration.
	configMsg config.Config

	statusMessageTimeoutMsg int
)

// notifier coalesces change callbacks from other goroutines into a single
// pending refresh.
type notifier chan struct{}

func newNotifier() notifier {
	return make(notifier, 1)
}

func (n notifier) notify() {
	select {
	case n <- struct{}{}:
	default:
	}
}

func (n notifier) wait() tea.Cmd {
	return func() tea.Msg {
		<-n
		return refreshMsg{}
	}
}

func waitForConfig(ch <-chan config.Config) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configMsg(cfg)
	}
}

func waitForStatusMessageTimeout(id int) tea.Cmd {
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg(id)
	})
}

// action runs fn off the update loop.
func action(fn func() error, note string) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{err: fn(), note: note}
	}
}

func recommendCmd(ctx context.Context, m model, query string) tea.Cmd {
	rec := m.deps.Recommender
	candidates := m.deps.Document.Candidates(m.store().IsPresent)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, recommendTimeout)
		defer cancel()
		res, err := rec.Recommend(ctx, query, candidates)
		return recommendMsg{query: query, result: res, err: err}
	}
}
