// Package recommend picks page sections that match a listener's request,
// asking a chat model first and scoring keywords locally when the model is
// unavailable or names no section.
package recommend

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lexio-app/lexio/internal/apperr"
	"github.com/lexio-app/lexio/internal/content"
	"github.com/lexio-app/lexio/internal/provider/openai"
	"github.com/lexio-app/lexio/internal/queue"
)

// Source tells where a recommendation's sections came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

const remoteExplanation = "AI-powered analysis with ChatGPT"

// Result is a recommendation. Indices are section indices into the
// document, in the order they should be queued, without duplicates.
type Result struct {
	Text           string
	Indices        []int
	Titles         []string
	IncludeSummary bool
	Explanation    string
	Source         Source
}

// Chatter is the conversational model behind the adapter.
type Chatter interface {
	Chat(ctx context.Context, req openai.ChatRequest) (openai.ChatResponse, error)
}

// Adapter turns a free-text request into section picks.
type Adapter struct {
	chat Chatter
}

// New returns an adapter. A nil chat uses the local scorer only.
func New(chat Chatter) *Adapter {
	return &Adapter{chat: chat}
}

// Recommend returns the candidates that match query. Remote failures are
// logged and answered by the local scorer; only an empty query or a
// cancelled context is an error.
func (a *Adapter) Recommend(ctx context.Context, query string, candidates []content.Candidate) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, apperr.Validation("Message is required")
	}
	if a.chat == nil {
		return Local(query, candidates), nil
	}

	resp, err := a.chat.Chat(ctx, openai.ChatRequest{
		Message:  query,
		Sections: candidates,
		Context:  openai.DefaultContext,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		log.Warn("Recommender unavailable, using local analysis", "error", err)
		return Local(query, candidates), nil
	}

	indices, titles := ParseReply(resp.Response, candidates)
	if len(indices) == 0 {
		local := Local(query, candidates)
		log.Debug("Reply named no sections, using local analysis", "matched", len(local.Indices))
		return Result{
			Text:           resp.Response,
			Indices:        local.Indices,
			Titles:         local.Titles,
			IncludeSummary: local.IncludeSummary,
			Explanation:    remoteExplanation,
			Source:         SourceLocal,
		}, nil
	}

	return Result{
		Text:           resp.Response,
		Indices:        indices,
		Titles:         titles,
		IncludeSummary: mentionsSummary(resp.Response) || mentionsSummary(query),
		Explanation:    remoteExplanation,
		Source:         SourceRemote,
	}, nil
}

var sectionRef = regexp.MustCompile(`(?i)(?:section\s+)?(\d+)`)

// ParseReply reads the 1-based section numbers in a model reply and maps
// them to candidate indices. Numbers outside the candidate list are
// ignored, as are repeats.
func ParseReply(reply string, candidates []content.Candidate) ([]int, []string) {
	var indices []int
	var titles []string
	seen := make(map[int]bool)

	for _, m := range sectionRef.FindAllStringSubmatch(reply, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(candidates) {
			continue
		}
		c := candidates[n-1]
		if seen[c.Index] {
			continue
		}
		seen[c.Index] = true
		indices = append(indices, c.Index)
		titles = append(titles, c.Title)
	}
	return indices, titles
}

func mentionsSummary(s string) bool {
	return strings.Contains(strings.ToLower(s), "summary")
}

// Apply queues the recommended sections of doc, then the summary when
// requested. It returns how many items were newly added.
func Apply(r Result, store *queue.Store, doc content.Document) int {
	added := 0
	for _, i := range r.Indices {
		item, ok := doc.SectionItem(i)
		if !ok {
			continue
		}
		if store.Add(item) {
			added++
		}
	}
	if r.IncludeSummary && store.Add(doc.SummaryItem()) {
		added++
	}
	return added
}
