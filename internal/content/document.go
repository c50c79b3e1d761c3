// Package content turns scraped pages into speakable text and queue items.
package content

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lexio-app/lexio/internal/apperr"
	"github.com/lexio-app/lexio/internal/queue"
)

const (
	// SummaryID is the queue id of the generated overview item.
	SummaryID = "summary"
	// DefaultSummaryLength is the default Summary cut-off.
	DefaultSummaryLength = 200
	// SummaryItemLength is the cut-off for the summary queue item.
	SummaryItemLength = 1000
)

// Document is a scraped page.
type Document struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CleanText string    `json:"cleanText"`
	HTML      string    `json:"html,omitempty"`
	Sections  []Section `json:"sections"`
}

// Candidate is a section offered to the recommender.
type Candidate struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Index   int    `json:"index"`
}

// SectionID returns the queue id of section i.
func SectionID(i int) string {
	return fmt.Sprintf("section-%d", i)
}

// SectionItem returns section i as a queue item.
func (d Document) SectionItem(i int) (queue.Item, bool) {
	if i < 0 || i >= len(d.Sections) {
		return queue.Item{}, false
	}
	s := d.Sections[i]
	return queue.Item{ID: SectionID(i), Title: s.Title, Content: s.Content}, true
}

// SummaryItem returns the overview item built from the page text.
func (d Document) SummaryItem() queue.Item {
	source := d.CleanText
	if source == "" {
		source = d.Text
	}
	return queue.Item{
		ID:      SummaryID,
		Title:   "Summary",
		Content: Summary(source, SummaryItemLength),
	}
}

// Candidates returns the sections for which isPresent reports false, in
// page order. A nil isPresent offers every section.
func (d Document) Candidates(isPresent func(id string) bool) []Candidate {
	out := make([]Candidate, 0, len(d.Sections))
	for i, s := range d.Sections {
		if isPresent != nil && isPresent(SectionID(i)) {
			continue
		}
		out = append(out, Candidate{Title: s.Title, Content: s.Content, Index: i})
	}
	return out
}

// ValidateURL rejects anything that is not an absolute http(s) URL.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return apperr.Validation("Valid URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return apperr.Validation(fmt.Sprintf("Invalid URL: %s", raw))
	}
	return nil
}
