// Package firecrawl scrapes web pages into speakable documents through the
// Firecrawl API.
package firecrawl

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/lexio-app/lexio/internal/apperr"
	"github.com/lexio-app/lexio/internal/content"
	"github.com/lexio-app/lexio/internal/provider"
)

// DefaultBaseURL is the Firecrawl v1 API.
const DefaultBaseURL = "https://api.firecrawl.dev/v1"

const name = "firecrawl"

// extractPrompt asks Firecrawl's LLM extraction for text that reads well
// aloud.
const extractPrompt = `Extract the main content from this webpage in a clean, readable format optimized for text-to-speech.
Focus on the main article or content, exclude navigation, ads, footers, and other non-essential elements.
Structure the content with clear paragraphs and maintain logical flow.
Remove any formatting that would sound awkward when read aloud (like "Click here", "Learn more", navigation elements, etc.).
Return the content as clean, flowing text that would sound natural when spoken.`

var (
	excludeTags = []string{
		"nav", "footer", "header", "aside", "script", "style", "noscript",
		".navigation", ".nav", ".menu", ".sidebar", ".footer", ".header",
		".ads", ".advertisement", ".social-media", ".share-buttons",
		".breadcrumb", ".pagination", ".tags", ".categories",
		"#nav", "#footer", "#header", "#sidebar", "#ads",
	}
	includeTags = []string{
		"main", "article", "section", "div.content", "div.main",
		"h1", "h2", "h3", "h4", "h5", "h6", "p", "ul", "ol", "li",
		".content", ".main-content", ".article-content", ".post-content",
	}
)

type scrapeRequest struct {
	URL             string       `json:"url"`
	Formats         []string     `json:"formats"`
	OnlyMainContent bool         `json:"onlyMainContent"`
	IncludeTags     []string     `json:"includeTags,omitempty"`
	ExcludeTags     []string     `json:"excludeTags,omitempty"`
	JSONOptions     *jsonOptions `json:"jsonOptions,omitempty"`
}

type jsonOptions struct {
	Prompt string `json:"prompt,omitempty"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    *struct {
		Markdown string          `json:"markdown"`
		HTML     string          `json:"html"`
		JSON     json.RawMessage `json:"json"`
		Metadata struct {
			Title     string `json:"title"`
			SourceURL string `json:"sourceURL"`
		} `json:"metadata"`
	} `json:"data"`
}

// Client calls the Firecrawl scrape endpoint.
type Client struct {
	api *provider.Client
}

// New returns a client authenticated with apiKey.
func New(apiKey string, opts ...provider.Option) (*Client, error) {
	if apiKey == "" {
		return nil, apperr.Configuration(name, "FIRECRAWL_API_KEY environment variable is required")
	}
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+apiKey)
	return &Client{api: provider.New(name, DefaultBaseURL, headers, opts...)}, nil
}

// Scrape fetches rawURL and splits it into sections. With useLLM the
// document's CleanText comes from Firecrawl's extraction, otherwise from
// the cleaned markdown.
func (c *Client) Scrape(ctx context.Context, rawURL string, useLLM bool) (content.Document, error) {
	if err := content.ValidateURL(rawURL); err != nil {
		return content.Document{}, err
	}

	req := scrapeRequest{
		URL:             rawURL,
		Formats:         []string{"markdown", "html"},
		OnlyMainContent: true,
		IncludeTags:     includeTags,
		ExcludeTags:     excludeTags,
	}
	if useLLM {
		req.Formats = []string{"markdown", "json"}
		req.JSONOptions = &jsonOptions{Prompt: extractPrompt}
	}

	log.Debug("Scraping page", "url", rawURL, "llm", useLLM)
	resp, err := c.api.PostJSON(ctx, "/scrape", req, "application/json")
	if err != nil {
		return content.Document{}, err
	}
	if !provider.OK(resp) {
		return content.Document{}, provider.DecodeError(name, resp)
	}

	var out scrapeResponse
	if err := provider.ReadJSON(resp, &out); err != nil {
		return content.Document{}, apperr.Provider(name, resp.StatusCode, "invalid scrape response", err)
	}
	if !out.Success || out.Data == nil {
		msg := out.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return content.Document{}, apperr.Provider(name, resp.StatusCode, "Firecrawl API error: "+msg, nil)
	}

	data := out.Data
	doc := content.Document{
		URL:  rawURL,
		HTML: data.HTML,
	}

	title := data.Metadata.Title
	if title == "" {
		title = "Untitled"
	}
	doc.Title = content.SanitizeForSpeech(title)

	if useLLM {
		if main := mainContent(data.JSON); main != "" {
			doc.CleanText = content.SanitizeForSpeech(main)
		}
	}
	if data.Markdown != "" {
		doc.Text = content.CleanMarkdown(data.Markdown)
		if doc.CleanText == "" {
			doc.CleanText = doc.Text
		}
	}
	doc.Sections = content.ParseSections(data.Markdown)

	log.Info("Scraped page", "url", rawURL, "title", doc.Title, "sections", len(doc.Sections))
	return doc, nil
}

// mainContent reads the extraction result, which arrives either as an
// object with a mainContent field or as a string that may itself hold
// such an object.
func mainContent(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		var inner struct {
			MainContent string `json:"mainContent"`
		}
		if json.Unmarshal([]byte(s), &inner) == nil && inner.MainContent != "" {
			return inner.MainContent
		}
		return s
	}

	var obj struct {
		MainContent string `json:"mainContent"`
	}
	if json.Unmarshal(raw, &obj) == nil && obj.MainContent != "" {
		return obj.MainContent
	}
	return string(raw)
}
