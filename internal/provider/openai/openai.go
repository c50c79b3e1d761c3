// Package openai asks an OpenAI chat model which page sections match a
// listener's request.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lexio-app/lexio/internal/apperr"
	"github.com/lexio-app/lexio/internal/content"
	"github.com/lexio-app/lexio/internal/provider"
)

const (
	// DefaultBaseURL is the OpenAI v1 API.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the chat model used for recommendations.
	DefaultModel = "gpt-4o-mini"

	// DefaultContext describes the session when the caller gives none.
	DefaultContext = "User is browsing content and wants to build a listening queue"

	name            = "openai"
	maxTokens       = 300
	temperature     = 0.7
	sectionPreview  = 150
	sectionSendSize = 300
)

// ChatRequest is a listener's message plus the sections still available.
type ChatRequest struct {
	Message  string
	Sections []content.Candidate
	Context  string
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the model's reply.
type ChatResponse struct {
	Response string
	Usage    Usage
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Client calls the chat completions endpoint.
type Client struct {
	api   *provider.Client
	model string
}

// New returns a client authenticated with apiKey.
func New(apiKey string, opts ...provider.Option) (*Client, error) {
	if apiKey == "" {
		return nil, apperr.Configuration(name, "OPENAI_API_KEY environment variable is required")
	}
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+apiKey)
	return &Client{
		api:   provider.New(name, DefaultBaseURL, headers, opts...),
		model: DefaultModel,
	}, nil
}

// Chat sends the message with a system prompt listing the sections.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ChatResponse{}, apperr.Validation("Message is required")
	}

	body := completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: SystemPrompt(req)},
			{Role: "user", Content: req.Message},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := c.api.PostJSON(ctx, "/chat/completions", body, "application/json")
	if err != nil {
		return ChatResponse{}, err
	}
	if !provider.OK(resp) {
		err := provider.DecodeError(name, resp)
		log.Error("OpenAI chat failed", "error", err)
		if apperr.KindOf(err) == apperr.KindProvider {
			return ChatResponse{}, apperr.Provider(name, resp.StatusCode, "Failed to generate chat response", err)
		}
		return ChatResponse{}, err
	}

	var out completionResponse
	if err := provider.ReadJSON(resp, &out); err != nil {
		return ChatResponse{}, apperr.Provider(name, resp.StatusCode, "Failed to generate chat response", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return ChatResponse{}, apperr.Provider(name, resp.StatusCode, "No response generated", nil)
	}

	log.Debug("OpenAI chat completed", "tokens", out.Usage.TotalTokens)
	return ChatResponse{
		Response: strings.TrimSpace(out.Choices[0].Message.Content),
		Usage:    out.Usage,
	}, nil
}

// SystemPrompt builds the assistant instructions with the numbered section
// list the reply refers back to.
func SystemPrompt(req ChatRequest) string {
	session := req.Context
	if session == "" {
		session = "New conversation"
	}

	var sections strings.Builder
	if len(req.Sections) > 0 {
		sections.WriteString("\n\nAvailable content sections:\n")
		for i, s := range req.Sections {
			if i > 0 {
				sections.WriteByte('\n')
			}
			body := truncate(truncate(s.Content, sectionSendSize), sectionPreview)
			fmt.Fprintf(&sections, "%d. %q - %s...", i+1, s.Title, body)
		}
	}

	return `You are Lexio AI, a smart learning assistant that helps users discover and organize content for text-to-speech listening. Your role is to:

1. Analyze user requests to understand what they want to learn about
2. Recommend specific content sections that best match their interests
3. Provide helpful, encouraging responses that guide users toward relevant learning materials
4. Be concise but friendly - keep responses under 200 words

IMPORTANT: You should ANALYZE the available content sections and recommend the most relevant ones by their INDEX NUMBERS (1, 2, 3, etc.) based on the user's request.

When recommending content:
- Mention specific section titles that match the user's interests
- Explain briefly why those sections are relevant
- If asking about multiple topics, prioritize the most relevant sections
- If no sections match well, acknowledge this and suggest alternatives
- Use encouraging, educational language

Context about the user's current session: ` + session + sections.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
