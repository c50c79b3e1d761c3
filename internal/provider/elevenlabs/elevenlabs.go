// Package elevenlabs synthesizes speech and lists voices through the
// ElevenLabs API.
//
// Streamed requests use the streaming endpoint for its earlier first byte,
// but the reply is still read to the end before it is returned. Playback
// starts once the whole item is synthesized.
package elevenlabs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lexio-app/lexio/internal/apperr"
	"github.com/lexio-app/lexio/internal/audio"
	"github.com/lexio-app/lexio/internal/playback"
	"github.com/lexio-app/lexio/internal/provider"
)

const (
	// DefaultBaseURL is the ElevenLabs v1 API.
	DefaultBaseURL = "https://api.elevenlabs.io/v1"
	// DefaultVoiceID is used when a request names no voice.
	DefaultVoiceID = "4tRn1lSkEn13EVTuqb0g"
	// Model is the synthesis model.
	Model = "eleven_turbo_v2"

	// MaxChunkSize bounds the text of one chunked request.
	MaxChunkSize = 1500
	// ChunkingMinLength is the shortest text that is split into chunks.
	ChunkingMinLength = 2000

	contentType = "audio/mpeg"
	name        = "elevenlabs"
	maxParallel = 4
)

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Client implements playback.Synthesizer.
type Client struct {
	api *provider.Client
}

var _ playback.Synthesizer = (*Client)(nil)

// New returns a client authenticated with apiKey.
func New(apiKey string, opts ...provider.Option) (*Client, error) {
	if apiKey == "" {
		return nil, apperr.Configuration(name, "ELEVENLABS_API_KEY environment variable is required")
	}
	headers := http.Header{}
	headers.Set("xi-api-key", apiKey)
	return &Client{api: provider.New(name, DefaultBaseURL, headers, opts...)}, nil
}

// Synthesize renders req.Text as MP3. Streamed requests use the streaming
// endpoint; long chunked requests are split at sentence boundaries and the
// pieces synthesized concurrently.
func (c *Client) Synthesize(ctx context.Context, req playback.Request) (playback.Audio, error) {
	if strings.TrimSpace(req.Text) == "" {
		return playback.Audio{}, apperr.Validation("Text is required")
	}
	voice := req.VoiceID
	if voice == "" {
		voice = DefaultVoiceID
	}
	speed := playback.ClampSpeed(req.Speed)

	log.Debug("Synthesizing", "item", req.ItemID, "voice", voice, "chars", len(req.Text), "mode", req.Mode(), "speed", speed)

	switch {
	case req.Stream:
		data, err := c.speak(ctx, voice, req.Text, speed, true)
		if err != nil {
			return playback.Audio{}, err
		}
		return playback.Audio{Data: data, ContentType: contentType}, nil
	case req.UseChunking && utf8.RuneCountInString(req.Text) > ChunkingMinLength:
		chunks, err := c.speakChunks(ctx, voice, req.Text, speed)
		if err != nil {
			return playback.Audio{}, err
		}
		return playback.Audio{Chunks: chunks, ContentType: contentType}, nil
	default:
		data, err := c.speak(ctx, voice, req.Text, speed, false)
		if err != nil {
			return playback.Audio{}, err
		}
		return playback.Audio{Data: data, ContentType: contentType}, nil
	}
}

func (c *Client) speak(ctx context.Context, voice, text string, speed float64, stream bool) ([]byte, error) {
	path := "/text-to-speech/" + url.PathEscape(voice)
	if stream {
		path += "/stream"
	}

	body := ttsRequest{
		Text:    text,
		ModelID: Model,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0,
			UseSpeakerBoost: true,
			Speed:           speed,
		},
	}

	resp, err := c.api.PostJSON(ctx, path, body, contentType)
	if err != nil {
		return nil, err
	}
	if !provider.OK(resp) {
		err := provider.DecodeError(name, resp)
		log.Error("ElevenLabs request failed", "voice", voice, "chars", len(text), "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperr.Provider(name, resp.StatusCode, "failed to read audio", err)
	}
	if len(data) == 0 {
		return nil, apperr.Provider(name, resp.StatusCode, "empty audio response", nil)
	}
	return data, nil
}

func (c *Client) speakChunks(ctx context.Context, voice, text string, speed float64) ([]audio.Chunk, error) {
	pieces := ChunkText(text, MaxChunkSize)
	log.Debug("Chunked synthesis", "chunks", len(pieces), "chars", len(text))

	chunks := make([]audio.Chunk, len(pieces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, piece := range pieces {
		g.Go(func() error {
			data, err := c.speak(gctx, voice, piece, speed, false)
			if err != nil {
				return fmt.Errorf("chunk %d failed: %w", i, err)
			}
			chunks[i] = audio.Chunk{Index: i, Audio: data, Text: piece}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// ChunkText splits text into sentence-aligned chunks of at most maxSize
// characters. A single sentence longer than maxSize becomes its own chunk.
// Sentence punctuation is normalized to periods.
func ChunkText(text string, maxSize int) []string {
	var chunks []string
	var current string

	for _, sentence := range sentenceEnd.Split(text, -1) {
		s := strings.TrimSpace(sentence)
		if s == "" {
			continue
		}
		if current != "" && utf8.RuneCountInString(current)+utf8.RuneCountInString(s) > maxSize {
			chunks = append(chunks, current+".")
			current = s
			continue
		}
		if current != "" {
			current += ". "
		}
		current += s
	}
	if current != "" {
		chunks = append(chunks, current+".")
	}
	return chunks
}
