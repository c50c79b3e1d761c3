package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lexio-app/lexio/internal/config"
	"github.com/lexio-app/lexio/internal/content"
	"github.com/lexio-app/lexio/internal/prefs"
	"github.com/lexio-app/lexio/internal/provider"
	"github.com/lexio-app/lexio/internal/provider/elevenlabs"
	"github.com/lexio-app/lexio/internal/provider/firecrawl"
	"github.com/lexio-app/lexio/internal/provider/openai"
	"github.com/lexio-app/lexio/internal/recommend"
)

// need selects the collaborators a command requires. Missing optional
// collaborators are left nil.
type need int

const (
	needScraper need = 1 << iota
	needSpeech
	needPrefs
)

// app holds the clients shared by the commands.
type app struct {
	cfg   config.Config
	creds config.Credentials

	scraper     *firecrawl.Client
	speech      *elevenlabs.Client // nil without an ElevenLabs key unless required
	recommender *recommend.Adapter
	prefs       *prefs.Store
}

func newApp(ctx context.Context, cfg config.Config, creds config.Credentials, needs need) (*app, error) {
	a := &app{cfg: cfg, creds: creds}

	if needs&needScraper != 0 {
		c, err := firecrawl.New(creds.FirecrawlKey, provider.WithRateLimit(cfg.RateLimits.Firecrawl))
		if err != nil {
			return nil, err
		}
		a.scraper = c
	}

	speech, err := elevenlabs.New(creds.ElevenLabsKey, provider.WithRateLimit(cfg.RateLimits.ElevenLabs))
	switch {
	case err == nil:
		a.speech = speech
	case needs&needSpeech != 0:
		return nil, err
	}

	// A nil Chatter keeps the recommender local; a typed nil would not.
	var chat recommend.Chatter
	if c, err := openai.New(creds.OpenAIKey, provider.WithRateLimit(cfg.RateLimits.OpenAI)); err == nil {
		chat = c
	} else {
		log.Debug("Recommender running locally", "reason", err)
	}
	a.recommender = recommend.New(chat)

	if needs&needPrefs != 0 {
		p, err := prefs.Open(ctx, cfg.PrefsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to open preferences: %w", err)
		}
		a.prefs = p
	}
	return a, nil
}

// Close releases the preference database.
func (a *app) Close() error {
	if a.prefs == nil {
		return nil
	}
	return a.prefs.Close()
}

// scrape fetches and parses rawURL.
func (a *app) scrape(ctx context.Context, rawURL string, useLLM bool) (content.Document, error) {
	if err := content.ValidateURL(rawURL); err != nil {
		return content.Document{}, err
	}
	log.Info("Scraping", "url", rawURL, "llm", useLLM)
	doc, err := a.scraper.Scrape(ctx, rawURL, useLLM)
	if err != nil {
		return content.Document{}, err
	}
	log.Info("Scraped", "title", doc.Title, "sections", len(doc.Sections))
	return doc, nil
}

// voices returns the catalog, refreshed from the API when a key is set.
func (a *app) voices(ctx context.Context) []elevenlabs.Voice {
	if a.speech == nil {
		return append([]elevenlabs.Voice(nil), elevenlabs.PopularVoices...)
	}
	vs, err := a.speech.Voices(ctx)
	if err != nil {
		log.Warn("Unable to load voices", "error", err)
		return append([]elevenlabs.Voice(nil), elevenlabs.PopularVoices...)
	}
	return vs
}

// voice resolves the voice to speak with: an explicit setting wins over the
// saved preference, which wins over the default voice.
func (a *app) voice(ctx context.Context) (id, source string) {
	if a.cfg.Voice != "" {
		return a.cfg.Voice, "config"
	}
	if a.prefs != nil {
		saved, err := a.prefs.Voice(ctx)
		switch {
		case err != nil:
			log.Warn("Unable to read saved voice", "error", err)
		case saved != "":
			return saved, "saved"
		}
	}
	return elevenlabs.DefaultVoiceID, "default"
}
