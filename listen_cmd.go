package main

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lexio-app/lexio/internal/audio"
	"github.com/lexio-app/lexio/internal/cache"
	"github.com/lexio-app/lexio/internal/config"
	"github.com/lexio-app/lexio/internal/content"
	"github.com/lexio-app/lexio/internal/logging"
	"github.com/lexio-app/lexio/internal/playback"
	"github.com/lexio-app/lexio/internal/player"
	"github.com/lexio-app/lexio/internal/queue"
	"github.com/lexio-app/lexio/internal/recommend"
	"github.com/lexio-app/lexio/ui"
)

var (
	listenRepeat bool
	listenAll    bool
	listenAsk    string
	listenMouse  bool
	listenNoLLM  bool

	listenCmd = &cobra.Command{
		Use:   "listen URL",
		Short: "Scrape a page and listen to it",
		Long: paragraph(fmt.Sprintf("\n%s a web page in the listening UI. The summary is queued first; add sections with %s or ask for what you want with %s.",
			keyword("Open"), keyword("a"), keyword("/"))),
		Example: paragraph("lexio listen https://example.com/article\nlexio listen --ask \"the trade routes\" https://example.com/history"),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(cmd.Context(), args[0])
		},
	}
)

func init() {
	listenCmd.Flags().BoolVarP(&listenRepeat, "repeat", "r", false, "repeat the queue")
	listenCmd.Flags().BoolVarP(&listenAll, "all", "a", false, "queue every section")
	listenCmd.Flags().StringVarP(&listenAsk, "ask", "q", "", "queue the sections matching a request")
	listenCmd.Flags().BoolVarP(&listenMouse, "mouse", "m", false, "enable mouse wheel")
	listenCmd.Flags().BoolVar(&listenNoLLM, "no-llm", false, "skip LLM extraction when scraping")

	_ = viper.BindPFlag("repeat", listenCmd.Flags().Lookup("repeat"))
}

func runListen(ctx context.Context, rawURL string) error {
	a, err := newApp(ctx, cfg, creds, needScraper|needSpeech|needPrefs)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	doc, err := a.scrape(ctx, rawURL, cfg.LLMExtraction && !listenNoLLM)
	if err != nil {
		return err
	}

	store := queue.New()
	store.SetRepeat(cfg.Repeat)
	if err := seedQueue(ctx, a, store, doc); err != nil {
		return err
	}

	sink, err := audio.NewPlayer(audio.PlayerConfig{
		SampleRate: cfg.Audio.SampleRate,
		BufferSize: cfg.Audio.BufferSize,
	})
	if err != nil {
		return fmt.Errorf("unable to open audio output: %w", err)
	}
	defer func() { _ = sink.Close() }()

	voiceID, source := a.voice(ctx)
	log.Info("Using voice", "id", voiceID, "source", source)

	session := playback.NewSession(a.speech, sink,
		playback.WithCache(cache.New(cfg.CacheBytes())),
		playback.WithSyncConfig(cfg.Sync),
		playback.WithThresholds(cfg.Thresholds),
		playback.WithVoice(voiceID),
		playback.WithSpeed(cfg.Speed),
	)
	if err := session.SetVolume(cfg.Volume); err != nil {
		log.Warn("Unable to set volume", "error", err)
	}

	ctrl := player.New(ctx, store, session, player.WithPrefetch(cfg.Prefetch))
	defer func() { _ = ctrl.Close() }()

	var updates chan config.Config
	if viper.ConfigFileUsed() != "" {
		updates = make(chan config.Config, 1)
		config.Watch(viper.GetViper(), func(c config.Config) {
			// keep only the latest reload
			select {
			case <-updates:
			default:
			}
			updates <- c
		})
	}

	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	uiCfg.EnableMouse = listenMouse

	p := ui.NewProgram(ctx, uiCfg, ui.Deps{
		Controller:    ctrl,
		Document:      doc,
		Voices:        a.voices(ctx),
		Recommender:   a.recommender,
		Prefs:         a.prefs,
		ConfigUpdates: updates,
	})
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	qs := store.Stats()
	log.Info("Listening session finished",
		"synthesis", logging.History(),
		"cache", session.CacheStats(),
		"queued", qs.TotalAdded,
		"removed", qs.TotalRemoved,
		"peak", qs.PeakSize,
		"last_change", humanize.Time(qs.LastChange),
	)
	return nil
}

// seedQueue fills the queue before the UI starts: the summary always, then
// every section with --all or the recommended ones with --ask.
func seedQueue(ctx context.Context, a *app, store *queue.Store, doc content.Document) error {
	store.Add(doc.SummaryItem())

	switch {
	case listenAll:
		for i := range doc.Sections {
			if item, ok := doc.SectionItem(i); ok {
				store.Add(item)
			}
		}
	case listenAsk != "":
		r, err := a.recommender.Recommend(ctx, listenAsk, doc.Candidates(store.IsPresent))
		if err != nil {
			return err
		}
		added := recommend.Apply(r, store, doc)
		log.Info("Queued recommendation", "source", r.Source, "added", added)
	}
	return nil
}
