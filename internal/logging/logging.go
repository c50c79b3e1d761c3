// Package logging configures the process logger and records synthesis
// metrics.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	gap "github.com/muesli/go-app-paths"
)

// DefaultPath returns the log file location under the user data directory.
func DefaultPath() (string, error) {
	scope := gap.NewScope(gap.User, "lexio")
	dirs, err := scope.DataDirs()
	if err != nil || len(dirs) == 0 {
		return "", fmt.Errorf("unable to resolve data dir: %w", err)
	}
	return filepath.Join(dirs[0], "lexio.log"), nil
}

// Setup sends all logging to the file at path, since the TUI owns the
// terminal. An empty path selects DefaultPath. The returned func closes the
// file.
func Setup(path string, debug bool) (func() error, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}

	log.SetDefault(New(f, debug))
	return f.Close, nil
}

// New returns a logger in the application format.
func New(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
}

// Metrics tracks one synthesis request.
type Metrics struct {
	ItemID     string
	TextLength int
	Mode       string
	Start      time.Time
	Duration   time.Duration
	AudioBytes int
	CacheHit   bool
	Err        error
}

var (
	historyMu sync.Mutex
	history   []Metrics
)

const maxHistory = 64

// StartSynthesis starts tracking a synthesis request.
func StartSynthesis(itemID string, textLength int, mode string) *Metrics {
	m := &Metrics{
		ItemID:     itemID,
		TextLength: textLength,
		Mode:       mode,
		Start:      time.Now(),
	}
	log.Debug("Synthesis started", "item", itemID, "chars", textLength, "mode", mode)
	return m
}

// End completes tracking and logs the outcome.
func (m *Metrics) End(audioBytes int, err error) {
	m.Duration = time.Since(m.Start)
	m.AudioBytes = audioBytes
	m.Err = err
	record(*m)

	if err != nil {
		log.Error("Synthesis failed", "item", m.ItemID, "duration", m.Duration, "error", err)
		return
	}
	log.Info("Synthesis completed",
		"item", m.ItemID,
		"chars", m.TextLength,
		"mode", m.Mode,
		"audio", humanize.Bytes(uint64(audioBytes)), //nolint:gosec
		"duration", m.Duration)
}

// CacheHit records audio served from the cache.
func CacheHit(itemID string, audioBytes int) {
	record(Metrics{ItemID: itemID, AudioBytes: audioBytes, CacheHit: true, Start: time.Now()})
	log.Debug("Audio cache hit", "item", itemID, "audio", humanize.Bytes(uint64(audioBytes))) //nolint:gosec
}

func record(m Metrics) {
	historyMu.Lock()
	defer historyMu.Unlock()
	history = append(history, m)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
}

// Summary aggregates the recorded synthesis history.
type Summary struct {
	Requests   int
	CacheHits  int
	Failures   int
	AudioBytes int
	Average    time.Duration
}

// String renders the summary for humans.
func (s Summary) String() string {
	return fmt.Sprintf("%d requests, %d cache hits, %d failures, %s audio, avg %s",
		s.Requests, s.CacheHits, s.Failures,
		humanize.Bytes(uint64(s.AudioBytes)), s.Average.Round(time.Millisecond)) //nolint:gosec
}

// History summarizes recent synthesis metrics.
func History() Summary {
	historyMu.Lock()
	defer historyMu.Unlock()

	var s Summary
	var total time.Duration
	for _, m := range history {
		switch {
		case m.CacheHit:
			s.CacheHits++
		case m.Err != nil:
			s.Failures++
		default:
			s.Requests++
			total += m.Duration
		}
		s.AudioBytes += m.AudioBytes
	}
	if s.Requests > 0 {
		s.Average = total / time.Duration(s.Requests)
	}
	return s
}

func resetHistory() {
	historyMu.Lock()
	defer historyMu.Unlock()
	history = nil
}
