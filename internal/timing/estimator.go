// Package timing estimates per-word speaking times for highlight
// synchronization.
//
// The schedule is a statistical reading-rate heuristic. It is not derived
// from the synthesized waveform and drifts from the real audio, which is why
// the playback session layers tunable corrections on top of it.
package timing

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultBaseWPM is the reading rate at speed 1.0.
	DefaultBaseWPM = 160.0
	// DefaultCharsPerWord is the average word length used to convert WPM to characters per second.
	DefaultCharsPerWord = 5.0
	// DefaultTolerance widens lookup windows at normal or slower speeds.
	DefaultTolerance = 0.1
	// DefaultFastTolerance is used above 1.0x, where drift shows sooner.
	DefaultFastTolerance = 0.05
)

// WordTiming is the estimated window of one word, in seconds from the start
// of playback.
type WordTiming struct {
	Word  string
	Start float64
	End   float64
}

// Duration returns the length of the window in seconds.
func (w WordTiming) Duration() float64 {
	return w.End - w.Start
}

// Params holds the estimator tuning.
type Params struct {
	BaseWPM       float64
	CharsPerWord  float64
	Tolerance     float64
	FastTolerance float64
}

// DefaultParams returns the standard estimator tuning.
func DefaultParams() Params {
	return Params{
		BaseWPM:       DefaultBaseWPM,
		CharsPerWord:  DefaultCharsPerWord,
		Tolerance:     DefaultTolerance,
		FastTolerance: DefaultFastTolerance,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.BaseWPM <= 0 {
		p.BaseWPM = d.BaseWPM
	}
	if p.CharsPerWord <= 0 {
		p.CharsPerWord = d.CharsPerWord
	}
	if p.Tolerance <= 0 {
		p.Tolerance = d.Tolerance
	}
	if p.FastTolerance <= 0 {
		p.FastTolerance = d.FastTolerance
	}
	return p
}

// Schedule is an ordered, gap-free sequence of word windows.
type Schedule struct {
	Words  []WordTiming
	params Params
}

// Words splits content into the words that get highlighted. Splitting is on
// single spaces so the indices line up with a space-joined rendering of the
// same text.
func Words(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, " ")
}

// Estimate builds a schedule with the default tuning.
func Estimate(words []string, speed float64) Schedule {
	return EstimateWith(words, speed, DefaultParams())
}

// EstimateWith builds a schedule for words at the given speed factor.
func EstimateWith(words []string, speed float64, params Params) Schedule {
	params = params.withDefaults()
	if speed <= 0 {
		speed = 1.0
	}

	wpm := params.BaseWPM * speed
	charsPerSecond := wpm * params.CharsPerWord / 60

	timings := make([]WordTiming, 0, len(words))
	current := 0.0
	for _, word := range words {
		length := utf8.RuneCountInString(word)
		duration := float64(length+1) / charsPerSecond * complexity(length)
		timings = append(timings, WordTiming{
			Word:  word,
			Start: current,
			End:   current + duration,
		})
		current += duration
	}

	return Schedule{Words: timings, params: params}
}

// complexity weights long words up and short words down.
func complexity(length int) float64 {
	switch {
	case length > 6:
		return 1.2
	case length < 3:
		return 0.8
	default:
		return 1.0
	}
}

// Len returns the number of words in the schedule.
func (s Schedule) Len() int {
	return len(s.Words)
}

// Total returns the end of the last word, or 0 for an empty schedule.
func (s Schedule) Total() float64 {
	if len(s.Words) == 0 {
		return 0
	}
	return s.Words[len(s.Words)-1].End
}

// Tolerance returns the lookup tolerance for the given speed.
func (s Schedule) Tolerance(speed float64) float64 {
	p := s.params.withDefaults()
	if speed > 1.0 {
		return p.FastTolerance
	}
	return p.Tolerance
}

// Lookup returns the index of the first word whose tolerance-widened window
// contains t. When no window matches, prev is returned unchanged.
func (s Schedule) Lookup(t float64, prev int, speed float64) int {
	tol := s.Tolerance(speed)
	for i, w := range s.Words {
		if t >= w.Start-tol && t < w.End+tol {
			return i
		}
	}
	return prev
}

// IndexAt returns the index of the word whose untolerated window contains t,
// clamped to the schedule. It is used to place the highlight after a seek.
func (s Schedule) IndexAt(t float64) int {
	if len(s.Words) == 0 {
		return -1
	}
	for i, w := range s.Words {
		if t < w.End {
			return i
		}
	}
	return len(s.Words) - 1
}
