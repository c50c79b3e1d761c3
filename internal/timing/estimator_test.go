package timing

import (
	"math"
	"strings"
	"testing"
)

const epsilon = 1e-3

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestEstimateCatElephant(t *testing.T) {
	s := Estimate([]string{"cat", "elephant"}, 1.0)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	// cps = 160*5/60 = 13.333
	cat := s.Words[0]
	if !approx(cat.Start, 0) || !approx(cat.End, 0.3) {
		t.Errorf("cat = [%.3f, %.3f), want [0, 0.300)", cat.Start, cat.End)
	}

	elephant := s.Words[1]
	if !approx(elephant.Start, 0.3) {
		t.Errorf("elephant start = %.3f, want 0.300", elephant.Start)
	}
	if !approx(elephant.Duration(), 0.81) {
		t.Errorf("elephant duration = %.3f, want 0.810", elephant.Duration())
	}
	if !approx(s.Total(), 1.11) {
		t.Errorf("Total() = %.3f, want 1.110", s.Total())
	}
}

func TestEstimateComplexity(t *testing.T) {
	tests := []struct {
		word string
		want float64 // duration at 1.0x
	}{
		{"a", 2 / (160.0 * 5 / 60) * 0.8},
		{"an", 3 / (160.0 * 5 / 60) * 0.8},
		{"the", 4 / (160.0 * 5 / 60)},
		{"quiet", 6 / (160.0 * 5 / 60)},
		{"sixsix", 7 / (160.0 * 5 / 60)},
		{"seventh", 8 / (160.0 * 5 / 60) * 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			s := Estimate([]string{tt.word}, 1.0)
			if got := s.Words[0].Duration(); !approx(got, tt.want) {
				t.Errorf("duration(%q) = %.4f, want %.4f", tt.word, got, tt.want)
			}
		})
	}
}

func TestEstimateScheduleProperties(t *testing.T) {
	words := Words("The quick brown fox jumps over the lazy dog while an elephant watches")
	speeds := []float64{0.7, 0.8, 0.9, 1.0, 1.1, 1.2}

	for _, speed := range speeds {
		s := Estimate(words, speed)
		if s.Len() != len(words) {
			t.Fatalf("speed %.1f: Len() = %d, want %d", speed, s.Len(), len(words))
		}
		if s.Words[0].Start != 0 {
			t.Errorf("speed %.1f: first start = %f, want 0", speed, s.Words[0].Start)
		}
		for i, w := range s.Words {
			if w.End <= w.Start {
				t.Errorf("speed %.1f: word %d has empty window", speed, i)
			}
			if i > 0 && w.Start != s.Words[i-1].End {
				t.Errorf("speed %.1f: gap or overlap before word %d", speed, i)
			}
		}
	}
}

func TestEstimateFasterIsShorter(t *testing.T) {
	words := Words("reading at a faster pace should finish sooner")
	slow := Estimate(words, 0.7)
	fast := Estimate(words, 1.2)
	if fast.Total() >= slow.Total() {
		t.Errorf("fast total %.3f should be below slow total %.3f", fast.Total(), slow.Total())
	}
}

func TestEstimateEmpty(t *testing.T) {
	s := Estimate(nil, 1.0)
	if s.Len() != 0 || s.Total() != 0 {
		t.Errorf("empty schedule: Len()=%d Total()=%f", s.Len(), s.Total())
	}
	if got := s.Lookup(0.5, 3, 1.0); got != 3 {
		t.Errorf("Lookup on empty schedule = %d, want sticky 3", got)
	}
	if got := s.IndexAt(1); got != -1 {
		t.Errorf("IndexAt on empty schedule = %d, want -1", got)
	}
}

func TestWords(t *testing.T) {
	if got := Words(""); got != nil {
		t.Errorf("Words(\"\") = %v, want nil", got)
	}
	got := Words("one two  three")
	if strings.Join(got, "|") != "one|two||three" {
		t.Errorf("Words() = %q", got)
	}
}

func TestLookup(t *testing.T) {
	s := Estimate([]string{"cat", "elephant"}, 1.0)

	tests := []struct {
		name  string
		t     float64
		prev  int
		speed float64
		want  int
	}{
		{"start", 0, -1, 1.0, 0},
		{"inside first", 0.2, -1, 1.0, 0},
		{"tolerance keeps first", 0.35, 0, 1.0, 0},
		{"tight tolerance moves on", 0.36, 0, 1.1, 1},
		{"inside second", 0.8, 0, 1.0, 1},
		{"early lead-in", -0.05, -1, 1.0, 0},
		{"past end sticks", 5, 1, 1.0, 1},
		{"before start sticks", -1, -1, 1.0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Lookup(tt.t, tt.prev, tt.speed); got != tt.want {
				t.Errorf("Lookup(%.2f) = %d, want %d", tt.t, got, tt.want)
			}
		})
	}
}

func TestTolerance(t *testing.T) {
	s := Estimate([]string{"word"}, 1.0)
	if got := s.Tolerance(1.0); got != DefaultTolerance {
		t.Errorf("Tolerance(1.0) = %f", got)
	}
	if got := s.Tolerance(1.2); got != DefaultFastTolerance {
		t.Errorf("Tolerance(1.2) = %f", got)
	}
}

func TestEstimateWithCustomRate(t *testing.T) {
	s := EstimateWith([]string{"the"}, 1.0, Params{BaseWPM: 120})
	// cps = 120*5/60 = 10, duration = 4/10
	if !approx(s.Total(), 0.4) {
		t.Errorf("Total() = %.3f, want 0.400", s.Total())
	}
}
