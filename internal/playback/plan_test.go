package playback

import (
	"strings"
	"testing"
)

func TestPlanRequest(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name        string
		length      int
		wantStream  bool
		wantChunked bool
		wantMode    string
	}{
		{"short streams", 100, true, false, "stream"},
		{"over chunking but streamed", 2500, true, false, "stream"},
		{"just below streaming", 2999, true, false, "stream"},
		{"at streaming threshold", 3000, false, true, "chunked"},
		{"long text chunks", 8000, false, true, "chunked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := PlanRequest(strings.Repeat("a", tt.length), "voice", 1.0, th)
			if req.Stream != tt.wantStream || req.UseChunking != tt.wantChunked {
				t.Errorf("stream=%v chunked=%v, want %v/%v", req.Stream, req.UseChunking, tt.wantStream, tt.wantChunked)
			}
			if req.Mode() != tt.wantMode {
				t.Errorf("Mode() = %q, want %q", req.Mode(), tt.wantMode)
			}
		})
	}
}

func TestPlanRequestSingleBuffer(t *testing.T) {
	th := Thresholds{Streaming: 10, Chunking: 100, Prefetch: 50}
	req := PlanRequest(strings.Repeat("b", 50), "v", 1.0, th)
	if req.Stream || req.UseChunking {
		t.Errorf("expected single buffer request, got %+v", req)
	}
	if req.Mode() != "single" {
		t.Errorf("Mode() = %q", req.Mode())
	}
}

func TestPlanRequestClampsSpeed(t *testing.T) {
	if got := PlanRequest("hi", "v", 3, DefaultThresholds()).Speed; got != MaxSpeed {
		t.Errorf("Speed = %v, want %v", got, MaxSpeed)
	}
}

func TestShouldPrefetch(t *testing.T) {
	th := DefaultThresholds()
	if !ShouldPrefetch(strings.Repeat("x", 4999), th) {
		t.Error("4999 chars should prefetch")
	}
	if ShouldPrefetch(strings.Repeat("x", 5000), th) {
		t.Error("5000 chars should not prefetch")
	}
}

func TestClampSpeed(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, DefaultSpeed},
		{-1, DefaultSpeed},
		{0.5, MinSpeed},
		{0.9, 0.9},
		{1.2, 1.2},
		{2.0, MaxSpeed},
	}
	for _, tt := range tests {
		if got := ClampSpeed(tt.in); got != tt.want {
			t.Errorf("ClampSpeed(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSpeedAdjustment(t *testing.T) {
	cfg := DefaultSyncConfig()
	tests := []struct {
		speed, want float64
	}{
		{0.8, 0},
		{1.0, 0},
		{1.1, 0.03},
		{1.2, 0.06},
	}
	for _, tt := range tests {
		if got := cfg.SpeedAdjustment(tt.speed); got < tt.want-1e-9 || got > tt.want+1e-9 {
			t.Errorf("SpeedAdjustment(%v) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestAudioBytes(t *testing.T) {
	single := Audio{Data: []byte("whole")}
	if string(single.Bytes()) != "whole" {
		t.Errorf("Bytes() = %q", single.Bytes())
	}
}
