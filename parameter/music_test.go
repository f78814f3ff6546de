package parameter

import (
	"math"
	"testing"
	"time"
)

func TestStepInterval(t *testing.T) {
	tests := []struct {
		bpm  int
		want time.Duration
	}{
		{120, 125 * time.Millisecond},
		{60, 250 * time.Millisecond},
		{180, time.Minute / 720},
		{0, 125 * time.Millisecond},
		{-10, 125 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := StepInterval(tt.bpm); got != tt.want {
			t.Errorf("StepInterval(%d) = %v, want %v", tt.bpm, got, tt.want)
		}
	}
}

func TestStepIntervalAcceptsOutOfRangeTempo(t *testing.T) {
	// Core tolerates any positive tempo, clamping is a front end concern
	if got := StepInterval(600); got != 25*time.Millisecond {
		t.Errorf("StepInterval(600) = %v, want 25ms", got)
	}
	if got := StepInterval(1); got != 15*time.Second {
		t.Errorf("StepInterval(1) = %v, want 15s", got)
	}
}

func TestStepIntervalExtremeTempo(t *testing.T) {
	for _, bpm := range []int{15000, 1_000_000, 20_000_000_000, 1 << 62, math.MaxInt} {
		got := StepInterval(bpm)
		if got < MinStepInterval {
			t.Errorf("StepInterval(%d) = %v, want >= %v", bpm, got, MinStepInterval)
		}
	}
	if got := StepInterval(15000); got != time.Millisecond {
		t.Errorf("StepInterval(15000) = %v, want 1ms", got)
	}
}

func TestClampBPM(t *testing.T) {
	cases := map[int]int{10: MinBPM, 60: 60, 120: 120, 180: 180, 500: MaxBPM}
	for in, want := range cases {
		if got := ClampBPM(in); got != want {
			t.Errorf("ClampBPM(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestVoiceSamples(t *testing.T) {
	cases := map[int]int{44100: 22050, 48000: 24000, 8000: 4000, 11025: 5513, 1: 1, 0: 0, -5: 0}
	for sr, want := range cases {
		if got := VoiceSamples(sr); got != want {
			t.Errorf("VoiceSamples(%d) = %d, want %d", sr, got, want)
		}
	}
}

func TestClampVolume(t *testing.T) {
	if ClampVolume(-0.5) != 0 || ClampVolume(1.5) != 1 || ClampVolume(0.3) != 0.3 {
		t.Error("ClampVolume did not clamp to [0,1]")
	}
}

func TestStepFrame(t *testing.T) {
	tests := []struct {
		n, bpm, rate int
		want         int
	}{
		{0, 120, 44100, 0},
		{1, 120, 44100, 5513},
		{2, 120, 44100, 11025},
		{16, 120, 44100, 88200},
		{160, 120, 44100, 882000},
		{4, 60, 48000, 48000},
		{1, math.MaxInt, 44100, 0},
	}
	for _, tt := range tests {
		if got := StepFrame(tt.n, tt.bpm, tt.rate); got != tt.want {
			t.Errorf("StepFrame(%d, %d, %d) = %d, want %d", tt.n, tt.bpm, tt.rate, got, tt.want)
		}
	}
}

func TestClampVoiceGain(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0: 0, 0.5: 0.5, 2: 2, 3.5: MaxVoiceGain}
	for in, want := range cases {
		if got := ClampVoiceGain(in); got != want {
			t.Errorf("ClampVoiceGain(%v) = %v, want %v", in, got, want)
		}
	}
}
