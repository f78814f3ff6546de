package audio

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lixenwraith/beat-buddy/core"
)

func seeded() RandSource {
	return rand.New(rand.NewSource(42))
}

func TestGenerateLength(t *testing.T) {
	tests := []struct {
		rate int
		want int
	}{
		{44100, 22050},
		{48000, 24000},
		{8000, 4000},
		{11025, 5513},
	}
	for _, tt := range tests {
		for _, v := range core.Voices() {
			buf := Generate(v, tt.rate, seeded())
			if len(buf) != tt.want {
				t.Errorf("Generate(%s, %d) len = %d, want %d", v, tt.rate, len(buf), tt.want)
			}
		}
	}
}

func TestGenerateInvalid(t *testing.T) {
	if buf := Generate(core.Voice(99), 44100, seeded()); buf != nil {
		t.Error("expected nil buffer for unknown voice")
	}
	if buf := Generate(core.VoiceKick, 0, seeded()); buf != nil {
		t.Error("expected nil buffer for zero sample rate")
	}
}

func TestGenerateKickFormula(t *testing.T) {
	const sr = 44100
	buf := Generate(core.VoiceKick, sr, nil)

	if buf[0] != 0 {
		t.Errorf("kick[0] = %f, want 0", buf[0])
	}
	for _, i := range []int{1, 100, 5000, 22049} {
		fi := float64(i)
		want := math.Sin(2*math.Pi*(60-fi*0.01)*fi/sr) * math.Exp(-fi*0.0001)
		if math.Abs(buf[i]-want) > 1e-12 {
			t.Errorf("kick[%d] = %f, want %f", i, buf[i], want)
		}
	}
}

func TestGenerateKickDeterministic(t *testing.T) {
	a := Generate(core.VoiceKick, 44100, rand.New(rand.NewSource(1)))
	b := Generate(core.VoiceKick, 44100, rand.New(rand.NewSource(2)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("kick differs at %d across seeds", i)
		}
	}
}

func TestGenerateNoiseSeeded(t *testing.T) {
	for _, v := range []core.Voice{core.VoiceSnare, core.VoiceHihat} {
		a := Generate(v, 44100, rand.New(rand.NewSource(7)))
		b := Generate(v, 44100, rand.New(rand.NewSource(7)))
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%s differs at %d with equal seeds", v, i)
			}
		}
	}
}

func TestGenerateBounded(t *testing.T) {
	for _, v := range core.Voices() {
		buf := Generate(v, 44100, seeded())
		if p := buf.peak(); p > 1.0 {
			t.Errorf("%s peak = %f, exceeds unity", v, p)
		}
		if p := buf.peak(); p == 0 {
			t.Errorf("%s is silent", v)
		}
	}
}

func TestGenerateHihatDecays(t *testing.T) {
	buf := Generate(core.VoiceHihat, 44100, seeded())
	// exp(-0.01*2000) is around 2e-9
	for i := 2000; i < len(buf); i++ {
		if math.Abs(buf[i]) > 1e-8 {
			t.Fatalf("hihat[%d] = %g, expected fully decayed", i, buf[i])
		}
	}
}

func TestGenerateFallbackShared(t *testing.T) {
	ref := Generate(core.VoiceOpenHat, 44100, nil)
	for _, v := range []core.Voice{core.VoiceCrash, core.VoiceRide, core.VoiceTom1, core.VoiceTom2} {
		buf := Generate(v, 44100, nil)
		for i := range ref {
			if buf[i] != ref[i] {
				t.Fatalf("%s differs from openhat at %d", v, i)
			}
		}
	}
	want := math.Sin(2*math.Pi*440*10.0/44100) * math.Exp(-10*0.005)
	if math.Abs(ref[10]-want) > 1e-12 {
		t.Errorf("fallback[10] = %f, want %f", ref[10], want)
	}
}

func TestBank(t *testing.T) {
	b := NewBank(22050, seeded())
	if b.SampleRate() != 22050 {
		t.Errorf("SampleRate = %d", b.SampleRate())
	}
	for _, v := range core.Voices() {
		buf, err := b.Buffer(v)
		if err != nil {
			t.Fatalf("Buffer(%s): %v", v, err)
		}
		if len(buf) != 11025 {
			t.Errorf("Buffer(%s) len = %d, want 11025", v, len(buf))
		}
	}
	if _, err := b.Buffer(core.VoiceCount); err == nil {
		t.Error("expected error for out-of-range voice")
	}
}
