package audio

import (
	"testing"
	"time"

	"github.com/lixenwraith/beat-buddy/core"
)

// TestDefaultAudioConfig verifies default configuration
func TestDefaultAudioConfig(t *testing.T) {
	cfg := DefaultAudioConfig()

	if !cfg.Enabled {
		t.Error("Expected default config to have Enabled=true")
	}
	if cfg.MasterVolume != 0.7 {
		t.Errorf("Expected default master volume 0.7, got %f", cfg.MasterVolume)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("Expected default sample rate 44100, got %d", cfg.SampleRate)
	}
	if got := cfg.BufferDuration(); got != 100*time.Millisecond {
		t.Errorf("BufferDuration = %v, want 100ms", got)
	}
	for _, v := range core.Voices() {
		if g := cfg.VoiceGain(v); g != 1.0 {
			t.Errorf("VoiceGain(%s) = %f, want 1.0", v, g)
		}
	}
}

func TestAudioConfigBufferFallback(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.BufferMs = 0
	if got := cfg.BufferDuration(); got != 100*time.Millisecond {
		t.Errorf("BufferDuration with 0 ms = %v, want default", got)
	}
	cfg.BufferMs = 25
	if got := cfg.BufferDuration(); got != 25*time.Millisecond {
		t.Errorf("BufferDuration = %v, want 25ms", got)
	}
}

func TestAudioConfigCloneIsDeep(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.VoiceGains[core.VoiceKick] = 0.5

	cp := cfg.Clone()
	cp.VoiceGains[core.VoiceKick] = 2.0

	if cfg.VoiceGain(core.VoiceKick) != 0.5 {
		t.Error("Clone shares the gain map with its source")
	}
	if cp.VoiceGain(core.VoiceKick) != 2.0 {
		t.Error("Clone did not keep its own gain")
	}
}
