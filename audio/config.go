package audio

import (
	"time"

	"github.com/lixenwraith/beat-buddy/core"
	"github.com/lixenwraith/beat-buddy/parameter"
)

// AudioConfig holds playback settings
type AudioConfig struct {
	Enabled      bool
	SampleRate   int
	BufferMs     int
	MasterVolume float64
	VoiceGains   map[core.Voice]float64 // per-trigger multiplier, missing voices play at unity
}

// DefaultAudioConfig returns enabled playback at the standard rate
func DefaultAudioConfig() *AudioConfig {
	return &AudioConfig{
		Enabled:      true,
		SampleRate:   parameter.AudioSampleRate,
		BufferMs:     parameter.AudioBufferMs,
		MasterVolume: parameter.DefaultVolume,
		VoiceGains:   make(map[core.Voice]float64),
	}
}

// BufferDuration returns the device buffer length
func (c *AudioConfig) BufferDuration() time.Duration {
	if c.BufferMs <= 0 {
		return parameter.AudioBufferDuration
	}
	return time.Duration(c.BufferMs) * time.Millisecond
}

// VoiceGain returns the configured multiplier for v, DefaultVoiceGain when unset
func (c *AudioConfig) VoiceGain(v core.Voice) float64 {
	if g, ok := c.VoiceGains[v]; ok {
		return g
	}
	return parameter.DefaultVoiceGain
}

// Clone returns a deep copy
func (c *AudioConfig) Clone() *AudioConfig {
	cp := *c
	cp.VoiceGains = make(map[core.Voice]float64, len(c.VoiceGains))
	for v, g := range c.VoiceGains {
		cp.VoiceGains[v] = g
	}
	return &cp
}
