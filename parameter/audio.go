package parameter

import (
	"math"
	"time"
)

// Audio Hardware Settings
const (
	AudioSampleRate  = 44100
	AudioChannels    = 2
	AudioBitDepth    = 16
	AudioPrecision   = AudioBitDepth / 8 // bytes per sample
	AudioBufferMs    = 100
	MinAudioBufferMs = 10
	MaxAudioBufferMs = 1000
)

// AudioBufferDuration is the speaker buffer length, trading latency for underrun safety
const AudioBufferDuration = AudioBufferMs * time.Millisecond

// VoiceDuration is the length of every generated drum buffer
const VoiceDuration = 500 * time.Millisecond

// VoiceSamples returns the buffer length for a voice at the given rate
func VoiceSamples(sampleRate int) int {
	if sampleRate <= 0 {
		return 0
	}
	return int(math.Round(float64(sampleRate) * VoiceDuration.Seconds()))
}

// Kick: downward sweeping sine, f(i) = KickBaseFreq - i*KickSweep
const (
	KickBaseFreq = 60.0
	KickSweep    = 0.01
	KickDecay    = 0.0001
)

// Snare: noise times a 200Hz tone
const (
	SnareToneFreq = 200.0
	SnareDecay    = 0.001
)

// Hihat: pure decaying noise
const HihatDecay = 0.01

// Fallback tone shared by openhat, crash, ride, tom1 and tom2
const (
	FallbackFreq  = 440.0
	FallbackDecay = 0.005
)

// Gain defaults
const (
	DefaultVolume    = 0.7
	DefaultVoiceGain = 1.0
	MinVolume        = 0.0
	MaxVolume        = 1.0
	VoiceGainStep    = 0.1
	MaxVoiceGain     = 2.0
)

// ClampVolume limits v to [MinVolume, MaxVolume]
func ClampVolume(v float64) float64 {
	if v < MinVolume {
		return MinVolume
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}

// ClampVoiceGain limits g to [0, MaxVoiceGain]
func ClampVoiceGain(g float64) float64 {
	return math.Max(0, math.Min(g, MaxVoiceGain))
}
