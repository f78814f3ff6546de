package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvAudioEnabled = "BEATBUDDY_AUDIO_ENABLED"
	EnvMasterVolume = "BEATBUDDY_MASTER_VOLUME" // 0-100
	EnvVoiceGains   = "BEATBUDDY_VOICE_GAINS"   // JSON object, voice name -> gain
	EnvSampleRate   = "BEATBUDDY_SAMPLE_RATE"
	EnvBPM          = "BEATBUDDY_BPM"
	EnvLogLevel     = "BEATBUDDY_LOG_LEVEL"
)

// ApplyEnv overrides cfg from the environment
// Malformed values are logged and ignored; out-of-range values are clamped
func ApplyEnv(cfg *Config) {
	applyEnv(cfg, os.Getenv)
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if enabled := getenv(EnvAudioEnabled); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Audio.Enabled = val
		} else {
			ignored(EnvAudioEnabled, enabled, err)
		}
	}

	// Master volume 0-100 converted to 0.0-1.0
	if volume := getenv(EnvMasterVolume); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			v := float64(val) / 100.0
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			cfg.Audio.MasterVolume = v
		} else {
			ignored(EnvMasterVolume, volume, err)
		}
	}

	if gains := getenv(EnvVoiceGains); gains != "" {
		var m map[string]float64
		if err := json.Unmarshal([]byte(gains), &m); err == nil {
			if cfg.Audio.VoiceGains == nil {
				cfg.Audio.VoiceGains = make(map[string]float64, len(m))
			}
			for k, v := range m {
				cfg.Audio.VoiceGains[strings.ToLower(k)] = v
			}
		} else {
			ignored(EnvVoiceGains, gains, err)
		}
	}

	if sampleRate := getenv(EnvSampleRate); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.Audio.SampleRate = val
		} else {
			ignored(EnvSampleRate, sampleRate, err)
		}
	}

	if bpm := getenv(EnvBPM); bpm != "" {
		if val, err := strconv.Atoi(bpm); err == nil && val > 0 {
			cfg.Transport.BPM = val
		} else {
			ignored(EnvBPM, bpm, err)
		}
	}

	if level := getenv(EnvLogLevel); level != "" {
		l := LogLevel(strings.ToLower(level))
		if l.IsValid() {
			cfg.Log.Level = l
		} else {
			ignored(EnvLogLevel, level, nil)
		}
	}
}

func ignored(key, value string, err error) {
	slog.Warn("ignoring environment override", "key", key, "value", value, "err", err)
}
