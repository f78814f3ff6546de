// Package config loads the drum machine configuration from YAML with
// environment overrides.
package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lixenwraith/beat-buddy/parameter"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to a slog level; unknown values are Info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration.
type Config struct {
	Audio     AudioConfig     `yaml:"audio"`
	Transport TransportConfig `yaml:"transport"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Presets   []PresetConfig  `yaml:"presets"`
}

// AudioConfig configures the playback engine.
type AudioConfig struct {
	// Enabled false runs the engine silent without opening a device.
	Enabled bool `yaml:"enabled"`

	SampleRate int `yaml:"sample_rate"`

	// BufferMs is the device buffer length in milliseconds.
	BufferMs int `yaml:"buffer_ms"`

	// MasterVolume is the initial master gain in [0, 1].
	MasterVolume float64 `yaml:"master_volume"`

	// VoiceGains maps voice name to a per-trigger multiplier.
	VoiceGains map[string]float64 `yaml:"voice_gains"`
}

// TransportConfig configures the step clock.
type TransportConfig struct {
	BPM int `yaml:"bpm"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level LogLevel `yaml:"level"`

	// File receives log output; "-" selects stderr.
	File string `yaml:"file"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `yaml:"addr"`
}

// PresetConfig is a user pattern available alongside the built-in presets.
type PresetConfig struct {
	Name string `yaml:"name"`
	BPM  int    `yaml:"bpm"`

	// Steps maps voice name to step notation, e.g. "x...|x...|x...|x...".
	Steps map[string]string `yaml:"steps"`
}

// DefaultLogFile is used when no log file is configured.
func DefaultLogFile() string {
	return filepath.Join(os.TempDir(), "beatbuddy.log")
}

// Default returns a usable configuration without any file.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			Enabled:      true,
			SampleRate:   parameter.AudioSampleRate,
			BufferMs:     parameter.AudioBufferMs,
			MasterVolume: parameter.DefaultVolume,
			VoiceGains:   map[string]float64{},
		},
		Transport: TransportConfig{BPM: parameter.DefaultBPM},
		Log: LogConfig{
			Level: LogInfo,
			File:  DefaultLogFile(),
		},
	}
}
