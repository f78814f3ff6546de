package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lixenwraith/beat-buddy/audio"
	"github.com/lixenwraith/beat-buddy/core"
	"github.com/lixenwraith/beat-buddy/parameter"
	"github.com/lixenwraith/beat-buddy/sequencer"
	"gopkg.in/yaml.v3"
)

// Sample rate bounds accepted by Validate.
const (
	MinSampleRate = 8000
	MaxSampleRate = 192000
)

// Load reads the YAML configuration file at path on top of [Default] and
// returns a validated [Config]. Environment overrides are not applied.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates the result.
// Unknown keys are rejected. An empty document yields [Default].
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	a := cfg.Audio
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d is out of range [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate))
	}
	if a.BufferMs < parameter.MinAudioBufferMs || a.BufferMs > parameter.MaxAudioBufferMs {
		errs = append(errs, fmt.Errorf("audio.buffer_ms %d is out of range [%d, %d]", a.BufferMs, parameter.MinAudioBufferMs, parameter.MaxAudioBufferMs))
	}
	if a.MasterVolume < parameter.MinVolume || a.MasterVolume > parameter.MaxVolume {
		errs = append(errs, fmt.Errorf("audio.master_volume %.2f is out of range [0, 1]", a.MasterVolume))
	}
	for name, gain := range a.VoiceGains {
		if _, err := core.ParseVoice(name); err != nil {
			errs = append(errs, fmt.Errorf("audio.voice_gains: %w", err))
		}
		if gain < 0 {
			errs = append(errs, fmt.Errorf("audio.voice_gains.%s %.2f must not be negative", name, gain))
		}
	}

	if bpm := cfg.Transport.BPM; bpm < parameter.MinBPM || bpm > parameter.MaxBPM {
		errs = append(errs, fmt.Errorf("transport.bpm %d is out of range [%d, %d]", bpm, parameter.MinBPM, parameter.MaxBPM))
	}

	if cfg.Log.Level != "" && !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}

	// Preset lookup ignores case and searches built-ins first
	builtin := sequencer.DefaultPresets()
	seen := make(map[string]int, len(cfg.Presets))
	for i, p := range cfg.Presets {
		prefix := fmt.Sprintf("presets[%d]", i)
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			key := strings.ToLower(strings.TrimSpace(p.Name))
			if prev, ok := seen[key]; ok {
				errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of presets[%d]", prefix, p.Name, prev))
			}
			seen[key] = i
			if b, err := sequencer.FindPreset(builtin, p.Name); err == nil {
				errs = append(errs, fmt.Errorf("%s.name %q collides with built-in preset %q", prefix, p.Name, b.Name))
			}
		}
		if p.BPM != 0 && (p.BPM < parameter.MinBPM || p.BPM > parameter.MaxBPM) {
			errs = append(errs, fmt.Errorf("%s.bpm %d is out of range [%d, %d]", prefix, p.BPM, parameter.MinBPM, parameter.MaxBPM))
		}
		if _, err := sequencer.ParsePattern(p.Steps); err != nil {
			errs = append(errs, fmt.Errorf("%s.steps: %w", prefix, err))
		}
	}

	return errors.Join(errs...)
}

// AudioEngineConfig converts the audio section for the playback engine.
// Call after Validate; unknown voice names are skipped.
func (c *Config) AudioEngineConfig() *audio.AudioConfig {
	ac := audio.DefaultAudioConfig()
	ac.Enabled = c.Audio.Enabled
	ac.SampleRate = c.Audio.SampleRate
	ac.BufferMs = c.Audio.BufferMs
	ac.MasterVolume = c.Audio.MasterVolume
	for name, gain := range c.Audio.VoiceGains {
		if v, err := core.ParseVoice(name); err == nil {
			ac.VoiceGains[v] = gain
		}
	}
	return ac
}

// SequencerPresets converts the configured presets.
// A preset without bpm uses the transport tempo.
func (c *Config) SequencerPresets() ([]sequencer.Preset, error) {
	out := make([]sequencer.Preset, 0, len(c.Presets))
	for _, p := range c.Presets {
		pattern, err := sequencer.ParsePattern(p.Steps)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		bpm := p.BPM
		if bpm == 0 {
			bpm = c.Transport.BPM
		}
		out = append(out, sequencer.Preset{Name: p.Name, BPM: bpm, Pattern: pattern})
	}
	return out, nil
}
