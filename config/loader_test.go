package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lixenwraith/beat-buddy/config"
	"github.com/lixenwraith/beat-buddy/core"
)

func TestLoadFromReader_Empty(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	def := config.Default()
	if cfg.Transport.BPM != def.Transport.BPM || cfg.Audio.SampleRate != def.Audio.SampleRate {
		t.Errorf("empty document did not yield defaults: %+v", cfg)
	}
}

func TestLoadFromReader_Full(t *testing.T) {
	t.Parallel()
	yaml := `
audio:
  enabled: false
  sample_rate: 48000
  buffer_ms: 50
  master_volume: 0.5
  voice_gains:
    kick: 1.2
    hihat: 0.6
transport:
  bpm: 96
log:
  level: debug
  file: "-"
metrics:
  addr: "127.0.0.1:9464"
presets:
  - name: Half Time
    bpm: 70
    steps:
      kick:  "x...|....|....|...."
      snare: "....|....|x...|...."
  - name: Ride Out
    steps:
      ride: "x.x.|x.x.|x.x.|x.x."
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Audio.Enabled || cfg.Audio.SampleRate != 48000 || cfg.Audio.BufferMs != 50 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Log.Level != config.LogDebug || cfg.Log.File != "-" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9464" {
		t.Errorf("metrics.addr = %q", cfg.Metrics.Addr)
	}

	ac := cfg.AudioEngineConfig()
	if ac.VoiceGain(core.VoiceKick) != 1.2 || ac.VoiceGain(core.VoiceSnare) != 1.0 {
		t.Errorf("engine gains = %v", ac.VoiceGains)
	}
	if ac.BufferDuration().Milliseconds() != 50 {
		t.Errorf("engine buffer = %v", ac.BufferDuration())
	}

	presets, err := cfg.SequencerPresets()
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 2 {
		t.Fatalf("presets = %d, want 2", len(presets))
	}
	if presets[0].BPM != 70 || presets[1].BPM != 96 {
		t.Errorf("preset bpm = %d, %d; want 70, 96 (transport fallback)", presets[0].BPM, presets[1].BPM)
	}
	if !presets[0].Pattern[core.VoiceSnare][8] {
		t.Error("half time snare on step 8 missing")
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("transport:\n  swing: 0.2\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()
	yaml := `
audio:
  sample_rate: 100
  buffer_ms: 5000
  master_volume: 1.5
  voice_gains:
    cowbell: 1.0
    kick: -1
transport:
  bpm: 300
log:
  level: chatty
presets:
  - name: A
    steps:
      kick: "x..."
  - name: A
  - bpm: 20
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{
		"audio.sample_rate",
		"audio.buffer_ms",
		"audio.master_volume",
		"cowbell",
		"voice_gains.kick",
		"transport.bpm",
		"log.level",
		"presets[0].steps",
		"duplicate",
		"presets[2].name is required",
		"presets[2].bpm",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got: %v", want, err)
		}
	}
}

func TestValidate_PresetNames(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "built-in name",
			yaml: "presets:\n  - name: Basic Rock\n    steps:\n      kick: \"x...|....|x...|....\"\n",
			want: `collides with built-in preset "Basic Rock"`,
		},
		{
			name: "built-in name other case",
			yaml: "presets:\n  - name: breakbeat\n",
			want: `collides with built-in preset "Breakbeat"`,
		},
		{
			name: "duplicate ignoring case",
			yaml: "presets:\n  - name: Mine\n  - name: MINE\n",
			want: "presets[1].name \"MINE\" is a duplicate of presets[0]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}

	if _, err := config.LoadFromReader(strings.NewReader("presets:\n  - name: Basic Rock Remix\n")); err != nil {
		t.Errorf("distinct name rejected: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "beatbuddy.yaml")
	if err := os.WriteFile(path, []byte("transport:\n  bpm: 150\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Transport.BPM != 150 {
		t.Errorf("bpm = %d, want 150", cfg.Transport.BPM)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()
	for _, l := range []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError} {
		if !l.IsValid() {
			t.Errorf("%q should be valid", l)
		}
	}
	if config.LogLevel("trace").IsValid() {
		t.Error("trace should be invalid")
	}
	if config.LogLevel("").Level().String() != "INFO" {
		t.Error("empty level should map to info")
	}
}
