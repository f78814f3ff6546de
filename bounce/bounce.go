// Package bounce renders a pattern offline to a WAV file
//
// The Machine is driven by a manual clock: every tick is followed by exactly
// one step worth of frames pulled from an offline mixer, so timing is
// sample-exact regardless of wall clock.
package bounce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/beat-buddy/audio"
	"github.com/lixenwraith/beat-buddy/observe"
	"github.com/lixenwraith/beat-buddy/parameter"
	"github.com/lixenwraith/beat-buddy/sequencer"
)

// Options selects what to render
type Options struct {
	// Loops is the number of full 16-step passes, at least 1
	Loops int

	// Preset names the pattern to render; empty uses Pattern and BPM
	Preset  string
	Pattern sequencer.Pattern
	BPM     int

	// Volume is the master gain; nil uses Audio.MasterVolume and 0 renders silence
	Volume *float64

	// Audio supplies sample rate and voice gains; Enabled is ignored
	Audio *audio.AudioConfig

	// Presets are searched after the built-in ones
	Presets []sequencer.Preset

	// Rand makes noise voices reproducible, nil uses a time seed
	Rand audio.RandSource

	Logger  *slog.Logger
	Metrics *observe.Metrics
}

// Result describes a finished render
type Result struct {
	Frames     int
	SampleRate int
	BPM        int
	Steps      int
}

// Render writes opts.Loops loops plus the decay tail of the last step as 16-bit stereo WAV
func Render(ctx context.Context, w io.WriteSeeker, opts Options) (Result, error) {
	if opts.Loops < 1 {
		return Result{}, fmt.Errorf("loops must be at least 1, got %d", opts.Loops)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ac := opts.Audio
	if ac == nil {
		ac = audio.DefaultAudioConfig()
	}
	ac = ac.Clone()
	ac.Enabled = true
	volume := ac.MasterVolume
	if opts.Volume != nil {
		volume = *opts.Volume
	}

	out := audio.NewOfflineOutput()
	engine := audio.NewEngine(ac,
		audio.WithOutputFactory(audio.OfflineFactory(out)),
		audio.WithRandSource(opts.Rand),
		audio.WithLogger(logger),
	)
	if err := engine.Start(); err != nil {
		return Result{}, err
	}
	defer engine.Stop()

	clock := sequencer.NewManualClock()
	mopts := []sequencer.MachineOption{
		sequencer.WithClock(clock),
		sequencer.WithMachineLogger(logger),
		sequencer.WithMetrics(opts.Metrics),
		sequencer.WithTempo(opts.BPM),
		sequencer.WithVolume(volume),
		sequencer.WithPattern(opts.Pattern),
		sequencer.WithPresets(opts.Presets...),
	}
	m := sequencer.NewMachine(engine, mopts...)
	defer m.Close()

	if opts.Preset != "" {
		if err := m.LoadPreset(opts.Preset); err != nil {
			return Result{}, err
		}
	}

	bpm := m.Tempo()
	sr := ac.SampleRate
	steps := opts.Loops * parameter.StepsPerPattern

	// The first tick must land on step 0
	if err := m.Seek(parameter.StepsPerPattern - 1); err != nil {
		return Result{}, err
	}
	m.Play()

	format := beep.Format{
		SampleRate:  beep.SampleRate(sr),
		NumChannels: parameter.AudioChannels,
		Precision:   parameter.AudioPrecision,
	}
	buf := beep.NewBuffer(format)
	mix := out.Streamer()

	for n := 0; n < steps; n++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		clock.Tick()
		frames := parameter.StepFrame(n+1, bpm, sr) - parameter.StepFrame(n, bpm, sr)
		buf.Append(beep.Take(frames, mix))
	}
	m.Stop()

	// Let the last triggers ring out
	buf.Append(beep.Take(parameter.VoiceSamples(sr), mix))

	if err := wav.Encode(w, clip(buf.Streamer(0, buf.Len())), format); err != nil {
		return Result{}, fmt.Errorf("encode wav: %w", err)
	}

	res := Result{Frames: buf.Len(), SampleRate: sr, BPM: bpm, Steps: steps}
	played, _ := engine.GetStats()
	logger.Info("bounce rendered",
		"frames", res.Frames,
		"sample_rate", sr,
		"bpm", bpm,
		"steps", steps,
		"triggers", played,
	)
	return res, nil
}

// ErrEmptyPattern is returned by Check when nothing would be heard
var ErrEmptyPattern = errors.New("pattern has no active steps")

// Check resolves the pattern opts would render and rejects an empty one
func Check(opts Options) error {
	p := opts.Pattern
	if opts.Preset != "" {
		pr, err := sequencer.FindPreset(append(sequencer.DefaultPresets(), opts.Presets...), opts.Preset)
		if err != nil {
			return err
		}
		p = pr.Pattern
	}
	if p.IsEmpty() {
		return ErrEmptyPattern
	}
	return nil
}

// clip limits samples to [-1, 1] so overlapping hits do not wrap in 16-bit PCM
func clip(s beep.Streamer) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			for c := range samples[i] {
				samples[i][c] = max(-1, min(1, samples[i][c]))
			}
		}
		return n, ok
	})
}
