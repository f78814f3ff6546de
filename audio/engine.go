package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/beat-buddy/core"
)

// Engine renders voice buffers to the audio output
// It owns the voice bank and the single output handle for the process
type Engine struct {
	config *AudioConfig
	open   OutputFactory
	rng    RandSource
	logger *slog.Logger

	mu   sync.RWMutex // Protects bank, out, config gains
	bank *Bank
	out  Output

	running    atomic.Bool
	silentMode atomic.Bool

	played  atomic.Uint64
	skipped atomic.Uint64
}

// Option configures an Engine
type Option func(*Engine)

// WithOutputFactory replaces the speaker with another destination
func WithOutputFactory(f OutputFactory) Option {
	return func(e *Engine) {
		if f != nil {
			e.open = f
		}
	}
}

// WithRandSource makes noise voices reproducible
func WithRandSource(r RandSource) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithLogger sets the engine logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a stopped engine; nil cfg selects defaults
func NewEngine(cfg *AudioConfig, opts ...Option) *Engine {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	e := &Engine{
		config: cfg.Clone(),
		open:   OpenSpeaker,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start builds the voice bank and opens the output
// A missing device is returned once wrapped in ErrNoAudioOutput; the engine stays running in silent mode
func (e *Engine) Start() error {
	if !e.running.CompareAndSwap(false, true) {
		return fmt.Errorf("audio engine already running")
	}
	// A previous run may have degraded; retry the device
	e.silentMode.Store(false)

	bank := NewBank(e.config.SampleRate, e.rng)
	e.mu.Lock()
	e.bank = bank
	e.mu.Unlock()
	e.logger.Debug("voice bank generated", "sample_rate", bank.SampleRate(), "voices", int(core.VoiceCount))

	if !e.config.Enabled {
		e.silentMode.Store(true)
		e.logger.Info("audio disabled by config, running silent")
		return nil
	}

	out, err := e.open(e.config.SampleRate, e.config.BufferDuration())
	if err != nil {
		e.silentMode.Store(true)
		if !errors.Is(err, ErrNoAudioOutput) {
			err = fmt.Errorf("%w: %v", ErrNoAudioOutput, err)
		}
		e.logger.Warn("audio output unavailable, running silent", "err", err)
		return err
	}

	e.mu.Lock()
	e.out = out
	e.mu.Unlock()

	e.logger.Info("audio engine started",
		"sample_rate", e.config.SampleRate,
		"buffer", e.config.BufferDuration(),
	)
	return nil
}

// Stop releases the output, idempotent
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}

	e.mu.Lock()
	out := e.out
	e.out = nil
	e.bank = nil
	e.mu.Unlock()

	if out != nil {
		if err := out.Close(); err != nil {
			e.logger.Warn("audio output close failed", "err", err)
		}
	}
	e.logger.Info("audio engine stopped", "played", e.played.Load(), "skipped", e.skipped.Load())
}

// Trigger plays v once at masterGain times the configured voice gain
func (e *Engine) Trigger(v core.Voice, masterGain float64) error {
	if err := v.Check(); err != nil {
		return err
	}
	return e.TriggerWithGain(v, masterGain, e.VoiceGain(v))
}

// TriggerWithGain plays v once at masterGain*multiplier
// Returns immediately; concurrent and overlapping triggers mix independently
// Before Start, after Stop or in silent mode the call is a no-op
func (e *Engine) TriggerWithGain(v core.Voice, masterGain, multiplier float64) error {
	if err := v.Check(); err != nil {
		return err
	}

	e.mu.RLock()
	bank, out := e.bank, e.out
	e.mu.RUnlock()

	if bank == nil || out == nil || e.silentMode.Load() {
		e.skipped.Add(1)
		return nil
	}

	buf, err := bank.Buffer(v)
	if err != nil {
		return err
	}

	out.Add(newVolume(newBufferStreamer(buf), masterGain*multiplier))
	e.played.Add(1)
	return nil
}

// VoiceGain returns the per-trigger multiplier for v
func (e *Engine) VoiceGain(v core.Voice) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.VoiceGain(v)
}

// SetVoiceGain changes the per-trigger multiplier for v
// Negative gains are rejected
func (e *Engine) SetVoiceGain(v core.Voice, gain float64) error {
	if err := v.Check(); err != nil {
		return err
	}
	if gain < 0 || math.IsNaN(gain) {
		return fmt.Errorf("voice gain %v for %s must not be negative", gain, v)
	}
	e.mu.Lock()
	e.config.VoiceGains[v] = gain
	e.mu.Unlock()
	return nil
}

// Bank returns the generated voice bank, nil before Start
func (e *Engine) Bank() *Bank {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bank
}

// IsRunning returns true if engine is running (even in silent mode)
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// IsSilent returns true if triggers are being discarded
func (e *Engine) IsSilent() bool {
	return e.silentMode.Load()
}

// IsReady returns true once triggers reach an output
func (e *Engine) IsReady() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bank != nil && e.out != nil && !e.silentMode.Load()
}

// GetStats returns played and skipped trigger counts
func (e *Engine) GetStats() (played, skipped uint64) {
	return e.played.Load(), e.skipped.Load()
}
