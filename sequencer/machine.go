// Package sequencer owns the pattern grid, the transport and the step clock
//
// Machine is the single owner of Pattern and transport state; every mutation
// and every tick is serialized through its mutex. The clock only decides when
// a tick happens, Machine decides what it does.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lixenwraith/beat-buddy/core"
	"github.com/lixenwraith/beat-buddy/observe"
	"github.com/lixenwraith/beat-buddy/parameter"
)

// ErrInvalidTempo is returned for a non-positive tempo
var ErrInvalidTempo = errors.New("invalid tempo")

// Player renders one voice at a gain
type Player interface {
	Trigger(v core.Voice, masterGain float64) error
}

type nopPlayer struct{}

func (nopPlayer) Trigger(core.Voice, float64) error { return nil }

// Machine is the drum machine core: pattern, transport, snapshots and presets
type Machine struct {
	mu        sync.Mutex
	pattern   Pattern
	transport transport
	handle    Handle
	retired   []Handle // stopped handles whose goroutine may still be exiting
	gen       uint64   // bumped on every cancel; ticks from older generations are dropped
	closed    bool

	player  Player
	clock   Clock
	library *Library
	presets []Preset
	logger  *slog.Logger
	metrics *observe.Metrics
}

// MachineOption configures a Machine
type MachineOption func(*Machine)

// WithClock replaces the real ticker clock
func WithClock(c Clock) MachineOption {
	return func(m *Machine) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithMachineLogger sets the logger
func WithMachineLogger(l *slog.Logger) MachineOption {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics sets the metric instruments
func WithMetrics(met *observe.Metrics) MachineOption {
	return func(m *Machine) {
		if met != nil {
			m.metrics = met
		}
	}
}

// WithTempo sets the initial tempo, non-positive values are ignored
func WithTempo(bpm int) MachineOption {
	return func(m *Machine) {
		if bpm > 0 {
			m.transport.bpm = bpm
		}
	}
}

// WithVolume sets the initial master volume
func WithVolume(v float64) MachineOption {
	return func(m *Machine) {
		m.transport.volume = v
	}
}

// WithPattern sets the initial grid
func WithPattern(p Pattern) MachineOption {
	return func(m *Machine) {
		m.pattern = p
	}
}

// WithPresets appends presets after the built-in ones
func WithPresets(p ...Preset) MachineOption {
	return func(m *Machine) {
		m.presets = append(m.presets, p...)
	}
}

// NewMachine creates a stopped machine at step 0 with an empty pattern
// A nil player makes every trigger silent
func NewMachine(player Player, opts ...MachineOption) *Machine {
	if player == nil {
		player = nopPlayer{}
	}
	m := &Machine{
		transport: newTransport(parameter.DefaultBPM, parameter.DefaultVolume),
		player:    player,
		clock:     TickerClock{},
		library:   NewLibrary(),
		presets:   DefaultPresets(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics == nil {
		m.metrics = observe.DefaultMetrics()
	}
	return m
}

// Play starts the transport from the current step
// The current step is not triggered; the first tick advances and plays
func (m *Machine) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || !m.transport.start() {
		return
	}
	m.startClock()
	m.logger.Debug("transport started", "step", m.transport.step, "bpm", m.transport.bpm)
}

// Pause stops ticking and keeps the current step
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transport.pause() {
		m.cancelClock()
		m.logger.Debug("transport paused", "step", m.transport.step)
	}
}

// TogglePlay switches between Play and Pause, returns the new playing state
func (m *Machine) TogglePlay() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transport.playing {
		m.transport.pause()
		m.cancelClock()
		return false
	}
	if m.closed {
		return false
	}
	m.transport.start()
	m.startClock()
	return true
}

// Stop halts the transport and rewinds to step 0
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hardStop()
}

// hardStop caller holds m.mu
func (m *Machine) hardStop() {
	if m.transport.hardStop() {
		m.cancelClock()
		m.logger.Debug("transport stopped")
	}
}

// Seek moves the cursor without triggering
func (m *Machine) Seek(step int) error {
	if err := core.CheckStep(step, parameter.StepsPerPattern); err != nil {
		return err
	}
	m.mu.Lock()
	m.transport.step = step
	m.mu.Unlock()
	return nil
}

// SetTempo changes the tick cadence going forward
// A running clock is rescheduled at the new interval; the step is kept
func (m *Machine) SetTempo(bpm int) error {
	if bpm <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTempo, bpm)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transport.bpm == bpm {
		return nil
	}
	m.transport.bpm = bpm
	if m.transport.playing {
		m.cancelClock()
		m.startClock()
	}
	return nil
}

// Tempo returns the current bpm
func (m *Machine) Tempo() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transport.bpm
}

// SetVolume sets the master gain used by the next trigger
func (m *Machine) SetVolume(v float64) {
	m.mu.Lock()
	m.transport.volume = v
	m.mu.Unlock()
}

// Volume returns the master gain
func (m *Machine) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transport.volume
}

// State returns a consistent view of the transport
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transport.state()
}

// Toggle flips one pattern cell
func (m *Machine) Toggle(v core.Voice, step int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pattern.Toggle(v, step)
}

// Clear empties the pattern; tempo, transport and snapshots are untouched
func (m *Machine) Clear() {
	m.mu.Lock()
	m.pattern.Clear()
	m.mu.Unlock()
}

// Pattern returns a copy of the grid
func (m *Machine) Pattern() Pattern {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pattern
}

// Save snapshots the pattern and tempo; empty name auto-names
func (m *Machine) Save(name string) Snapshot {
	m.mu.Lock()
	p, bpm := m.pattern, m.transport.bpm
	m.mu.Unlock()

	s := m.library.Save(name, p, bpm)
	m.metrics.PatternsSaved.Add(context.Background(), 1)
	m.logger.Info("pattern saved", "id", s.ID, "name", s.Name, "bpm", s.BPM, "cells", p.Count())
	m.logger.Debug("pattern saved steps", "id", s.ID, "steps", p.Notation())
	return s
}

// Load replaces pattern and tempo with a snapshot and hard-stops the transport
func (m *Machine) Load(id int) error {
	s, err := m.library.Get(id)
	if err != nil {
		return err
	}
	m.apply(s.Pattern, s.BPM)
	m.logger.Info("pattern loaded", "id", s.ID, "name", s.Name)
	return nil
}

// LoadPreset applies a preset by name exactly like Load
func (m *Machine) LoadPreset(name string) error {
	m.mu.Lock()
	p, err := FindPreset(m.presets, name)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.apply(p.Pattern, p.BPM)
	m.logger.Info("preset loaded", "name", p.Name)
	return nil
}

func (m *Machine) apply(p Pattern, bpm int) {
	m.mu.Lock()
	m.hardStop()
	m.pattern = p
	if bpm > 0 {
		m.transport.bpm = bpm
	}
	m.mu.Unlock()
	m.metrics.PatternsLoaded.Add(context.Background(), 1)
}

// Snapshots returns saved snapshots in save order
func (m *Machine) Snapshots() []Snapshot {
	return m.library.List()
}

// Presets returns built-in and configured presets
func (m *Machine) Presets() []Preset {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Preset, len(m.presets))
	copy(out, m.presets)
	return out
}

// Trigger plays v immediately at the master volume, bypassing the pattern
func (m *Machine) Trigger(v core.Voice) error {
	if err := v.Check(); err != nil {
		return err
	}
	vol := m.Volume()
	ctx := context.Background()
	if err := m.player.Trigger(v, vol); err != nil {
		m.metrics.RecordTriggerError(ctx, v.String())
		return err
	}
	m.metrics.RecordTrigger(ctx, v.String(), observe.SourcePad)
	return nil
}

// Close stops the transport and waits for every clock goroutine to exit
// The machine cannot be restarted afterwards
func (m *Machine) Close() {
	m.mu.Lock()
	m.closed = true
	m.hardStop()
	pending := m.retired
	m.retired = nil
	m.mu.Unlock()

	for _, h := range pending {
		<-h.Done()
	}
}

// startClock caller holds m.mu
func (m *Machine) startClock() {
	gen := m.gen
	interval := parameter.StepInterval(m.transport.bpm)
	m.handle = m.clock.Schedule(interval, func() { m.tick(gen) })
}

// cancelClock stops the current task without waiting for it, caller holds m.mu
func (m *Machine) cancelClock() {
	m.gen++
	if m.handle == nil {
		return
	}
	m.handle.Stop()

	live := m.retired[:0]
	for _, h := range m.retired {
		select {
		case <-h.Done():
		default:
			live = append(live, h)
		}
	}
	m.retired = append(live, m.handle)
	m.handle = nil
}

// tick advances one step and triggers its voices as one unit
func (m *Machine) tick(gen uint64) {
	start := time.Now()
	ctx := context.Background()

	m.mu.Lock()
	if gen != m.gen || !m.transport.playing {
		m.mu.Unlock()
		return
	}
	step := m.transport.advance()
	vol := m.transport.volume
	for _, v := range m.pattern.ActiveVoices(step) {
		if err := m.player.Trigger(v, vol); err != nil {
			m.metrics.RecordTriggerError(ctx, v.String())
			m.logger.Warn("trigger failed", "voice", v.String(), "step", step, "err", err)
			continue
		}
		m.metrics.RecordTrigger(ctx, v.String(), observe.SourceSequencer)
	}
	m.mu.Unlock()

	m.metrics.RecordTick(ctx, time.Since(start).Seconds())
}
