package audio

import (
	"errors"

	"github.com/lixenwraith/beat-buddy/core"
)

// AudioService wraps Engine as a service.Service
// Handles graceful degradation when no audio backend is available
type AudioService struct {
	config *AudioConfig
	opts   []Option
	engine *Engine
}

// NewService creates a new audio service; nil cfg selects defaults
func NewService(cfg *AudioConfig, opts ...Option) *AudioService {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	return &AudioService{config: cfg.Clone(), opts: opts}
}

// Name implements Service
func (s *AudioService) Name() string {
	return "audio"
}

// Dependencies implements Service
func (s *AudioService) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: bool - mute override (true = muted), other args ignored
func (s *AudioService) Init(args ...any) error {
	if len(args) > 0 {
		if muted, ok := args[0].(bool); ok {
			s.config.Enabled = !muted
		}
	}
	s.engine = NewEngine(s.config, s.opts...)
	return nil
}

// Start implements Service
// A missing device is not fatal: the engine keeps running silent and the service reports disabled
func (s *AudioService) Start() error {
	if s.engine == nil {
		return errors.New("audio service not initialized")
	}
	if err := s.engine.Start(); err != nil && !errors.Is(err, ErrNoAudioOutput) {
		return err
	}
	return nil
}

// Stop implements Service
func (s *AudioService) Stop() error {
	if s.engine != nil {
		s.engine.Stop()
	}
	return nil
}

// IsDisabled returns true if triggers are not reaching a device
func (s *AudioService) IsDisabled() bool {
	return s.engine == nil || !s.engine.IsReady()
}

// Engine returns the underlying Engine, nil before Init
func (s *AudioService) Engine() *Engine {
	return s.engine
}

// Player returns the trigger surface used by the sequencer, nil before Init
func (s *AudioService) Player() Player {
	if s.engine == nil {
		return nil
	}
	return s.engine
}

// Player is the minimal playback interface used by the sequencer
type Player interface {
	Trigger(v core.Voice, masterGain float64) error
}
