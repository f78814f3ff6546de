package sequencer

import (
	"errors"
)

// SequencerService wraps Machine as a service.Service
type SequencerService struct {
	player  func() Player
	opts    []MachineOption
	machine *Machine
}

// NewService creates the sequencer service
// player is resolved at Init, after the audio service has initialized
func NewService(player func() Player, opts ...MachineOption) *SequencerService {
	return &SequencerService{player: player, opts: opts}
}

// Name implements Service
func (s *SequencerService) Name() string {
	return "sequencer"
}

// Dependencies implements Service
func (s *SequencerService) Dependencies() []string {
	return []string{"audio"}
}

// Init implements Service
func (s *SequencerService) Init(args ...any) error {
	var p Player
	if s.player != nil {
		p = s.player()
	}
	s.machine = NewMachine(p, s.opts...)
	return nil
}

// Start implements Service
// The transport stays stopped until the user presses play
func (s *SequencerService) Start() error {
	if s.machine == nil {
		return errors.New("sequencer service not initialized")
	}
	return nil
}

// Stop implements Service
func (s *SequencerService) Stop() error {
	if s.machine != nil {
		s.machine.Close()
	}
	return nil
}

// Machine returns the drum machine, nil before Init
func (s *SequencerService) Machine() *Machine {
	return s.machine
}
