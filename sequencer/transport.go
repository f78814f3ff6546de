package sequencer

import (
	"time"

	"github.com/lixenwraith/beat-buddy/parameter"
)

// State is a read-only view of the transport
type State struct {
	Playing bool
	Step    int
	BPM     int
	Volume  float64
}

// Interval returns the tick period at the state's tempo
func (s State) Interval() time.Duration {
	return parameter.StepInterval(s.BPM)
}

// transport is the two-state machine: stopped or running
// Not safe for concurrent use; Machine serializes access
type transport struct {
	playing bool
	step    int
	bpm     int
	volume  float64
}

func newTransport(bpm int, volume float64) transport {
	return transport{bpm: bpm, volume: volume}
}

// start returns false if already running
func (t *transport) start() bool {
	if t.playing {
		return false
	}
	t.playing = true
	return true
}

// pause stops ticking and keeps the step, returns false if not running
func (t *transport) pause() bool {
	if !t.playing {
		return false
	}
	t.playing = false
	return true
}

// hardStop stops ticking and rewinds, returns true if it was running
func (t *transport) hardStop() bool {
	was := t.playing
	t.playing = false
	t.step = 0
	return was
}

// advance moves the cursor one step, wrapping at the pattern length
func (t *transport) advance() int {
	t.step = (t.step + 1) % parameter.StepsPerPattern
	return t.step
}

func (t *transport) state() State {
	return State{
		Playing: t.playing,
		Step:    t.step,
		BPM:     t.bpm,
		Volume:  t.volume,
	}
}
