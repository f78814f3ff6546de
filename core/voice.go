package core

import (
	"fmt"
	"strings"
)

// Voice identifies one drum sound slot
type Voice int

const (
	VoiceKick Voice = iota
	VoiceSnare
	VoiceHihat
	VoiceOpenHat
	VoiceCrash
	VoiceRide
	VoiceTom1
	VoiceTom2
	VoiceCount
)

var voiceNames = [VoiceCount]string{"kick", "snare", "hihat", "openhat", "crash", "ride", "tom1", "tom2"}

func (v Voice) String() string {
	if v.Valid() {
		return voiceNames[v]
	}
	return "unknown"
}

// Valid reports whether v is one of the enumerated voices
func (v Voice) Valid() bool {
	return v >= 0 && v < VoiceCount
}

// Check returns ErrInvalidVoice wrapped with the offending value when v is out of range
func (v Voice) Check() error {
	if !v.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidVoice, int(v))
	}
	return nil
}

// Voices returns all voices in display order
func Voices() []Voice {
	vs := make([]Voice, VoiceCount)
	for i := range vs {
		vs[i] = Voice(i)
	}
	return vs
}

// ParseVoice resolves a voice by name, case-insensitive
func ParseVoice(name string) (Voice, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, vn := range voiceNames {
		if vn == n {
			return Voice(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidVoice, name)
}

// CheckStep returns ErrInvalidStep when step is outside [0, steps)
func CheckStep(step, steps int) error {
	if step < 0 || step >= steps {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidStep, step, steps)
	}
	return nil
}
