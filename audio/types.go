package audio

import (
	"errors"
)

// Buffer is mono float64 samples at unity gain
type Buffer []float64

// RandSource supplies uniform samples in [0, 1)
// *math/rand.Rand and *math/rand/v2.Rand both satisfy it
type RandSource interface {
	Float64() float64
}

// Sentinel errors
var (
	ErrNoAudioOutput = errors.New("no audio output available")
	ErrOutputInUse   = errors.New("audio output already open")
)
