package audio

import (
	"github.com/lixenwraith/beat-buddy/core"
)

// Bank stores one generated buffer per voice
// Built once, read-only afterwards, safe for concurrent reads
type Bank struct {
	sampleRate int
	store      [core.VoiceCount]Buffer
}

// NewBank generates every voice at sampleRate
func NewBank(sampleRate int, rng RandSource) *Bank {
	if rng == nil {
		rng = NewRandSource()
	}
	b := &Bank{sampleRate: sampleRate}
	for _, v := range core.Voices() {
		b.store[v] = Generate(v, sampleRate, rng)
	}
	return b
}

// Buffer returns the generated buffer for v
func (b *Bank) Buffer(v core.Voice) (Buffer, error) {
	if err := v.Check(); err != nil {
		return nil, err
	}
	return b.store[v], nil
}

// SampleRate returns the rate the bank was generated at
func (b *Bank) SampleRate() int {
	return b.sampleRate
}
