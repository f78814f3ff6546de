package audio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Output accepts one-shot streamers and mixes them into a single destination
// Add must not block on playback
type Output interface {
	Add(s beep.Streamer)
	Close() error
}

// OutputFactory opens an Output at sampleRate with the given device buffer length
type OutputFactory func(sampleRate int, bufferDur time.Duration) (Output, error)

// speaker is process-wide state in beep, so at most one speakerOutput may be open
var speakerState struct {
	mu   sync.Mutex
	open bool
}

// speakerOutput feeds a beep.Mixer that is permanently attached to the speaker
type speakerOutput struct {
	mixer  *beep.Mixer
	closed atomic.Bool
}

// OpenSpeaker initializes the system audio device
// Returns ErrOutputInUse if already open, ErrNoAudioOutput if the device cannot be initialized
func OpenSpeaker(sampleRate int, bufferDur time.Duration) (Output, error) {
	speakerState.mu.Lock()
	defer speakerState.mu.Unlock()

	if speakerState.open {
		return nil, ErrOutputInUse
	}

	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(bufferDur)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAudioOutput, err)
	}

	mixer := &beep.Mixer{}
	speaker.Play(mixer)
	speakerState.open = true
	return &speakerOutput{mixer: mixer}, nil
}

func (o *speakerOutput) Add(s beep.Streamer) {
	if o.closed.Load() {
		return
	}
	speaker.Lock()
	o.mixer.Add(s)
	speaker.Unlock()
}

// Close stops playback and releases the device, idempotent
func (o *speakerOutput) Close() error {
	if !o.closed.CompareAndSwap(false, true) {
		return nil
	}

	speaker.Clear()
	speaker.Close()

	speakerState.mu.Lock()
	speakerState.open = false
	speakerState.mu.Unlock()
	return nil
}

// OfflineOutput mixes into memory instead of a device
// Rendering is pulled explicitly through Render or Streamer
type OfflineOutput struct {
	mu     sync.Mutex
	mixer  beep.Mixer
	added  int
	closed bool
}

// NewOfflineOutput creates an empty offline mixer
func NewOfflineOutput() *OfflineOutput {
	return &OfflineOutput{}
}

// OfflineFactory returns an OutputFactory that always yields o
func OfflineFactory(o *OfflineOutput) OutputFactory {
	return func(int, time.Duration) (Output, error) {
		return o, nil
	}
}

func (o *OfflineOutput) Add(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.mixer.Add(s)
	o.added++
}

func (o *OfflineOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mixer.Clear()
	o.closed = true
	return nil
}

// Render mixes the next frames of all active streamers
func (o *OfflineOutput) Render(frames int) [][2]float64 {
	buf := make([][2]float64, frames)
	o.stream(buf)
	return buf
}

// Streamer exposes the mix as an endless beep.Streamer, silence when idle
func (o *OfflineOutput) Streamer() beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		o.stream(samples)
		return len(samples), true
	})
}

func (o *OfflineOutput) stream(samples [][2]float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range samples {
		samples[i] = [2]float64{}
	}
	if o.mixer.Len() > 0 {
		o.mixer.Stream(samples)
	}
}

// Added returns the number of streamers accepted since creation
func (o *OfflineOutput) Added() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.added
}

// Active returns the number of streamers still playing
func (o *OfflineOutput) Active() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mixer.Len()
}
