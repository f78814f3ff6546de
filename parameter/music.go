package parameter

import (
	"math"
	"time"
)

// Tempo and Timing
const (
	DefaultBPM      = 120
	MinBPM          = 60
	MaxBPM          = 180
	BPMStep         = 5
	StepsPerBeat    = 4 // 16th notes
	BeatsPerBar     = 4
	StepsPerPattern = StepsPerBeat * BeatsPerBar // 16 steps
	VolumeStep      = 0.05
)

// UI timing
const (
	FrameInterval = 16 * time.Millisecond // ~60 FPS
	EventBuffer   = 100
)

// MinStepInterval floors the tick interval for extreme tempos
const MinStepInterval = time.Millisecond

// StepInterval returns the sixteenth-note tick interval, 60/bpm/4 seconds
// Non-positive tempos fall back to DefaultBPM; the result is never below MinStepInterval
func StepInterval(bpm int) time.Duration {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	d := float64(time.Minute) / (float64(bpm) * StepsPerBeat)
	if d < float64(MinStepInterval) {
		return MinStepInterval
	}
	return time.Duration(d)
}

// StepFrame returns the first frame of absolute step n at sampleRate
// Rounded per step so long renders do not accumulate truncation drift
func StepFrame(n, bpm, sampleRate int) int {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	return int(math.Round(float64(n) * float64(sampleRate) * 60 / (float64(bpm) * StepsPerBeat)))
}

// ClampBPM limits bpm to the user-facing range [MinBPM, MaxBPM]
func ClampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}
