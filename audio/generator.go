package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/lixenwraith/beat-buddy/core"
	"github.com/lixenwraith/beat-buddy/parameter"
)

// NewRandSource returns a time-seeded source for production use
func NewRandSource() RandSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Generate synthesizes the buffer for v at sampleRate
// Length is always parameter.VoiceSamples(sampleRate); nil for unknown voices or sampleRate <= 0
func Generate(v core.Voice, sampleRate int, rng RandSource) Buffer {
	n := parameter.VoiceSamples(sampleRate)
	if n == 0 || !v.Valid() {
		return nil
	}
	if rng == nil {
		rng = NewRandSource()
	}

	sr := float64(sampleRate)
	switch v {
	case core.VoiceKick:
		return generateKick(n, sr)
	case core.VoiceSnare:
		return generateSnare(n, sr, rng)
	case core.VoiceHihat:
		return generateHihat(n, rng)
	default:
		return generateFallback(n, sr)
	}
}

// noise returns a uniform sample in [-1, 1)
func noise(rng RandSource) float64 {
	return rng.Float64()*2 - 1
}

// generateKick is a sine whose frequency term is coupled to the absolute sample index
// The result is a non-linear sweep, kept as is for compatibility
func generateKick(n int, sr float64) Buffer {
	buf := make(Buffer, n)
	for i := range buf {
		fi := float64(i)
		freq := parameter.KickBaseFreq - fi*parameter.KickSweep
		buf[i] = math.Sin(2*math.Pi*freq*fi/sr) * math.Exp(-fi*parameter.KickDecay)
	}
	return buf
}

func generateSnare(n int, sr float64, rng RandSource) Buffer {
	buf := make(Buffer, n)
	for i := range buf {
		fi := float64(i)
		tone := math.Sin(2 * math.Pi * parameter.SnareToneFreq * fi / sr)
		buf[i] = noise(rng) * math.Exp(-fi*parameter.SnareDecay) * tone
	}
	return buf
}

func generateHihat(n int, rng RandSource) Buffer {
	buf := make(Buffer, n)
	for i := range buf {
		buf[i] = noise(rng) * math.Exp(-float64(i)*parameter.HihatDecay)
	}
	return buf
}

// generateFallback is shared by openhat, crash, ride and both toms
func generateFallback(n int, sr float64) Buffer {
	buf := make(Buffer, n)
	for i := range buf {
		fi := float64(i)
		buf[i] = math.Sin(2*math.Pi*parameter.FallbackFreq*fi/sr) * math.Exp(-fi*parameter.FallbackDecay)
	}
	return buf
}

// peak returns the largest absolute sample
func (b Buffer) peak() float64 {
	p := 0.0
	for _, s := range b {
		if a := math.Abs(s); a > p {
			p = a
		}
	}
	return p
}
