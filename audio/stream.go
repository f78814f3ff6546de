package audio

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// bufferStreamer plays one Buffer once as centered stereo
// Each trigger owns its own instance so overlapping plays never share a read position
type bufferStreamer struct {
	buf Buffer
	pos int
}

func newBufferStreamer(buf Buffer) *bufferStreamer {
	return &bufferStreamer{buf: buf}
}

func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	n = copyFrames(samples, s.buf[s.pos:])
	s.pos += n
	return n, true
}

func (s *bufferStreamer) Err() error { return nil }

// copyFrames writes mono src into both channels of dst, returns frames written
func copyFrames(dst [][2]float64, src Buffer) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i][0] = src[i]
		dst[i][1] = src[i]
	}
	return n
}

// newVolume wraps s with a linear gain
// math.Log2(0) is -Inf, so gain <= 0 is rendered silent
func newVolume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain), Silent: false}
}
