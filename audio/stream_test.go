package audio

import (
	"testing"
)

func TestBufferStreamerStereo(t *testing.T) {
	s := newBufferStreamer(Buffer{0.1, 0.2, 0.3})
	out := make([][2]float64, 2)

	n, ok := s.Stream(out)
	if n != 2 || !ok {
		t.Fatalf("Stream = (%d, %v), want (2, true)", n, ok)
	}
	if out[1] != [2]float64{0.2, 0.2} {
		t.Errorf("frame 1 = %v, want centered 0.2", out[1])
	}

	n, ok = s.Stream(out)
	if n != 1 || !ok {
		t.Fatalf("second Stream = (%d, %v), want (1, true)", n, ok)
	}
	if out[0] != [2]float64{0.3, 0.3} {
		t.Errorf("frame 0 = %v, want 0.3", out[0])
	}

	if n, ok = s.Stream(out); n != 0 || ok {
		t.Errorf("drained Stream = (%d, %v), want (0, false)", n, ok)
	}
}

func TestVolumeGain(t *testing.T) {
	tests := []struct {
		gain float64
		want float64
	}{
		{1.0, 0.5},
		{0.5, 0.25},
		{2.0, 1.0},
		{0, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		s := newVolume(newBufferStreamer(Buffer{0.5}), tt.gain)
		out := make([][2]float64, 1)
		s.Stream(out)
		if diff := out[0][0] - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("gain %v: sample = %f, want %f", tt.gain, out[0][0], tt.want)
		}
	}
}
