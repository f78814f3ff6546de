package sequencer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lixenwraith/beat-buddy/core"
	"github.com/lixenwraith/beat-buddy/parameter"
)

// ErrPresetNotFound is returned when no preset has the requested name
var ErrPresetNotFound = errors.New("preset not found")

// Preset is a named built-in or configured pattern
type Preset struct {
	Name    string
	BPM     int
	Pattern Pattern
}

// DefaultPresets returns the built-in patterns
func DefaultPresets() []Preset {
	return []Preset{
		mustPreset("Basic Rock", parameter.DefaultBPM, map[core.Voice]string{
			core.VoiceKick:  "x...|....|x...|....",
			core.VoiceSnare: "....|x...|....|x...",
			core.VoiceHihat: "x.x.|x.x.|x.x.|x.x.",
		}),
		mustPreset("Four On The Floor", 124, map[core.Voice]string{
			core.VoiceKick:    "x...|x...|x...|x...",
			core.VoiceHihat:   "..x.|..x.|..x.|..x.",
			core.VoiceSnare:   "....|x...|....|x...",
			core.VoiceOpenHat: "....|....|....|...x",
		}),
		mustPreset("Breakbeat", 96, map[core.Voice]string{
			core.VoiceKick:  "x...|....|..x.|.x..",
			core.VoiceSnare: "....|x..x|.x..|x...",
			core.VoiceHihat: "x.x.|x.x.|x.x.|x.xx",
			core.VoiceCrash: "x...|....|....|....",
		}),
	}
}

func mustPreset(name string, bpm int, rows map[core.Voice]string) Preset {
	p := Preset{Name: name, BPM: bpm}
	for v, s := range rows {
		row, err := ParseRow(s)
		if err != nil {
			panic(fmt.Sprintf("preset %s: %v", name, err))
		}
		p.Pattern[v] = row
	}
	return p
}

// FindPreset matches by name, case-insensitive
func FindPreset(presets []Preset, name string) (Preset, error) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
}
