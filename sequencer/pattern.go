package sequencer

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/beat-buddy/core"
	"github.com/lixenwraith/beat-buddy/parameter"
)

// Row is one voice's steps in playback order
type Row [parameter.StepsPerPattern]bool

// Pattern is the voice x step activation grid
// Value type: assignment copies the whole grid
type Pattern [core.VoiceCount]Row

// Toggle flips one cell
func (p *Pattern) Toggle(v core.Voice, step int) error {
	if err := checkCell(v, step); err != nil {
		return err
	}
	p[v][step] = !p[v][step]
	return nil
}

// Set assigns one cell
func (p *Pattern) Set(v core.Voice, step int, on bool) error {
	if err := checkCell(v, step); err != nil {
		return err
	}
	p[v][step] = on
	return nil
}

// Active reports whether v plays at step
func (p *Pattern) Active(v core.Voice, step int) (bool, error) {
	if err := checkCell(v, step); err != nil {
		return false, err
	}
	return p[v][step], nil
}

// Clear sets every cell to false
func (p *Pattern) Clear() {
	*p = Pattern{}
}

// IsEmpty returns true if no cell is set
func (p *Pattern) IsEmpty() bool {
	return *p == Pattern{}
}

// ActiveVoices returns the voices set at step in voice order
// Out-of-range steps yield nil
func (p *Pattern) ActiveVoices(step int) []core.Voice {
	if core.CheckStep(step, parameter.StepsPerPattern) != nil {
		return nil
	}
	var voices []core.Voice
	for _, v := range core.Voices() {
		if p[v][step] {
			voices = append(voices, v)
		}
	}
	return voices
}

// Count returns the number of set cells
func (p *Pattern) Count() int {
	n := 0
	for v := range p {
		for _, on := range p[v] {
			if on {
				n++
			}
		}
	}
	return n
}

func checkCell(v core.Voice, step int) error {
	if err := v.Check(); err != nil {
		return err
	}
	return core.CheckStep(step, parameter.StepsPerPattern)
}

// ParseRow reads step notation: x, X, 1 or * set a step; '.', '-', '0' leave it off
// Spaces and '|' are separators and ignored. Exactly 16 steps are required
func ParseRow(s string) (Row, error) {
	var row Row
	n := 0
	for _, r := range s {
		switch r {
		case ' ', '|', '\t':
			continue
		case 'x', 'X', '1', '*':
			if n < len(row) {
				row[n] = true
			}
		case '.', '-', '0':
		default:
			return Row{}, fmt.Errorf("invalid step character %q in %q", r, s)
		}
		n++
	}
	if n != len(row) {
		return Row{}, fmt.Errorf("%w: %q has %d steps, want %d", core.ErrInvalidStep, s, n, len(row))
	}
	return row, nil
}

// String renders the row in step notation with a bar separator every beat
func (r Row) String() string {
	var b strings.Builder
	for i, on := range r {
		if i > 0 && i%parameter.StepsPerBeat == 0 {
			b.WriteByte('|')
		}
		if on {
			b.WriteByte('x')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// ParsePattern builds a pattern from voice name to step notation
// Voices not present stay empty
func ParsePattern(steps map[string]string) (Pattern, error) {
	var p Pattern
	for name, notation := range steps {
		v, err := core.ParseVoice(name)
		if err != nil {
			return Pattern{}, err
		}
		row, err := ParseRow(notation)
		if err != nil {
			return Pattern{}, fmt.Errorf("voice %s: %w", v, err)
		}
		p[v] = row
	}
	return p, nil
}

// Notation returns the non-empty rows keyed by voice name
func (p *Pattern) Notation() map[string]string {
	out := make(map[string]string)
	for _, v := range core.Voices() {
		if p[v] != (Row{}) {
			out[v.String()] = p[v].String()
		}
	}
	return out
}
