// Package tui is the terminal front end: a pad and step grid over a
// sequencer.Machine, drawn with tcell.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/beat-buddy/core"
	"github.com/lixenwraith/beat-buddy/parameter"
	"github.com/lixenwraith/beat-buddy/sequencer"
)

const (
	gridX        = 10 // first step column
	gridY        = 3  // first voice row
	stepWidth    = 3
	gainX        = gridX + parameter.StepsPerPattern*stepWidth + 1
	listY        = gridY + int(core.VoiceCount) + 3
	presetListX  = 36
	padFlashMs   = 120
	messageMs    = 2500
	maxListShown = 8
)

// Mixer adjusts per-voice gains on the playback engine
type Mixer interface {
	VoiceGain(v core.Voice) float64
	SetVoiceGain(v core.Voice, gain float64) error
}

// focus selects which area receives navigation keys
type focus int

const (
	focusGrid focus = iota
	focusSnapshots
	focusPresets
	focusCount
)

// App owns the screen and translates keys into Machine calls
type App struct {
	screen        tcell.Screen
	machine       *sequencer.Machine
	logger        *slog.Logger
	silent        func() bool
	mixer         Mixer
	width, height int
	closeOnce     sync.Once

	// Cursor state
	cursorVoice core.Voice
	cursorStep  int
	focus       focus
	snapSel     int
	presetSel   int

	// Pad flash per voice
	flash [core.VoiceCount]time.Time

	message     string
	messageErr  bool
	messageTime time.Time
}

// Option configures an App
type Option func(*App)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithAudioStatus reports whether triggers are being discarded
func WithAudioStatus(silent func() bool) Option {
	return func(a *App) {
		a.silent = silent
	}
}

// WithMixer enables per-voice gain keys and the gain column
func WithMixer(mx Mixer) Option {
	return func(a *App) {
		a.mixer = mx
	}
}

// New initializes screen and binds it to m
func New(screen tcell.Screen, m *sequencer.Machine, opts ...Option) (*App, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	a := &App{
		screen:  screen,
		machine: m,
		logger:  slog.Default(),
		silent:  func() bool { return false },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.width, a.height = screen.Size()
	return a, nil
}

// Run draws at a fixed frame rate and handles input until quit or ctx is done
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(parameter.FrameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, parameter.EventBuffer)
	core.Go(func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				// Screen finalized
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	})

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventChan:
			if !a.handleInput(ev) {
				return nil
			}
		case <-ticker.C:
			a.draw()
		}
	}
}

// Close restores the terminal
func (a *App) Close() {
	a.closeOnce.Do(a.screen.Fini)
}

func (a *App) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventResize:
		a.width, a.height = a.screen.Size()
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		a.move(0, -1)
	case tcell.KeyDown:
		a.move(0, 1)
	case tcell.KeyLeft:
		a.move(-1, 0)
	case tcell.KeyRight:
		a.move(1, 0)
	case tcell.KeyTab:
		a.focus = (a.focus + 1) % focusCount
	case tcell.KeyBacktab:
		a.focus = (a.focus + focusCount - 1) % focusCount
	case tcell.KeyEnter:
		a.enter()
	case tcell.KeyRune:
		return a.handleRune(ev.Rune())
	}
	return true
}

func (a *App) handleRune(r rune) bool {
	m := a.machine
	switch r {
	case 'q':
		return false
	case 'h':
		a.move(-1, 0)
	case 'j':
		a.move(0, 1)
	case 'k':
		a.move(0, -1)
	case 'l':
		// Right in the grid, load in the saved list
		if a.focus == focusSnapshots {
			a.loadSnapshot()
		} else {
			a.move(1, 0)
		}
	case ' ':
		if a.focus == focusGrid {
			a.report(m.Toggle(a.cursorVoice, a.cursorStep))
		}
	case 'p':
		m.TogglePlay()
	case 's':
		m.Stop()
	case '+', '=':
		a.report(m.SetTempo(parameter.ClampBPM(m.Tempo() + parameter.BPMStep)))
	case '-', '_':
		a.report(m.SetTempo(parameter.ClampBPM(m.Tempo() - parameter.BPMStep)))
	case ']':
		m.SetVolume(parameter.ClampVolume(m.Volume() + parameter.VolumeStep))
	case '[':
		m.SetVolume(parameter.ClampVolume(m.Volume() - parameter.VolumeStep))
	case '>', '.':
		a.adjustGain(parameter.VoiceGainStep)
	case '<', ',':
		a.adjustGain(-parameter.VoiceGainStep)
	case 'c':
		m.Clear()
		a.notify("pattern cleared")
	case 'w':
		s := m.Save("")
		a.snapSel = len(m.Snapshots()) - 1
		a.notify(fmt.Sprintf("saved %s", s.Name))
	case 'r':
		a.loadPreset()
	default:
		if r >= '1' && r < '1'+rune(core.VoiceCount) {
			a.pad(core.Voice(r - '1'))
		}
	}
	return true
}

// move navigates the grid or the focused list
func (a *App) move(dx, dy int) {
	switch a.focus {
	case focusGrid:
		a.cursorStep = (a.cursorStep + dx + parameter.StepsPerPattern) % parameter.StepsPerPattern
		a.cursorVoice = (a.cursorVoice + core.Voice(dy) + core.VoiceCount) % core.VoiceCount
	case focusSnapshots:
		a.snapSel = clampIndex(a.snapSel+dy, len(a.machine.Snapshots()))
	case focusPresets:
		a.presetSel = clampIndex(a.presetSel+dy, len(a.machine.Presets()))
	}
}

func (a *App) enter() {
	switch a.focus {
	case focusGrid:
		a.pad(a.cursorVoice)
	case focusSnapshots:
		a.loadSnapshot()
	case focusPresets:
		a.loadPreset()
	}
}

func (a *App) pad(v core.Voice) {
	if err := a.machine.Trigger(v); err != nil {
		a.report(err)
		return
	}
	a.flash[v] = time.Now()
}

// adjustGain changes the cursor voice's gain by delta
func (a *App) adjustGain(delta float64) {
	if a.mixer == nil {
		a.notify("no mixer")
		return
	}
	v := a.cursorVoice
	g := parameter.ClampVoiceGain(math.Round((a.mixer.VoiceGain(v)+delta)*100) / 100)
	if err := a.mixer.SetVoiceGain(v, g); err != nil {
		a.report(err)
		return
	}
	a.notify(fmt.Sprintf("%s gain %.0f%%", v, g*100))
}

func (a *App) loadSnapshot() {
	snaps := a.machine.Snapshots()
	if len(snaps) == 0 {
		a.notify("nothing saved")
		return
	}
	s := snaps[clampIndex(a.snapSel, len(snaps))]
	if err := a.machine.Load(s.ID); err != nil {
		a.report(err)
		return
	}
	a.notify(fmt.Sprintf("loaded %s", s.Name))
}

func (a *App) loadPreset() {
	presets := a.machine.Presets()
	if len(presets) == 0 {
		return
	}
	p := presets[clampIndex(a.presetSel, len(presets))]
	if err := a.machine.LoadPreset(p.Name); err != nil {
		a.report(err)
		return
	}
	a.notify(fmt.Sprintf("preset %s", p.Name))
}

func (a *App) notify(msg string) {
	a.message, a.messageErr, a.messageTime = msg, false, time.Now()
}

// report shows err on the status line and logs it; nil is ignored
func (a *App) report(err error) {
	if err == nil {
		return
	}
	a.logger.Warn("command failed", "err", err)
	a.message, a.messageErr, a.messageTime = err.Error(), true, time.Now()
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
