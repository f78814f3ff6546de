package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/beat-buddy/core"
	"github.com/lixenwraith/beat-buddy/parameter"
)

var (
	styleDefault  = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleOn       = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFlash    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleSelected = tcell.StyleDefault.Reverse(true)
)

const playheadColor = tcell.ColorDarkSlateGray

// voiceColors distinguish the rows; the five fallback voices sound alike
var voiceColors = [core.VoiceCount]tcell.Color{
	tcell.ColorRed, tcell.ColorOrange, tcell.ColorYellow, tcell.ColorGreen,
	tcell.ColorTeal, tcell.ColorBlue, tcell.ColorPurple, tcell.ColorFuchsia,
}

func (a *App) draw() {
	a.screen.Clear()
	st := a.machine.State()
	pattern := a.machine.Pattern()
	now := time.Now()

	// Status line
	a.drawText(0, 0, styleTitle, "BEAT BUDDY")
	transport := "■ stop"
	if st.Playing {
		transport = "▶ play"
	}
	audio := "audio on"
	if a.silent() {
		audio = "audio silent"
	}
	a.drawText(12, 0, styleDefault, fmt.Sprintf("%s  step %02d/%d  bpm %d  vol %3.0f%%  %s",
		transport, st.Step+1, parameter.StepsPerPattern, st.BPM, st.Volume*100, audio))

	// Step header, one label per beat
	for s := 0; s < parameter.StepsPerPattern; s += parameter.StepsPerBeat {
		a.drawText(gridX+s*stepWidth, gridY-1, styleDim, fmt.Sprintf("%d", s+1))
	}

	for _, v := range core.Voices() {
		y := gridY + int(v)
		label := fmt.Sprintf("%d %-7s", int(v)+1, v.String())
		ls := tcell.StyleDefault.Foreground(voiceColors[v])
		if now.Sub(a.flash[v]) < padFlashMs*time.Millisecond {
			ls = styleFlash
		}
		a.drawText(0, y, ls, label)

		for s := 0; s < parameter.StepsPerPattern; s++ {
			x := gridX + s*stepWidth
			r, style := '·', styleDim
			if pattern[v][s] {
				r, style = '■', styleOn.Foreground(voiceColors[v])
			}
			if s == st.Step && (st.Playing || st.Step != 0) {
				style = style.Background(playheadColor)
			}
			if a.focus == focusGrid && v == a.cursorVoice && s == a.cursorStep {
				style = style.Reverse(true)
			}
			a.screen.SetContent(x, y, r, nil, style)
		}
		if a.mixer != nil {
			a.drawText(gainX, y, styleDim, fmt.Sprintf("%3.0f%%", a.mixer.VoiceGain(v)*100))
		}
	}

	a.drawText(0, gridY+int(core.VoiceCount)+1, styleDim,
		"space toggle  1-8/enter pad  p play  s stop  +/- bpm  [/] vol  </> gain")
	a.drawText(0, gridY+int(core.VoiceCount)+2, styleDim,
		"c clear  w save  l load  r preset  tab focus  q quit")

	a.drawLists()

	if a.message != "" && now.Sub(a.messageTime) < messageMs*time.Millisecond {
		style := styleDefault
		if a.messageErr {
			style = styleError
		}
		a.drawText(0, a.height-1, style, a.message)
	}

	a.screen.Show()
}

func (a *App) drawLists() {
	header := styleTitle
	if a.focus != focusSnapshots {
		header = styleDim
	}
	a.drawText(0, listY, header, "Saved")
	snaps := a.machine.Snapshots()
	start := max(0, a.snapSel-maxListShown+1)
	for i := start; i < len(snaps) && i < start+maxListShown; i++ {
		style := styleDefault
		if a.focus == focusSnapshots && i == a.snapSel {
			style = styleSelected
		}
		s := snaps[i]
		a.drawText(0, listY+1+i-start, style, fmt.Sprintf("%-20s %3d bpm", s.Name, s.BPM))
	}

	header = styleTitle
	if a.focus != focusPresets {
		header = styleDim
	}
	a.drawText(presetListX, listY, header, "Presets")
	presets := a.machine.Presets()
	start = max(0, a.presetSel-maxListShown+1)
	for i := start; i < len(presets) && i < start+maxListShown; i++ {
		style := styleDefault
		if a.focus == focusPresets && i == a.presetSel {
			style = styleSelected
		}
		p := presets[i]
		a.drawText(presetListX, listY+1+i-start, style, fmt.Sprintf("%-20s %3d bpm", p.Name, p.BPM))
	}
}

func (a *App) drawText(x, y int, style tcell.Style, text string) {
	if y < 0 || y >= a.height {
		return
	}
	for _, r := range text {
		if x >= a.width {
			return
		}
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
