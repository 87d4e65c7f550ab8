package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/poolsim/internal/achievements"
	"github.com/playmatatu/poolsim/internal/game"
)

var (
	feltStyle   = tcell.StyleDefault.Background(tcell.ColorDarkGreen)
	railStyle   = tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown).Background(tcell.ColorBlack)
	pocketStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorBlack)
	hudStyle    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	guideStyle  = tcell.StyleDefault.Foreground(tcell.ColorLightGray).Background(tcell.ColorDarkGreen)
	stickStyle  = tcell.StyleDefault.Foreground(tcell.ColorBurlyWood).Background(tcell.ColorDarkGreen)
	toastStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGold)
)

// tableView maps table coordinates onto the terminal cells inside the rails.
type tableView struct {
	x0, y0        int // top-left felt cell
	cols, rows    int
	width, height float64
}

func newTableView(screenW, screenH int, width, height float64) tableView {
	cols := screenW - 2
	rows := screenH - 4
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return tableView{x0: 1, y0: 2, cols: cols, rows: rows, width: width, height: height}
}

func (v tableView) toCell(x, y float64) (int, int) {
	cx := int(x / v.width * float64(v.cols))
	cy := int(y / v.height * float64(v.rows))
	if cx >= v.cols {
		cx = v.cols - 1
	}
	if cy >= v.rows {
		cy = v.rows - 1
	}
	if cx < 0 {
		cx = 0
	}
	if cy < 0 {
		cy = 0
	}
	return v.x0 + cx, v.y0 + cy
}

// fromCell returns the table position at the centre of a cell.
func (v tableView) fromCell(cx, cy int) (float64, float64) {
	x := (float64(cx-v.x0) + 0.5) / float64(v.cols) * v.width
	y := (float64(cy-v.y0) + 0.5) / float64(v.rows) * v.height
	return x, y
}

func (v tableView) contains(cx, cy int) bool {
	return cx >= v.x0 && cx < v.x0+v.cols && cy >= v.y0 && cy < v.y0+v.rows
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func draw(s tcell.Screen, snap game.Snapshot, toast *achievements.Toast, profile string) {
	s.Clear()
	w, h := s.Size()
	v := newTableView(w, h, snap.Width, snap.Height)

	drawHUD(s, snap, profile)

	// rails
	for x := v.x0 - 1; x <= v.x0+v.cols; x++ {
		s.SetContent(x, v.y0-1, '═', nil, railStyle)
		s.SetContent(x, v.y0+v.rows, '═', nil, railStyle)
	}
	for y := v.y0; y < v.y0+v.rows; y++ {
		s.SetContent(v.x0-1, y, '║', nil, railStyle)
		s.SetContent(v.x0+v.cols, y, '║', nil, railStyle)
		for x := v.x0; x < v.x0+v.cols; x++ {
			s.SetContent(x, y, ' ', nil, feltStyle)
		}
	}
	for _, p := range snap.Pockets {
		cx, cy := v.toCell(p.Position.X, p.Position.Y)
		s.SetContent(cx, cy, '◯', nil, pocketStyle.Foreground(tcell.ColorGray))
	}

	if snap.Aim.Visible {
		drawAim(s, v, snap)
	}

	for _, b := range snap.Balls {
		if !b.InPlay {
			continue
		}
		cx, cy := v.toCell(b.X, b.Y)
		r := '●'
		if b.Striped {
			r = '◍'
		}
		s.SetContent(cx, cy, r, nil, feltStyle.Foreground(tcell.GetColor(b.Color)))
	}

	drawFooter(s, w, h, snap, toast)
	s.Show()
}

func drawHUD(s tcell.Screen, snap game.Snapshot, profile string) {
	var line string
	switch snap.Status {
	case game.StatusStart:
		line = fmt.Sprintf(" POOL  mode: %s  difficulty: %s  profile: %s", snap.Mode, snap.Difficulty, profile)
	default:
		line = fmt.Sprintf(" P%d to shoot  P1: %d", snap.CurrentPlayer, snap.Player1Score)
		if snap.Mode == game.TwoPlayer {
			line += fmt.Sprintf("  P2: %d", snap.Player2Score)
		}
		line += fmt.Sprintf("  shots: %d  time: %.0fs", snap.Shots, snap.ElapsedSeconds)
		if snap.Aim.Metering {
			line += "  power " + powerBar(snap.Aim.Power)
		}
	}
	drawText(s, 0, 0, hudStyle, line)
}

func powerBar(power float64) string {
	const width = 20
	filled := int(math.Round((power - game.MinPower) / (game.MaxPower - game.MinPower) * width))
	bar := make([]rune, width)
	for i := range bar {
		bar[i] = '░'
		if i < filled {
			bar[i] = '█'
		}
	}
	return "[" + string(bar) + "]"
}

// drawAim draws the stick behind the cue ball and, in easy mode, the guide
// along the shot line.
func drawAim(s tcell.Screen, v tableView, snap game.Snapshot) {
	var cue *game.BallState
	for i := range snap.Balls {
		if snap.Balls[i].Number == game.CueBall && snap.Balls[i].InPlay {
			cue = &snap.Balls[i]
		}
	}
	if cue == nil {
		return
	}

	if g := snap.Aim.Guide; g != nil {
		const steps = 30
		for i := 1; i <= steps; i++ {
			t := float64(i) / steps
			x := g.From.X + (g.To.X-g.From.X)*t
			y := g.From.Y + (g.To.Y-g.From.Y)*t
			if x < 0 || y < 0 || x > v.width || y > v.height {
				break
			}
			cx, cy := v.toCell(x, y)
			s.SetContent(cx, cy, '·', nil, guideStyle)
		}
	}

	pull := 20.0
	if snap.Aim.Metering {
		pull += snap.Aim.Power * 3
	}
	for d := pull; d < pull+80; d += 10 {
		x := cue.X + math.Cos(snap.Aim.Angle)*d
		y := cue.Y + math.Sin(snap.Aim.Angle)*d
		if x < 0 || y < 0 || x > v.width || y > v.height {
			break
		}
		cx, cy := v.toCell(x, y)
		s.SetContent(cx, cy, '•', nil, stickStyle)
	}
}

func drawFooter(s tcell.Screen, w, h int, snap game.Snapshot, toast *achievements.Toast) {
	if toast != nil {
		a := toast.Achievement
		drawText(s, 1, h-1, toastStyle, fmt.Sprintf(" %s %s: %s ", a.Icon, a.Title, a.Description))
		return
	}

	var help string
	switch {
	case snap.Status == game.StatusStart:
		help = "enter: play  1/2: players  e/h: difficulty  q: quit"
	case snap.Status == game.StatusGameOver:
		help = snap.Reason + "  enter: play again  1/2/e/h: settings  q: quit"
	case snap.Phase == game.PhaseAiming:
		help = "←/→ or mouse: aim  space: start power  r: restart  q: quit"
	case snap.Phase == game.PhaseShooting:
		help = "space: shoot  ←/→: adjust aim"
	default:
		help = "..."
	}
	if r := []rune(help); len(r) > w-2 && w > 2 {
		help = string(r[:w-2])
	}
	drawText(s, 1, h-1, hudStyle, help)
}
