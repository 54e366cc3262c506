package loop

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tomz197/climber/internal/draw"
	loopconfig "github.com/tomz197/climber/internal/loop/config"
	"github.com/tomz197/climber/internal/object"
	"github.com/tomz197/climber/internal/physics"
)

const repoURL = "https://github.com/tomz197/climber"

// Notice replaces the regular UI with a message, e.g. an inactivity warning.
type Notice struct {
	Title string
	Lines []string
}

type styles struct {
	label     lipgloss.Style
	value     lipgloss.Style
	highlight lipgloss.Style
	renderer  *lipgloss.Renderer
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		label:     r.NewStyle().Faint(true),
		value:     r.NewStyle().Bold(true),
		highlight: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd166")),
		renderer:  r,
	}
}

// Screen renders a Game into a canvas and a text overlay.
type Screen struct {
	canvas *draw.Canvas
	cw     *draw.ChunkWriter
	st     styles

	prevState  State
	prevNotice bool
	started    bool
}

// NewScreen creates a renderer drawing through canvas and cw. r detects the
// color profile of the session; nil uses the process terminal.
func NewScreen(canvas *draw.Canvas, cw *draw.ChunkWriter, r *lipgloss.Renderer) *Screen {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Screen{canvas: canvas, cw: cw, st: newStyles(r)}
}

// Draw renders one frame. It reads post-update state only.
func (s *Screen) Draw(g *Game, n *Notice) error {
	// On state or notice transitions, do a full terminal clear so UI
	// elements from the previous screen don't persist.
	if !s.started || g.state != s.prevState || (n != nil) != s.prevNotice {
		s.cw.WriteString("\033[H\033[2J")
		s.canvas.ForceRedraw()
		s.prevState = g.state
		s.prevNotice = n != nil
		s.started = true
	}

	w := g.world
	depth := -w.Camera.Y - w.Camera.Height/2
	s.canvas.Clear(g.biomes.Background(depth))

	err := g.shake.Wrap(s.canvas, func() error {
		if g.state == StateMenu {
			return nil
		}
		return s.drawWorld(g)
	})
	if err != nil {
		return err
	}

	if err := s.canvas.Render(s.cw); err != nil {
		return err
	}
	s.canvas.RenderBorder(s.cw)
	s.drawUI(g, n)
	return s.cw.Flush()
}

func (s *Screen) drawWorld(g *Game) error {
	w := g.world
	cam := w.Camera
	ctx := object.DrawContext{Canvas: s.canvas, Camera: cam, Clock: g.elapsed}

	for _, st := range w.Level.Decorations.Items() {
		if cam.Visible(st.Y, st.Y+st.Size) {
			if err := st.Draw(ctx); err != nil {
				return err
			}
		}
	}
	for _, pl := range w.Level.Platforms.Items() {
		if cam.Visible(pl.Y, pl.Y+pl.H+pl.FallOffset) {
			if err := pl.Draw(ctx); err != nil {
				return err
			}
		}
	}
	for _, h := range w.Level.Hazards.Items() {
		if cam.Visible(h.Y, h.Y+h.H) {
			if err := h.Draw(ctx); err != nil {
				return err
			}
		}
	}
	for _, c := range w.Level.Collectibles.Items() {
		if cam.Visible(c.Y, c.Y+c.H) {
			if err := c.Draw(ctx); err != nil {
				return err
			}
		}
	}
	for _, obj := range w.Particles {
		if err := obj.Draw(ctx); err != nil {
			return err
		}
	}

	if g.state == StatePlaying {
		s.drawTrajectory(g)
	}
	if err := w.Player.Draw(ctx); err != nil {
		return err
	}
	if g.state == StatePlaying {
		s.drawAim(g)
	}
	return nil
}

// drawTrajectory previews where a release right now would send the player.
func (s *Screen) drawTrajectory(g *Game) {
	p := g.world.Player
	if p.InputDisabled() || !(p.Grounded || p.DoubleJumpAvailable) {
		return
	}
	force, power, ok := g.aim.Preview()
	if !ok {
		return
	}

	b := physics.Ballistic{
		Gravity:       p.Params.Gravity,
		AirResistance: p.Params.AirResistance,
		MinX:          0,
		MaxX:          g.tuning.World.Width - p.Size,
		Bounce:        p.Params.WallBounciness,
	}
	g.trajectory = b.AppendTrajectory(g.trajectory[:0], p.Pos, force.Scale(p.Params.JumpForce),
		loopconfig.TrajectoryStep, loopconfig.TrajectorySteps)

	col := draw.ColorAim
	if power >= g.tuning.Aim.OverpowerThreshold {
		col = draw.ColorAimOverpower
	}
	half := p.Size / 2
	for i, pt := range g.trajectory {
		if i%2 == 1 {
			continue
		}
		fade := 1 - float64(i)/float64(len(g.trajectory))
		s.canvas.SetColor(col.Scale(0.3 + 0.7*fade))
		x, y := g.world.Camera.ToScreen(pt.X+half, pt.Y+half)
		s.canvas.FillRect(x-2, y-2, 4, 4)
	}
}

// drawAim draws the slingshot band in view coordinates.
func (s *Screen) drawAim(g *Game) {
	gs := g.aim.Gesture()
	if !gs.Active {
		return
	}
	_, power, _ := g.aim.Preview()
	col := draw.Blend(draw.ColorAim, draw.ColorAimOverpower, power)
	s.canvas.SetColor(col)
	s.canvas.DrawLine(draw.Point{X: gs.Origin.X, Y: gs.Origin.Y}, draw.Point{X: gs.Current.X, Y: gs.Current.Y})
	s.canvas.FillCircle(gs.Origin.X, gs.Origin.Y, 6)
	s.canvas.SetColor(col.Scale(0.6))
	s.canvas.FillCircle(gs.Current.X, gs.Current.Y, 4)
}

// drawUI draws the text overlay.
func (s *Screen) drawUI(g *Game, n *Notice) {
	if n != nil {
		draw.WritePanel(s.cw, s.canvas, draw.Panel(n.Title, n.Lines...))
		return
	}

	switch g.state {
	case StateMenu:
		s.drawMenu(g)
	case StatePlaying:
		s.drawHUD(g)
	case StatePaused:
		s.drawHUD(g)
		draw.WritePanel(s.cw, s.canvas, draw.Panel("paused",
			"P / ESC  resume",
			"Q        quit",
		))
	case StateGameOver:
		s.drawHUD(g)
		if g.reveal {
			s.drawGameOver(g)
		}
	}
}

// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (s *Screen) drawHUD(g *Game) {
	w := g.world
	p := w.Player
	termWidth := s.canvas.TerminalWidth()
	termHeight := s.canvas.TerminalHeight()

	st := s.st
	scoreText := st.label.Render("Score ") + st.value.Render(fmt.Sprintf("%-9s", humanize.Comma(int64(g.Score()))))
	draw.WriteText(s.cw, s.canvas, 2, 1, scoreText)

	bestText := st.label.Render("Best ") + fmt.Sprintf("%-9s", humanize.Comma(int64(max(g.best, g.Score()))))
	draw.WriteText(s.cw, s.canvas, termWidth-lipgloss.Width(bestText), 1, bestText)

	zone := g.biomes.Zone(w.Height())
	zoneText := fmt.Sprintf("%-16s", zone.Name)
	draw.WriteText(s.cw, s.canvas, 2, 2, st.label.Render(zoneText))

	heightText := fmt.Sprintf("%6.0fm  fish %-3d", w.Height()/10, p.Fish)
	draw.WriteText(s.cw, s.canvas, 2, termHeight, heightText)

	var effects []string
	for _, e := range p.Effects() {
		hex := object.EffectColor(e.Kind).Colorful().Hex()
		style := st.renderer.NewStyle().Foreground(lipgloss.Color(hex))
		effects = append(effects, style.Render(fmt.Sprintf("%s %s", e.Kind, bar(e.Visual, 6))))
	}
	if p.HazardResistant() {
		effects = append(effects, st.label.Render("shield "+bar(p.GraceProgress(), 4)))
	}
	effectText := strings.Join(effects, "  ")
	pad := 40 - lipgloss.Width(effectText)
	if pad > 0 {
		effectText = strings.Repeat(" ", pad) + effectText
	}
	draw.WriteText(s.cw, s.canvas, termWidth-lipgloss.Width(effectText), termHeight, effectText)
}

// bar renders a fraction in [0,1] as a block gauge of width cells.
func bar(frac float64, width int) string {
	n := int(math.Round(physics.Clamp(frac, 0, 1) * float64(width)))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func (s *Screen) drawMenu(g *Game) {
	// ASCII art title (figlet "small" font)
	titleArt := []string{
		`  ___  _     ___  __  __  ___  ___  ___ `,
		` / __|| |   |_ _||  \/  || _ )| __|| _ \`,
		`| (__ | |__  | | | |\/| || _ \| _| |   /`,
		` \___||____||___||_|  |_||___/|___||_|_\`,
		`                                        `,
	}

	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	cw := s.cw
	centerX := s.canvas.TerminalWidth() / 2
	centerY := s.canvas.TerminalHeight() / 2
	titleStartY := centerY - 8
	for i, line := range titleArt {
		draw.WriteText(cw, s.canvas, centerX-titleWidth/2, titleStartY+i, line)
	}

	subtitle := "~ slingshot your way up ~"
	draw.WriteText(cw, s.canvas, centerX-len(subtitle)/2, titleStartY+len(titleArt)+1, subtitle)

	controlsY := titleStartY + len(titleArt) + 3
	controlLines := []string{
		"drag & release . . . . jump",
		"release mid-air  double jump",
		"P / ESC  . . . . . . . pause",
		"Q  . . . . . . . . . .  quit",
	}
	for i, line := range controlLines {
		draw.WriteText(cw, s.canvas, centerX-len(line)/2, controlsY+i, line)
	}

	if g.best > 0 {
		best := "Best " + humanize.Comma(int64(g.best))
		draw.WriteText(cw, s.canvas, centerX-len(best)/2, controlsY+len(controlLines)+1, best)
	}

	// Blinking start prompt
	if object.ShouldRenderBlink(g.elapsed, 1/0.6) {
		prompt := ">>  Press SPACE to Start  <<"
		draw.WriteText(cw, s.canvas, centerX-len(prompt)/2, controlsY+len(controlLines)+3, prompt)
	}

	// OSC 8 clickable hyperlink; lipgloss.Width skips the escape sequences
	label := "github.com/tomz197/climber"
	link := fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", repoURL, label)
	draw.WriteText(cw, s.canvas, centerX-len(label)/2, controlsY+len(controlLines)+5, link)
}

func (s *Screen) drawGameOver(g *Game) {
	st := s.st
	lines := []string{
		"Score  " + st.value.Render(humanize.Comma(int64(g.final.Score))),
		fmt.Sprintf("Height %dm  Fish %d", g.final.Height/10, g.final.Fish),
	}
	if g.newBest {
		lines = append(lines, st.highlight.Render("NEW BEST!"))
	} else {
		lines = append(lines, "Best   "+humanize.Comma(int64(g.best)))
	}

	if len(g.leaderboard) > 0 {
		lines = append(lines, "", st.label.Render("Leaderboard"))
		for i, e := range g.leaderboard {
			name := e.Player
			if len(name) > loopconfig.MaxUsernameLength {
				name = name[:loopconfig.MaxUsernameLength]
			}
			row := fmt.Sprintf("%d. %-*s %8s", i+1, loopconfig.MaxUsernameLength, name, humanize.Comma(int64(e.Score)))
			if e.ID != "" && e.ID == g.final.ID {
				row = st.highlight.Render(row)
			}
			lines = append(lines, row)
		}
	}
	if g.status != "" {
		lines = append(lines, "", st.label.Render(g.status))
	}
	lines = append(lines, "", ">>  Press SPACE to Restart  <<")
	draw.WritePanel(s.cw, s.canvas, draw.Panel("game over", lines...))
}
