// Package loop runs a climbing session: the controller state machine, the
// per-frame pipeline and the terminal session around it.
package loop

import (
	"errors"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/climber/internal/aim"
	"github.com/tomz197/climber/internal/biome"
	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/feedback"
	"github.com/tomz197/climber/internal/input"
	"github.com/tomz197/climber/internal/level"
	loopconfig "github.com/tomz197/climber/internal/loop/config"
	"github.com/tomz197/climber/internal/object"
	"github.com/tomz197/climber/internal/physics"
	"github.com/tomz197/climber/internal/score"
	"github.com/tomz197/climber/internal/timing"
)

// Viewport maps terminal cells to logical view coordinates.
type Viewport interface {
	TerminalToLogical(col, row int) (x, y float64, ok bool)
	UnitsPerCell() float64
}

// GameOptions configures a controller.
type GameOptions struct {
	Tuning  config.Tuning
	Player  string        // leaderboard name; empty disables saving
	Scores  *score.Client // nil runs offline
	Haptics feedback.Haptics
	Rand    *rand.Rand
}

// Game is the controller of one session. All methods must be called from
// the session goroutine.
type Game struct {
	tuning  config.Tuning
	biomes  *biome.Table
	gen     *level.Generator
	rng     *rand.Rand
	clock   *timing.Source
	aim     *aim.Controller
	shake   *draw.Shake
	tasks   Tasks
	haptics feedback.Haptics
	scores  *score.Client

	world   *World
	state   State
	running bool
	elapsed float64 // unscaled seconds since the session started

	player      string
	best        int
	newBest     bool
	final       score.Entry
	leaderboard []score.Entry
	status      string
	reveal      bool
	scale       float64 // last drag-length scale passed to the aim controller

	trajectory []physics.Vec2
}

// NewGame creates a controller showing the menu.
func NewGame(opts GameOptions) *Game {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	haptics := opts.Haptics
	if haptics == nil {
		haptics = feedback.Nop{}
	}

	biomes := biome.NewTable(opts.Tuning.Biomes)
	clock := timing.NewSource(opts.Tuning.Time.MaxDelta)
	g := &Game{
		tuning:  opts.Tuning,
		biomes:  biomes,
		gen:     level.New(opts.Tuning, biomes, rng),
		rng:     rng,
		clock:   clock,
		aim:     aim.New(opts.Tuning.Aim, clock),
		shake:   draw.NewShake(rng),
		haptics: haptics,
		scores:  opts.Scores,
		player:  opts.Player,
		state:   StateMenu,
		running: true,
	}
	g.world = NewWorld(g.tuning, g.biomes, g.gen)

	switch {
	case g.scores == nil:
		g.status = "offline: scores are not saved"
	case g.player != "":
		g.scores.FetchBest(g.player)
	}
	return g
}

// Running reports whether the session should continue.
func (g *Game) Running() bool { return g.running }

// State returns the current phase.
func (g *Game) State() State { return g.state }

// World returns the current run.
func (g *Game) World() *World { return g.world }

// Best returns the best score known to this session.
func (g *Game) Best() int { return g.best }

// Score returns the score of the current run so far.
func (g *Game) Score() int {
	return score.Compute(g.world.MaxHeight, g.world.Player.Fish)
}

// Leaderboard returns the last fetched top entries.
func (g *Game) Leaderboard() []score.Entry { return g.leaderboard }

// PanelVisible reports whether the game-over panel has been revealed.
func (g *Game) PanelVisible() bool { return g.reveal }

// Aim exposes the slingshot controller for drawing.
func (g *Game) Aim() *aim.Controller { return g.aim }

// Clock exposes the frame clock.
func (g *Game) Clock() *timing.Source { return g.clock }

// Quit stops the session at the end of the tick.
func (g *Game) Quit() { g.running = false }

// Shutdown switches to the shutdown notice. The run is abandoned unsaved.
func (g *Game) Shutdown() {
	g.aim.Abort()
	g.clock.SetScale(1)
	g.state = StateShutdown
}

// Tick runs one frame of the fixed pipeline. Nothing is drawn here.
func (g *Game) Tick(now time.Time, f input.Frame, vp Viewport) error {
	g.clock.Tick(now)
	dt := g.clock.Delta()
	udt := g.clock.Unscaled()
	g.elapsed += udt

	g.tasks.Advance(time.Duration(udt * float64(time.Second)))
	g.drainScores()
	g.shake.Update(udt)

	if vp != nil {
		if s := vp.UnitsPerCell(); s != g.scale {
			g.scale = s
			g.aim.Resize(s)
		}
	}
	g.handleKeys(f)

	switch g.state {
	case StatePlaying:
		g.handlePointer(f.Mouse, vp)
		return g.simulate(dt)
	case StateGameOver:
		return g.simulate(dt)
	}
	return nil
}

func (g *Game) handleKeys(f input.Frame) {
	if f.Quit || f.Closed {
		g.running = false
		return
	}
	switch g.state {
	case StateMenu:
		if f.Start {
			g.restart()
		}
	case StatePlaying:
		if f.Pause {
			g.pause()
		}
	case StatePaused:
		if f.Pause || f.Start {
			g.resume()
		}
	case StateGameOver:
		if f.Start && g.reveal {
			g.restart()
		}
	}
}

func (g *Game) pause() {
	g.aim.Abort()
	g.state = StatePaused
}

func (g *Game) resume() {
	// a drag released while paused must not launch
	g.aim.Abort()
	g.aim.ResetForce()
	g.state = StatePlaying
}

// restart builds a fresh run and starts playing it.
func (g *Game) restart() {
	g.tasks.Cancel()
	g.aim.Abort()
	g.clock.SetScale(1)
	g.shake.Stop()
	for _, obj := range g.world.Particles {
		object.ReleaseObject(obj)
	}
	g.world = NewWorld(g.tuning, g.biomes, g.gen)
	g.reveal = false
	g.newBest = false
	g.final = score.Entry{}
	g.state = StatePlaying
}

func (g *Game) handlePointer(events []input.MouseEvent, vp Viewport) {
	if vp == nil {
		return
	}
	for _, ev := range events {
		if ev.Button != 0 {
			continue
		}
		x, y, ok := vp.TerminalToLogical(ev.Col, ev.Row)
		pt := physics.Vec2{X: x, Y: y}
		switch ev.Action {
		case input.MousePress:
			if ok {
				g.aim.Begin(pt)
			}
		case input.MouseDrag:
			g.aim.Move(pt)
		case input.MouseRelease:
			g.aim.Move(pt)
			g.aim.End()
			if g.aim.Overpowered() {
				g.shake.Trigger(loopconfig.ShakeOverpowerDuration, loopconfig.ShakeOverpowerStrength)
			}
		}
	}
}

// simulate advances the run by dt scaled seconds.
func (g *Game) simulate(dt float64) error {
	w := g.world
	p := w.Player
	lvl := w.Level
	ctx := object.UpdateContext{Delta: dt, Rand: g.rng, Spawner: w}

	p.HandleInput(g.aim)
	p.Update(dt, g.tuning.World.Width)
	p.ResolvePlatforms(lvl.Platforms.Items(), dt)

	if !p.Dead {
		w.Camera.Follow(p.Pos.Y, dt)
	}

	lvl.Update(w.Camera.Y, w.Camera.Bottom(), p.HasEffect(object.EffectFlight))
	for _, pl := range lvl.Platforms.Items() {
		pl.Update(dt)
	}
	for _, h := range lvl.Hazards.Items() {
		h.Update(ctx, p)
	}
	for _, c := range lvl.Collectibles.Items() {
		c.Update(ctx, p)
	}
	if err := w.UpdateParticles(ctx); err != nil {
		return err
	}
	object.ResolveHazards(ctx, p, lvl.Hazards.Items())

	if !p.Dead {
		w.trackHeight()
		if p.Pos.Y > w.Camera.DeathLine() {
			p.Kill()
		}
	}

	g.react(ctx, p.TakeEvents())
	w.FlushSpawned()

	if p.Dead && g.state == StatePlaying {
		g.gameOver()
	}
	return nil
}

// react turns player events into cues, shake and particles.
func (g *Game) react(ctx object.UpdateContext, ev object.Events) {
	if ev == 0 {
		return
	}
	p := g.world.Player
	c := p.Center()
	feet := p.Pos.Y + p.Size

	switch {
	case ev.Has(object.EventDoubleJump):
		g.haptics.Pulse(feedback.DoubleJump)
		object.EmitBurst(ctx, object.PresetSparkle, c.X, feet, 8)
	case ev.Has(object.EventJump):
		g.haptics.Pulse(feedback.Jump)
		object.EmitBurst(ctx, object.PresetDust, c.X, feet, 6)
	}

	switch {
	case ev.Has(object.EventBounce):
		g.haptics.Pulse(feedback.Bounce)
		g.shake.Trigger(loopconfig.ShakeBounceDuration, loopconfig.ShakeBounceStrength)
		object.EmitBurst(ctx, object.PresetBounce, c.X, feet, 14)
	case ev.Has(object.EventLand):
		if p.HardLanding() {
			g.haptics.Pulse(feedback.HardLand)
			object.EmitBurst(ctx, object.PresetDust, c.X, feet, 12)
		} else {
			g.haptics.Pulse(feedback.Land)
			object.EmitBurst(ctx, object.PresetDust, c.X, feet, 4)
		}
	}

	if ev.Has(object.EventCollect) || ev.Has(object.EventFish) {
		g.haptics.Pulse(feedback.Collect)
	}
	if ev.Has(object.EventHazardDestroyed) {
		g.haptics.Pulse(feedback.HazardDestroyed)
		g.shake.Trigger(loopconfig.ShakeHazardDuration, loopconfig.ShakeHazardStrength)
	}
	if ev.Has(object.EventTotemSave) {
		g.haptics.Pulse(feedback.Bounce)
		g.shake.Trigger(loopconfig.ShakeBounceDuration, loopconfig.ShakeBounceStrength)
		object.EmitBurst(ctx, object.PresetSparkle, c.X, c.Y, 24)
	}
	if ev.Has(object.EventDeath) {
		g.haptics.Pulse(feedback.Death)
		g.shake.Trigger(loopconfig.ShakeDeathDuration, loopconfig.ShakeDeathStrength)
	}
}

// gameOver records the run. The local best is updated before any network
// call so it is right even when the leaderboard is unreachable.
func (g *Game) gameOver() {
	w := g.world
	g.state = StateGameOver
	g.aim.Abort()
	g.clock.SetScale(1)

	g.final = score.Entry{
		Player:    g.player,
		Score:     score.Compute(w.MaxHeight, w.Player.Fish),
		Height:    int(w.MaxHeight),
		Fish:      w.Player.Fish,
		CreatedAt: time.Now(),
	}
	if g.final.Score > g.best {
		g.best = g.final.Score
		g.newBest = true
	}
	log.Debug("run finished", "player", g.player, "score", g.final.Score, "height", g.final.Height, "fish", g.final.Fish)

	if g.scores != nil {
		if g.player != "" {
			g.scores.Save(g.final)
		} else {
			g.scores.FetchTop(loopconfig.LeaderboardSize)
		}
	}
	g.tasks.After(loopconfig.GameOverRevealDelay, func() { g.reveal = true })
}

// drainScores applies finished score requests without blocking.
func (g *Game) drainScores() {
	if g.scores == nil {
		return
	}
	for {
		select {
		case res := <-g.scores.Results():
			g.applyScore(res)
		default:
			return
		}
	}
}

func (g *Game) applyScore(res score.Result) {
	if res.Err != nil {
		if !errors.Is(res.Err, score.ErrNotFound) {
			g.status = "leaderboard unavailable"
		}
		if res.Kind == score.ResultSaved {
			g.scores.FetchTop(loopconfig.LeaderboardSize)
		}
		return
	}
	switch res.Kind {
	case score.ResultSaved:
		g.status = ""
		if g.state == StateGameOver {
			g.final.ID = res.Entry.ID
		}
		g.scores.FetchTop(loopconfig.LeaderboardSize)
	case score.ResultBest:
		g.best = max(g.best, res.Entry.Score)
	case score.ResultTop:
		g.leaderboard = res.Entries
	}
}
