package loop

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/feedback"
	"github.com/tomz197/climber/internal/input"
	"github.com/tomz197/climber/internal/object"
	"github.com/tomz197/climber/internal/score"
)

// identityView maps terminal cells straight to logical units.
type identityView struct{}

func (identityView) TerminalToLogical(col, row int) (float64, float64, bool) {
	return float64(col), float64(row), true
}
func (identityView) UnitsPerCell() float64 { return 1 }

type harness struct {
	t    *testing.T
	g    *Game
	rec  *feedback.Recorder
	now  time.Time
	step time.Duration
}

func newHarness(t *testing.T, scores *score.Client, player string) *harness {
	t.Helper()
	rec := &feedback.Recorder{}
	g := NewGame(GameOptions{
		Tuning:  config.Default(),
		Player:  player,
		Scores:  scores,
		Haptics: rec,
		Rand:    rand.New(rand.NewSource(7)),
	})
	h := &harness{t: t, g: g, rec: rec, now: time.Unix(1_700_000_000, 0), step: 16 * time.Millisecond}
	h.tick(input.Frame{}) // baseline
	return h
}

func (h *harness) tick(f input.Frame) {
	h.t.Helper()
	h.now = h.now.Add(h.step)
	if err := h.g.Tick(h.now, f, identityView{}); err != nil {
		h.t.Fatalf("tick: %v", err)
	}
}

func (h *harness) ticks(n int) {
	h.t.Helper()
	for i := 0; i < n; i++ {
		h.tick(input.Frame{})
	}
}

func (h *harness) start() {
	h.t.Helper()
	h.tick(input.Frame{Start: true})
	if h.g.State() != StatePlaying {
		h.t.Fatalf("state = %v, want playing", h.g.State())
	}
	h.ticks(3)
}

func press(col, row int) input.MouseEvent {
	return input.MouseEvent{Action: input.MousePress, Col: col, Row: row}
}

func drag(col, row int) input.MouseEvent {
	return input.MouseEvent{Action: input.MouseDrag, Col: col, Row: row}
}

func release(col, row int) input.MouseEvent {
	return input.MouseEvent{Action: input.MouseRelease, Col: col, Row: row}
}

func hasKind(kinds []feedback.Kind, k feedback.Kind) bool {
	for _, got := range kinds {
		if got == k {
			return true
		}
	}
	return false
}

func TestMenuWaitsForStart(t *testing.T) {
	h := newHarness(t, nil, "")
	y := h.g.World().Player.Pos.Y
	h.ticks(10)
	if h.g.State() != StateMenu {
		t.Fatalf("state = %v, want menu", h.g.State())
	}
	if h.g.World().Player.Pos.Y != y {
		t.Fatal("the menu must not simulate")
	}
	h.start()
	if !h.g.World().Player.Grounded {
		t.Fatal("the player should stand on the floor")
	}
}

func TestSlingshotLaunchesPlayer(t *testing.T) {
	h := newHarness(t, nil, "")
	h.start()

	h.tick(input.Frame{Mouse: []input.MouseEvent{press(100, 100), drag(100, 200)}})
	if !h.g.Aim().Active() {
		t.Fatal("press should start a gesture")
	}
	if h.g.Clock().Scale() != config.Default().Aim.SlowMotionScale {
		t.Fatalf("scale = %v, want slow motion while aiming", h.g.Clock().Scale())
	}

	h.tick(input.Frame{Mouse: []input.MouseEvent{release(100, 260)}})
	p := h.g.World().Player
	if p.Vel.Y >= -900 {
		t.Fatalf("vel = %+v, want a full-power upward launch", p.Vel)
	}
	if !h.g.Aim().Force().IsZero() {
		t.Fatal("the force must be consumed by the launch")
	}
	if h.g.Clock().Scale() != 1 {
		t.Fatalf("scale = %v, want normal time after release", h.g.Clock().Scale())
	}
	if !hasKind(h.rec.Kinds(), feedback.Jump) {
		t.Fatalf("cues = %v, want a jump", h.rec.Kinds())
	}

	h.ticks(20)
	if h.g.World().Height() <= 0 || h.g.Score() <= 0 {
		t.Fatalf("height %v score %d, want progress", h.g.World().Height(), h.g.Score())
	}
}

func TestPauseFreezesAndDropsGesture(t *testing.T) {
	h := newHarness(t, nil, "")
	h.start()

	h.tick(input.Frame{Mouse: []input.MouseEvent{press(100, 100), drag(100, 250)}})
	h.tick(input.Frame{Pause: true})
	if h.g.State() != StatePaused {
		t.Fatalf("state = %v, want paused", h.g.State())
	}
	if h.g.Aim().Active() || h.g.Clock().Scale() != 1 {
		t.Fatal("pausing must cancel the gesture and restore time")
	}

	p := h.g.World().Player
	pos := p.Pos
	// a release arriving while paused is ignored
	h.tick(input.Frame{Mouse: []input.MouseEvent{release(100, 260)}})
	h.ticks(10)
	if p.Pos != pos {
		t.Fatalf("paused player moved from %+v to %+v", pos, p.Pos)
	}

	h.tick(input.Frame{Pause: true})
	if h.g.State() != StatePlaying {
		t.Fatalf("state = %v, want playing", h.g.State())
	}
	h.ticks(2)
	if p.Vel.Y < 0 {
		t.Fatalf("vel = %+v, a stale gesture launched after resume", p.Vel)
	}
}

func TestFallingBelowCameraEndsRun(t *testing.T) {
	store := score.NewMemoryStore()
	client := score.NewClient(context.Background(), store, time.Second)
	h := newHarness(t, client, "ada")
	h.start()

	w := h.g.World()
	w.MaxHeight = 1234
	w.Player.Fish = 2
	w.Player.Pos.Y = w.Camera.DeathLine() + 100
	w.Player.Grounded = false
	h.tick(input.Frame{})

	if h.g.State() != StateGameOver {
		t.Fatalf("state = %v, want game over", h.g.State())
	}
	if !hasKind(h.rec.Kinds(), feedback.Death) {
		t.Fatalf("cues = %v, want death", h.rec.Kinds())
	}
	want := score.Compute(1234, 2)
	if h.g.Best() != want {
		t.Fatalf("best = %d, want %d updated before any save", h.g.Best(), want)
	}

	// save completes, then the leaderboard is fetched
	client.Wait()
	h.tick(input.Frame{})
	client.Wait()
	h.tick(input.Frame{})
	top := h.g.Leaderboard()
	if len(top) != 1 || top[0].Player != "ada" || top[0].Score != want {
		t.Fatalf("leaderboard = %+v", top)
	}

	if h.g.PanelVisible() {
		t.Fatal("the panel is revealed after a delay")
	}
	h.tick(input.Frame{Start: true})
	if h.g.State() != StateGameOver {
		t.Fatal("restart must wait for the panel")
	}

	h.step = 50 * time.Millisecond
	h.ticks(40)
	if !h.g.PanelVisible() {
		t.Fatal("panel should be visible after the reveal delay")
	}
	h.tick(input.Frame{Start: true})
	if h.g.State() != StatePlaying || h.g.Score() != 0 {
		t.Fatalf("state = %v score = %d, want a fresh run", h.g.State(), h.g.Score())
	}
}

func TestBestScoreIsLoaded(t *testing.T) {
	store := score.NewMemoryStore()
	if _, err := store.SaveScore(context.Background(), score.Entry{Player: "ada", Score: 500}); err != nil {
		t.Fatal(err)
	}
	client := score.NewClient(context.Background(), store, time.Second)
	h := newHarness(t, client, "ada")
	client.Wait()
	h.tick(input.Frame{})
	if h.g.Best() != 500 {
		t.Fatalf("best = %d, want 500", h.g.Best())
	}
}

func TestOfflineRunStillEnds(t *testing.T) {
	h := newHarness(t, nil, "")
	h.start()
	w := h.g.World()
	w.Player.Kill()
	h.tick(input.Frame{})
	if h.g.State() != StateGameOver {
		t.Fatalf("state = %v", h.g.State())
	}
	if h.g.status == "" {
		t.Fatal("offline sessions should say scores are not saved")
	}
}

func TestQuitAndClosedInputStop(t *testing.T) {
	h := newHarness(t, nil, "")
	h.tick(input.Frame{Quit: true})
	if h.g.Running() {
		t.Fatal("q should stop the session")
	}

	h = newHarness(t, nil, "")
	h.tick(input.Frame{Closed: true})
	if h.g.Running() {
		t.Fatal("a closed input should stop the session")
	}
}

func TestShutdownStopsSimulation(t *testing.T) {
	h := newHarness(t, nil, "")
	h.start()
	h.g.Shutdown()
	pos := h.g.World().Player.Pos
	h.ticks(5)
	if h.g.State() != StateShutdown || h.g.World().Player.Pos != pos {
		t.Fatal("shutdown must freeze the run")
	}
}

func TestHazardContactKillsWithoutGrace(t *testing.T) {
	h := newHarness(t, nil, "")
	h.start()
	w := h.g.World()
	p := w.Player
	hz := object.NewHazard(p.Pos.X-10, p.Pos.Y-40, 60, 14, rand.New(rand.NewSource(1)))
	w.Level.Hazards.Push(hz)
	p.Pos.Y -= 40
	p.Vel.Y = 0
	h.tick(input.Frame{})
	if !p.Dead || h.g.State() != StateGameOver {
		t.Fatalf("dead=%v state=%v, want hazard death", p.Dead, h.g.State())
	}
}

func TestScreenDrawsEveryState(t *testing.T) {
	store := score.NewMemoryStore()
	client := score.NewClient(context.Background(), store, time.Second)
	h := newHarness(t, client, "ada")

	var buf bytes.Buffer
	canvas := draw.NewScaledCanvas(100, 50, 500, 800)
	s := NewScreen(canvas, draw.NewChunkWriter(&buf, 0, 0), nil)

	render := func() string {
		t.Helper()
		buf.Reset()
		if err := s.Draw(h.g, nil); err != nil {
			t.Fatalf("draw %v: %v", h.g.State(), err)
		}
		return buf.String()
	}

	if out := render(); !strings.Contains(out, "slingshot your way up") {
		t.Fatal("menu should show the subtitle")
	}

	h.start()
	if out := render(); !strings.Contains(out, "Score") {
		t.Fatal("playing should show the HUD")
	}

	h.tick(input.Frame{Pause: true})
	if out := render(); !strings.Contains(out, "PAUSED") {
		t.Fatal("paused should show the pause panel")
	}
	h.tick(input.Frame{Pause: true})

	h.g.World().Player.Kill()
	h.tick(input.Frame{})
	h.step = 50 * time.Millisecond
	h.ticks(40)
	client.Wait()
	h.tick(input.Frame{})
	client.Wait()
	h.tick(input.Frame{})
	out := render()
	if !strings.Contains(out, "GAME OVER") || !strings.Contains(out, "Leaderboard") {
		t.Fatal("game over should show the panel with the leaderboard")
	}

	buf.Reset()
	if err := s.Draw(h.g, &Notice{Title: "Inactivity warning", Lines: []string{"hello"}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "INACTIVITY WARNING") {
		t.Fatal("a notice replaces the regular UI")
	}
}
