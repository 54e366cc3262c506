package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/feedback"
	"github.com/tomz197/climber/internal/input"
	loopconfig "github.com/tomz197/climber/internal/loop/config"
	"github.com/tomz197/climber/internal/score"
)

// Options configures a session.
type Options struct {
	Tuning       config.Tuning
	Username     string
	TermSizeFunc draw.TermSizeFunc
	Renderer     *lipgloss.Renderer
	Scores       score.Provider // nil plays offline

	// Haptics builds the cue sink once the session writer exists; nil mutes.
	Haptics func(bell feedback.BellWriter) feedback.Haptics

	Hub  *Hub
	Rand *rand.Rand
}

// session handles rendering and input for a single connection.
type session struct {
	game         *Game
	screen       *Screen
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	lastInput    time.Time
	inactive     bool
	shutdownCh   <-chan struct{}
	shutdownLeft float64
}

// Run plays until the player quits, the input closes, ctx is cancelled or
// the hub shuts down. Blocks for the whole session.
func Run(ctx context.Context, r *bufio.Reader, w io.Writer, opts Options) error {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	username := opts.Username
	if len(username) > loopconfig.MaxUsernameLength {
		username = username[:loopconfig.MaxUsernameLength]
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, opts.Tuning.World.Width, opts.Tuning.World.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	var haptics feedback.Haptics = feedback.Nop{}
	if opts.Haptics != nil {
		haptics = opts.Haptics(chunkWriter)
	}
	var scores *score.Client
	if opts.Scores != nil {
		scores = score.NewClient(ctx, opts.Scores, score.DefaultTimeout)
	}

	s := &session{
		game: NewGame(GameOptions{
			Tuning:  opts.Tuning,
			Player:  username,
			Scores:  scores,
			Haptics: haptics,
			Rand:    opts.Rand,
		}),
		screen:       NewScreen(canvas, chunkWriter, opts.Renderer),
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		lastInput:    time.Now(),
	}
	if opts.Hub != nil {
		id, ch := opts.Hub.Register()
		defer opts.Hub.Unregister(id)
		s.shutdownCh = ch
	}

	err := s.run(ctx)
	if scores != nil {
		// let an in-flight save land before the connection goes away
		scores.Wait()
	}
	return err
}

func (s *session) run(ctx context.Context) error {
	restore := draw.EnterGameScreen(s.writer)
	defer restore()

	for s.game.Running() {
		frameStart := time.Now()

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		f := s.inputStream.Read()
		s.trackActivity(f)
		s.checkShutdown()
		s.updateScreen()

		if err := s.game.Tick(frameStart, f, s.canvas); err != nil {
			return err
		}
		if s.game.State() == StateShutdown {
			s.shutdownLeft -= s.game.Clock().Unscaled()
			if s.shutdownLeft <= 0 {
				s.game.Quit()
			}
		}

		if err := s.screen.Draw(s.game, s.notice()); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < loopconfig.ClientTargetFrameTime {
			time.Sleep(loopconfig.ClientTargetFrameTime - elapsed)
		}
	}
	return nil
}

func (s *session) trackActivity(f input.Frame) {
	if f.Activity {
		s.lastInput = time.Now()
		s.inactive = false
		return
	}
	idle := time.Since(s.lastInput).Seconds()
	switch {
	case idle > loopconfig.InactivityDisconnectUser:
		log.Info("disconnecting inactive session", "idle", int(idle))
		s.game.Quit()
	case idle > loopconfig.InactivityWarnUser:
		s.inactive = true
	}
}

func (s *session) checkShutdown() {
	if s.shutdownCh == nil || s.game.State() == StateShutdown {
		return
	}
	select {
	case <-s.shutdownCh:
		s.game.Shutdown()
		s.shutdownLeft = loopconfig.ShutdownDisplaySeconds
	default:
	}
}

func (s *session) notice() *Notice {
	if s.game.State() == StateShutdown {
		return &Notice{
			Title: "Server shutting down",
			Lines: []string{
				"The server is restarting for maintenance.",
				"Please reconnect in a moment.",
				"",
				fmt.Sprintf("Disconnecting in %d seconds...", int(s.shutdownLeft)+1),
				"Press Q to disconnect now",
			},
		}
	}
	if s.inactive {
		left := int(loopconfig.InactivityDisconnectUser - time.Since(s.lastInput).Seconds())
		return &Notice{
			Title: "Inactivity warning",
			Lines: []string{
				"You have been inactive for too long.",
				fmt.Sprintf("You will be disconnected in %d seconds.", max(left, 0)),
				"",
				"Press any key to continue",
			},
		}
	}
	return nil
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (s *session) updateScreen() {
	termWidth, termHeight, err := s.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != s.canvas.TerminalWidth() || renderHeight != s.canvas.TerminalHeight() ||
		offsetCol != s.canvas.OffsetCol() || offsetRow != s.canvas.OffsetRow() {
		draw.ClearScreen(s.chunkWriter)
		s.canvas.ForceRedraw()
	}

	s.canvas.Resize(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(max(termWidth, 1), loopconfig.MaxTermWidth)
	renderHeight = min(max(termHeight, 1), loopconfig.MaxTermHeight)
	offsetCol = max(termWidth-renderWidth, 0) / 2
	offsetRow = max(termHeight-renderHeight, 0) / 2
	return
}
