package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/climber/internal/api"
	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/feedback"
	"github.com/tomz197/climber/internal/loop"
	"github.com/tomz197/climber/internal/score"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultDBPath      = "/app/data/scores.db"
)

func main() {
	if lvl, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(lvl)
	}

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	apiAddr := config.GetEnv("API_ADDR", "")
	log.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "api", apiAddr)

	tuning, err := config.Load(config.GetEnv("CLIMBER_TUNING", ""))
	if err != nil {
		log.Fatal("failed to load tuning", "err", err)
	}

	store, err := score.OpenSQLite(config.GetEnv("CLIMBER_DB", defaultDBPath))
	if err != nil {
		log.Fatal("failed to open score store", "err", err)
	}
	defer store.Close()

	// Sessions never share a world; the hub only carries the shutdown notice.
	hub := loop.NewHub()

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware(hub, store, tuning),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		log.Fatal("failed to create server", "err", err)
	}

	var httpServer *http.Server
	if apiAddr != "" {
		httpServer = &http.Server{
			Addr:              apiAddr,
			Handler:           api.NewServer(store).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	})
	if httpServer != nil {
		g.Go(func() error {
			log.Info("Starting leaderboard API", "addr", apiAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("api server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		// Notify players and wait for them to disconnect
		log.Info("Notifying connected players about shutdown", "sessions", hub.Len())
		hub.Shutdown(15 * time.Second)

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var errs []error
		if httpServer != nil {
			errs = append(errs, httpServer.Shutdown(sctx))
		}
		errs = append(errs, s.Shutdown(sctx))
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server stopped", "err", err)
	}
	log.Info("Server stopped")
}

// gameMiddleware runs one independent game per SSH session.
func gameMiddleware(hub *loop.Hub, store score.Provider, tuning config.Tuning) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			log.Info("New game session", "user", sess.User(), "terminal", pty.Term,
				"width", pty.Window.Width, "height", pty.Window.Height)

			// Create a terminal size tracker that updates on window changes
			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			renderer := lipgloss.NewRenderer(sess)
			renderer.SetColorProfile(termenv.ANSI256)

			err := loop.Run(sess.Context(), bufio.NewReader(sess), sess, loop.Options{
				Tuning:       tuning,
				Username:     sess.User(),
				TermSizeFunc: sizeTracker.getSize,
				Renderer:     renderer,
				Scores:       store,
				Haptics: func(bell feedback.BellWriter) feedback.Haptics {
					return feedback.NewBell(bell)
				},
				Hub: hub,
			})
			if err != nil {
				log.Error("Game error", "user", sess.User(), "err", err)
			}

			log.Info("Session ended", "user", sess.User())
			next(sess)
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
