package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/feedback"
	"github.com/tomz197/climber/internal/feedback/tone"
	"github.com/tomz197/climber/internal/loop"
	"github.com/tomz197/climber/internal/score"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// The terminal belongs to the game, so logs only go to a file when asked.
	log.SetOutput(io.Discard)
	if path := config.GetEnv("CLIMBER_LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}
	if lvl, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(lvl)
	}

	tuning, err := config.Load(config.GetEnv("CLIMBER_TUNING", ""))
	if err != nil {
		return err
	}

	var scores score.Provider
	if config.GetEnvBool("CLIMBER_SCORES", true) {
		store, err := score.OpenSQLite(config.GetEnv("CLIMBER_DB", defaultDBPath()))
		if err != nil {
			log.Warn("score store unavailable, playing offline", "err", err)
		} else {
			defer store.Close()
			scores = store
		}
	}

	var sound *tone.Player
	if config.GetEnvBool("CLIMBER_SOUND", true) {
		sound, err = tone.New(0.5)
		if err != nil {
			log.Warn("audio unavailable, falling back to the terminal bell", "err", err)
		} else {
			defer sound.Close()
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	reader := bufio.NewReader(os.Stdin)
	return loop.Run(ctx, reader, os.Stdout, loop.Options{
		Tuning:   tuning,
		Username: config.GetEnv("USER", ""),
		Scores:   scores,
		Haptics: func(bell feedback.BellWriter) feedback.Haptics {
			if sound != nil {
				return sound
			}
			return feedback.NewBell(bell)
		},
	})
}

// defaultDBPath keeps scores next to the user's other config.
func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "climber.db"
	}
	dir = filepath.Join(dir, "climber")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "climber.db"
	}
	return filepath.Join(dir, "scores.db")
}
