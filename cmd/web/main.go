package main

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomz197/climber/internal/api"
	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/score"
)

const (
	defaultHost   = "0.0.0.0"
	defaultPort   = "8080"
	defaultDBPath = "/app/data/scores.db"
)

//go:embed index.html
var htmlPage string

func main() {
	if lvl, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(lvl)
	}

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")

	store, err := score.OpenSQLite(config.GetEnv("CLIMBER_DB", defaultDBPath))
	if err != nil {
		log.Fatal("failed to open score store", "err", err)
	}
	defer store.Close()

	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)
	scores := api.NewServer(store).Routes()

	r := chi.NewRouter()
	r.Use(middleware.Compress(5, "text/html"))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	r.Handle("/health", scores)
	r.Handle("/api/*", scores)

	addr := fmt.Sprintf("%s:%s", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("Starting web server", "url", "http://"+addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("server error", "err", err)
	}
}
