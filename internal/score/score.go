// Package score persists finished runs and serves the leaderboard.
package score

import (
	"context"
	"errors"
	"math"
	"time"
)

// FishBonus is the score awarded per collected fish.
const FishBonus = 10

// heightPerPoint converts climbed world units into score points.
const heightPerPoint = 10

// ErrNotFound is returned when a player has no saved score.
var ErrNotFound = errors.New("score not found")

// ErrNoProvider is reported by a Client that has no backend.
var ErrNoProvider = errors.New("no score provider configured")

// Entry is one finished run.
type Entry struct {
	ID        string    `json:"id"`
	Player    string    `json:"player"`
	Score     int       `json:"score"`
	Height    int       `json:"height"`
	Fish      int       `json:"fish"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider is a leaderboard backend.
type Provider interface {
	SaveScore(ctx context.Context, e Entry) (Entry, error)
	GetBest(ctx context.Context, player string) (Entry, error)
	GetTopN(ctx context.Context, n int) ([]Entry, error)
}

// Compute returns the score of a run that reached maxHeight units and
// collected fish.
func Compute(maxHeight float64, fish int) int {
	if !(maxHeight > 0) {
		maxHeight = 0
	}
	return int(math.Floor(maxHeight/heightPerPoint)) + fish*FishBonus
}

// better orders entries for the leaderboard: higher score first, older run
// first on ties.
func better(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
