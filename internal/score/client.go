package score

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ResultKind tells which request a Result answers.
type ResultKind int

const (
	ResultSaved ResultKind = iota
	ResultBest
	ResultTop
)

// Result is delivered on Client.Results once a request finishes.
type Result struct {
	Kind    ResultKind
	Entry   Entry
	Entries []Entry
	Err     error
}

// DefaultTimeout bounds each request.
const DefaultTimeout = 3 * time.Second

// Client runs provider calls off the game loop. Every request is
// best-effort: failures are logged and reported as a Result with Err set.
type Client struct {
	p       Provider
	ctx     context.Context
	timeout time.Duration
	results chan Result
	wg      sync.WaitGroup
}

// NewClient creates a client whose requests are cancelled with ctx.
// A nil provider makes every request fail fast.
func NewClient(ctx context.Context, p Provider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{p: p, ctx: ctx, timeout: timeout, results: make(chan Result, 8)}
}

// Results returns the channel the game loop drains at the start of a tick.
func (c *Client) Results() <-chan Result {
	return c.results
}

// Save stores a finished run.
func (c *Client) Save(e Entry) {
	c.run(ResultSaved, func(ctx context.Context) Result {
		saved, err := c.p.SaveScore(ctx, e)
		return Result{Entry: saved, Err: err}
	})
}

// FetchBest loads the best run of player.
func (c *Client) FetchBest(player string) {
	c.run(ResultBest, func(ctx context.Context) Result {
		e, err := c.p.GetBest(ctx, player)
		return Result{Entry: e, Err: err}
	})
}

// FetchTop loads the leaderboard.
func (c *Client) FetchTop(n int) {
	c.run(ResultTop, func(ctx context.Context) Result {
		es, err := c.p.GetTopN(ctx, n)
		return Result{Entries: es, Err: err}
	})
}

// Wait blocks until every request has delivered its result.
func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) run(kind ResultKind, fn func(ctx context.Context) Result) {
	if c.p == nil {
		c.deliver(Result{Kind: kind, Err: ErrNoProvider})
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
		defer cancel()

		res := fn(ctx)
		res.Kind = kind
		if res.Err != nil && !errors.Is(res.Err, ErrNotFound) {
			log.Warn("score request failed", "kind", kind, "err", res.Err)
		}
		c.deliver(res)
	}()
}

func (c *Client) deliver(res Result) {
	select {
	case c.results <- res:
	default:
		log.Warn("score result dropped, consumer is not draining", "kind", res.Kind)
	}
}

func (k ResultKind) String() string {
	switch k {
	case ResultSaved:
		return "save"
	case ResultBest:
		return "best"
	case ResultTop:
		return "top"
	default:
		return "unknown"
	}
}
