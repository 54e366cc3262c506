package score

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		height float64
		fish   int
		want   int
	}{
		{0, 0, 0},
		{-50, 0, 0},
		{9.99, 0, 0},
		{1234.5, 0, 123},
		{1000, 3, 130},
	}
	for _, tt := range tests {
		if got := Compute(tt.height, tt.fish); got != tt.want {
			t.Errorf("Compute(%v, %d) = %d, want %d", tt.height, tt.fish, got, tt.want)
		}
	}
}

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite("file::memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProviders(t *testing.T) {
	providers := map[string]func(t *testing.T) Provider{
		"memory": func(*testing.T) Provider { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Provider { return openTestSQLite(t) },
	}
	for name, open := range providers {
		t.Run(name, func(t *testing.T) {
			testProvider(t, open(t))
		})
	}
}

func testProvider(t *testing.T, p Provider) {
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	if _, err := p.GetBest(ctx, "ada"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetBest on empty store: err = %v, want ErrNotFound", err)
	}
	if top, err := p.GetTopN(ctx, 5); err != nil || len(top) != 0 {
		t.Fatalf("GetTopN on empty store = %v, %v", top, err)
	}

	runs := []Entry{
		{Player: "ada", Score: 120, Height: 1200, CreatedAt: base},
		{Player: "bob", Score: 300, Height: 2900, Fish: 1, CreatedAt: base.Add(time.Second)},
		{Player: "ada", Score: 250, Height: 2500, CreatedAt: base.Add(2 * time.Second)},
		{Player: "cy", Score: 250, Height: 2450, CreatedAt: base.Add(3 * time.Second)},
	}
	for _, e := range runs {
		saved, err := p.SaveScore(ctx, e)
		if err != nil {
			t.Fatalf("SaveScore: %v", err)
		}
		if saved.ID == "" {
			t.Fatal("SaveScore must assign an id")
		}
	}

	best, err := p.GetBest(ctx, "ada")
	if err != nil {
		t.Fatalf("GetBest: %v", err)
	}
	if best.Score != 250 || best.Height != 2500 {
		t.Fatalf("best = %+v, want score 250", best)
	}
	if !best.CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("created_at = %v, want millisecond round trip", best.CreatedAt)
	}

	top, err := p.GetTopN(ctx, 3)
	if err != nil {
		t.Fatalf("GetTopN: %v", err)
	}
	want := []string{"bob", "ada", "cy"} // ties keep the older run first
	if len(top) != len(want) {
		t.Fatalf("top = %+v", top)
	}
	for i, name := range want {
		if top[i].Player != name {
			t.Errorf("top[%d] = %s, want %s", i, top[i].Player, name)
		}
	}

	if _, err := p.SaveScore(ctx, Entry{Score: 1}); err == nil {
		t.Fatal("saving without a player must fail")
	}
}

type failingProvider struct{ err error }

func (f failingProvider) SaveScore(context.Context, Entry) (Entry, error) { return Entry{}, f.err }
func (f failingProvider) GetBest(context.Context, string) (Entry, error)  { return Entry{}, f.err }
func (f failingProvider) GetTopN(context.Context, int) ([]Entry, error)   { return nil, f.err }

func collect(t *testing.T, c *Client, n int) []Result {
	t.Helper()
	c.Wait()
	var out []Result
	for i := 0; i < n; i++ {
		select {
		case r := <-c.Results():
			out = append(out, r)
		case <-time.After(time.Second):
			t.Fatalf("got %d results, want %d", len(out), n)
		}
	}
	return out
}

func TestClientDeliversResults(t *testing.T) {
	c := NewClient(context.Background(), NewMemoryStore(), time.Second)

	c.Save(Entry{Player: "ada", Score: 42})
	res := collect(t, c, 1)[0]
	if res.Kind != ResultSaved || res.Err != nil || res.Entry.ID == "" {
		t.Fatalf("save result = %+v", res)
	}

	c.FetchBest("ada")
	c.FetchTop(10)
	byKind := map[ResultKind]Result{}
	for _, r := range collect(t, c, 2) {
		byKind[r.Kind] = r
	}
	if byKind[ResultBest].Entry.Score != 42 {
		t.Fatalf("best = %+v", byKind[ResultBest])
	}
	if len(byKind[ResultTop].Entries) != 1 {
		t.Fatalf("top = %+v", byKind[ResultTop])
	}
}

func TestClientReportsFailures(t *testing.T) {
	boom := errors.New("network down")
	c := NewClient(context.Background(), failingProvider{boom}, time.Second)

	c.FetchTop(10)
	if res := collect(t, c, 1)[0]; !errors.Is(res.Err, boom) || res.Kind != ResultTop {
		t.Fatalf("result = %+v, want the provider error", res)
	}

	none := NewClient(context.Background(), nil, 0)
	none.Save(Entry{Player: "x"})
	if res := collect(t, none, 1)[0]; !errors.Is(res.Err, ErrNoProvider) {
		t.Fatalf("result = %+v, want ErrNoProvider", res)
	}
}

func TestClientHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(ctx, NewMemoryStore(), time.Second)

	c.FetchTop(5)
	if res := collect(t, c, 1)[0]; !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("result = %+v, want context.Canceled", res)
	}
}
