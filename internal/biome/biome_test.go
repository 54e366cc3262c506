package biome

import (
	"math"
	"math/rand"
	"testing"

	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/object"
)

func defaultTable() *Table {
	return NewTable(config.Default().Biomes)
}

func TestZoneBoundaries(t *testing.T) {
	tbl := defaultTable()
	tests := []struct {
		depth float64
		want  string
	}{
		{0, "Grasslands"},
		{999.9, "Grasslands"},
		{1000, "Winter land"},
		{2500, "Sky city"},
		{10999, "Volcano"},
		{11000, "Forest of death"},
		{1e9, "Forest of death"},
	}
	for _, tt := range tests {
		if got := tbl.Zone(tt.depth).Name; got != tt.want {
			t.Errorf("Zone(%v) = %q, want %q", tt.depth, got, tt.want)
		}
	}
}

func TestSampleCumulativeOrder(t *testing.T) {
	tbl := defaultTable()
	tests := []struct {
		depth, r float64
		want     object.PlatformType
	}{
		{1500, 0.5, object.PlatformIce},
		{1500, 0.95, object.PlatformBouncy},
		{5000, 0.2, object.PlatformBreakable},
		{5000, 0.55, object.PlatformMovingX},
		{5000, 0.65, object.PlatformBouncy},
		{5000, 0.8, object.PlatformDefault},
		{500, 0.01, object.PlatformBouncy},
		{500, 0.5, object.PlatformDefault},
	}
	for _, tt := range tests {
		if got := tbl.Sample(tt.depth, tt.r); got != tt.want {
			t.Errorf("Sample(%v, %v) = %v, want %v", tt.depth, tt.r, got, tt.want)
		}
	}
}

func TestSampleFrequencies(t *testing.T) {
	tbl := defaultTable()
	rng := rand.New(rand.NewSource(7))
	counts := map[object.PlatformType]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[tbl.Sample(2500, rng.Float64())]++
	}
	check := func(typ object.PlatformType, want float64) {
		got := float64(counts[typ]) / n
		if math.Abs(got-want) > 0.02 {
			t.Errorf("%v frequency = %.3f, want %.2f", typ, got, want)
		}
	}
	check(object.PlatformMovingX, 0.2)
	check(object.PlatformBouncy, 0.6)
	check(object.PlatformDefault, 0.2)
}

func TestUnknownTypeFallsBackToDefault(t *testing.T) {
	tbl := NewTable(config.Biomes{Zones: []config.Biome{{
		Name:       "Lava",
		DepthLimit: math.Inf(1),
		Background: "#000000",
		Chances:    map[string]float64{"lava": 0.7, "ice": 0.2},
	}}})

	if got := tbl.Sample(0, 0.1); got != object.PlatformIce {
		t.Fatalf("Sample = %v, want ice", got)
	}
	if got := tbl.Sample(0, 0.5); got != object.PlatformDefault {
		t.Fatalf("unknown type mass must go to default, got %v", got)
	}
}

func TestBackgroundBlendsAcrossBoundary(t *testing.T) {
	tbl := defaultTable()
	grass := draw.MustHex("#1a1a1a")
	winter := draw.MustHex("#0d1b2a")

	if got := tbl.Background(0); got != grass {
		t.Errorf("Background(0) = %06x, want grasslands", uint32(got))
	}
	if got := tbl.Background(1400); got != winter {
		t.Errorf("Background(1400) = %06x, want winter", uint32(got))
	}

	mid := draw.Blend(grass, winter, 0.5)
	if got := tbl.Background(1000); got != mid {
		t.Errorf("Background(1000) = %06x, want midpoint %06x", uint32(got), uint32(mid))
	}

	// continuous across the limit
	a, b := tbl.Background(999.999), tbl.Background(1000.001)
	ar, ag, ab := a.RGB()
	br, bg, bb := b.RGB()
	if absDiff(ar, br) > 1 || absDiff(ag, bg) > 1 || absDiff(ab, bb) > 1 {
		t.Errorf("discontinuity at boundary: %06x vs %06x", uint32(a), uint32(b))
	}
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
