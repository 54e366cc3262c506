package level

import (
	"math"
	"math/rand"
	"testing"

	"github.com/tomz197/climber/internal/biome"
	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/object"
	"github.com/tomz197/climber/internal/physics"
)

func newGenerator(t config.Tuning, seed int64) *Generator {
	return New(t, biome.NewTable(t.Biomes), rand.New(rand.NewSource(seed)))
}

func TestRowsStayInsideJumpEnvelope(t *testing.T) {
	tuning := config.Default()
	for seed := int64(1); seed <= 5; seed++ {
		g := newGenerator(tuning, seed)
		env := g.Envelope()

		for top := 0.0; top > -20000; top -= 400 {
			g.Update(top, top+tuning.World.ViewHeight, false)
			rows := g.Rows()
			for i := 1; i < len(rows); i++ {
				prev, cur := rows[i-1], rows[i]
				dy := prev.Y - cur.Y
				if dy <= 0 || dy > env.Height {
					t.Fatalf("seed %d: row gap %v outside (0, %v]", seed, dy, env.Height)
				}
				if dy < g.Spacing()*(1-maxSpacingJitter)-1e-9 {
					t.Fatalf("seed %d: row gap %v below jittered spacing", seed, dy)
				}
				if dx := math.Abs(cur.Center - prev.Center); dx > env.Distance-prev.Amplitude+1e-9 {
					t.Fatalf("seed %d: horizontal step %v exceeds reach %v", seed, dx, env.Distance-prev.Amplitude)
				}
			}
		}
		for _, pl := range g.Platforms.Items() {
			if pl.BaseX-pl.Amplitude < -1e-9 || pl.BaseX+pl.W+pl.Amplitude > tuning.World.Width+1e-9 {
				t.Fatalf("seed %d: platform [%v,%v] ±%v leaves the world", seed, pl.BaseX, pl.BaseX+pl.W, pl.Amplitude)
			}
		}
	}
}

func TestFloorFirst(t *testing.T) {
	tuning := config.Default()
	g := newGenerator(tuning, 1)
	floor := g.Platforms.Items()[0]
	if floor.Type != object.PlatformFloor || floor.Y != 0 || floor.W != tuning.World.Width {
		t.Fatalf("floor = %+v", floor)
	}
}

func TestRetirementBelowCamera(t *testing.T) {
	tuning := config.Default()
	g := newGenerator(tuning, 3)

	g.Update(-5000, -4200, false)
	cut := -4200 + tuning.Level.RetireMargin
	for _, pl := range g.Platforms.Items() {
		if pl.Y > cut {
			t.Fatalf("platform at %v not retired below %v", pl.Y, cut)
		}
	}
	for _, s := range g.Decorations.Items() {
		if s.Y > cut {
			t.Fatalf("star at %v not retired", s.Y)
		}
	}
	if g.Top() > -5000-tuning.Level.GenerateMargin {
		t.Fatalf("top %v not far enough above the camera", g.Top())
	}
}

func TestCollectiblePityBoundsGaps(t *testing.T) {
	tuning := config.Default()
	tuning.Level.CollectibleMinDepth = 0
	tuning.Level.CollectibleBaseChance = 0
	tuning.Level.CollectibleRamp = 0.25
	g := newGenerator(tuning, 9)

	g.Update(-5000, math.Inf(1), false)

	key := func(y float64) int64 { return int64(math.Round(y * 1000)) }
	has := map[int64]bool{}
	for _, c := range g.Collectibles.Items() {
		has[key(c.BaseY+collectibleLift)] = true
	}
	gap := 0
	for _, row := range g.Rows()[1:] {
		if has[key(row.Y)] {
			gap = 0
			continue
		}
		gap++
		if gap > 4 {
			t.Fatalf("%d rows without a collectible", gap)
		}
	}
	if len(has) == 0 {
		t.Fatal("no collectibles generated")
	}
}

func TestFlightSuppressesCollectibles(t *testing.T) {
	tuning := config.Default()
	tuning.Level.CollectibleMinDepth = 0
	tuning.Level.CollectibleBaseChance = 1
	g := newGenerator(tuning, 2)

	g.Update(-3000, math.Inf(1), true)

	if n := g.Collectibles.Len(); n != 0 {
		t.Fatalf("%d collectibles spawned during flight", n)
	}
	if g.CollectChance() != 1 {
		t.Fatal("suppressed rows must not ramp the pity chance")
	}
}

func TestHazardsRespectMinDepth(t *testing.T) {
	tuning := config.Default()
	tuning.Level.HazardBaseChance = 1
	tuning.Level.HazardMaxChance = 1
	g := newGenerator(tuning, 4)

	g.Update(-6000, math.Inf(1), false)

	if g.Hazards.Len() == 0 {
		t.Fatal("expected hazards past the minimum depth")
	}
	for _, h := range g.Hazards.Items() {
		if h.Y+h.H > -tuning.Level.HazardMinDepth+tuning.Level.PlatformHeight {
			t.Fatalf("hazard at depth %v above the minimum", -h.Y)
		}
	}
}

func TestHazardsNeverOverlapPlatforms(t *testing.T) {
	tuning := config.Default()
	tuning.Level.HazardMinDepth = 0
	tuning.Level.HazardBaseChance = 1
	tuning.Level.HazardMaxChance = 1
	tuning.Level.SecondPlatformChance = 0.8
	for seed := int64(1); seed <= 5; seed++ {
		g := newGenerator(tuning, seed)
		g.Update(-8000, math.Inf(1), false)

		for _, h := range g.Hazards.Items() {
			for _, pl := range g.Platforms.Items() {
				swept := physics.Rect{X: pl.BaseX - pl.Amplitude, Y: pl.Y, W: pl.W + 2*pl.Amplitude, H: pl.H}
				if physics.RectsOverlap(h.Rect(), swept) {
					t.Fatalf("seed %d: hazard %+v overlaps platform %+v", seed, h.Rect(), swept)
				}
			}
		}
	}
}

func TestUnknownCollectibleKindFallsBackToFish(t *testing.T) {
	kinds, total := parseKinds([]config.CollectibleWeight{{Kind: "jetpack", Weight: 2}, {Kind: "totem", Weight: 1}, {Kind: "grip", Weight: 0}})
	if len(kinds) != 2 || total != 3 {
		t.Fatalf("kinds = %+v total = %v", kinds, total)
	}
	if !kinds[0].fish {
		t.Fatal("unknown kind must become fish")
	}
	if kinds[1].fish || kinds[1].effect != object.EffectTotem {
		t.Fatalf("totem parsed as %+v", kinds[1])
	}
}

func TestResetRestartsLevel(t *testing.T) {
	g := newGenerator(config.Default(), 5)
	g.Update(-4000, -3200, false)
	g.Reset()
	if g.Platforms.Len() != 1 || g.Top() != 0 || len(g.Rows()) != 1 {
		t.Fatal("reset must leave only the floor")
	}
}
