// Package biome maps climbed depth to platform type distributions and
// background colors.
package biome

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/tomz197/climber/internal/config"
	"github.com/tomz197/climber/internal/draw"
	"github.com/tomz197/climber/internal/object"
)

// sampleOrder is the cumulative order in which thresholds are checked.
// Anything not listed here is appended after, in type order.
var sampleOrder = []object.PlatformType{
	object.PlatformBreakable,
	object.PlatformMovingX,
	object.PlatformIce,
	object.PlatformBouncy,
}

type chance struct {
	typ object.PlatformType
	p   float64
}

// Zone is one resolved biome.
type Zone struct {
	Name       string
	DepthLimit float64
	Background draw.Color
	chances    []chance
}

// Table is an ordered list of zones, shallowest first.
type Table struct {
	zones []Zone
	band  float64
}

// NewTable resolves a validated configuration. Unknown platform names are
// logged and their mass goes to the default platform.
func NewTable(cfg config.Biomes) *Table {
	t := &Table{band: cfg.TransitionBand}
	for _, b := range cfg.Zones {
		z := Zone{
			Name:       b.Name,
			DepthLimit: b.DepthLimit,
			Background: draw.Hex(b.Background, draw.RGB(0, 0, 0)),
		}
		byType := make(map[object.PlatformType]float64)
		for name, p := range b.Chances {
			typ, ok := object.ParsePlatformType(name)
			if !ok {
				log.Warn("unknown platform type in biome, using default", "biome", b.Name, "type", name)
				continue
			}
			byType[typ] += p
		}
		for _, typ := range sampleOrder {
			if p, ok := byType[typ]; ok {
				z.chances = append(z.chances, chance{typ, p})
				delete(byType, typ)
			}
		}
		for typ := object.PlatformType(0); len(byType) > 0; typ++ {
			if p, ok := byType[typ]; ok {
				z.chances = append(z.chances, chance{typ, p})
				delete(byType, typ)
			}
		}
		t.zones = append(t.zones, z)
	}
	if len(t.zones) == 0 {
		t.zones = []Zone{{Name: "Void", DepthLimit: math.Inf(1), Background: draw.RGB(0, 0, 0)}}
	}
	return t
}

func (t *Table) index(depth float64) int {
	for i, z := range t.zones {
		if depth < z.DepthLimit {
			return i
		}
	}
	return len(t.zones) - 1
}

// Zone returns the zone containing depth. A depth equal to a limit belongs
// to the next zone.
func (t *Table) Zone(depth float64) Zone {
	return t.zones[t.index(depth)]
}

// Zones returns the resolved zones.
func (t *Table) Zones() []Zone {
	return t.zones
}

// Sample picks a platform type for depth given r uniform in [0,1).
func (t *Table) Sample(depth, r float64) object.PlatformType {
	acc := 0.0
	for _, c := range t.zones[t.index(depth)].chances {
		acc += c.p
		if r < acc {
			return c.typ
		}
	}
	return object.PlatformDefault
}

// Background returns the clear color at depth, blending across zone
// boundaries inside the transition band.
func (t *Table) Background(depth float64) draw.Color {
	i := t.index(depth)
	z := t.zones[i]
	if t.band <= 0 {
		return z.Background
	}
	half := t.band / 2

	// approaching the next zone
	if i+1 < len(t.zones) && depth > z.DepthLimit-half {
		f := (depth - (z.DepthLimit - half)) / t.band
		return draw.Blend(z.Background, t.zones[i+1].Background, f)
	}
	// just entered from the previous zone
	if i > 0 {
		lim := t.zones[i-1].DepthLimit
		if depth < lim+half {
			f := (depth - (lim - half)) / t.band
			return draw.Blend(t.zones[i-1].Background, z.Background, f)
		}
	}
	return z.Background
}
