package draw

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a packed 24-bit RGB value. The zero Color means "not set" and lets
// the canvas background show through.
type Color uint32

const colorSet = 1 << 24

// RGB builds an opaque color.
func RGB(r, g, b uint8) Color {
	return Color(colorSet | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Hex parses "#rrggbb". Invalid input yields fallback.
func Hex(s string, fallback Color) Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return FromColorful(c)
}

// MustHex parses a color literal known at compile time.
func MustHex(s string) Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("draw: bad color literal " + s)
	}
	return FromColorful(c)
}

// FromColorful converts a go-colorful color, clamping it into gamut.
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return RGB(r, g, b)
}

// IsSet reports whether the color was explicitly assigned.
func (c Color) IsSet() bool { return c&colorSet != 0 }

// RGB returns the channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Colorful converts to a go-colorful color for blending.
func (c Color) Colorful() colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Blend mixes a toward b by t in [0,1] in RGB space.
func Blend(a, b Color, t float64) Color {
	t = math.Max(0, math.Min(1, t))
	return FromColorful(a.Colorful().BlendRgb(b.Colorful(), t))
}

// Scale multiplies the brightness of c by f.
func (c Color) Scale(f float64) Color {
	if !c.IsSet() {
		return c
	}
	return Blend(RGB(0, 0, 0), c, f)
}

// Palette used by entities and the HUD.
var (
	ColorPlayer       = MustHex("#f2f2f2")
	ColorPlayerGlow   = MustHex("#7fd4ff")
	ColorPlatform     = MustHex("#8a6f4e")
	ColorFloor        = MustHex("#5b4a36")
	ColorIce          = MustHex("#a8e4ff")
	ColorBouncy       = MustHex("#ff6fb5")
	ColorMoving       = MustHex("#c9a227")
	ColorBreakable    = MustHex("#9c5a3c")
	ColorHazard       = MustHex("#ffe14d")
	ColorHazardCore   = MustHex("#ff9d00")
	ColorHazardSafe   = MustHex("#4dd2ff")
	ColorFish         = MustHex("#ff8c42")
	ColorStrength     = MustHex("#e63946")
	ColorFlight       = MustHex("#80ffdb")
	ColorGrip         = MustHex("#90be6d")
	ColorTotem        = MustHex("#ffd166")
	ColorStar         = MustHex("#cfd8dc")
	ColorAim          = MustHex("#ffffff")
	ColorAimOverpower = MustHex("#ff4d4d")
	ColorParticle     = MustHex("#ffffff")
)

// SGR sequences for text overlays.
const (
	ColorReset = "\033[0m"
	TextBold   = "\033[1m"
	TextDim    = "\033[2m"
)
