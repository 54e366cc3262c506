package draw

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestFillRectScalesToPixels(t *testing.T) {
	// 10 columns x 5 rows -> 10x10 pixels for a 100x100 logical space.
	c := NewScaledCanvas(10, 5, 100, 100)
	red := RGB(255, 0, 0)
	c.SetColor(red)
	c.FillRect(20, 30, 20, 20)

	if got := c.Pixel(2, 3); got != red {
		t.Fatalf("pixel (2,3) = %x, want red", got)
	}
	if got := c.Pixel(3, 4); got != red {
		t.Fatalf("pixel (3,4) = %x, want red", got)
	}
	if got := c.Pixel(4, 3); got.IsSet() {
		t.Fatalf("pixel (4,3) should be empty, got %x", got)
	}
}

func TestTinyRectCoversOnePixel(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.SetColor(RGB(1, 2, 3))
	c.FillRect(55, 55, 1, 1)
	if !c.Pixel(5, 5).IsSet() {
		t.Fatal("expected a sub-pixel rect to paint one pixel")
	}
}

func TestTranslateShiftsDrawing(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.SetColor(RGB(0, 255, 0))
	restore := c.Translate(10, 0)
	c.SetFloat(5, 5)
	restore()
	c.SetFloat(5, 5)

	if !c.Pixel(1, 0).IsSet() {
		t.Error("expected translated pixel at (1,0)")
	}
	if !c.Pixel(0, 0).IsSet() {
		t.Error("expected untranslated pixel at (0,0)")
	}
}

func TestTerminalToLogicalRoundTrip(t *testing.T) {
	c := NewScaledCanvas(50, 40, 500, 800)
	c.SetOffset(5, 2)

	x, y, ok := c.TerminalToLogical(6, 3)
	if !ok {
		t.Fatal("expected the first canvas cell to be inside")
	}
	if math.Abs(x-5) > 1e-9 || math.Abs(y-10) > 1e-9 {
		t.Fatalf("got (%v,%v), want (5,10)", x, y)
	}

	if _, _, ok := c.TerminalToLogical(5, 3); ok {
		t.Fatal("expected the column left of the canvas to be outside")
	}

	col, row := c.LogicalToTerminal(x, y)
	if col != 1 || row != 1 {
		t.Fatalf("LogicalToTerminal = (%d,%d), want (1,1)", col, row)
	}
}

func TestRenderWritesOnlyChangedCells(t *testing.T) {
	c := NewScaledCanvas(4, 2, 4, 4)
	bg := RGB(0, 0, 0)

	var out bytes.Buffer
	c.Clear(bg)
	if err := c.Render(&out); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), string(BlockUpperHalf)); n != 8 {
		t.Fatalf("first frame wrote %d cells, want 8", n)
	}

	out.Reset()
	c.Clear(bg)
	if err := c.Render(&out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("unchanged frame wrote %q", out.String())
	}

	out.Reset()
	c.Clear(bg)
	c.SetColor(RGB(255, 255, 255))
	c.SetFloat(1.5, 0.5)
	if err := c.Render(&out); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), string(BlockUpperHalf)); n != 1 {
		t.Fatalf("single change wrote %d cells, want 1", n)
	}
	if !strings.Contains(out.String(), "\033[1;2H") {
		t.Fatalf("expected cursor move to row 1 col 2, got %q", out.String())
	}
	if !strings.Contains(out.String(), "38;2;255;255;255m") {
		t.Fatalf("expected white foreground, got %q", out.String())
	}
}

func TestMarkTextDirtyRepaints(t *testing.T) {
	c := NewScaledCanvas(4, 2, 4, 4)
	var out bytes.Buffer
	c.Clear(RGB(0, 0, 0))
	_ = c.Render(&out)

	out.Reset()
	c.MarkTextDirty(2, 1, 2)
	_ = c.Render(&out)
	if n := strings.Count(out.String(), string(BlockUpperHalf)); n != 2 {
		t.Fatalf("repainted %d cells, want 2", n)
	}
}

func TestBlendEndpoints(t *testing.T) {
	a := RGB(0, 0, 0)
	b := RGB(200, 100, 50)
	if got := Blend(a, b, 0); got != a {
		t.Errorf("Blend t=0 = %x, want %x", got, a)
	}
	if got := Blend(a, b, 1); got != b {
		t.Errorf("Blend t=1 = %x, want %x", got, b)
	}
	if got := Hex("nope", b); got != b {
		t.Errorf("Hex fallback = %x, want %x", got, b)
	}
}
