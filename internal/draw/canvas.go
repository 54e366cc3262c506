package draw

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// cell is one terminal character: two stacked pixels.
type cell struct {
	top, bottom Color
}

// staleCell never equals a rendered cell, forcing a rewrite.
var staleCell = cell{top: 1 << 25}

// Canvas is a color drawing buffer with 2x vertical resolution using half-block
// characters. Game objects draw in logical coordinates which are scaled to the
// terminal. Only cells that changed since the previous frame are written.
type Canvas struct {
	termWidth      int     // Render area columns
	termHeight     int     // Render area rows
	subPixelHeight int     // termHeight * 2
	pixels         []Color // Flat slice: [y * termWidth + x]
	prev           []cell  // What the terminal currently shows, per cell

	background Color
	pen        Color

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64
	scaleY        float64

	// Translation applied to every logical coordinate (screen shake).
	originX, originY float64

	// Offset for centering the render area inside a larger terminal.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	renderBuf       strings.Builder
	numBuf          [20]byte
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		pen:           RGB(255, 255, 255),
		background:    RGB(0, 0, 0),
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 1)
	termHeight = max(termHeight, 1)
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]Color, c.subPixelHeight*termWidth)
		c.prev = make([]cell, termHeight*termWidth)
		c.ForceRedraw()
	}
	c.scaleX = float64(c.termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.ForceRedraw()
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int { return c.offsetCol }

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// ForceRedraw makes the next Render rewrite every cell.
func (c *Canvas) ForceRedraw() {
	for i := range c.prev {
		c.prev[i] = staleCell
	}
}

// MarkTextDirty invalidates n cells starting at the 1-based canvas position
// (col,row), so text written over the canvas is repainted next frame.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	row--
	col--
	if row < 0 || row >= c.termHeight {
		return
	}
	for x := max(col, 0); x < min(col+n, c.termWidth); x++ {
		c.prev[row*c.termWidth+x] = staleCell
	}
}

// Clear resets all pixels and sets the background shown where nothing is drawn.
func (c *Canvas) Clear(background Color) {
	clear(c.pixels)
	c.background = background
	c.originX, c.originY = 0, 0
}

// SetColor selects the pen used by subsequent drawing calls.
func (c *Canvas) SetColor(col Color) {
	c.pen = col
}

// Translate shifts every later drawing call by (dx,dy) logical units.
// The returned function restores the previous translation.
func (c *Canvas) Translate(dx, dy float64) (restore func()) {
	ox, oy := c.originX, c.originY
	c.originX += dx
	c.originY += dy
	return func() {
		c.originX, c.originY = ox, oy
	}
}

// Origin returns the current translation.
func (c *Canvas) Origin() (x, y float64) {
	return c.originX, c.originY
}

func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = c.pen
	}
}

func (c *Canvas) toPixel(x, y float64) (float64, float64) {
	return (x + c.originX) * c.scaleX, (y + c.originY) * c.scaleY
}

// SetFloat sets a pixel at logical coordinates.
func (c *Canvas) SetFloat(x, y float64) {
	px, py := c.toPixel(x, y)
	c.setPixel(int(math.Floor(px)), int(math.Floor(py)))
}

// FillRect fills a logical rectangle. Any rectangle with positive size covers
// at least one pixel.
func (c *Canvas) FillRect(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	px0, py0 := c.toPixel(x, y)
	px1, py1 := c.toPixel(x+w, y+h)
	x0, y0 := int(math.Floor(px0)), int(math.Floor(py0))
	x1, y1 := max(int(math.Round(px1)), x0+1), max(int(math.Round(py1)), y0+1)

	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, c.termWidth), min(y1, c.subPixelHeight)
	for py := y0; py < y1; py++ {
		row := c.pixels[py*c.termWidth:]
		for px := x0; px < x1; px++ {
			row[px] = c.pen
		}
	}
}

// StrokeRect draws the outline of a logical rectangle.
func (c *Canvas) StrokeRect(x, y, w, h float64) {
	c.DrawLine(Point{x, y}, Point{x + w, y})
	c.DrawLine(Point{x + w, y}, Point{x + w, y + h})
	c.DrawLine(Point{x + w, y + h}, Point{x, y + h})
	c.DrawLine(Point{x, y + h}, Point{x, y})
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
func (c *Canvas) DrawLine(p1, p2 Point) {
	fx1, fy1 := c.toPixel(p1.X, p1.Y)
	fx2, fy2 := c.toPixel(p2.X, p2.Y)
	x1, y1 := int(math.Floor(fx1)), int(math.Floor(fy1))
	x2, y2 := int(math.Floor(fx2)), int(math.Floor(fy2))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a polygon outline, filling the interior when filled is set.
func (c *Canvas) DrawPolygon(points []Point, filled bool) {
	if len(points) < 3 {
		return
	}
	if filled {
		c.fillPolygon(points)
	}
	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n])
	}
}

// fillPolygon fills a polygon with a scanline pass in pixel space.
func (c *Canvas) fillPolygon(points []Point) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]
	for i, p := range points {
		x, y := c.toPixel(p.X, p.Y)
		scaled[i] = Point{X: x, Y: y}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	yStart := max(int(math.Floor(minY)), 0)
	yEnd := min(int(math.Ceil(maxY)), c.subPixelHeight-1)
	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5
		xs := c.intersectionBuf[:0]
		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				xs = append(xs, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = xs
		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Ceil(xs[i] - 0.5)); x <= int(math.Floor(xs[i+1]-0.5)); x++ {
				c.setPixel(x, y)
			}
		}
	}
}

// FillCircle fills a disc of logical radius r.
func (c *Canvas) FillCircle(cx, cy, r float64) {
	const segments = 12
	pts := c.BorrowPoints(segments)
	for i := range pts {
		a := float64(i) / segments * 2 * math.Pi
		pts[i] = Point{X: cx + math.Cos(a)*r, Y: cy + math.Sin(a)*r}
	}
	c.DrawPolygon(pts, true)
}

// Pixel returns the color at a pixel position, for tests and inspection.
func (c *Canvas) Pixel(px, py int) Color {
	if px < 0 || px >= c.termWidth || py < 0 || py >= c.subPixelHeight {
		return 0
	}
	return c.pixels[py*c.termWidth+px]
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// Render writes every cell that changed since the last Render. Each cell is an
// upper half block whose foreground is the top pixel and background the bottom one.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()

	var fg, bg Color
	colorsKnown := false
	for row := 0; row < c.termHeight; row++ {
		topRow := c.pixels[row*2*c.termWidth:]
		bottomRow := c.pixels[(row*2+1)*c.termWidth:]
		cursorAt := -1

		for col := 0; col < c.termWidth; col++ {
			cur := cell{top: c.resolve(topRow[col]), bottom: c.resolve(bottomRow[col])}
			idx := row*c.termWidth + col
			if c.prev[idx] == cur {
				continue
			}
			c.prev[idx] = cur

			if cursorAt != col {
				c.writeCursor(row+1+c.offsetRow, col+1+c.offsetCol)
			}
			if !colorsKnown || fg != cur.top {
				c.writeSGR(38, cur.top)
				fg = cur.top
			}
			if !colorsKnown || bg != cur.bottom {
				c.writeSGR(48, cur.bottom)
				bg = cur.bottom
			}
			colorsKnown = true
			c.renderBuf.WriteRune(BlockUpperHalf)
			cursorAt = col + 1
		}
	}
	if colorsKnown {
		c.renderBuf.WriteString(ColorReset)
	}

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}

func (c *Canvas) resolve(col Color) Color {
	if col.IsSet() {
		return col
	}
	return c.background
}

func (c *Canvas) writeCursor(row, col int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

func (c *Canvas) writeSGR(code int, col Color) {
	r, g, b := col.RGB()
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(code), 10))
	c.renderBuf.WriteString(";2;")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(r), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(g), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(b), 10))
	c.renderBuf.WriteByte('m')
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 { return c.logicalWidth }

// LogicalHeight returns the logical height.
func (c *Canvas) LogicalHeight() float64 { return c.logicalHeight }

// TerminalWidth returns the render area column count.
func (c *Canvas) TerminalWidth() int { return c.termWidth }

// TerminalHeight returns the render area row count.
func (c *Canvas) TerminalHeight() int { return c.termHeight }

// UnitsPerCell returns how many logical units one terminal column spans.
func (c *Canvas) UnitsPerCell() float64 {
	return c.logicalWidth / float64(c.termWidth)
}

// LogicalToTerminal converts logical coordinates to a 1-based canvas position (col, row).
// Useful for placing text overlays next to canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return int(math.Floor(px)) + 1, int(math.Floor(py))/2 + 1
}

// TerminalToLogical converts an absolute 1-based terminal position (as
// reported by mouse events) to the logical coordinate at the cell center.
// ok is false when the position lies outside the render area.
func (c *Canvas) TerminalToLogical(col, row int) (x, y float64, ok bool) {
	cx := col - 1 - c.offsetCol
	cy := row - 1 - c.offsetRow
	ok = cx >= 0 && cx < c.termWidth && cy >= 0 && cy < c.termHeight
	x = (float64(cx) + 0.5) / c.scaleX
	y = (float64(cy)*2 + 1) / c.scaleY
	return x, y, ok
}

// BorrowPoints returns a reusable slice of Points with the given length.
// The returned slice is only valid until the next call to BorrowPoints.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
