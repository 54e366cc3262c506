package draw

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 2).
	Align(lipgloss.Center)

// Panel renders a bordered text box and returns its lines.
func Panel(title string, lines ...string) []string {
	body := lines
	if title != "" {
		body = append([]string{strings.ToUpper(title), ""}, lines...)
	}
	return strings.Split(panelStyle.Render(strings.Join(body, "\n")), "\n")
}

// WritePanel centers a rendered panel inside a width x height area and
// writes it through cw. The covered cells are marked dirty on c.
func WritePanel(cw *ChunkWriter, c *Canvas, lines []string) {
	w := 0
	for _, l := range lines {
		w = max(w, lipgloss.Width(l))
	}
	col := (c.TerminalWidth()-w)/2 + 1
	row := (c.TerminalHeight()-len(lines))/2 + 1
	for i, l := range lines {
		WriteText(cw, c, max(col, 1), row+i, l)
	}
}

// WriteText writes s at a 1-based canvas position, clipped to the canvas,
// and schedules the cells underneath for repaint.
func WriteText(cw *ChunkWriter, c *Canvas, col, row int, s string) {
	if row < 1 || row > c.TerminalHeight() || col < 1 {
		return
	}
	w := lipgloss.Width(s)
	if col+w-1 > c.TerminalWidth() {
		return
	}
	cw.WriteAt(col, row, s)
	c.MarkTextDirty(col, row, w)
}

// RenderBorder frames the render area when the terminal is larger than it.
func (c *Canvas) RenderBorder(w *ChunkWriter) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1
	if !hasH && !hasV {
		return
	}
	b := lipgloss.RoundedBorder()

	// Cursor positions are canvas-relative; the writer adds the offset.
	left, right := 0, c.termWidth+1
	top, bottom := 0, c.termHeight+1
	horiz := strings.Repeat(b.Top, c.termWidth)

	if hasV {
		if hasH {
			w.WriteAt(left, top, b.TopLeft+horiz+b.TopRight)
			w.WriteAt(left, bottom, b.BottomLeft+horiz+b.BottomRight)
		} else {
			w.WriteAt(1, top, horiz)
			w.WriteAt(1, bottom, horiz)
		}
	}
	if hasH {
		for row := 1; row <= c.termHeight; row++ {
			w.WriteAt(left, row, b.Left)
			w.WriteAt(right, row, b.Right)
		}
	}
}
