// Package tui renders engine snapshots on a character canvas and drives the
// engine from a bubbletea program.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style names a cell colour class.
type Style uint8

const (
	StyleNone Style = iota
	StyleLinkPositive
	StyleLinkNegative
	StyleLinkUnknown
	StyleNodeUnknown
	StyleNodeLow
	StyleNodeMid
	StyleNodeHigh
	StyleFiring
	StyleToken
	StylePopupBorder
	StylePopupTitle
	StylePopupText
)

type cell struct {
	r     rune
	style Style
}

// Canvas is a fixed-size grid of styled runes. Writes outside the grid
// are ignored.
type Canvas struct {
	cols, rows int
	cells      []cell
}

// NewCanvas returns a blank canvas. Non-positive sizes give an empty canvas.
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	c := &Canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

// Size returns the grid dimensions.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// Set writes one cell.
func (c *Canvas) Set(x, y int, r rune, s Style) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y*c.cols+x] = cell{r: r, style: s}
}

// At returns the rune and style of one cell.
func (c *Canvas) At(x, y int) (rune, Style) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return 0, StyleNone
	}
	cl := c.cells[y*c.cols+x]
	return cl.r, cl.style
}

// Line draws a Bresenham line from (x0, y0) to (x1, y1), endpoints included.
func (c *Canvas) Line(x0, y0, x1, y1 int, r rune, s Style) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		c.Set(x0, y0, r, s)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Text writes s left to right starting at (x, y), clipped to the grid.
func (c *Canvas) Text(x, y int, s string, st Style) {
	for _, r := range s {
		c.Set(x, y, r, st)
		x++
	}
}

// Box draws a w by h frame with its top-left corner at (x, y) and blanks
// the interior.
func (c *Canvas) Box(x, y, w, h int, st Style) {
	if w < 2 || h < 2 {
		return
	}
	for i := 1; i < h-1; i++ {
		for j := 1; j < w-1; j++ {
			c.Set(x+j, y+i, ' ', StyleNone)
		}
	}
	for j := 1; j < w-1; j++ {
		c.Set(x+j, y, '─', st)
		c.Set(x+j, y+h-1, '─', st)
	}
	for i := 1; i < h-1; i++ {
		c.Set(x, y+i, '│', st)
		c.Set(x+w-1, y+i, '│', st)
	}
	c.Set(x, y, '┌', st)
	c.Set(x+w-1, y, '┐', st)
	c.Set(x, y+h-1, '└', st)
	c.Set(x+w-1, y+h-1, '┘', st)
}

// String returns the canvas without styling, one line per row.
func (c *Canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.cols; x++ {
			b.WriteRune(c.cells[y*c.cols+x].r)
		}
	}
	return b.String()
}

// Render returns the canvas with styles applied. Runs of equally styled
// cells are rendered together.
func (c *Canvas) Render(styles map[Style]lipgloss.Style) string {
	var b, run strings.Builder
	for y := 0; y < c.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		cur := StyleNone
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if st, ok := styles[cur]; ok && cur != StyleNone {
				b.WriteString(st.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < c.cols; x++ {
			cl := c.cells[y*c.cols+x]
			if cl.style != cur {
				flush()
				cur = cl.style
			}
			run.WriteRune(cl.r)
		}
		flush()
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
