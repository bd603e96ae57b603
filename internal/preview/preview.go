// Package preview draws a screen's widget rectangles as box-drawing text,
// scaled from window pixels to terminal cells.
package preview

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kcjengr/hazzy/internal/geometry"
	"github.com/kcjengr/hazzy/internal/layout"
)

const (
	minWidth  = 5
	minHeight = 3
)

// TerminalWidth returns the width of f when it is a terminal, otherwise
// fallback.
func TerminalWidth(f *os.File, fallback int) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return fallback
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// HeightFor keeps the window's aspect ratio for a canvas width, assuming
// terminal cells are about twice as tall as they are wide.
func HeightFor(win layout.WindowState, width int) int {
	if win.Width <= 0 || win.Height <= 0 {
		return minHeight
	}
	h := width * win.Height / win.Width / 2
	return max(h, minHeight)
}

// Render draws scr inside a frame representing the window. Widgets are
// numbered in placement order; widgets entirely off the window are not
// drawn.
func Render(win layout.WindowState, scr layout.ScreenSnapshot, width, height int) []string {
	if width < minWidth || height < minHeight || win.Width <= 0 || win.Height <= 0 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	bounds := geometry.Rect{Width: win.Width, Height: win.Height}
	for i, w := range scr.Widgets {
		r := geometry.Rect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}
		if !r.Intersects(bounds) {
			continue
		}
		drawWidget(canvas, r, i+1, win.Width, win.Height, width, height)
	}

	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

// Legend lists the widgets of scr with the numbers used by Render.
func Legend(scr layout.ScreenSnapshot) []string {
	lines := make([]string, 0, len(scr.Widgets))
	for i, w := range scr.Widgets {
		lines = append(lines, fmt.Sprintf("%d  %s  (%d,%d) %dx%d", i+1, w.Package, w.X, w.Y, w.Width, w.Height))
	}
	return lines
}

func drawWidget(canvas [][]rune, r geometry.Rect, num, winW, winH, canvasW, canvasH int) {
	x1 := r.X * canvasW / winW
	y1 := r.Y * canvasH / winH
	x2 := (r.X + r.Width) * canvasW / winW
	y2 := (r.Y + r.Height) * canvasH / winH

	x1 = max(x1, 1)
	y1 = max(y1, 1)
	x2 = min(x2, canvasW-2)
	y2 = min(y2, canvasH-2)

	// Need at least 2x2 cells for a box.
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = '─'
		canvas[y2][x] = '─'
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = '│'
		canvas[y][x2] = '│'
	}
	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 {
		label := fmt.Sprintf("%d", num)
		startX := centerX - len(label)/2
		for i, c := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = c
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	lines := make([]string, max(height, 0))
	empty := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
