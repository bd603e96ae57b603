package preview

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcjengr/hazzy/internal/layout"
)

func cell(lines []string, x, y int) rune {
	return []rune(lines[y])[x]
}

func TestRender_DrawsNumberedBoxes(t *testing.T) {
	win := layout.WindowState{Width: 100, Height: 50}
	scr := layout.ScreenSnapshot{Widgets: []layout.WidgetSnapshot{
		{Package: "dro", X: 0, Y: 0, Width: 50, Height: 50},
		{Package: "jog", X: 500, Y: 0, Width: 10, Height: 10},
	}}

	lines := Render(win, scr, 20, 10)
	require.Len(t, lines, 10)
	for _, l := range lines {
		assert.Equal(t, 20, utf8.RuneCountInString(l))
	}

	assert.Equal(t, '╔', cell(lines, 0, 0))
	assert.Equal(t, '╝', cell(lines, 19, 9))
	assert.Equal(t, '┌', cell(lines, 1, 1))
	assert.Equal(t, '┐', cell(lines, 10, 1))
	assert.Equal(t, '┘', cell(lines, 10, 8))
	assert.Equal(t, '1', cell(lines, 5, 4))

	joined := strings.Join(lines, "\n")
	assert.NotContains(t, joined, "2", "off-window widget is not drawn")
}

func TestRender_TooSmall(t *testing.T) {
	lines := Render(layout.WindowState{Width: 100, Height: 50}, layout.ScreenSnapshot{}, 4, 2)
	assert.Equal(t, []string{"    ", "    "}, lines)

	lines = Render(layout.WindowState{}, layout.ScreenSnapshot{}, 10, 3)
	assert.Len(t, lines, 3)
}

func TestLegend(t *testing.T) {
	scr := layout.ScreenSnapshot{Widgets: []layout.WidgetSnapshot{
		{Package: "dro", X: 10, Y: 10, Width: 120, Height: 80},
	}}
	assert.Equal(t, []string{"1  dro  (10,10) 120x80"}, Legend(scr))
}

func TestHeightFor(t *testing.T) {
	assert.Equal(t, 20, HeightFor(layout.WindowState{Width: 900, Height: 600}, 60))
	assert.Equal(t, minHeight, HeightFor(layout.WindowState{Width: 900, Height: 10}, 60))
	assert.Equal(t, minHeight, HeightFor(layout.WindowState{}, 60))
}

func TestTerminalWidth_NotATerminal(t *testing.T) {
	assert.Equal(t, 80, TerminalWidth(nil, 80))
}
