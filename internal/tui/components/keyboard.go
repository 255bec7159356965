package components

import (
	"strings"

	"github.com/Digital-Shane/cinemabot/internal/keyboard"
	"github.com/Digital-Shane/cinemabot/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Selection is the position of the highlighted button.
type Selection struct {
	Row, Col int
}

// Move shifts the selection by the given deltas and clamps it to rows.
// Moving to a shorter row keeps the selection on its last button.
func (s Selection) Move(rows [][]keyboard.Button, dRow, dCol int) Selection {
	if len(rows) == 0 {
		return Selection{}
	}
	s.Row = clamp(s.Row+dRow, 0, len(rows)-1)
	s.Col = clamp(s.Col+dCol, 0, len(rows[s.Row])-1)
	return s
}

// Button returns the selected button, if the selection is inside rows.
func (s Selection) Button(rows [][]keyboard.Button) (keyboard.Button, bool) {
	if s.Row < 0 || s.Row >= len(rows) || s.Col < 0 || s.Col >= len(rows[s.Row]) {
		return keyboard.Button{}, false
	}
	return rows[s.Row][s.Col], true
}

// RenderKeyboard draws rows of buttons. Labels wider than maxLabel cells are
// truncated; the highlight is shown only when focused.
func RenderKeyboard(rows [][]keyboard.Button, sel Selection, focused bool, maxLabel int, th theme.Theme) string {
	lines := make([]string, 0, len(rows))
	for r, row := range rows {
		cells := make([]string, 0, len(row))
		for c, button := range row {
			label := button.Text
			if maxLabel > 0 {
				label = runewidth.Truncate(label, maxLabel, "…")
			}
			if button.URL != "" {
				label += " " + th.Icon("link")
			}
			selected := focused && r == sel.Row && c == sel.Col
			cells = append(cells, th.ButtonStyle(selected).Render(label))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
