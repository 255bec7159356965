// Package keyboard arranges buttons into rows for inline keyboards.
package keyboard

import (
	"fmt"
	"unicode/utf8"
)

// Button is one inline keyboard button. Exactly one of URL and CallbackData
// is expected to be set.
type Button struct {
	Text         string
	URL          string
	CallbackData string
}

// Layout bounds a keyboard row by the summed label length and the number of
// buttons.
type Layout struct {
	SymbolsLimit int
	CountLimit   int
}

var (
	// WatchLayout fits provider names under a title card.
	WatchLayout = Layout{SymbolsLimit: 23, CountLimit: 3}

	// ResultsLayout fits short numeric labels under a results list.
	ResultsLayout = Layout{SymbolsLimit: 10, CountLimit: 5}
)

// Validate reports limits that cannot produce a usable layout.
func (l Layout) Validate() error {
	if l.SymbolsLimit < 1 {
		return fmt.Errorf("symbols limit must be at least 1, got %d", l.SymbolsLimit)
	}
	if l.CountLimit < 1 {
		return fmt.Errorf("count limit must be at least 1, got %d", l.CountLimit)
	}
	return nil
}

// Pack fills rows greedily in input order. A button joins the current row
// while both limits hold; otherwise it starts a new row. A button whose label
// alone exceeds the symbols limit still gets a row of its own. Empty input
// yields no rows.
func (l Layout) Pack(buttons []Button) [][]Button {
	if len(buttons) == 0 {
		return nil
	}

	var rows [][]Button
	row := make([]Button, 0, l.CountLimit)
	rowLen := 0

	for _, button := range buttons {
		n := labelLen(button.Text)
		if len(row) == 0 || (rowLen+n <= l.SymbolsLimit && len(row)+1 <= l.CountLimit) {
			row = append(row, button)
			rowLen += n
			continue
		}
		rows = append(rows, row)
		row = []Button{button}
		rowLen = n
	}

	return append(rows, row)
}

// labelLen counts characters, not bytes, so Cyrillic labels get the same
// budget as Latin ones.
func labelLen(s string) int {
	return utf8.RuneCountInString(s)
}
