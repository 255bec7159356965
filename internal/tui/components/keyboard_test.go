package components

import (
	"strings"
	"testing"

	"github.com/Digital-Shane/cinemabot/internal/keyboard"
	"github.com/Digital-Shane/cinemabot/internal/tui/theme"
	"github.com/google/go-cmp/cmp"
)

var testRows = [][]keyboard.Button{
	{{Text: "1", CallbackData: "movie:1"}, {Text: "2", CallbackData: "movie:2"}, {Text: "3", CallbackData: "movie:3"}},
	{{Text: "4", CallbackData: "show:4"}},
}

func TestSelectionMove(t *testing.T) {
	tests := []struct {
		name       string
		start      Selection
		dRow, dCol int
		want       Selection
	}{
		{name: "right", start: Selection{0, 0}, dCol: 1, want: Selection{0, 1}},
		{name: "right clamps", start: Selection{0, 2}, dCol: 1, want: Selection{0, 2}},
		{name: "left clamps", start: Selection{0, 0}, dCol: -1, want: Selection{0, 0}},
		{name: "down to shorter row", start: Selection{0, 2}, dRow: 1, want: Selection{1, 0}},
		{name: "down clamps", start: Selection{1, 0}, dRow: 1, want: Selection{1, 0}},
		{name: "up", start: Selection{1, 0}, dRow: -1, want: Selection{0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.start.Move(testRows, tc.dRow, tc.dCol)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Move() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectionMoveEmpty(t *testing.T) {
	if got := (Selection{Row: 3, Col: 2}).Move(nil, 1, 1); got != (Selection{}) {
		t.Errorf("Move(nil) = %+v, want zero selection", got)
	}
}

func TestSelectionButton(t *testing.T) {
	b, ok := Selection{Row: 1, Col: 0}.Button(testRows)
	if !ok || b.CallbackData != "show:4" {
		t.Errorf("Button() = %+v, %v; want show:4", b, ok)
	}
	if _, ok := (Selection{Row: 1, Col: 1}).Button(testRows); ok {
		t.Error("Button() outside the row should report false")
	}
}

func TestRenderKeyboard(t *testing.T) {
	th := theme.New(theme.WithIconSet(theme.IconSet{"link": "[→]"}))
	rows := [][]keyboard.Button{
		{{Text: "Amazon Prime Video", URL: "https://amazon.example"}},
		{{Text: "more", CallbackData: "list:matrix"}},
	}

	out := RenderKeyboard(rows, Selection{}, true, 10, th)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Amazon Pr…") || !strings.Contains(lines[0], "[→]") {
		t.Errorf("first row should hold the truncated link button, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "more") {
		t.Errorf("second row should hold the more button, got %q", lines[1])
	}
}
