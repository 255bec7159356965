package components

import (
	"github.com/Digital-Shane/cinemabot/internal/tui/theme"

	"github.com/charmbracelet/bubbles/viewport"
)

// NewViewport constructs the themed transcript viewport.
func NewViewport(width, height int, th theme.Theme) *viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = th.TranscriptStyle()
	return &vp
}
