// Package surface defines the text surface the highlighter draws on, plus
// an in-memory implementation used by the CLI and tests.
package surface

import (
	"github.com/zjrosen/hues/internal/text"
)

// ViewID identifies a view for its whole lifetime.
type ViewID int64

// Overlay is a named set of regions drawn in one style. Icon, when set, is
// the path of a gutter icon drawn on each region's line.
type Overlay struct {
	Key     string
	Style   string
	Regions []text.Region
	Icon    string
}

// View is a read-only snapshot of a buffer plus named overlays.
// Implementations must be safe to call from the UI context.
type View interface {
	ID() ViewID
	// FileName is empty for unsaved buffers.
	FileName() string
	IsLoading() bool
	Size() int
	Substr(r text.Region) string
	Selections() []text.Region
	VisibleRegion() text.Region
	// Lines returns the full lines intersecting r.
	Lines(r text.Region) []text.Region
	// Line returns the line containing p.
	Line(p int) text.Region
	// Background is the canonical background color, or empty if unknown.
	Background() string

	// Overlay returns the regions currently drawn under key.
	Overlay(key string) []text.Region
	// AddOverlay replaces the overlay with the same key.
	AddOverlay(o Overlay)
	EraseOverlay(key string)
}

// Registrar assigns style keys to colors and publishes them to the renderer.
type Registrar interface {
	// Register returns the style key for a canonical color, creating it on
	// first use. table is the full color table the color came from.
	Register(color string, table map[string]string) string
	// Update flushes styles registered since the last call so view can draw
	// them.
	Update(view View)
}
