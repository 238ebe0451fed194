// Package placement decides where the main window is created.
//
// Stored geometry is only trusted when the resulting rectangle is still
// visible on one of the displays attached right now.
package placement

import "github.com/samber/lo"

const (
	DefaultWidth  = 800
	DefaultHeight = 600
	MinWidth      = 680
	MinHeight     = 550

	// BoundsBuffer is how many pixels of the window must remain reachable
	// inside a display on the constrained edges.
	BoundsBuffer = 100
)

// Rect is a window or display rectangle in virtual screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Geometry is the stored placement of a window. Nil fields were never saved.
type Geometry struct {
	AutoHideMenuBar *bool
	Width           *int
	Height          *int
	X               *int
	Y               *int
}

// Options are the constructor options handed to the runtime.
// X and Y are nil when the runtime should pick the position.
type Options struct {
	Title           string
	Width           int
	Height          int
	MinWidth        int
	MinHeight       int
	X               *int
	Y               *int
	AutoHideMenuBar *bool
	DevTools        bool
	DataPath        string
}

// IsVisible reports whether w keeps enough of itself inside display b.
// Zero display sizes fall back to 800x600.
func IsVisible(w, b Rect) bool {
	width := b.Width
	if width == 0 {
		width = DefaultWidth
	}
	height := b.Height
	if height == 0 {
		height = DefaultHeight
	}

	// left or right side must stay BoundsBuffer pixels inside
	rightClear := w.X+w.Width >= b.X+BoundsBuffer
	leftClear := w.X <= b.X+width-BoundsBuffer

	// top may not be above the display, and BoundsBuffer pixels must show at the bottom
	topInBounds := w.Y >= b.Y
	bottomClear := w.Y <= b.Y+height-BoundsBuffer

	return rightClear && leftClear && topInBounds && bottomClear
}

// VisibleOnAny reports whether w is visible on at least one display.
func VisibleOnAny(w Rect, displays []Rect) bool {
	return lo.SomeBy(displays, func(b Rect) bool {
		return IsVisible(w, b)
	})
}

// Compute merges stored geometry over base and validates the result against
// the attached displays. Sizes below the minimum are reset individually; the
// position is kept only when both coordinates exist and the window is visible.
func Compute(stored Geometry, displays []Rect, base Options) Options {
	opts := base
	opts.Width = DefaultWidth
	opts.Height = DefaultHeight
	if opts.MinWidth == 0 {
		opts.MinWidth = MinWidth
	}
	if opts.MinHeight == 0 {
		opts.MinHeight = MinHeight
	}

	if stored.Width != nil && *stored.Width >= opts.MinWidth {
		opts.Width = *stored.Width
	}
	if stored.Height != nil && *stored.Height >= opts.MinHeight {
		opts.Height = *stored.Height
	}
	if stored.AutoHideMenuBar != nil {
		opts.AutoHideMenuBar = lo.ToPtr(*stored.AutoHideMenuBar)
	}

	opts.X, opts.Y = nil, nil
	if stored.X == nil || stored.Y == nil {
		return opts
	}

	candidate := Rect{X: *stored.X, Y: *stored.Y, Width: opts.Width, Height: opts.Height}
	if VisibleOnAny(candidate, displays) {
		opts.X = lo.ToPtr(*stored.X)
		opts.Y = lo.ToPtr(*stored.Y)
	}
	return opts
}
