// Package window drives the main window: creating it from stored geometry,
// capturing geometry changes back into the config store and re-creating it
// on activation when the process is kept alive without one.
package window

import (
	"github.com/user/appshell/internal/placement"
)

// State is the lifecycle state of the main window.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	default:
		return "closed"
	}
}

// Spec is everything the runtime needs to build one window.
type Spec struct {
	Options placement.Options
	URL     string

	// InitScripts run before any page script on every navigation.
	InitScripts []string
	// Bindings are host functions exposed to the content by name.
	Bindings map[string]any

	// OnGeometryChange is called on every move or resize, from any goroutine.
	OnGeometryChange func()
}

// Window is a native window created by a Runtime.
type Window interface {
	// Bounds returns the outer window rectangle. It fails once the native
	// window is gone.
	Bounds() (placement.Rect, error)
	IsMaximized() bool
	IsFullscreen() bool
	Maximize()
	SetFullscreen(on bool)
	Focus()
	// Run blocks until the window is closed.
	Run()
	// Close asks the window to close. Safe to call from any goroutine and
	// before Run.
	Close()
}

// Runtime creates native windows.
type Runtime interface {
	Displays() ([]placement.Rect, error)
	NewWindow(spec Spec) (Window, error)
}
