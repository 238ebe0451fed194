// Package tray puts the app in the system tray. Clicking Show, or
// double-clicking the icon, sends an activation; Quit calls the quit func.
package tray

import "github.com/rs/zerolog"

type Tray struct {
	title       string
	icon        []byte
	log         zerolog.Logger
	activations chan struct{}
	end         func()
}

func New(title string, icon []byte, log zerolog.Logger) *Tray {
	return &Tray{
		title:       title,
		icon:        icon,
		log:         log.With().Str("component", "tray").Logger(),
		activations: make(chan struct{}, 1),
	}
}

// Activations receives one value per user request to show the window.
func (t *Tray) Activations() <-chan struct{} { return t.activations }

// activate never blocks; a request already queued absorbs the new one.
func (t *Tray) activate() {
	select {
	case t.activations <- struct{}{}:
	default:
	}
}
