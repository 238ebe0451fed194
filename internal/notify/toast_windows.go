//go:build windows

package notify

import (
	"fmt"

	"github.com/go-toast/toast"
	"github.com/rs/zerolog"
)

// Toast pushes a Windows toast notification.
type Toast struct {
	appID string
	log   zerolog.Logger
}

func NewToast(appID string, log zerolog.Logger) *Toast {
	return &Toast{appID: appID, log: log.With().Str("component", "notify").Logger()}
}

func (t *Toast) Notify(title, message string) error {
	n := toast.Notification{
		AppID:   t.appID,
		Title:   title,
		Message: message,
		Audio:   toast.Default,
	}
	if err := n.Push(); err != nil {
		t.log.Warn().Err(err).Str("title", title).Msg("toast failed")
		return fmt.Errorf("push toast: %w", err)
	}
	return nil
}

// Native returns the platform notifier.
func Native(appID string, log zerolog.Logger) Notifier {
	return NewToast(appID, log)
}
