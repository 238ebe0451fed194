//go:build !windows

package notify

import "github.com/rs/zerolog"

// Native returns the platform notifier. Only Windows has one.
func Native(_ string, log zerolog.Logger) Notifier {
	return NewLog(log)
}
