// Package notify shows short messages to the user outside the web content.
package notify

import "github.com/rs/zerolog"

type Notifier interface {
	Notify(title, message string) error
}

// Log only records the message. It is used where no native notification
// service exists.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "notify").Logger()}
}

func (l *Log) Notify(title, message string) error {
	l.log.Info().Str("title", title).Msg(message)
	return nil
}
