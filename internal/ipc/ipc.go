// Package ipc is the call surface between the host process and the UI.
//
// Every channel is one request and one response. The host never pushes.
package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Channel string

const (
	GetConfig             Channel = "get_config"
	UpdateUserPreferences Channel = "update_user_preferences"
	GetUserData           Channel = "get_user_data"
)

// Channels lists every channel the host answers, in a stable order.
var Channels = []Channel{GetConfig, UpdateUserPreferences, GetUserData}

// HandlerFunc answers one call. Payload is the raw JSON argument, empty when
// the caller passed none.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// Router dispatches calls by channel name.
type Router struct {
	log zerolog.Logger

	mu       sync.RWMutex
	handlers map[Channel]HandlerFunc
}

func NewRouter(log zerolog.Logger) *Router {
	return &Router{
		log:      log.With().Str("component", "ipc").Logger(),
		handlers: make(map[Channel]HandlerFunc),
	}
}

// Handle registers h for ch, replacing any previous handler.
func (r *Router) Handle(ch Channel, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[ch] = h
}

// Invoke dispatches a call. Unknown channels are ignored and yield a nil
// result. Handler errors and panics come back as errors so the caller's
// promise rejects.
func (r *Router) Invoke(ctx context.Context, channel string, payload json.RawMessage) (result any, err error) {
	r.mu.RLock()
	h, ok := r.handlers[Channel(channel)]
	r.mu.RUnlock()

	log := r.log.With().Str("channel", channel).Str("call_id", uuid.NewString()).Logger()
	if !ok {
		log.Debug().Msg("call on unknown channel ignored")
		return nil, nil
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: handler panic: %v", channel, p)
			log.Error().Err(err).Msg("call failed")
		}
	}()

	result, err = h(ctx, payload)
	if err != nil {
		log.Warn().Err(err).Msg("call failed")
		return nil, fmt.Errorf("%s: %w", channel, err)
	}
	log.Debug().Msg("call handled")
	return result, nil
}
