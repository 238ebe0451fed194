package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/user/appshell/internal/config"
)

// ConfigSource is the part of the config store the UI may reach.
type ConfigSource interface {
	Snapshot() *config.Snapshot
	SetUserPreferences(patch map[string]any) error
}

var ErrInvalidPreferences = errors.New("user preferences must be a JSON object")

// RegisterHost installs the host handlers on r.
func RegisterHost(r *Router, store ConfigSource) {
	r.Handle(GetConfig, func(context.Context, json.RawMessage) (any, error) {
		return store.Snapshot(), nil
	})

	r.Handle(UpdateUserPreferences, func(_ context.Context, payload json.RawMessage) (any, error) {
		var patch map[string]any
		if err := json.Unmarshal(payload, &patch); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
		}
		if patch == nil {
			return nil, ErrInvalidPreferences
		}
		if err := store.SetUserPreferences(patch); err != nil {
			return nil, err
		}
		return nil, nil
	})

	// Placeholder until user data storage exists.
	r.Handle(GetUserData, func(context.Context, json.RawMessage) (any, error) {
		return map[string]any{}, nil
	})
}
