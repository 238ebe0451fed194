// Package config owns the application settings document: loading it over the
// compiled-in defaults, merging patches into it and persisting it encoded at rest.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/user/appshell/internal/placement"
)

// FileName is the config file name under the user-data directory.
const FileName = "config"

// Config is the typed view of the settings document.
type Config struct {
	MainWindow      *WindowConfig  `json:"mainWindow,omitempty"`
	StorageProfile  string         `json:"storageProfile,omitempty"`
	UserPreferences map[string]any `json:"userPreferences,omitempty"`
	Debug           DebugFlags     `json:"debug"`
}

// WindowConfig is the persisted state of the main window.
type WindowConfig struct {
	AutoHideMenuBar *bool `json:"autoHideMenuBar,omitempty"`
	Maximized       *bool `json:"maximized,omitempty"`
	Fullscreen      *bool `json:"fullscreen,omitempty"`
	Width           *int  `json:"width,omitempty"`
	Height          *int  `json:"height,omitempty"`
	X               *int  `json:"x,omitempty"`
	Y               *int  `json:"y,omitempty"`
}

type DebugFlags struct {
	Logs          bool `json:"logs"`
	Standalone    bool `json:"standalone"`
	EnableConsole bool `json:"enableConsole"`
	OpenConsole   bool `json:"openConsole"`
	DisplaySas    bool `json:"displaySas"`
}

// DefaultDocument is used when no defaults are injected at build time.
const DefaultDocument = `{"debug":{"logs":false,"standalone":false,"enableConsole":false,"openConsole":false,"displaySas":false}}`

// Geometry returns the placement-relevant part of the window config.
func (w *WindowConfig) Geometry() placement.Geometry {
	if w == nil {
		return placement.Geometry{}
	}
	return placement.Geometry{
		AutoHideMenuBar: w.AutoHideMenuBar,
		Width:           w.Width,
		Height:          w.Height,
		X:               w.X,
		Y:               w.Y,
	}
}

// IsMaximized reports the stored maximized flag.
func (w *WindowConfig) IsMaximized() bool {
	return w != nil && w.Maximized != nil && *w.Maximized
}

// IsFullscreen reports the stored fullscreen flag.
func (w *WindowConfig) IsFullscreen() bool {
	return w != nil && w.Fullscreen != nil && *w.Fullscreen
}

// Clone returns a deep copy that shares no references with c.
func (c Config) Clone() Config {
	out := c
	if c.MainWindow != nil {
		w := c.MainWindow.clone()
		out.MainWindow = &w
	}
	if c.UserPreferences != nil {
		out.UserPreferences = cloneTree(c.UserPreferences)
	}
	return out
}

func (w *WindowConfig) clone() WindowConfig {
	out := WindowConfig{}
	out.AutoHideMenuBar = clonePtr(w.AutoHideMenuBar)
	out.Maximized = clonePtr(w.Maximized)
	out.Fullscreen = clonePtr(w.Fullscreen)
	out.Width = clonePtr(w.Width)
	out.Height = clonePtr(w.Height)
	out.X = clonePtr(w.X)
	out.Y = clonePtr(w.Y)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// decode converts a raw document tree into the typed view. Values of the wrong
// type are errors; numbers are accepted in any JSON numeric form.
func decode(doc map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(doc); err != nil {
		return Config{}, fmt.Errorf("decode config document: %w", err)
	}
	if cfg.UserPreferences != nil {
		cfg.UserPreferences = cloneTree(cfg.UserPreferences)
	}
	return cfg, nil
}

// parseDocument parses a JSON object. Anything but an object is rejected.
func parseDocument(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("config document is not an object")
	}
	return doc, nil
}

// cloneTree deep-copies a JSON tree. Values are those produced by encoding/json
// so the round trip cannot fail.
func cloneTree(tree map[string]any) map[string]any {
	out, err := toTree(tree)
	if err != nil {
		return map[string]any{}
	}
	return out
}
