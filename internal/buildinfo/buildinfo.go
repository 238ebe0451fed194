// Package buildinfo holds the constants a build is stamped with: the app
// name and version, the storage profile and the default config document.
//
// Values come from -ldflags first. A packaged binary carries a manifest
// trailer (Marker followed by JSON) appended by shellpack, which overrides them
// and marks the build as packaged.
package buildinfo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Marker separates the host binary from the manifest JSON.
const Marker = "\n--APPSHELL-MANIFEST--\n"

// Set with -ldflags "-X github.com/user/appshell/internal/buildinfo.Name=...".
var (
	Name           = "appshell"
	Version        = "0.0.0-dev"
	StorageProfile = ""
	DefaultConfig  = ""
)

var ErrNoManifest = errors.New("no manifest trailer")

type Manifest struct {
	Name           string          `json:"name"`
	Version        string          `json:"version"`
	StorageProfile string          `json:"storageProfile,omitempty"`
	DefaultConfig  json.RawMessage `json:"defaultConfig,omitempty"`

	// Packaged is set when the manifest was read from a trailer.
	Packaged bool `json:"-"`
}

// Encode returns the trailer bytes for m.
func (m Manifest) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append([]byte(Marker), data...), nil
}

// Decode finds the last trailer in data.
func Decode(data []byte) (Manifest, error) {
	idx := bytes.LastIndex(data, []byte(Marker))
	if idx == -1 {
		return Manifest{}, ErrNoManifest
	}

	payload := bytes.TrimRight(data[idx+len(Marker):], "\x00 \n\r\t")
	var m Manifest
	if err := json.Unmarshal(payload, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	m.Packaged = true
	return m, nil
}

// ReadEmbedded decodes the trailer of the binary at exePath.
func ReadEmbedded(exePath string) (Manifest, error) {
	data, err := os.ReadFile(exePath)
	if err != nil {
		return Manifest{}, fmt.Errorf("read executable: %w", err)
	}
	return Decode(data)
}

// Linked returns the values set at link time.
func Linked() Manifest {
	m := Manifest{
		Name:           Name,
		Version:        Version,
		StorageProfile: StorageProfile,
	}
	if DefaultConfig != "" {
		m.DefaultConfig = json.RawMessage(DefaultConfig)
	}
	return m
}

// Overlay returns base with every non-empty field of trailer applied.
func Overlay(base, trailer Manifest) Manifest {
	out := base
	if trailer.Name != "" {
		out.Name = trailer.Name
	}
	if trailer.Version != "" {
		out.Version = trailer.Version
	}
	if trailer.StorageProfile != "" {
		out.StorageProfile = trailer.StorageProfile
	}
	if len(trailer.DefaultConfig) > 0 {
		out.DefaultConfig = trailer.DefaultConfig
	}
	out.Packaged = out.Packaged || trailer.Packaged
	return out
}

var (
	currentOnce sync.Once
	current     Manifest
)

// Current is the manifest of the running binary.
func Current() Manifest {
	currentOnce.Do(func() {
		current = Linked()
		exe, err := os.Executable()
		if err != nil {
			return
		}
		if trailer, err := ReadEmbedded(exe); err == nil {
			current = Overlay(current, trailer)
		}
	})
	return current
}
