package buildinfo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	m := Manifest{
		Name:           "Notes",
		Version:        "1.2.3",
		StorageProfile: "beta",
		DefaultConfig:  json.RawMessage(`{"debug":{"logs":true}}`),
	}
	trailer, err := m.Encode()
	require.NoError(t, err)

	binary := append([]byte("MZ\x90\x00 host binary bytes"), trailer...)
	got, err := Decode(binary)
	require.NoError(t, err)

	assert.Equal(t, "Notes", got.Name)
	assert.Equal(t, "1.2.3", got.Version)
	assert.Equal(t, "beta", got.StorageProfile)
	assert.JSONEq(t, `{"debug":{"logs":true}}`, string(got.DefaultConfig))
	assert.True(t, got.Packaged)
}

func TestDecode_UsesLastMarker(t *testing.T) {
	first, err := Manifest{Name: "old"}.Encode()
	require.NoError(t, err)
	second, err := Manifest{Name: "new"}.Encode()
	require.NoError(t, err)

	got, err := Decode(append(append([]byte("bin"), first...), second...))
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
}

func TestDecode_TrailingPadding(t *testing.T) {
	trailer, err := Manifest{Name: "padded"}.Encode()
	require.NoError(t, err)

	got, err := Decode(append(trailer, 0, 0, '\n'))
	require.NoError(t, err)
	assert.Equal(t, "padded", got.Name)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("plain binary"))
	assert.ErrorIs(t, err, ErrNoManifest)

	_, err = Decode([]byte("bin" + Marker + "{not json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoManifest)
}

func TestReadEmbedded(t *testing.T) {
	trailer, err := Manifest{Name: "Notes", Version: "2.0.0"}.Encode()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "notes.exe")
	require.NoError(t, os.WriteFile(path, append([]byte("bin"), trailer...), 0o755))

	got, err := ReadEmbedded(path)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", got.Version)

	_, err = ReadEmbedded(filepath.Join(t.TempDir(), "missing.exe"))
	assert.Error(t, err)
}

func TestOverlay(t *testing.T) {
	base := Manifest{Name: "appshell", Version: "0.0.0-dev", StorageProfile: "dev"}
	trailer := Manifest{Name: "Notes", DefaultConfig: json.RawMessage(`{}`), Packaged: true}

	got := Overlay(base, trailer)

	assert.Equal(t, "Notes", got.Name)
	assert.Equal(t, "0.0.0-dev", got.Version)
	assert.Equal(t, "dev", got.StorageProfile)
	assert.Equal(t, json.RawMessage(`{}`), got.DefaultConfig)
	assert.True(t, got.Packaged)
}

func TestLinked(t *testing.T) {
	got := Linked()

	assert.Equal(t, Name, got.Name)
	assert.Equal(t, Version, got.Version)
	assert.False(t, got.Packaged)
}
