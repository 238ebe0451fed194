package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"

	"dario.cat/mergo"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Store is the single writer of the settings document. It keeps the full JSON
// tree so fields it does not know about survive a read-modify-write cycle.
// It does not lock the file; other processes writing the same path will race.
type Store struct {
	fs       afero.Fs
	path     string
	defaults []byte
	profile  string
	codec    Codec
	log      zerolog.Logger

	mu   sync.Mutex
	doc  map[string]any
	snap atomic.Pointer[Snapshot]
}

type Option func(*Store)

// WithCodec replaces the at-rest transform. The default is Base64.
func WithCodec(c Codec) Option {
	return func(s *Store) { s.codec = c }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithStorageProfile sets the build-time storage profile. It always wins over
// whatever the file says.
func WithStorageProfile(profile string) Option {
	return func(s *Store) { s.profile = profile }
}

// NewStore creates a store for path. Until Load is called it serves the
// defaults without touching the filesystem.
func NewStore(fsys afero.Fs, path string, defaults []byte, opts ...Option) *Store {
	s := &Store{
		fs:       fsys,
		path:     path,
		defaults: defaults,
		codec:    Base64{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "config").Logger()

	doc := s.defaultDocument()
	cfg, err := decode(doc)
	if err != nil {
		s.log.Error().Err(err).Msg("compiled-in defaults do not decode, using built-in document")
		s.defaults = []byte(DefaultDocument)
		doc = s.defaultDocument()
		cfg, _ = decode(doc)
	}
	s.doc = doc
	s.publish(cfg)
	return s
}

// Path returns the location of the config file.
func (s *Store) Path() string { return s.path }

// Load reads the persisted document and merges it over the defaults. It never
// fails: a missing, unreadable or malformed file yields the defaults.
func (s *Store) Load() Config {
	doc, cfg := s.read()

	s.mu.Lock()
	s.doc = doc
	s.publish(cfg)
	s.mu.Unlock()

	return cfg.Clone()
}

// Snapshot returns the current immutable view.
func (s *Store) Snapshot() *Snapshot { return s.snap.Load() }

// Config returns a deep copy of the current configuration.
func (s *Store) Config() Config { return s.Snapshot().Config() }

// Persist writes the whole in-memory document.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// SetWindowConfig deep-merges patch into the stored main window state and persists.
func (s *Store) SetWindowConfig(patch WindowConfig) error {
	tree, err := toTree(patch)
	if err != nil {
		return fmt.Errorf("encode window config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mergeSection("mainWindow", tree); err != nil {
		return err
	}
	return s.persistLocked()
}

// SetUserPreferences deep-merges patch into the stored preferences and persists.
func (s *Store) SetUserPreferences(patch map[string]any) error {
	tree, err := toTree(patch)
	if err != nil {
		return fmt.Errorf("encode user preferences: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mergeSection("userPreferences", tree); err != nil {
		return err
	}
	return s.persistLocked()
}

// Reset deletes the config file and goes back to the defaults.
func (s *Store) Reset() error {
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove config: %w", err)
	}
	s.Load()
	return nil
}

func (s *Store) read() (map[string]any, Config) {
	doc := s.defaultDocument()

	persisted, err := s.readPersisted()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Debug().Str("path", s.path).Msg("no config file, using defaults")
		return s.fallback()
	case err != nil:
		s.log.Warn().Err(err).Str("path", s.path).Msg("unreadable config file, using defaults")
		return s.fallback()
	case persisted == nil:
		return s.fallback()
	}

	if err := mergo.Merge(&doc, persisted, mergo.WithOverride); err != nil {
		s.log.Warn().Err(err).Msg("merge persisted config, using defaults")
		return s.fallback()
	}
	s.applyProfile(doc)

	cfg, err := decode(doc)
	if err != nil {
		s.log.Warn().Err(err).Msg("persisted config has invalid values, using defaults")
		return s.fallback()
	}
	return doc, cfg
}

func (s *Store) fallback() (map[string]any, Config) {
	doc := s.defaultDocument()
	s.applyProfile(doc)
	cfg, _ := decode(doc)
	return doc, cfg
}

// readPersisted returns nil without error for an empty file.
func (s *Store) readPersisted() (map[string]any, error) {
	stored, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	plain, err := s.codec.Decode(stored)
	if err != nil {
		return nil, fmt.Errorf("decode config bytes: %w", err)
	}
	doc, err := parseDocument(plain)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return doc, nil
}

func (s *Store) defaultDocument() map[string]any {
	doc, err := parseDocument(s.defaults)
	if err != nil {
		doc, _ = parseDocument([]byte(DefaultDocument))
	}
	return doc
}

func (s *Store) applyProfile(doc map[string]any) {
	if s.profile == "" {
		delete(doc, "storageProfile")
		return
	}
	doc["storageProfile"] = s.profile
}

func (s *Store) mergeSection(key string, patch map[string]any) error {
	section, ok := s.doc[key].(map[string]any)
	if !ok {
		section = map[string]any{}
	}
	if err := mergo.Merge(&section, patch, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge %s: %w", key, err)
	}
	s.doc[key] = section
	return nil
}

func (s *Store) persistLocked() error {
	cfg, err := decode(s.doc)
	if err != nil {
		return err
	}
	plain, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	s.publish(cfg)

	if err := s.write(s.codec.Encode(plain)); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	s.log.Debug().Str("path", s.path).Int("bytes", len(plain)).Msg("config persisted")
	return nil
}

// write replaces the file through a temp file in the same directory so a
// crash mid-write leaves the previous document intact.
func (s *Store) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := afero.TempFile(s.fs, dir, FileName+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmp.Name())
		return err
	}
	if err := s.fs.Rename(tmp.Name(), s.path); err != nil {
		s.fs.Remove(tmp.Name())
		return err
	}
	return nil
}

func (s *Store) publish(cfg Config) {
	s.snap.Store(&Snapshot{cfg: cfg})
}

// toTree converts v into a fresh JSON tree owned by the caller.
func toTree(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tree := map[string]any{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
