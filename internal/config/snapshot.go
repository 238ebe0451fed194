package config

import "encoding/json"

// Snapshot is an immutable view of the configuration at one point in time.
// A new Snapshot replaces the old one on every write; existing holders keep
// seeing the old values.
type Snapshot struct {
	cfg Config
}

// Config returns a deep copy; mutating it does not affect the snapshot.
func (s *Snapshot) Config() Config {
	return s.cfg.Clone()
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.cfg)
}
