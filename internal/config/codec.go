package config

import (
	"bytes"
	"encoding/base64"
)

// Codec is the reversible transform applied to the document at rest.
type Codec interface {
	Encode(plain []byte) []byte
	Decode(stored []byte) ([]byte, error)
}

// Base64 hides the document from casual inspection. It is not encryption.
type Base64 struct{}

func (Base64) Encode(plain []byte) []byte {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(plain)))
	base64.StdEncoding.Encode(out, plain)
	return out
}

func (Base64) Decode(stored []byte) ([]byte, error) {
	stored = bytes.TrimSpace(stored)
	out := make([]byte, base64.StdEncoding.DecodedLen(len(stored)))
	n, err := base64.StdEncoding.Decode(out, stored)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// Plain stores the JSON text unchanged.
type Plain struct{}

func (Plain) Encode(plain []byte) []byte { return plain }

func (Plain) Decode(stored []byte) ([]byte, error) { return stored, nil }
