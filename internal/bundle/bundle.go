// Package bundle turns a host binary into a named, packaged application:
// the binary is copied, stamped with icon and version resources when it is a
// Windows executable, and the build manifest is appended as a trailer.
package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/user/appshell/internal/buildinfo"
)

var (
	ErrNoStub      = errors.New("host binary not found")
	ErrNoName      = errors.New("application name is required")
	ErrBadName     = errors.New("application name has no usable characters")
	ErrBadDefaults = errors.New("default config must be a JSON object")
	ErrPlatform    = errors.New("unsupported platform")
)

// Platforms lists the targets Generate accepts. Only windows output is
// stamped with resources.
var Platforms = []string{"windows", "linux", "darwin"}

// Options describe one packaging run.
type Options struct {
	// Stub is the host binary to package.
	Stub   string
	Output string

	Name           string
	Version        string
	StorageProfile string

	// DefaultConfigFile is a JSON document compiled in as the config defaults.
	DefaultConfigFile string
	// Icon is an .ico, .png, .jpg or .gif file. Windows targets only.
	Icon string

	Platform string
}

// Result describes the written application.
type Result struct {
	Path     string
	Size     int64
	Stamped  bool
	StampErr error
	Manifest buildinfo.Manifest
}

func Generate(opts Options, log zerolog.Logger) (Result, error) {
	if opts.Name == "" {
		return Result{}, ErrNoName
	}
	safeName := SanitizeFilename(opts.Name)
	if safeName == "" {
		return Result{}, ErrBadName
	}
	if opts.Output == "" {
		opts.Output = "."
	}
	if opts.Platform == "" {
		opts.Platform = "windows"
	}
	opts.Platform = strings.ToLower(opts.Platform)
	if !lo.Contains(Platforms, opts.Platform) {
		return Result{}, fmt.Errorf("%w: %s", ErrPlatform, opts.Platform)
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	if opts.Stub == "" {
		return Result{}, ErrNoStub
	}
	if _, err := os.Stat(opts.Stub); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNoStub, opts.Stub)
	}

	manifest := buildinfo.Manifest{
		Name:           opts.Name,
		Version:        opts.Version,
		StorageProfile: opts.StorageProfile,
	}
	if opts.DefaultConfigFile != "" {
		doc, err := readDefaultConfig(opts.DefaultConfigFile)
		if err != nil {
			return Result{}, err
		}
		manifest.DefaultConfig = doc
	}
	trailer, err := manifest.Encode()
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}
	outName := safeName
	if opts.Platform == "windows" {
		outName += ".exe"
	}
	outPath := filepath.Join(opts.Output, outName)

	if err := copyFile(opts.Stub, outPath); err != nil {
		return Result{}, fmt.Errorf("copy host binary: %w", err)
	}

	res := Result{Path: outPath, Manifest: manifest}

	// Resources rewrite the PE, so they go in before the trailer.
	if opts.Platform == "windows" {
		if err := stampResources(outPath, opts); err != nil {
			log.Warn().Err(err).Str("path", outPath).Msg("resources not stamped")
			res.StampErr = err
		} else {
			res.Stamped = true
		}
	}

	if err := appendFile(outPath, trailer); err != nil {
		return Result{}, fmt.Errorf("append manifest: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return Result{}, fmt.Errorf("stat output: %w", err)
	}
	res.Size = info.Size()
	res.Manifest.Packaged = true

	log.Info().
		Str("path", outPath).
		Str("size", FormatBytes(res.Size)).
		Bool("stamped", res.Stamped).
		Msg("application packaged")
	return res, nil
}

func readDefaultConfig(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read default config: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadDefaults, path)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadDefaults, path)
	}
	return compact.Bytes(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
