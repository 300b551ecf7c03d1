// Package config loads the optional `cilantro.toml` project manifest: the
// library path, output directory, and memory-reservation override a CLI
// invocation can pick up instead of relying on flags for everything.
//
// Grounded on internal/tqw's TOML-based world file loading
// (toml.Unmarshal over a typed struct with `toml:"..."` field tags) and
// server/config.go's pattern of a Validate method guarding defaulted,
// user-editable settings before they're acted on.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is the manifest file a CLI looks for in its working
// directory when no explicit path is given.
const DefaultFileName = "cilantro.toml"

// DefaultOutDir matches spec.md §6's "out/prog.wat" output path.
const DefaultOutDir = "out"

// DefaultLibraryPath is the library file loaded by C9 when the manifest
// does not override it.
const DefaultLibraryPath = "lib.wat"

// Config is the parsed contents of a cilantro.toml manifest.
type Config struct {
	// Library is the path to the standard library WAT annotation file, C9
	// reads signatures from.
	Library string `toml:"library"`

	// OutDir is the directory the compiled `.wat` module is written to.
	OutDir string `toml:"out_dir"`

	// ReserveBytes overrides the library's own `;;@reserve` directive (or
	// stdlib.DefaultReservedBytes) when non-zero, letting a project pin a
	// specific linear-memory prelude size regardless of which library it
	// links against.
	ReserveBytes int `toml:"reserve_bytes"`
}

// Default returns a Config with every field defaulted, suitable for a
// project with no cilantro.toml of its own.
func Default() Config {
	return Config{Library: DefaultLibraryPath, OutDir: DefaultOutDir}
}

// Load reads and parses the manifest at path. A missing file is not an
// error: it returns Default() unchanged, since the manifest is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Library == "" {
		cfg.Library = DefaultLibraryPath
	}
	if cfg.OutDir == "" {
		cfg.OutDir = DefaultOutDir
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports whether cfg's fields are well-formed enough to act on.
func (cfg Config) Validate() error {
	if cfg.Library == "" {
		return fmt.Errorf("library path must not be empty")
	}
	if cfg.OutDir == "" {
		return fmt.Errorf("out_dir must not be empty")
	}
	if cfg.ReserveBytes < 0 {
		return fmt.Errorf("reserve_bytes must not be negative, got %d", cfg.ReserveBytes)
	}
	return nil
}
