// Package config holds the engine settings and loads them from bfvm.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "bfvm.toml"

const (
	DefaultMemorySize = 30000
	DefaultOptimize   = true
	DefaultDebug      = false

	// MaxMemorySize bounds the tape so a bad setting is an error rather
	// than a failed allocation.
	MaxMemorySize = 1 << 30
)

// Config is an immutable snapshot consumed when an engine is built.
type Config struct {
	MemorySize int  `toml:"memory-size"`
	Optimize   bool `toml:"optimize"`
	Debug      bool `toml:"debug"`
}

// Default returns the stock settings: 30000 cells, optimizer on, debug off.
func Default() Config {
	return Config{
		MemorySize: DefaultMemorySize,
		Optimize:   DefaultOptimize,
		Debug:      DefaultDebug,
	}
}

// Validate checks the memory size is positive and at most MaxMemorySize.
func (c Config) Validate() error {
	if c.MemorySize <= 0 {
		return fmt.Errorf("memory size must be positive, got %d", c.MemorySize)
	}
	if c.MemorySize > MaxMemorySize {
		return fmt.Errorf("memory size %d exceeds maximum %d", c.MemorySize, MaxMemorySize)
	}
	return nil
}

// Parse decodes TOML text over the defaults. Keys that are not part of
// Config are rejected.
func Parse(data string) (Config, error) {
	c := Default()
	md, err := toml.Decode(data, &c)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir looking for bfvm.toml. It returns the
// defaults and an empty path when no file is found.
func FindAndLoad(startDir string) (Config, string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Config{}, "", fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			c, err := Load(path)
			return c, path, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), "", nil
		}
		dir = parent
	}
}
