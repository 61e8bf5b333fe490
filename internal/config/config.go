// Package config loads the arc command's settings from an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Short-write policies.
const (
	ShortWriteFail = "fail"
	ShortWriteWarn = "warn"
)

// ErrInvalid is returned when a setting has an unusable value.
var ErrInvalid = errors.New("config: invalid setting")

// Config holds command settings. Load starts from Default, so keys missing
// from the file keep their default values.
type Config struct {
	// ChunkSize is the number of bytes moved per read/write step.
	ChunkSize int `toml:"chunk_size"`

	// MemoryMap packs inputs through memory-mapped windows.
	MemoryMap bool `toml:"mmap"`

	// ShortWrite is "fail" or "warn".
	ShortWrite string `toml:"short_write"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `toml:"log_format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ChunkSize:  1024,
		ShortWrite: ShortWriteFail,
		LogLevel:   "info",
		LogFormat:  FormatText,
	}
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalid, c.ChunkSize)
	}
	switch c.ShortWrite {
	case ShortWriteFail, ShortWriteWarn:
	default:
		return fmt.Errorf("%w: short_write must be %q or %q, got %q", ErrInvalid, ShortWriteFail, ShortWriteWarn, c.ShortWrite)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: log_format must be %q or %q, got %q", ErrInvalid, FormatText, FormatJSON, c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	return level, nil
}
