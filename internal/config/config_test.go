package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arc.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
chunk_size = 4096
mmap = true
short_write = "warn"
log_level = "debug"
log_format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		ChunkSize:  4096,
		MemoryMap:  true,
		ShortWrite: ShortWriteWarn,
		LogLevel:   "debug",
		LogFormat:  FormatJSON,
	}, cfg)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Partial(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "chunk_size = 10\n"))
	require.NoError(t, err)
	want := Default()
	want.ChunkSize = 10
	assert.Equal(t, want, cfg)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		invalid bool
	}{
		{"syntax", "chunk_size = \n", false},
		{"wrong type", "chunk_size = \"big\"\n", false},
		{"unknown key", "chunksize = 10\n", true},
		{"zero chunk size", "chunk_size = 0\n", true},
		{"bad short write", "short_write = \"ignore\"\n", true},
		{"bad level", "log_level = \"loud\"\n", true},
		{"bad format", "log_format = \"xml\"\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
