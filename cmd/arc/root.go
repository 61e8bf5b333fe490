package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/meigma/arc"
	"github.com/meigma/arc/internal/config"
)

// flagValues holds the raw persistent flag values. They only override the
// config file when set explicitly.
type flagValues struct {
	configPath string
	chunkSize  int
	memoryMap  bool
	shortWrite string
	logLevel   string
	logFormat  string
}

// app is the state shared by all subcommands.
type app struct {
	flags  flagValues
	cfg    config.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "arc",
		Short: "Pack files into an uncompressed archive and unpack them again",
		Long: `arc stores files in a simple container: a text header listing each
file's name and size, followed by the raw file contents in the same order.

Nothing is compressed or encrypted, and no metadata besides names and sizes
is kept.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags())
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	def := config.Default()
	flags := cmd.PersistentFlags()
	flags.StringVar(&a.flags.configPath, "config", "", "TOML config file")
	flags.IntVar(&a.flags.chunkSize, "chunk-size", def.ChunkSize, "bytes copied per read/write step")
	flags.BoolVar(&a.flags.memoryMap, "mmap", def.MemoryMap, "read inputs through memory-mapped windows when packing")
	flags.StringVar(&a.flags.shortWrite, "short-write", def.ShortWrite, `short write handling: "fail" or "warn"`)
	flags.StringVar(&a.flags.logLevel, "log-level", def.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&a.flags.logFormat, "log-format", def.LogFormat, `log format: "text" or "json"`)

	cmd.AddCommand(newPackCmd(a), newUnpackCmd(a), newListCmd(a))
	return cmd
}

// setup loads the config file, applies explicitly set flags on top, and
// builds the logger.
func (a *app) setup(flags *pflag.FlagSet) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", arc.ErrValidation, err)
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = a.flags.chunkSize
	}
	if flags.Changed("mmap") {
		cfg.MemoryMap = a.flags.memoryMap
	}
	if flags.Changed("short-write") {
		cfg.ShortWrite = a.flags.shortWrite
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", arc.ErrValidation, err)
	}
	a.cfg = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == config.FormatJSON {
		h = slog.NewJSONHandler(a.stderr, opts)
	} else {
		h = slog.NewTextHandler(a.stderr, opts)
	}
	a.log = slog.New(h)
	return nil
}

func (a *app) shortWritePolicy() arc.ShortWritePolicy {
	if a.cfg.ShortWrite == config.ShortWriteWarn {
		return arc.ShortWriteWarn
	}
	return arc.ShortWriteFail
}
