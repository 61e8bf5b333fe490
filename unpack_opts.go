package arc

import "log/slog"

// unpackConfig holds configuration for extraction.
type unpackConfig struct {
	chunkSize int
	dir       string
	logger    *slog.Logger
	progress  ProgressFunc
	nameFunc  func(name string)
}

// UnpackOption configures Unpack and Extract.
type UnpackOption func(*unpackConfig)

// UnpackWithChunkSize sets the number of bytes copied per step.
// Zero uses DefaultChunkSize; negative values are rejected with ErrValidation.
func UnpackWithChunkSize(n int) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.chunkSize = n
	}
}

// UnpackWithDir extracts entries below dir instead of the working directory.
// The directory must exist.
func UnpackWithDir(dir string) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.dir = dir
	}
}

// UnpackWithLogger sets the logger. A nil logger discards output.
func UnpackWithLogger(l *slog.Logger) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.logger = l
	}
}

// UnpackWithProgress sets a callback for progress events.
func UnpackWithProgress(fn ProgressFunc) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.progress = fn
	}
}

// UnpackWithNameFunc sets a callback that receives each entry name while
// the header is scanned, before anything is extracted.
func UnpackWithNameFunc(fn func(name string)) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.nameFunc = fn
	}
}
