package arc

import "log/slog"

// inspectConfig holds configuration for Inspect.
type inspectConfig struct {
	chunkSize int
	digests   bool
	logger    *slog.Logger
	progress  ProgressFunc
}

// InspectOption configures Inspect.
type InspectOption func(*inspectConfig)

// InspectWithDigests computes a sha256 digest of every entry's content.
func InspectWithDigests(enabled bool) InspectOption {
	return func(cfg *inspectConfig) {
		cfg.digests = enabled
	}
}

// InspectWithChunkSize sets the number of bytes read per step while digesting.
func InspectWithChunkSize(n int) InspectOption {
	return func(cfg *inspectConfig) {
		cfg.chunkSize = n
	}
}

// InspectWithLogger sets the logger. A nil logger discards output.
func InspectWithLogger(l *slog.Logger) InspectOption {
	return func(cfg *inspectConfig) {
		cfg.logger = l
	}
}

// InspectWithProgress sets a callback for progress events.
func InspectWithProgress(fn ProgressFunc) InspectOption {
	return func(cfg *inspectConfig) {
		cfg.progress = fn
	}
}
