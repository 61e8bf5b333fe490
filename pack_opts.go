package arc

import "log/slog"

// ShortWritePolicy decides what happens when the archive accepts fewer
// bytes than a write requested without reporting an error.
type ShortWritePolicy uint8

const (
	// ShortWriteFail aborts the pack with ErrShortWrite.
	ShortWriteFail ShortWritePolicy = iota

	// ShortWriteWarn logs a warning, counts the event in
	// PackResult.ShortWrites, and keeps going. The archive is corrupt
	// afterwards: the unwritten bytes are simply missing.
	ShortWriteWarn
)

// String returns the string representation of the policy.
func (p ShortWritePolicy) String() string {
	switch p {
	case ShortWriteFail:
		return "fail"
	case ShortWriteWarn:
		return "warn"
	default:
		return "unknown"
	}
}

// packConfig holds configuration for archive creation.
type packConfig struct {
	chunkSize  int
	baseDir    string
	memoryMap  bool
	shortWrite ShortWritePolicy
	logger     *slog.Logger
	progress   ProgressFunc
}

// PackOption configures archive creation.
type PackOption func(*packConfig)

// PackWithChunkSize sets the number of bytes copied per step.
// Zero uses DefaultChunkSize; negative values are rejected with ErrValidation.
func PackWithChunkSize(n int) PackOption {
	return func(cfg *packConfig) {
		cfg.chunkSize = n
	}
}

// PackWithBaseDir resolves input paths against dir instead of the working
// directory. Entry names are still the input paths as given.
func PackWithBaseDir(dir string) PackOption {
	return func(cfg *packConfig) {
		cfg.baseDir = dir
	}
}

// PackWithMemoryMap reads input files through page-aligned memory-mapped
// windows of one chunk each instead of plain reads. Inputs must not shrink
// while they are being packed.
func PackWithMemoryMap(enabled bool) PackOption {
	return func(cfg *packConfig) {
		cfg.memoryMap = enabled
	}
}

// PackWithShortWritePolicy controls how short writes to the archive are
// handled. The default is ShortWriteFail.
func PackWithShortWritePolicy(p ShortWritePolicy) PackOption {
	return func(cfg *packConfig) {
		cfg.shortWrite = p
	}
}

// PackWithLogger sets the logger. A nil logger discards output.
func PackWithLogger(l *slog.Logger) PackOption {
	return func(cfg *packConfig) {
		cfg.logger = l
	}
}

// PackWithProgress sets a callback for progress events.
func PackWithProgress(fn ProgressFunc) PackOption {
	return func(cfg *packConfig) {
		cfg.progress = fn
	}
}
