package arc

import (
	"errors"
	"fmt"

	"github.com/meigma/arc/internal/header"
)

// Sentinel errors for archive operations.
var (
	// ErrValidation is returned when caller-supplied arguments are invalid:
	// no inputs, an archive path that already exists, unreadable inputs,
	// names the header cannot represent, or a non-positive chunk size.
	ErrValidation = errors.New("arc: invalid arguments")

	// ErrIO is returned when a filesystem operation fails. The underlying
	// error stays in the chain, so errors.Is(err, fs.ErrPermission) works.
	ErrIO = errors.New("arc: i/o failure")

	// ErrShortWrite is returned when a write transfers fewer bytes than
	// requested without reporting an error. It matches ErrIO as well.
	ErrShortWrite = fmt.Errorf("%w: short write", ErrIO)
)

// Errors re-exported from the header codec.
var (
	// ErrFormat is returned when an archive header cannot be parsed or does
	// not match the archive's size.
	ErrFormat = header.ErrFormat

	// ErrSizeOverflow is returned when sizes or offsets exceed supported
	// limits. It matches ErrFormat as well.
	ErrSizeOverflow = header.ErrSizeOverflow
)

// ioError wraps err as an ErrIO for operation op on path.
func ioError(op, path string, err error) error {
	if errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}

// validationError wraps err as an ErrValidation.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrValidation, fmt.Errorf(format, args...))
}
