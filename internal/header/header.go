// Package header encodes and decodes the archive's text header.
//
// The header is a file count on its own line followed by one
// "<name> - <size>" line per entry. Tokens are whitespace delimited, so
// names cannot contain whitespace. Content blocks follow the last line
// immediately, in header order, with no padding.
package header

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/meigma/arc/internal/sizing"
)

// Separator is the standalone token between an entry's name and size.
const Separator = "-"

// MaxLineLength bounds a single header line, terminator included.
const MaxLineLength = 16 << 10

// Sentinel errors for header encoding and decoding.
var (
	// ErrFormat is returned when a header cannot be parsed.
	ErrFormat = errors.New("arc: malformed archive")

	// ErrInvalidName is returned when a name cannot be represented in a header.
	ErrInvalidName = errors.New("arc: invalid entry name")

	// ErrSizeOverflow is returned when sizes or offsets exceed supported limits.
	ErrSizeOverflow = fmt.Errorf("%w: size overflow", ErrFormat)
)

// Entry is one packed file's header record.
type Entry struct {
	// Name is the file name as recorded in the header.
	Name string

	// Size is the content length in bytes.
	Size uint64

	// Offset is the absolute archive offset of the content. It is derived
	// from the header length and the sizes of the preceding entries.
	Offset uint64
}

// Header is a decoded archive header.
type Header struct {
	// Entries are in header order, which is also content order.
	Entries []Entry

	// Length is the header's byte length, which is where content starts.
	Length int64
}

// DataSize returns the sum of all entry sizes.
func (h *Header) DataSize() uint64 {
	var total uint64
	for _, e := range h.Entries {
		total += e.Size
	}
	return total
}

// ArchiveSize returns the byte length a well-formed archive with this
// header must have.
func (h *Header) ArchiveSize() uint64 {
	return uint64(h.Length) + h.DataSize() //nolint:gosec // Length is never negative
}

// CheckSize verifies that an archive of actual bytes holds exactly the
// content the header declares.
func (h *Header) CheckSize(actual int64) error {
	want := h.ArchiveSize()
	switch {
	case actual < 0 || uint64(actual) < want:
		return fmt.Errorf("%w: archive truncated: header declares %d bytes, archive has %d", ErrFormat, want, actual)
	case uint64(actual) > want:
		return fmt.Errorf("%w: %d trailing bytes after content", ErrFormat, uint64(actual)-want)
	}
	return nil
}

// ValidateName reports whether name can be written to a header and later
// extracted below a destination directory.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	}
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q is not a local relative path", ErrInvalidName, name)
	}
	return nil
}

// Build returns a header for entries whose header is length bytes long,
// filling in every entry's offset.
func Build(entries []Entry, length int64) (*Header, error) {
	h := &Header{Entries: entries, Length: length}
	if err := assignOffsets(h.Entries, h.Length); err != nil {
		return nil, err
	}
	return h, nil
}

// assignOffsets fills in Offset for every entry, starting at the header length.
func assignOffsets(entries []Entry, length int64) error {
	offset, err := sizing.FromInt64(length, ErrSizeOverflow)
	if err != nil {
		return err
	}
	for i := range entries {
		entries[i].Offset = offset
		offset, err = sizing.Sum(ErrSizeOverflow, offset, entries[i].Size)
		if err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, entries[i].Name, err)
		}
	}
	return nil
}
