// Package chunk provides bounded-window sequential readers that yield a
// file's content as a finite sequence of fixed-size chunks.
//
// A Source holds at most one chunk in memory (plus, for mapped sources, the
// page alignment slack in front of it) regardless of the file size. Sources
// are not restartable: once a chunk has been consumed, the only way back is
// to build a new Source at a recomputed offset.
package chunk

import (
	"errors"
	"fmt"
	"io"
)

// DefaultSize is the chunk size used when none (or a non-positive one) is given.
const DefaultSize = 1024

// ErrShortRead is returned when the underlying data ends before the
// declared size has been produced.
var ErrShortRead = errors.New("chunk: short read")

// Source yields a file's content chunk by chunk.
type Source interface {
	// Next returns the next chunk. The returned slice is only valid until
	// the following call to Next or Close. Next returns io.EOF once the
	// declared size has been produced.
	Next() ([]byte, error)

	// Close releases any resources held by the source. It does not close
	// the underlying file.
	Close() error
}

// normalize returns a usable chunk size.
func normalize(chunkSize int) int {
	if chunkSize <= 0 {
		return DefaultSize
	}
	return chunkSize
}

// nextLength returns the length of the chunk starting at offset.
func nextLength(size, offset uint64, chunkSize int) int {
	left := size - offset
	if left > uint64(chunkSize) {
		return chunkSize
	}
	return int(left) //nolint:gosec // left <= chunkSize, which is an int
}

// bufferedSource reads chunks into a single reusable buffer.
type bufferedSource struct {
	r      io.Reader
	buf    []byte
	size   uint64
	offset uint64
}

// NewBuffered returns a Source that reads exactly size bytes from r using
// plain reads into one chunk-sized buffer.
func NewBuffered(r io.Reader, size uint64, chunkSize int) Source {
	chunkSize = normalize(chunkSize)
	bufSize := chunkSize
	if size < uint64(bufSize) {
		bufSize = int(size) //nolint:gosec // size < chunkSize, which is an int
	}
	return &bufferedSource{
		r:    r,
		buf:  make([]byte, bufSize),
		size: size,
	}
}

func (s *bufferedSource) Next() ([]byte, error) {
	if s.offset >= s.size {
		return nil, io.EOF
	}
	length := nextLength(s.size, s.offset, len(s.buf))
	n, err := io.ReadFull(s.r, s.buf[:length])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: got %d of %d bytes at offset %d", ErrShortRead, n, length, s.offset)
		}
		return nil, err
	}
	s.offset += uint64(length) //nolint:gosec // length is positive
	return s.buf[:length], nil
}

func (s *bufferedSource) Close() error {
	s.buf = nil
	return nil
}
