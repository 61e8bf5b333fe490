package chunk

import (
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// mappedSource maps one chunk-sized window of the file at a time.
type mappedSource struct {
	f        *os.File
	size     uint64
	offset   uint64
	chunk    int
	pageSize int64
	region   mmap.MMap
}

// NewMapped returns a Source that memory-maps f one window at a time.
//
// Mapping offsets must be page aligned, so each window starts at the page
// boundary at or before the chunk and the chunk is sliced out of it. The
// file must not shrink while the source is in use.
func NewMapped(f *os.File, size uint64, chunkSize int) Source {
	return &mappedSource{
		f:        f,
		size:     size,
		chunk:    normalize(chunkSize),
		pageSize: int64(os.Getpagesize()),
	}
}

func (s *mappedSource) Next() ([]byte, error) {
	if err := s.unmap(); err != nil {
		return nil, err
	}
	if s.offset >= s.size {
		return nil, io.EOF
	}

	length := nextLength(s.size, s.offset, s.chunk)
	off := int64(s.offset) //nolint:gosec // callers bound size to MaxInt64
	pageOff := off - off%s.pageSize
	delta := int(off - pageOff)

	region, err := mmap.MapRegion(s.f, delta+length, mmap.RDONLY, 0, pageOff)
	if err != nil {
		return nil, fmt.Errorf("map %s at offset %d: %w", s.f.Name(), pageOff, err)
	}
	s.region = region
	s.offset += uint64(length) //nolint:gosec // length is positive
	return region[delta : delta+length], nil
}

func (s *mappedSource) Close() error {
	return s.unmap()
}

func (s *mappedSource) unmap() error {
	if s.region == nil {
		return nil
	}
	region := s.region
	s.region = nil
	if err := region.Unmap(); err != nil {
		return fmt.Errorf("unmap %s: %w", s.f.Name(), err)
	}
	return nil
}
