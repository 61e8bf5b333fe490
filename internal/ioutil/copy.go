package ioutil

import (
	"errors"
	"io"

	"github.com/meigma/arc/internal/chunk"
)

// ShortWriteFunc decides what happens when dst accepts fewer bytes than it
// was given without reporting an error. Returning nil continues the copy
// with the next chunk; the unwritten tail of the chunk is lost.
type ShortWriteFunc func(written, want int) error

// CopyChunks writes every chunk produced by src to dst and returns the
// number of bytes dst accepted.
//
// A write error aborts the copy. A short write without an error is handed
// to onShort; a nil onShort treats it as io.ErrShortWrite.
func CopyChunks(dst io.Writer, src chunk.Source, onShort ShortWriteFunc) (uint64, error) {
	var written uint64
	for {
		b, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			return written, err
		}
		nw, ew := dst.Write(b)
		if nw > 0 {
			//nolint:gosec // nw is guaranteed non-negative by io.Writer contract
			if written > ^uint64(0)-uint64(nw) {
				return written, ErrOverflow
			}
			written += uint64(nw) //nolint:gosec // overflow checked above
		}
		if ew != nil {
			return written, ew
		}
		if nw != len(b) {
			if onShort == nil {
				return written, io.ErrShortWrite
			}
			if err := onShort(nw, len(b)); err != nil {
				return written, err
			}
		}
	}
}
