// Package testutil provides fixtures and fake I/O endpoints for archive tests.
package testutil

import (
	"bytes"
	"io"
	"math/rand" //nolint:gosec // deterministic fixture content
	"os"
	"path/filepath"
	"testing"
)

// File is a fixture file to be written before packing.
type File struct {
	Name    string
	Content []byte
}

// WriteFiles writes files under dir and returns their paths in order.
// Parent directories are created as needed.
func WriteFiles(tb testing.TB, dir string, files []File) []string {
	tb.Helper()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			tb.Fatalf("write %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths
}

// RandomBytes returns n bytes of deterministic binary content.
func RandomBytes(n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic fixture content
	b := make([]byte, n)
	_, _ = rng.Read(b)
	return b
}

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data []byte
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// ShortWriter accepts at most Limit bytes per Write call and reports no
// error for the rest, the way a misbehaving device might.
type ShortWriter struct {
	Limit int
	buf   bytes.Buffer
}

// Write implements io.Writer.
func (w *ShortWriter) Write(p []byte) (int, error) {
	if len(p) > w.Limit {
		p = p[:w.Limit]
	}
	return w.buf.Write(p)
}

// Bytes returns everything accepted so far.
func (w *ShortWriter) Bytes() []byte { return w.buf.Bytes() }

// String returns everything accepted so far.
func (w *ShortWriter) String() string { return w.buf.String() }

// FailingWriter accepts After bytes and then fails every write with Err.
type FailingWriter struct {
	After int
	Err   error
	n     int
}

// Write implements io.Writer.
func (w *FailingWriter) Write(p []byte) (int, error) {
	room := w.After - w.n
	if room >= len(p) {
		w.n += len(p)
		return len(p), nil
	}
	if room < 0 {
		room = 0
	}
	w.n += room
	return room, w.Err
}
