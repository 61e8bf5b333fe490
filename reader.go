package arc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meigma/arc/internal/chunk"
	"github.com/meigma/arc/internal/header"
	"github.com/meigma/arc/internal/ioutil"
	"github.com/meigma/arc/internal/sizing"
)

// readerState tracks where extraction is. Errors abort in the current state.
type readerState uint8

const (
	stateOpened readerState = iota
	stateHeaderCountRead
	stateHeaderScanned
	stateSeeking
	stateWritingEntry
	stateDone
	stateClosed
)

// String returns the string representation of the state.
func (s readerState) String() string {
	switch s {
	case stateOpened:
		return "opened"
	case stateHeaderCountRead:
		return "header count read"
	case stateHeaderScanned:
		return "header scanned"
	case stateSeeking:
		return "seeking"
	case stateWritingEntry:
		return "writing entry"
	case stateDone:
		return "done"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Unpack extracts every entry of the archive at archivePath, in header
// order, below the working directory or the directory set with
// UnpackWithDir. Existing files are truncated and overwritten.
//
// The header is parsed and checked against the archive size before any
// file is created. Entry names must be local relative paths. On failure,
// files extracted so far are left in place.
func Unpack(archivePath string, opts ...UnpackOption) (h *Header, err error) {
	x, err := newExtractor(archivePath, opts)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, ioError("open", archivePath, err)
	}
	x.transition(stateOpened)
	defer func() {
		cerr := f.Close()
		if err != nil {
			x.log().Debug("archive closed after failure", "archive", archivePath, "state", x.state.String())
			return
		}
		if cerr != nil {
			h, err = nil, ioError("close", archivePath, cerr)
			return
		}
		x.transition(stateClosed)
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, ioError("stat", archivePath, err)
	}
	return x.extract(f, info.Size())
}

// Extract is Unpack for an archive of size bytes read from src.
func Extract(src io.ReaderAt, size int64, opts ...UnpackOption) (*Header, error) {
	x, err := newExtractor("archive", opts)
	if err != nil {
		return nil, err
	}
	x.transition(stateOpened)
	return x.extract(src, size)
}

// extractor holds state for one extraction.
type extractor struct {
	cfg     unpackConfig
	archive string
	state   readerState
}

func newExtractor(archive string, opts []UnpackOption) (*extractor, error) {
	cfg := unpackConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.chunkSize < 0:
		return nil, validationError("chunk size %d is negative", cfg.chunkSize)
	case cfg.chunkSize == 0:
		cfg.chunkSize = DefaultChunkSize
	}
	if cfg.dir == "" {
		cfg.dir = "."
	}
	return &extractor{cfg: cfg, archive: archive}, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (x *extractor) log() *slog.Logger {
	if x.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return x.cfg.logger
}

// reportProgress sends a progress event if a callback is configured.
func (x *extractor) reportProgress(stage ProgressStage, path string, bytesDone, bytesTotal uint64, filesDone, filesTotal int) {
	if x.cfg.progress == nil {
		return
	}
	x.cfg.progress(ProgressEvent{
		Stage:      stage,
		Path:       path,
		BytesDone:  bytesDone,
		BytesTotal: bytesTotal,
		FilesDone:  filesDone,
		FilesTotal: filesTotal,
	})
}

func (x *extractor) transition(s readerState, args ...any) {
	x.state = s
	x.log().Debug("reader state", append([]any{"archive", x.archive, "state", s.String()}, args...)...)
}

func (x *extractor) extract(src io.ReaderAt, size int64) (*Header, error) {
	h, err := x.scan(io.NewSectionReader(src, 0, size))
	if err != nil {
		return nil, err
	}
	if err := h.CheckSize(size); err != nil {
		return nil, err
	}
	for i, e := range h.Entries {
		if err := header.ValidateName(e.Name); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrFormat, i, err)
		}
	}

	root, err := os.OpenRoot(x.cfg.dir)
	if err != nil {
		return nil, ioError("open", x.cfg.dir, err)
	}
	defer root.Close()

	x.log().Info("unpacking archive", "archive", x.archive, "dir", x.cfg.dir, "file_count", len(h.Entries), "chunk_size", x.cfg.chunkSize)

	total := h.DataSize()
	var done uint64
	for i, e := range h.Entries {
		offset, err := sizing.ToInt64(e.Offset, ErrSizeOverflow)
		if err != nil {
			return nil, err
		}
		length, err := sizing.ToInt64(e.Size, ErrSizeOverflow)
		if err != nil {
			return nil, err
		}
		x.transition(stateSeeking, "index", i, "entry", e.Name, "offset", offset)
		section := io.NewSectionReader(src, offset, length)

		x.transition(stateWritingEntry, "index", i, "entry", e.Name, "size", e.Size)
		if err := x.writeEntry(root, section, e); err != nil {
			return nil, err
		}
		done += e.Size
		x.reportProgress(StageExtracting, e.Name, done, total, i+1, len(h.Entries))
	}

	x.transition(stateDone)
	x.reportProgress(StageDone, "", done, total, len(h.Entries), len(h.Entries))
	x.log().Info("archive unpacked", "archive", x.archive, "file_count", len(h.Entries), "size", total)
	return h, nil
}

// scan is the first pass: it parses the whole header, surfacing names as
// they are read, and records where content starts.
func (x *extractor) scan(r io.Reader) (*Header, error) {
	s := header.NewScanner(r)
	count, err := s.Count()
	if err != nil {
		return nil, x.headerError(err)
	}
	x.transition(stateHeaderCountRead, "file_count", count)

	entries := make([]Entry, 0, min(count, 1024))
	for {
		e, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, x.headerError(err)
		}
		if x.cfg.nameFunc != nil {
			x.cfg.nameFunc(e.Name)
		}
		entries = append(entries, e)
		x.reportProgress(StageScanning, e.Name, 0, 0, len(entries), int(count)) //nolint:gosec // count < 2^63
	}

	h, err := header.Build(entries, s.Offset())
	if err != nil {
		return nil, err
	}
	x.transition(stateHeaderScanned, "content_start", h.Length, "data_size", h.DataSize())
	return h, nil
}

// headerError keeps format errors as they are and treats anything else as
// a failed read of the archive.
func (x *extractor) headerError(err error) error {
	if errors.Is(err, ErrFormat) {
		return err
	}
	return ioError("read", x.archive, err)
}

// writeEntry creates (or truncates) the entry's file and copies its
// content in chunks.
func (x *extractor) writeEntry(root *os.Root, section io.Reader, e Entry) (err error) {
	name := filepath.FromSlash(e.Name)
	if dir := filepath.Dir(name); dir != "." {
		if err := root.MkdirAll(dir, 0o755); err != nil {
			return ioError("mkdir", dir, err)
		}
	}

	out, err := root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return ioError("create", e.Name, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = ioError("close", e.Name, cerr)
		}
	}()

	n, err := ioutil.CopyChunks(&pathWriter{w: out, path: e.Name}, chunk.NewBuffered(section, e.Size, x.cfg.chunkSize), nil)
	switch {
	case err == nil:
	case errors.Is(err, ErrIO):
		return err
	case errors.Is(err, io.ErrShortWrite):
		return fmt.Errorf("%w: %s: wrote %d of %d bytes", ErrShortWrite, e.Name, n, e.Size)
	default:
		return ioError("read", x.archive, err)
	}
	if n != e.Size {
		return ioError("write", e.Name, fmt.Errorf("wrote %d of %d bytes", n, e.Size))
	}
	return nil
}

// pathWriter tags write errors with the file they happened on.
type pathWriter struct {
	w    io.Writer
	path string
}

func (p *pathWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if err != nil {
		return n, ioError("write", p.path, err)
	}
	return n, nil
}
