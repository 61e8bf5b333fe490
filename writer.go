package arc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/arc/internal/chunk"
	"github.com/meigma/arc/internal/header"
	"github.com/meigma/arc/internal/ioutil"
)

// PackResult describes an archive written by Pack or Write.
type PackResult struct {
	// Header is the header that was written, with offsets filled in.
	Header *Header

	// Size is the number of bytes the archive accepted.
	Size uint64

	// Digest is the sha256 digest of the bytes the archive accepted.
	Digest digest.Digest

	// ShortWrites counts short writes tolerated under ShortWriteWarn.
	ShortWrites int
}

// Pack creates a new archive at archivePath holding inputs in order.
//
// Each input is recorded under EntryName(input), which must not contain
// whitespace. Inputs are resolved against the directory set with
// PackWithBaseDir, or the working directory.
// The archive path must not exist yet; if it does, Pack fails with
// ErrValidation before writing anything.
//
// On failure the archive is left on disk in whatever state it reached.
func Pack(archivePath string, inputs []string, opts ...PackOption) (res *PackResult, err error) {
	w, err := newWriter(archivePath, opts)
	if err != nil {
		return nil, err
	}
	entries, err := w.entries(inputs)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(archivePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, validationError("archive %s already exists", archivePath)
		}
		return nil, ioError("create", archivePath, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			res, err = nil, ioError("close", archivePath, cerr)
		}
	}()

	return w.write(f, entries)
}

// Write streams an archive holding inputs to dst. Names follow the same
// rules as Pack.
func Write(dst io.Writer, inputs []string, opts ...PackOption) (*PackResult, error) {
	w, err := newWriter("archive", opts)
	if err != nil {
		return nil, err
	}
	entries, err := w.entries(inputs)
	if err != nil {
		return nil, err
	}
	return w.write(dst, entries)
}

// writer holds state for archive creation.
type writer struct {
	cfg     packConfig
	archive string
	result  PackResult
}

func newWriter(archive string, opts []PackOption) (*writer, error) {
	cfg := packConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.chunkSize < 0:
		return nil, validationError("chunk size %d is negative", cfg.chunkSize)
	case cfg.chunkSize == 0:
		cfg.chunkSize = DefaultChunkSize
	}
	return &writer{cfg: cfg, archive: archive}, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (w *writer) log() *slog.Logger {
	if w.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.cfg.logger
}

// reportProgress sends a progress event if a callback is configured.
func (w *writer) reportProgress(stage ProgressStage, path string, bytesDone, bytesTotal uint64, filesDone, filesTotal int) {
	if w.cfg.progress == nil {
		return
	}
	w.cfg.progress(ProgressEvent{
		Stage:      stage,
		Path:       path,
		BytesDone:  bytesDone,
		BytesTotal: bytesTotal,
		FilesDone:  filesDone,
		FilesTotal: filesTotal,
	})
}

// pending pairs a header entry with the file it is read from.
type pending struct {
	path  string
	entry Entry
}

// entries checks input names before anything is opened or created.
func (w *writer) entries(inputs []string) ([]pending, error) {
	if len(inputs) == 0 {
		return nil, validationError("no input files")
	}
	out := make([]pending, len(inputs))
	for i, path := range inputs {
		name := EntryName(path)
		if err := header.ValidateName(name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		out[i] = pending{path: path, entry: Entry{Name: name}}
	}
	return out, nil
}

// EntryName returns the name an input path is recorded under: the cleaned,
// slash-separated path, or just its last element when the path is absolute
// or leaves the working directory.
func EntryName(path string) string {
	clean := filepath.Clean(path)
	if !filepath.IsLocal(clean) {
		clean = filepath.Base(clean)
	}
	return filepath.ToSlash(clean)
}

func (w *writer) write(dst io.Writer, files []pending) (*PackResult, error) {
	w.log().Info("packing archive", "archive", w.archive, "file_count", len(files), "chunk_size", w.cfg.chunkSize, "mmap", w.cfg.memoryMap)

	for i := range files {
		w.reportProgress(StageStatting, files[i].entry.Name, 0, 0, i, len(files))
		info, err := os.Stat(w.inputPath(files[i].path))
		if err != nil {
			return nil, ioError("stat", files[i].path, err)
		}
		if !info.Mode().IsRegular() {
			return nil, validationError("%s is not a regular file", files[i].path)
		}
		files[i].entry.Size = uint64(info.Size()) //nolint:gosec // regular file sizes are non-negative
	}

	entries := make([]Entry, len(files))
	for i := range files {
		entries[i] = files[i].entry
	}

	digester := digest.Canonical.Digester()
	out := &archiveWriter{dst: dst, hash: digester.Hash(), archive: w.archive}

	h, err := w.writeHeader(out, entries)
	if err != nil {
		return nil, err
	}
	w.result.Header = h

	total := h.DataSize()
	var done uint64
	for i, f := range files {
		e := h.Entries[i]
		if err := w.writeEntry(out, f.path, e); err != nil {
			return nil, err
		}
		done += e.Size
		w.reportProgress(StagePacking, e.Name, done, total, i+1, len(files))
		w.log().Info("file added", "name", e.Name, "size", e.Size)
	}

	w.result.Size = out.n
	w.result.Digest = digester.Digest()
	w.reportProgress(StageDone, "", done, total, len(files), len(files))
	w.log().Info("archive packed",
		"archive", w.archive,
		"file_count", len(files),
		"size", w.result.Size,
		"digest", w.result.Digest.String(),
		"short_writes", w.result.ShortWrites,
	)
	return &w.result, nil
}

// inputPath is where an input is read from.
func (w *writer) inputPath(path string) string {
	if w.cfg.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.cfg.baseDir, path)
}

// writeHeader encodes the header in memory and writes it to the archive.
func (w *writer) writeHeader(out *archiveWriter, entries []Entry) (*Header, error) {
	hb := bytes.NewBuffer(make([]byte, 0, header.Length(entries)))
	h, err := header.Encode(hb, entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	w.log().Debug("header encoded", "length", h.Length, "data_size", h.DataSize())

	n, err := out.Write(hb.Bytes())
	if err != nil {
		return nil, err
	}
	if n != hb.Len() {
		if err := w.shortWrite("(header)", n, hb.Len()); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// writeEntry streams one input file into the archive in chunks.
func (w *writer) writeEntry(out *archiveWriter, path string, e Entry) (err error) {
	f, err := os.Open(w.inputPath(path))
	if err != nil {
		return ioError("open", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ioError("close", path, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return ioError("stat", path, err)
	}
	if uint64(info.Size()) != e.Size { //nolint:gosec // regular file sizes are non-negative
		return ioError("read", path, fmt.Errorf("file size changed during packing: expected %d, got %d", e.Size, info.Size()))
	}

	var src chunk.Source
	if w.cfg.memoryMap {
		src = chunk.NewMapped(f, e.Size, w.cfg.chunkSize)
	} else {
		src = chunk.NewBuffered(f, e.Size, w.cfg.chunkSize)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = ioError("release", path, cerr)
		}
	}()

	_, err = ioutil.CopyChunks(out, src, func(written, want int) error {
		return w.shortWrite(e.Name, written, want)
	})
	if err != nil {
		return ioError("read", path, err)
	}
	return nil
}

// shortWrite applies the short write policy.
func (w *writer) shortWrite(name string, written, want int) error {
	if w.cfg.shortWrite == ShortWriteWarn {
		w.result.ShortWrites++
		w.log().Warn("not all data was written to the archive",
			"archive", w.archive,
			"entry", name,
			"written", written,
			"want", want,
		)
		return nil
	}
	return fmt.Errorf("%w: %s: entry %s: wrote %d of %d bytes", ErrShortWrite, w.archive, name, written, want)
}

// archiveWriter counts and hashes exactly the bytes the archive accepted.
type archiveWriter struct {
	dst     io.Writer
	hash    io.Writer
	archive string
	n       uint64
}

func (a *archiveWriter) Write(p []byte) (int, error) {
	n, err := a.dst.Write(p)
	if n > 0 {
		_, _ = a.hash.Write(p[:n])
		a.n += uint64(n) //nolint:gosec // n is guaranteed non-negative by io.Writer contract
	}
	if err != nil {
		return n, ioError("write", a.archive, err)
	}
	return n, nil
}
