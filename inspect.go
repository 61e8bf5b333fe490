package arc

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/arc/internal/chunk"
	"github.com/meigma/arc/internal/header"
	"github.com/meigma/arc/internal/ioutil"
	"github.com/meigma/arc/internal/sizing"
)

// Inventory describes an archive without extracting it.
type Inventory struct {
	// Header is the decoded header with offsets filled in.
	Header *Header

	// Size is the archive's byte length.
	Size int64

	// Digests holds the sha256 digest of each entry's content, in header
	// order. It is nil unless InspectWithDigests is enabled.
	Digests []digest.Digest
}

// ReadHeader decodes an archive header from r. Reading may continue past
// the header; use Header.Length to locate content.
func ReadHeader(r io.Reader) (*Header, error) {
	h, err := header.Decode(r)
	if err != nil {
		if errors.Is(err, ErrFormat) {
			return nil, err
		}
		return nil, ioError("read", "header", err)
	}
	return h, nil
}

// Inspect reads the header of the archive at archivePath and checks it
// against the archive size. With InspectWithDigests it also streams every
// entry's content in chunks to compute its digest.
func Inspect(archivePath string, opts ...InspectOption) (inv *Inventory, err error) {
	cfg := inspectConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.chunkSize < 0:
		return nil, validationError("chunk size %d is negative", cfg.chunkSize)
	case cfg.chunkSize == 0:
		cfg.chunkSize = DefaultChunkSize
	}
	log := cfg.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, ioError("open", archivePath, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			inv, err = nil, ioError("close", archivePath, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, ioError("stat", archivePath, err)
	}

	h, err := header.Decode(io.NewSectionReader(f, 0, info.Size()))
	if err != nil {
		if errors.Is(err, ErrFormat) {
			return nil, err
		}
		return nil, ioError("read", archivePath, err)
	}
	if err := h.CheckSize(info.Size()); err != nil {
		return nil, err
	}
	log.Debug("archive inspected", "archive", archivePath, "file_count", len(h.Entries), "content_start", h.Length)

	inv = &Inventory{Header: h, Size: info.Size()}
	if !cfg.digests {
		return inv, nil
	}

	inv.Digests = make([]digest.Digest, len(h.Entries))
	total := h.DataSize()
	var done uint64
	for i, e := range h.Entries {
		d, err := entryDigest(f, e, cfg.chunkSize)
		if err != nil {
			return nil, ioError("read", archivePath, err)
		}
		inv.Digests[i] = d
		done += e.Size
		if cfg.progress != nil {
			cfg.progress(ProgressEvent{
				Stage:      StageDigesting,
				Path:       e.Name,
				BytesDone:  done,
				BytesTotal: total,
				FilesDone:  i + 1,
				FilesTotal: len(h.Entries),
			})
		}
		log.Debug("entry digested", "entry", e.Name, "digest", d.String())
	}
	return inv, nil
}

// entryDigest hashes one entry's content block.
func entryDigest(src io.ReaderAt, e Entry, chunkSize int) (digest.Digest, error) {
	offset, err := sizing.ToInt64(e.Offset, ErrSizeOverflow)
	if err != nil {
		return "", err
	}
	length, err := sizing.ToInt64(e.Size, ErrSizeOverflow)
	if err != nil {
		return "", err
	}
	digester := digest.Canonical.Digester()
	section := io.NewSectionReader(src, offset, length)
	if _, err := ioutil.CopyChunks(digester.Hash(), chunk.NewBuffered(section, e.Size, chunkSize), nil); err != nil {
		return "", err
	}
	return digester.Digest(), nil
}
