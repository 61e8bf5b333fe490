package arc

import "github.com/meigma/arc/internal/header"

// Re-export types from header to keep the codec internal.
type (
	// Entry is one packed file's header record: its name, its size, and
	// the derived offset of its content within the archive.
	Entry = header.Entry

	// Header is a decoded archive header. Length is the header's byte
	// length, which is also the offset where content starts.
	Header = header.Header
)

// DefaultChunkSize is the number of bytes moved per read/write step.
const DefaultChunkSize = 1024
