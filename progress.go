package arc

// ProgressEvent represents a progress update during pack, unpack, or inspect operations.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the entry currently being processed, if applicable.
	Path string

	// BytesDone is the number of content bytes completed so far.
	BytesDone uint64

	// BytesTotal is the total number of content bytes.
	// Zero indicates the total is unknown.
	BytesTotal uint64

	// FilesDone is the number of entries completed.
	FilesDone int

	// FilesTotal is the total number of entries.
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages for pack, unpack, and inspect operations.
const (
	// StageStatting indicates input sizes are being collected.
	StageStatting ProgressStage = iota

	// StagePacking indicates file contents are being written to the archive.
	StagePacking

	// StageScanning indicates the archive header is being read. One event
	// is sent per entry name as it is parsed.
	StageScanning

	// StageExtracting indicates entries are being written out.
	StageExtracting

	// StageDigesting indicates entry contents are being hashed.
	StageDigesting

	// StageDone indicates the operation completed.
	StageDone
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageStatting:
		return "statting"
	case StagePacking:
		return "packing"
	case StageScanning:
		return "scanning"
	case StageExtracting:
		return "extracting"
	case StageDigesting:
		return "digesting"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Operations are single threaded; the callback is never called concurrently.
type ProgressFunc func(ProgressEvent)
