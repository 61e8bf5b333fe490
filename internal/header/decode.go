package header

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Scanner reads a header one line at a time and tracks exactly how many
// header bytes it has consumed.
//
// The underlying reader may be read past the header because of buffering;
// callers locate content by Offset, never by the reader's position.
type Scanner struct {
	br       *bufio.Reader
	consumed int64
	count    uint64
	read     uint64
	counted  bool
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{br: bufio.NewReaderSize(r, 4096)}
}

// Count reads and returns the file count. It must be called once, before Next.
func (s *Scanner) Count() (uint64, error) {
	if s.counted {
		return s.count, nil
	}
	line, err := s.line()
	if err != nil {
		return 0, fmt.Errorf("file count: %w", err)
	}
	fields := strings.Fields(line)
	if len(fields) != 1 {
		return 0, fmt.Errorf("%w: file count line has %d fields", ErrFormat, len(fields))
	}
	count, err := strconv.ParseUint(fields[0], 10, 63)
	if err != nil {
		return 0, fmt.Errorf("%w: file count %q is not a non-negative integer", ErrFormat, fields[0])
	}
	s.count = count
	s.counted = true
	return count, nil
}

// Next reads the next entry line. Offset is left zero. Next returns
// io.EOF once Count entries have been read.
func (s *Scanner) Next() (Entry, error) {
	if !s.counted {
		if _, err := s.Count(); err != nil {
			return Entry{}, err
		}
	}
	if s.read >= s.count {
		return Entry{}, io.EOF
	}
	index := s.read
	line, err := s.line()
	if err != nil {
		return Entry{}, fmt.Errorf("entry %d: %w", index, err)
	}
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Entry{}, fmt.Errorf("%w: entry %d has %d fields, want name %s size", ErrFormat, index, len(fields), Separator)
	}
	if fields[1] != Separator {
		return Entry{}, fmt.Errorf("%w: entry %d: separator is %q, want %q", ErrFormat, index, fields[1], Separator)
	}
	size, err := strconv.ParseUint(fields[2], 10, 63)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: entry %d: size %q is not a non-negative integer", ErrFormat, index, fields[2])
	}
	s.read++
	return Entry{Name: fields[0], Size: size}, nil
}

// Offset returns the number of header bytes consumed so far. After the
// last entry has been read it is the content start.
func (s *Scanner) Offset() int64 {
	return s.consumed
}

// line reads one newline-terminated line, without its terminator.
func (s *Scanner) line() (string, error) {
	var buf []byte
	for {
		frag, err := s.br.ReadSlice('\n')
		buf = append(buf, frag...)
		if len(buf) > MaxLineLength {
			return "", fmt.Errorf("%w: header line longer than %d bytes", ErrFormat, MaxLineLength)
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: unexpected end of header", ErrFormat)
		}
		return "", err
	}
	s.consumed += int64(len(buf))
	return string(bytes.TrimSuffix(buf, []byte{'\n'})), nil
}

// Decode reads a complete header from r and fills in every entry's offset.
func Decode(r io.Reader) (*Header, error) {
	return DecodeFunc(r, nil)
}

// DecodeFunc is Decode with a callback invoked for each entry as soon as
// its line has been parsed, before offsets are known. A callback error
// aborts decoding.
func DecodeFunc(r io.Reader, fn func(index int, e Entry) error) (*Header, error) {
	s := NewScanner(r)
	count, err := s.Count()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, min(count, 1024))
	for {
		e, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if fn != nil {
			if err := fn(len(entries), e); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}

	return Build(entries, s.Offset())
}
