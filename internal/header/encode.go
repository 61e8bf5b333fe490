package header

import (
	"bufio"
	"io"
	"strconv"

	"github.com/meigma/arc/internal/ioutil"
)

// Length returns the byte length of the header Encode would write for entries.
func Length(entries []Entry) int64 {
	n := len(strconv.Itoa(len(entries))) + 1
	for _, e := range entries {
		n += len(e.Name) + len(" "+Separator+" ") + len(strconv.FormatUint(e.Size, 10)) + 1
	}
	return int64(n)
}

// Encode validates every name and writes the header for entries to w.
// Nothing is written when a name is invalid. On success the entries'
// offsets are filled in and the header is returned.
func Encode(w io.Writer, entries []Entry) (*Header, error) {
	for _, e := range entries {
		if err := ValidateName(e.Name); err != nil {
			return nil, err
		}
	}

	h, err := Build(entries, Length(entries))
	if err != nil {
		return nil, err
	}

	cw := &ioutil.CountingWriter{W: w}
	bw := bufio.NewWriter(cw)
	var line []byte
	line = strconv.AppendInt(line[:0], int64(len(entries)), 10)
	line = append(line, '\n')
	_, _ = bw.Write(line)
	for _, e := range entries {
		line = append(line[:0], e.Name...)
		line = append(line, ' ')
		line = append(line, Separator...)
		line = append(line, ' ')
		line = strconv.AppendUint(line, e.Size, 10)
		line = append(line, '\n')
		_, _ = bw.Write(line)
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	if cw.N != uint64(h.Length) { //nolint:gosec // Length is never negative
		return nil, io.ErrShortWrite
	}
	return h, nil
}
