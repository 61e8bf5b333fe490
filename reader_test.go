package arc

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/arc/internal/testutil"
)

// packFixture writes files to a fresh directory and packs them.
func packFixture(t *testing.T, files []testutil.File, opts ...PackOption) string {
	t.Helper()
	src := t.TempDir()
	testutil.WriteFiles(t, src, files)
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	archive := filepath.Join(t.TempDir(), "test.arc")
	_, err := Pack(archive, names, append([]PackOption{PackWithBaseDir(src)}, opts...)...)
	require.NoError(t, err)
	return archive
}

// requireFiles asserts every fixture file exists under dir with its content.
func requireFiles(t *testing.T, dir string, files []testutil.File) {
	t.Helper()
	for _, f := range files {
		got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.Name)))
		require.NoError(t, err, "read %s", f.Name)
		assert.True(t, bytes.Equal(f.Content, got), "content of %s: got %d bytes, want %d", f.Name, len(got), len(f.Content))
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	files := []testutil.File{
		{Name: "text.txt", Content: []byte("hello, archive\n")},
		{Name: "empty", Content: nil},
		{Name: "binary.bin", Content: testutil.RandomBytes(5000, 42)},
		{Name: "exact.bin", Content: testutil.RandomBytes(1024, 7)},
		{Name: "nested/dir/file", Content: []byte{0, '\n', 0xff, ' ', '-', '\r'}},
		{Name: "-", Content: []byte("dash")},
	}

	// Chunk sizes smaller than, equal to, and larger than the files.
	for _, chunkSize := range []int{1, 3, 512, 1023, 1024, 1025, 5000, 1 << 20} {
		for _, mmap := range []bool{false, true} {
			t.Run(fmt.Sprintf("chunk=%d/mmap=%t", chunkSize, mmap), func(t *testing.T) {
				t.Parallel()
				archive := packFixture(t, files, PackWithChunkSize(chunkSize), PackWithMemoryMap(mmap))

				dst := t.TempDir()
				h, err := Unpack(archive, UnpackWithDir(dst), UnpackWithChunkSize(chunkSize))
				require.NoError(t, err)
				require.Len(t, h.Entries, len(files))
				requireFiles(t, dst, files)
			})
		}
	}
}

func TestUnpack_Scenario(t *testing.T) {
	t.Parallel()

	archive := filepath.Join(t.TempDir(), "out.arc")
	require.NoError(t, os.WriteFile(archive, []byte("2\na.txt - 5\nb.bin - 0\nhello"), 0o644))

	dst := t.TempDir()
	h, err := Unpack(archive, UnpackWithDir(dst))
	require.NoError(t, err)
	assert.Equal(t, int64(22), h.Length)

	got, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	info, err := os.Stat(filepath.Join(dst, "b.bin"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestUnpack_WorkingDirectory(t *testing.T) {
	files := []testutil.File{{Name: "a.txt", Content: []byte("hello")}}
	archive := packFixture(t, files)

	dst := t.TempDir()
	t.Chdir(dst)

	_, err := Unpack(archive)
	require.NoError(t, err)
	requireFiles(t, dst, files)
}

func TestUnpack_Order(t *testing.T) {
	t.Parallel()

	files := []testutil.File{
		{Name: "zeta", Content: []byte("z")},
		{Name: "alpha", Content: []byte("a")},
		{Name: "mid", Content: []byte("m")},
	}
	archive := packFixture(t, files)

	var scanned, extracted []string
	_, err := Unpack(archive,
		UnpackWithDir(t.TempDir()),
		UnpackWithNameFunc(func(name string) { scanned = append(scanned, name) }),
		UnpackWithProgress(func(e ProgressEvent) {
			if e.Stage == StageExtracting {
				extracted = append(extracted, e.Path)
			}
		}),
	)
	require.NoError(t, err)
	want := []string{"zeta", "alpha", "mid"}
	assert.Equal(t, want, scanned)
	assert.Equal(t, want, extracted)
}

func TestUnpack_Twice(t *testing.T) {
	t.Parallel()

	files := []testutil.File{
		{Name: "a", Content: testutil.RandomBytes(2048, 1)},
		{Name: "b", Content: []byte("short")},
	}
	archive := packFixture(t, files)
	dst := t.TempDir()

	// A longer pre-existing file must be truncated, not partially overwritten.
	require.NoError(t, os.WriteFile(filepath.Join(dst, "b"), bytes.Repeat([]byte("x"), 100), 0o644))

	_, err := Unpack(archive, UnpackWithDir(dst))
	require.NoError(t, err)
	requireFiles(t, dst, files)

	_, err = Unpack(archive, UnpackWithDir(dst))
	require.NoError(t, err)
	requireFiles(t, dst, files)
}

func TestUnpack_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"empty file", ""},
		{"count not a number", "x\na - 1\nA"},
		{"missing entry line", "2\na - 1\nA"},
		{"bad separator", "1\na = 1\nA"},
		{"truncated content", "1\na - 5\nhell"},
		{"trailing bytes", "1\na - 5\nhello!"},
		{"parent name", "1\n../evil - 1\nA"},
		{"absolute name", "1\n/tmp/evil - 1\nA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			archive := filepath.Join(t.TempDir(), "bad.arc")
			require.NoError(t, os.WriteFile(archive, []byte(tt.data), 0o644))

			dst := t.TempDir()
			_, err := Unpack(archive, UnpackWithDir(dst))
			require.ErrorIs(t, err, ErrFormat)

			left, err := os.ReadDir(dst)
			require.NoError(t, err)
			assert.Empty(t, left, "nothing is extracted from a malformed archive")
		})
	}
}

func TestUnpack_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing archive", func(t *testing.T) {
		t.Parallel()
		_, err := Unpack(filepath.Join(t.TempDir(), "nope.arc"))
		assert.ErrorIs(t, err, ErrIO)
	})

	t.Run("missing destination", func(t *testing.T) {
		t.Parallel()
		archive := packFixture(t, []testutil.File{{Name: "a", Content: []byte("a")}})
		_, err := Unpack(archive, UnpackWithDir(filepath.Join(t.TempDir(), "nope")))
		assert.ErrorIs(t, err, ErrIO)
	})

	t.Run("negative chunk size", func(t *testing.T) {
		t.Parallel()
		_, err := Unpack("whatever.arc", UnpackWithChunkSize(-5))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("create fails leaves earlier entries", func(t *testing.T) {
		t.Parallel()
		// "f" is extracted as a file, so "f/g" cannot be created below it.
		archive := filepath.Join(t.TempDir(), "clash.arc")
		require.NoError(t, os.WriteFile(archive, []byte("2\nf - 1\nf/g - 1\nFG"), 0o644))

		dst := t.TempDir()
		_, err := Unpack(archive, UnpackWithDir(dst))
		require.ErrorIs(t, err, ErrIO)

		got, readErr := os.ReadFile(filepath.Join(dst, "f"))
		require.NoError(t, readErr)
		assert.Equal(t, "F", string(got))
	})
}

func TestExtract(t *testing.T) {
	t.Parallel()

	data := []byte("3\nx - 2\ny/z - 3\nw - 0\nXXYYY")
	dst := t.TempDir()
	h, err := Extract(testutil.NewMockByteSource(data), int64(len(data)), UnpackWithDir(dst), UnpackWithChunkSize(2))
	require.NoError(t, err)
	assert.Len(t, h.Entries, 3)
	requireFiles(t, dst, []testutil.File{
		{Name: "x", Content: []byte("XX")},
		{Name: "y/z", Content: []byte("YYY")},
		{Name: "w"},
	})
}

func TestExtract_ShortRead(t *testing.T) {
	t.Parallel()

	// The caller claims more bytes than the source holds.
	data := []byte("1\na - 4\nAB")
	_, err := Extract(testutil.NewMockByteSource(data), int64(len(data))+2, UnpackWithDir(t.TempDir()))
	assert.ErrorIs(t, err, ErrIO)
}

func TestExtractor_States(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    readerState
		wantErr bool
	}{
		{"success", "1\na - 1\nA", stateDone, false},
		{"bad count", "x\n", stateOpened, true},
		{"bad entry", "1\na 1\n", stateHeaderCountRead, true},
		{"truncated", "1\na - 9\nA", stateHeaderScanned, true},
		{"create fails", "2\nf - 0\nf/g - 0\n", stateWritingEntry, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			x, err := newExtractor("test", []UnpackOption{UnpackWithDir(t.TempDir())})
			require.NoError(t, err)
			x.transition(stateOpened)

			_, err = x.extract(testutil.NewMockByteSource([]byte(tt.data)), int64(len(tt.data)))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, x.state, "state %s", x.state)
		})
	}
}

func TestUnpack_ClosedOnlyAfterSuccess(t *testing.T) {
	t.Parallel()

	unpackLog := func(t *testing.T, data string) (string, error) {
		t.Helper()
		archive := filepath.Join(t.TempDir(), "x.arc")
		require.NoError(t, os.WriteFile(archive, []byte(data), 0o644))
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		_, err := Unpack(archive, UnpackWithDir(t.TempDir()), UnpackWithLogger(logger))
		return buf.String(), err
	}

	out, err := unpackLog(t, "1\na - 1\nA")
	require.NoError(t, err)
	assert.Contains(t, out, "state=closed")

	out, err = unpackLog(t, "1\na - 9\nA")
	require.ErrorIs(t, err, ErrFormat)
	assert.NotContains(t, out, "state=closed")
	assert.Contains(t, out, `state="header scanned"`)
}

func TestReaderStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "header scanned", stateHeaderScanned.String())
	assert.Equal(t, "writing entry", stateWritingEntry.String())
	assert.Equal(t, "unknown", readerState(200).String())
}
