package annotsort

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/gzip"

	sorterrors "annotsort/errors"
)

// inputBuffer holds the whole input, either as a read-only memory map or as
// an owned byte slice (buffered fallback, gzip inputs). Every record span
// produced by the job aliases data, so the buffer is closed only after the
// job completes.
type inputBuffer struct {
	data   []byte
	mm     mmap.MMap
	file   *os.File
	mmaped bool
}

// openInput validates the path and loads it. Memory mapping is attempted
// once; failure to map falls back to a buffered read transparently.
// Gzip-compressed inputs are always read through the buffered path.
func openInput(path string) (*inputBuffer, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, sorterrors.InvalidInput("opening input file", err)
	}
	if !fi.Mode().IsRegular() {
		return nil, sorterrors.InvalidInput("opening input file", sorterrors.ErrNotRegularFile)
	}
	if fi.Size() == 0 {
		return nil, sorterrors.InvalidInput("reading input file", sorterrors.ErrEmptyInput)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, sorterrors.InvalidInput("opening input file", err)
	}

	if strings.HasSuffix(path, ".gz") {
		defer f.Close()
		fadviseSequential(int(f.Fd()), 0, fi.Size())
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, sorterrors.InvalidInput("reading gzip input", err)
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, sorterrors.IO("decompressing input file", err)
		}
		if len(data) == 0 {
			return nil, sorterrors.InvalidInput("reading input file", sorterrors.ErrEmptyInput)
		}
		return &inputBuffer{data: data}, nil
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Buffered fallback: recorded in the summary, not an error.
		fadviseSequential(int(f.Fd()), 0, fi.Size())
		data, rerr := io.ReadAll(f)
		cerr := f.Close()
		if rerr != nil {
			return nil, sorterrors.IO("reading input file", rerr)
		}
		if cerr != nil {
			return nil, sorterrors.IO("closing input file", cerr)
		}
		return &inputBuffer{data: data}, nil
	}

	adviseSequential([]byte(mm))
	return &inputBuffer{data: []byte(mm), mm: mm, file: f, mmaped: true}, nil
}

func (b *inputBuffer) close() error {
	var unmapErr error
	if b.mm != nil {
		unmapErr = b.mm.Unmap()
		b.mm = nil
	}
	var closeErr error
	if b.file != nil {
		closeErr = b.file.Close()
		b.file = nil
	}
	b.data = nil
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}

// formatOf derives the annotation format from the file extension,
// looking through a trailing .gz.
func formatOf(path string) (Format, bool) {
	path = strings.TrimSuffix(path, ".gz")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gtf":
		return FormatGTF, true
	case ".gff", ".gff3":
		return FormatGFF, true
	}
	return 0, false
}

// splitRanges divides data into at most n line-aligned, non-overlapping
// byte ranges covering the whole buffer. Every range ends just past a
// newline (or at EOF), so no line straddles two ranges.
func splitRanges(data []byte, n int) [][2]int {
	if n < 1 {
		n = 1
	}
	ranges := make([][2]int, 0, n)
	size := (len(data) + n - 1) / n
	start := 0
	for start < len(data) {
		end := start + size
		if end >= len(data) {
			end = len(data)
		} else if i := bytes.IndexByte(data[end:], '\n'); i >= 0 {
			end += i + 1
		} else {
			end = len(data)
		}
		ranges = append(ranges, [2]int{start, end})
		start = end
	}
	return ranges
}

// lineNumberAt returns the 1-based line number of the byte offset off.
// Only used on error paths, so the linear scan is acceptable.
func lineNumberAt(data []byte, off int) int {
	if off > len(data) {
		off = len(data)
	}
	return bytes.Count(data[:off], []byte{'\n'}) + 1
}
