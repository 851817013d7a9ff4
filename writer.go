package annotsort

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	"golang.org/x/sync/errgroup"

	sorterrors "annotsort/errors"
)

// SinkFunc receives output bytes in streaming mode. Calls are sequential
// and ordered; a non-nil return aborts the job.
type SinkFunc func(p []byte) error

// sinkWriter adapts a SinkFunc to io.Writer so the streaming path can share
// the buffered writer machinery.
type sinkWriter struct{ sink SinkFunc }

func (w sinkWriter) Write(p []byte) (int, error) {
	if err := w.sink(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

const writeBufSize = 256 << 10

// writeStream emits the ordered lines through the sink, single-threaded.
// Returns the output byte count and its xxhash64 digest.
func writeStream(em *emission, sink SinkFunc) (int64, uint64, error) {
	digest := xxhash.New()
	bw := bufio.NewWriterSize(io.MultiWriter(sinkWriter{sink: sink}, digest), writeBufSize)
	for _, line := range em.lines {
		if _, err := bw.Write(line); err != nil {
			return 0, 0, sorterrors.IO("writing to output sink", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return 0, 0, sorterrors.IO("writing to output sink", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, 0, sorterrors.IO("writing to output sink", err)
	}
	return em.total, digest.Sum64(), nil
}

// writeFile writes the emission to path. The fast path fallocates the exact
// output size, maps it read-write and copies disjoint line ranges in
// parallel; if allocation or mapping fails it falls back to a buffered
// sequential write (recorded in the summary, not an error). Any write
// failure removes the partial output file rather than leaving a mixed
// sorted/unsorted result behind.
func writeFile(path string, em *emission, threads int) (mmaped bool, hash uint64, err error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return false, 0, sorterrors.InvalidOutput("creating output file", err)
	}

	if em.total == 0 {
		if cerr := f.Close(); cerr != nil {
			return false, 0, sorterrors.IO("closing output file", cerr)
		}
		return false, xxhash.Sum64(nil), nil
	}

	if aerr := fallocateFile(f, em.total); aerr != nil {
		return writeFileBuffered(f, path, em)
	}
	mm, merr := mmap.MapRegion(f, int(em.total), mmap.RDWR, 0, 0)
	if merr != nil {
		return writeFileBuffered(f, path, em)
	}
	out := []byte(mm)
	prefaultRegion(out)

	// Partition lines into contiguous groups balanced by output bytes;
	// each worker owns a disjoint byte range of the map.
	type writeGroup struct {
		lo, hi int // line range [lo, hi)
		off    int64
	}
	target := em.total/int64(threads) + 1
	var groups []writeGroup
	var off, acc int64
	lo := 0
	for i, line := range em.lines {
		acc += int64(len(line)) + 1
		if acc >= target || i == len(em.lines)-1 {
			groups = append(groups, writeGroup{lo: lo, hi: i + 1, off: off})
			lo = i + 1
			off += acc
			acc = 0
		}
	}

	var g errgroup.Group
	for _, grp := range groups {
		grp := grp
		g.Go(func() error {
			pos := grp.off
			for _, line := range em.lines[grp.lo:grp.hi] {
				copy(out[pos:], line)
				pos += int64(len(line))
				out[pos] = '\n'
				pos++
			}
			return nil
		})
	}
	_ = g.Wait() // copy workers cannot fail

	hash = xxhash.Sum64(out)

	if ferr := mm.Flush(); ferr != nil {
		uerr := mm.Unmap()
		return false, 0, removeOnError(f, path, "flushing output map", errors.Join(ferr, uerr))
	}
	if uerr := mm.Unmap(); uerr != nil {
		return false, 0, removeOnError(f, path, "unmapping output file", uerr)
	}
	if cerr := f.Close(); cerr != nil {
		return false, 0, removeOnError(nil, path, "closing output file", cerr)
	}
	return true, hash, nil
}

// writeFileBuffered is the sequential fallback used when the output cannot
// be memory mapped.
func writeFileBuffered(f *os.File, path string, em *emission) (bool, uint64, error) {
	if _, serr := f.Seek(0, io.SeekStart); serr != nil {
		return false, 0, removeOnError(f, path, "seeking output file", serr)
	}
	digest := xxhash.New()
	bw := bufio.NewWriterSize(io.MultiWriter(f, digest), writeBufSize)
	for _, line := range em.lines {
		if _, err := bw.Write(line); err != nil {
			return false, 0, removeOnError(f, path, "writing output file", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return false, 0, removeOnError(f, path, "writing output file", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return false, 0, removeOnError(f, path, "writing output file", err)
	}
	if err := f.Truncate(em.total); err != nil {
		return false, 0, removeOnError(f, path, "truncating output file", err)
	}
	if err := f.Close(); err != nil {
		return false, 0, removeOnError(nil, path, "closing output file", err)
	}
	return false, digest.Sum64(), nil
}

// removeOnError closes f (when non-nil), removes the partial output and
// wraps everything into one IoError.
func removeOnError(f *os.File, path, op string, cause error) error {
	var cerr error
	if f != nil {
		cerr = f.Close()
	}
	rerr := os.Remove(path)
	return sorterrors.IO(op, errors.Join(cause, cerr, rerr))
}
