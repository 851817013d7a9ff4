package annotsort

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"

	sorterrors "annotsort/errors"
	"annotsort/internal/gtf"
)

// contextCheckInterval is how often workers poll for cancellation while
// scanning their range.
const contextCheckInterval = 8192

// parsedChunk is the output of tokenizing one byte range. Chunks are kept
// in range order so that concatenating per-chunk comment slices preserves
// the original relative order of header lines.
type parsedChunk struct {
	records  []gtf.Record
	comments [][]byte
}

// parseRanges tokenizes the buffer with up to `threads` workers, each
// scanning one line-aligned range sequentially. The first malformed record
// cancels every other worker and fails the whole job; blank lines are
// skipped, '#' lines are collected as comments.
func parseRanges(ctx context.Context, data []byte, sep byte, threads int) ([]parsedChunk, error) {
	ranges := splitRanges(data, threads)
	chunks := make([]parsedChunk, len(ranges))

	g, ctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			chunk, err := parseRange(ctx, data, r[0], r[1], sep)
			if err != nil {
				return err
			}
			chunks[i] = chunk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

func parseRange(ctx context.Context, data []byte, start, end int, sep byte) (parsedChunk, error) {
	var chunk parsedChunk
	lineCounter := 0

	for off := start; off < end; {
		nl := bytes.IndexByte(data[off:end], '\n')
		var line []byte
		next := end
		if nl >= 0 {
			line = data[off : off+nl]
			next = off + nl + 1
		} else {
			line = data[off:end]
		}
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}

		switch {
		case len(line) == 0:
			// Blank line, nothing to keep.
		case gtf.IsComment(line):
			chunk.comments = append(chunk.comments, line)
		default:
			rec, err := gtf.Parse(line, off, sep)
			if err != nil {
				return parsedChunk{}, sorterrors.NewParseError(lineNumberAt(data, off), err)
			}
			chunk.records = append(chunk.records, rec)
		}

		lineCounter++
		if lineCounter >= contextCheckInterval {
			lineCounter = 0
			select {
			case <-ctx.Done():
				return parsedChunk{}, ctx.Err()
			default:
			}
		}
		off = next
	}
	return chunk, nil
}

// collectComments concatenates per-chunk comments in range order.
func collectComments(chunks []parsedChunk) [][]byte {
	var total int
	for _, c := range chunks {
		total += len(c.comments)
	}
	if total == 0 {
		return nil
	}
	out := make([][]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c.comments...)
	}
	return out
}
