// Package gtf tokenizes single GTF/GFF3 lines into records. A record keeps
// only zero-copy views into the shared input buffer plus the small id
// strings needed for hierarchy linking; the raw line is re-emitted verbatim
// by the writer, never rebuilt from fields.
package gtf

import (
	"bytes"

	sorterrors "annotsort/errors"
)

// Record is one tokenized annotation line. Byte-slice fields alias the
// shared input buffer, which must outlive the record.
type Record struct {
	Seqname string
	Source  []byte
	Kind    Kind
	Start   int64
	End     int64
	Score   []byte
	Strand  []byte
	Frame   []byte
	Attrs   []Attr

	// Hierarchy extraction targets.
	GeneID       string
	TranscriptID string
	ExonNumber   string

	Raw []byte // the full line, terminator stripped
	Off int    // byte offset of the line in the input buffer
}

// Parse tokenizes one line (terminator already stripped). sep selects the
// attribute syntax (SepGTF or SepGFF). Lines starting with '#' must be
// routed to the comment collector by the caller and never reach Parse.
func Parse(raw []byte, off int, sep byte) (Record, error) {
	if len(raw) == 0 {
		return Record{}, sorterrors.ErrEmptyLine
	}

	var cols [9][]byte
	rest := raw
	for i := 0; i < 8; i++ {
		j := bytes.IndexByte(rest, '\t')
		if j < 0 {
			return Record{}, sorterrors.ErrColumnCount
		}
		cols[i], rest = rest[:j], rest[j+1:]
	}
	if bytes.IndexByte(rest, '\t') >= 0 {
		return Record{}, sorterrors.ErrColumnCount
	}
	cols[8] = rest

	start, ok := parseCoord(cols[3])
	if !ok {
		return Record{}, sorterrors.ErrBadCoordinate
	}
	end, ok := parseCoord(cols[4])
	if !ok {
		return Record{}, sorterrors.ErrBadCoordinate
	}
	if start > end {
		return Record{}, sorterrors.ErrCoordinateOrder
	}

	attrs, err := parseAttributes(cols[8], sep)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Seqname:      string(cols[0]),
		Source:       cols[1],
		Kind:         KindOf(cols[2]),
		Start:        start,
		End:          end,
		Score:        cols[5],
		Strand:       cols[6],
		Frame:        cols[7],
		Attrs:        attrs,
		GeneID:       string(lookup(attrs, "gene_id")),
		TranscriptID: string(lookup(attrs, "transcript_id")),
		ExonNumber:   string(lookup(attrs, "exon_number")),
		Raw:          raw,
		Off:          off,
	}, nil
}

// IsComment reports whether a line bypasses tokenization.
func IsComment(line []byte) bool {
	return len(line) > 0 && line[0] == '#'
}

// parseCoord parses a non-negative decimal coordinate.
func parseCoord(b []byte) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var v int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int64(c-'0')
		if v < 0 { // overflow
			return 0, false
		}
	}
	return v, true
}
