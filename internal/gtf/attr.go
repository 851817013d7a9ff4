package gtf

import (
	"bytes"

	sorterrors "annotsort/errors"
)

// Attr is one key/value pair from the attribute column. Key and Value are
// subslices of the input buffer and must not be mutated.
type Attr struct {
	Key   []byte
	Value []byte
}

// SepGTF and SepGFF select the attribute pair syntax: GTF uses
// `key "value"`, GFF3 uses `key=value`.
const (
	SepGTF byte = ' '
	SepGFF byte = '='
)

// parseAttributes splits the semicolon-separated attribute column into an
// ordered list of pairs. Values quoted with '"' are unquoted; a value with
// an opening quote but no closing quote is an error.
func parseAttributes(col []byte, sep byte) ([]Attr, error) {
	attrs := make([]Attr, 0, 8)
	for len(col) > 0 {
		var field []byte
		if i := bytes.IndexByte(col, ';'); i >= 0 {
			field, col = col[:i], col[i+1:]
		} else {
			field, col = col, nil
		}
		field = bytes.TrimLeft(field, " ")
		field = bytes.TrimRight(field, " \r")
		if len(field) == 0 {
			continue
		}

		var key, val []byte
		if i := bytes.IndexByte(field, sep); i >= 0 {
			key, val = field[:i], field[i+1:]
		} else {
			key, val = field, nil
		}
		val = bytes.TrimLeft(val, " ")
		if len(val) > 0 && val[0] == '"' {
			if len(val) < 2 || val[len(val)-1] != '"' {
				return nil, sorterrors.ErrUnterminatedAttr
			}
			val = val[1 : len(val)-1]
		}
		attrs = append(attrs, Attr{Key: key, Value: val})
	}
	return attrs, nil
}

// lookup returns the value of the first attribute named key, or nil.
func lookup(attrs []Attr, key string) []byte {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value
		}
	}
	return nil
}
