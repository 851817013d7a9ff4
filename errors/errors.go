// Package errors defines all exported error values for the annotsort library.
//
// This is the single source of truth for error values. Both the top-level
// annotsort package and the internal parsing packages import from here,
// ensuring errors.Is checks work across package boundaries. JobError carries
// the stable numeric code used by callers that need a language-neutral
// error taxonomy.
package errors

import (
	"errors"
	"fmt"
)

// Code is a stable numeric identifier for an error category.
type Code int32

const (
	CodeInvalidParameter Code = -1
	CodeInvalidInput     Code = 1
	CodeInvalidOutput    Code = 2
	CodeParse            Code = 3
	CodeInvalidThreads   Code = 4
	CodeIO               Code = 5
)

// String returns the canonical name of the code.
func (c Code) String() string {
	switch c {
	case CodeInvalidParameter:
		return "InvalidParameter"
	case CodeInvalidInput:
		return "InvalidInput"
	case CodeInvalidOutput:
		return "InvalidOutput"
	case CodeParse:
		return "ParseError"
	case CodeInvalidThreads:
		return "InvalidThreads"
	case CodeIO:
		return "IoError"
	default:
		return fmt.Sprintf("Code(%d)", int32(c))
	}
}

// Parse errors
var (
	ErrEmptyLine        = errors.New("annotsort: empty line")
	ErrColumnCount      = errors.New("annotsort: expected 9 tab-separated columns")
	ErrBadCoordinate    = errors.New("annotsort: non-numeric start/end coordinate")
	ErrCoordinateOrder  = errors.New("annotsort: start coordinate greater than end")
	ErrUnterminatedAttr = errors.New("annotsort: unterminated attribute value")
)

// Job errors
var (
	ErrEmptyInput     = errors.New("annotsort: input file is empty")
	ErrUnknownFormat  = errors.New("annotsort: unknown annotation format, expected GTF or GFF3")
	ErrZeroThreads    = errors.New("annotsort: number of threads must be greater than zero")
	ErrNilSink        = errors.New("annotsort: output sink must not be nil")
	ErrInvalidFormat  = errors.New("annotsort: invalid format mode value")
	ErrNotRegularFile = errors.New("annotsort: input path is not a regular file")
)

// JobError is the structured error returned by the job entrypoints.
// It pairs a stable numeric code with the underlying cause.
type JobError struct {
	Code Code
	Op   string // phase or operation that failed, e.g. "opening input file"
	Err  error
}

func (e *JobError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: while %s: %v", e.Code, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// NewJobError wraps err with a code and an optional operation description.
func NewJobError(code Code, op string, err error) *JobError {
	return &JobError{Code: code, Op: op, Err: err}
}

// InvalidInput reports an unreadable, missing or malformed input path.
func InvalidInput(op string, err error) *JobError {
	return &JobError{Code: CodeInvalidInput, Op: op, Err: err}
}

// InvalidOutput reports an unwritable output path.
func InvalidOutput(op string, err error) *JobError {
	return &JobError{Code: CodeInvalidOutput, Op: op, Err: err}
}

// IO reports a read/write/mmap syscall failure.
func IO(op string, err error) *JobError {
	return &JobError{Code: CodeIO, Op: op, Err: err}
}

// ParseError reports a malformed record. Line is 1-based.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError wraps err with the 1-based line number it occurred on.
func NewParseError(line int, err error) *ParseError {
	return &ParseError{Line: line, Err: err}
}
