package annotsort

import (
	"context"
	"math"
	"time"

	sorterrors "annotsort/errors"
	"annotsort/internal/gtf"
)

// Format selects the attribute pair syntax of the input text.
type Format int

const (
	FormatGTF Format = 1 // key "value"
	FormatGFF Format = 2 // key=value (GFF3/GFF)
)

func (f Format) sep() (byte, bool) {
	switch f {
	case FormatGTF:
		return gtf.SepGTF, true
	case FormatGFF:
		return gtf.SepGFF, true
	}
	return 0, false
}

// Markers reported in JobSummary by the streaming entrypoint.
const (
	StreamInput  = "[string]"
	StreamOutput = "[callback]"
)

// JobSummary reports what a job did and how long each phase took.
// Memory figures are peak RSS in MB, NaN where unsupported.
type JobSummary struct {
	Input        string
	Output       string
	Threads      int
	InputMmaped  bool
	OutputMmaped bool
	ParsingSecs  float64
	IndexingSecs float64
	WritingSecs  float64
	StartMemMB   float64
	EndMemMB     float64
	OutputBytes  int64
	OutputHash   uint64
}

// jobState tracks orchestrator progress. States advance monotonically;
// stateDone and stateFailed are terminal.
type jobState int

const (
	stateIdle jobState = iota
	stateParsing
	stateIndexing
	stateWriting
	stateDone
	stateFailed
)

func (s jobState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateParsing:
		return "parsing"
	case stateIndexing:
		return "indexing"
	case stateWriting:
		return "sorting+writing"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

func nan() float64 { return math.NaN() }

func newSummary(input, output string, threads int) *JobSummary {
	return &JobSummary{
		Input:        input,
		Output:       output,
		Threads:      threads,
		ParsingSecs:  nan(),
		IndexingSecs: nan(),
		WritingSecs:  nan(),
		StartMemMB:   nan(),
		EndMemMB:     nan(),
	}
}

// job runs the parse → index → sort+write pipeline over one input buffer.
// A job is single-use; entries built during indexing are released when it
// returns.
type job struct {
	state jobState
	sum   *JobSummary
}

// run executes the pipeline. write consumes the final emission and reports
// how the output was produced.
func (j *job) run(ctx context.Context, data []byte, sep byte, threads int, write func(*emission) error) error {
	j.sum.StartMemMB = maxMemUsageMB()

	j.state = stateParsing
	var chunks []parsedChunk
	err := timed(&j.sum.ParsingSecs, func() error {
		var perr error
		chunks, perr = parseRanges(ctx, data, sep, threads)
		return perr
	})
	if err != nil {
		j.state = stateFailed
		return sorterrors.NewJobError(sorterrors.CodeParse, "parsing input", err)
	}

	j.state = stateIndexing
	var ix *hierarchyIndex
	err = timed(&j.sum.IndexingSecs, func() error {
		var ierr error
		ix, ierr = buildHierarchy(ctx, data, chunks, threads)
		return ierr
	})
	if err != nil {
		j.state = stateFailed
		return sorterrors.NewJobError(sorterrors.CodeParse, "building index", err)
	}

	j.state = stateWriting
	err = timed(&j.sum.WritingSecs, func() error {
		em := buildEmission(ix, collectComments(chunks), threads)
		j.sum.OutputBytes = em.total
		return write(em)
	})
	if err != nil {
		j.state = stateFailed
		return err
	}

	j.state = stateDone
	j.sum.EndMemMB = maxMemUsageMB()
	return nil
}

// SortAnnotations sorts the annotation file at input into output using the
// given number of worker threads. The format is derived from the input
// extension (.gtf or .gff/.gff3, optionally .gz-compressed).
func SortAnnotations(input, output string, threads int) (*JobSummary, error) {
	if threads <= 0 {
		return nil, sorterrors.NewJobError(sorterrors.CodeInvalidThreads,
			"validating parameters", sorterrors.ErrZeroThreads)
	}
	format, ok := formatOf(input)
	if !ok {
		return nil, sorterrors.InvalidInput("detecting input format", sorterrors.ErrUnknownFormat)
	}
	sep, _ := format.sep()

	sum := newSummary(input, output, threads)
	in, err := openInput(input)
	if err != nil {
		return nil, err
	}
	defer in.close()
	sum.InputMmaped = in.mmaped

	j := &job{sum: sum}
	err = j.run(context.Background(), in.data, sep, threads, func(em *emission) error {
		mmaped, hash, werr := writeFile(output, em, threads)
		if werr != nil {
			return werr
		}
		sum.OutputMmaped = mmaped
		sum.OutputHash = hash
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// SortAnnotationsStream sorts raw annotation text and pushes the result to
// sink. format selects GTF or GFF3 attribute syntax. The sink is called
// sequentially with ordered output chunks; its error aborts the job.
func SortAnnotationsStream(data []byte, format Format, threads int, sink SinkFunc) (*JobSummary, error) {
	if threads <= 0 {
		return nil, sorterrors.NewJobError(sorterrors.CodeInvalidThreads,
			"validating parameters", sorterrors.ErrZeroThreads)
	}
	if sink == nil {
		return nil, sorterrors.NewJobError(sorterrors.CodeInvalidParameter,
			"validating parameters", sorterrors.ErrNilSink)
	}
	sep, ok := format.sep()
	if !ok {
		return nil, sorterrors.NewJobError(sorterrors.CodeInvalidParameter,
			"validating parameters", sorterrors.ErrInvalidFormat)
	}
	if len(data) == 0 {
		return nil, sorterrors.InvalidInput("reading input", sorterrors.ErrEmptyInput)
	}

	sum := newSummary(StreamInput, StreamOutput, threads)
	j := &job{sum: sum}
	err := j.run(context.Background(), data, sep, threads, func(em *emission) error {
		_, hash, werr := writeStream(em, sink)
		if werr != nil {
			return werr
		}
		sum.OutputHash = hash
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// timed measures the wall-clock duration of f in seconds.
func timed(out *float64, f func() error) error {
	start := time.Now()
	err := f()
	*out = time.Since(start).Seconds()
	return err
}
