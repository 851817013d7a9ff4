package annotsort

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"annotsort/internal/gtf"
)

// FeatureLine is one non-gene, non-transcript record attached to a
// transcript. Raw aliases the shared input buffer.
type FeatureLine struct {
	Kind       gtf.Kind
	ExonNumber string
	Start      int64
	End        int64
	Raw        []byte
}

// TranscriptEntry groups a transcript's own line with its feature lines.
// Entries may be created eagerly by a feature arriving before the
// transcript's own line; HasLine distinguishes the two. While HasLine is
// false, Seqname/Start/GeneID/Raw mirror the smallest (start, raw) feature
// seen so far; the transcript line replaces them when it arrives.
type TranscriptEntry struct {
	ID       string
	GeneID   string
	Seqname  string
	Start    int64
	Raw      []byte
	HasLine  bool
	Features []FeatureLine
}

// GeneEntry groups a gene's own line with its transcripts. Placeholder
// entries are synthesized for transcripts whose declared parent gene never
// appears; they emit no line of their own and order after all real genes.
type GeneEntry struct {
	ID          string
	Seqname     string
	Start       int64
	Raw         []byte
	HasLine     bool
	Placeholder bool
	Transcripts []*TranscriptEntry
}

// indexShard is one slice of the concurrent hierarchy index. All access to
// its maps goes through mu; insert-or-merge is atomic per key.
type indexShard struct {
	mu          sync.Mutex
	genes       map[string]*GeneEntry
	transcripts map[string]*TranscriptEntry
}

// hierarchyIndex is the sharded gene/transcript index shared by the
// indexing workers. Shard routing hashes the entry id, so identical ids
// from different workers always serialize on the same mutex.
type hierarchyIndex struct {
	shards []indexShard
	mask   uint64
}

func newHierarchyIndex(threads int) *hierarchyIndex {
	n := 16
	for n < threads*8 {
		n <<= 1
	}
	ix := &hierarchyIndex{shards: make([]indexShard, n), mask: uint64(n - 1)}
	for i := range ix.shards {
		ix.shards[i].genes = make(map[string]*GeneEntry)
		ix.shards[i].transcripts = make(map[string]*TranscriptEntry)
	}
	return ix
}

func (ix *hierarchyIndex) shardFor(id string) *indexShard {
	return &ix.shards[xxh3.HashString(id)&ix.mask]
}

// upsertGene records a gene's own line. When the same gene_id appears on
// more than one gene line, the entry deterministically keeps the smaller
// (start, raw bytes) line so output never depends on worker scheduling.
func (ix *hierarchyIndex) upsertGene(id string, rec *gtf.Record) {
	s := ix.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.genes[id]
	if !ok {
		s.genes[id] = &GeneEntry{
			ID:      id,
			Seqname: rec.Seqname,
			Start:   rec.Start,
			Raw:     rec.Raw,
			HasLine: true,
		}
		return
	}
	if lineBefore(rec.Start, rec.Raw, g.Start, g.Raw) {
		g.Seqname = rec.Seqname
		g.Start = rec.Start
		g.Raw = rec.Raw
	}
}

// upsertTranscript records a transcript's own line, creating the entry if a
// child feature has not already done so.
func (ix *hierarchyIndex) upsertTranscript(id string, rec *gtf.Record) {
	s := ix.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[id]
	if !ok {
		s.transcripts[id] = &TranscriptEntry{
			ID:      id,
			GeneID:  rec.GeneID,
			Seqname: rec.Seqname,
			Start:   rec.Start,
			Raw:     rec.Raw,
			HasLine: true,
		}
		return
	}
	if !t.HasLine || lineBefore(rec.Start, rec.Raw, t.Start, t.Raw) {
		t.GeneID = rec.GeneID
		t.Seqname = rec.Seqname
		t.Start = rec.Start
		t.Raw = rec.Raw
		t.HasLine = true
	}
}

// appendFeature attaches a feature line to its transcript, creating the
// entry eagerly when the child arrives before its declared parent's own
// line (possible across chunk boundaries or out-of-order input). Until the
// transcript's own line appears, the entry's seqname, start and parent gene
// are provisional and track the smallest (start, raw bytes) feature seen, so
// a transcript that never gets its own line still sorts and links
// identically under any worker schedule.
func (ix *hierarchyIndex) appendFeature(transcriptID string, rec *gtf.Record) {
	s := ix.shardFor(transcriptID)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[transcriptID]
	if !ok {
		t = &TranscriptEntry{
			ID:      transcriptID,
			GeneID:  rec.GeneID,
			Seqname: rec.Seqname,
			Start:   rec.Start,
			Raw:     rec.Raw,
		}
		s.transcripts[transcriptID] = t
	} else if !t.HasLine && lineBefore(rec.Start, rec.Raw, t.Start, t.Raw) {
		t.GeneID = rec.GeneID
		t.Seqname = rec.Seqname
		t.Start = rec.Start
		t.Raw = rec.Raw
	}
	t.Features = append(t.Features, FeatureLine{
		Kind:       rec.Kind,
		ExonNumber: rec.ExonNumber,
		Start:      rec.Start,
		End:        rec.End,
		Raw:        rec.Raw,
	})
}

// lineBefore is the deterministic keep-first rule for duplicate ids.
func lineBefore(aStart int64, aRaw []byte, bStart int64, bRaw []byte) bool {
	if aStart != bStart {
		return aStart < bStart
	}
	return bytes.Compare(aRaw, bRaw) < 0
}

// buildHierarchy classifies every parsed record into the shared index using
// one worker per chunk, then links transcripts to genes.
func buildHierarchy(ctx context.Context, data []byte, chunks []parsedChunk, threads int) (*hierarchyIndex, error) {
	ix := newHierarchyIndex(threads)

	g, _ := errgroup.WithContext(ctx)
	for ci := range chunks {
		chunk := &chunks[ci]
		g.Go(func() error {
			for ri := range chunk.records {
				rec := &chunk.records[ri]
				switch rec.Kind {
				case gtf.KindGene:
					id := rec.GeneID
					if id == "" {
						// Documented quirk: uniqueness is not validated
						// against real ids.
						id = fmt.Sprintf("gene-line-%d", lineNumberAt(data, rec.Off))
					}
					ix.upsertGene(id, rec)
				case gtf.KindTranscript:
					ix.upsertTranscript(transcriptKey(rec.TranscriptID), rec)
				default:
					ix.appendFeature(transcriptKey(rec.TranscriptID), rec)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ix.link(threads); err != nil {
		return nil, err
	}
	return ix, nil
}

// transcriptKey buckets lines lacking a transcript_id under a single
// trailing transcript, matching the tolerant attribute handling of
// annotation producers that omit the id on non-transcript rows.
func transcriptKey(id string) string {
	if id == "" {
		return "0"
	}
	return id
}

// link resolves every transcript to exactly one gene, synthesizing a
// placeholder when the declared parent gene never appears in the input.
// Runs one worker per transcript shard; gene appends take the gene's shard
// lock, which is never held together with another lock.
func (ix *hierarchyIndex) link(threads int) error {
	var g errgroup.Group
	g.SetLimit(threads)
	for si := range ix.shards {
		shard := &ix.shards[si]
		g.Go(func() error {
			for _, t := range shard.transcripts {
				gs := ix.shardFor(t.GeneID)
				gs.mu.Lock()
				gene, ok := gs.genes[t.GeneID]
				if !ok {
					gene = &GeneEntry{ID: t.GeneID, Placeholder: true}
					gs.genes[t.GeneID] = gene
				}
				gene.Transcripts = append(gene.Transcripts, t)
				gs.mu.Unlock()
			}
			return nil
		})
	}
	return g.Wait()
}

// genes snapshots every gene entry. Only called after the build phase, when
// the index is read-only.
func (ix *hierarchyIndex) geneEntries() []*GeneEntry {
	var total int
	for i := range ix.shards {
		total += len(ix.shards[i].genes)
	}
	out := make([]*GeneEntry, 0, total)
	for i := range ix.shards {
		for _, g := range ix.shards[i].genes {
			out = append(out, g)
		}
	}
	return out
}
