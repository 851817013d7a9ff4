package annotsort

import (
	"bytes"
	"sort"

	"golang.org/x/sync/errgroup"

	"annotsort/internal/gtf"
	"annotsort/internal/natsort"
)

// emission is the final linear output order: comments first, then every
// record line, all as raw spans into the input buffer. total counts the
// output size in bytes including one terminator per line.
type emission struct {
	lines [][]byte
	total int64
}

// buildEmission computes the deterministic total order over the hierarchy:
//
//  1. comment/header lines in original order,
//  2. genes by (natural seqname, start, gene_id), placeholders after all
//     real genes,
//  3. per gene: the gene line, then transcripts by (start, transcript_id),
//  4. per transcript: the transcript line, then feature lines grouped by
//     exon_number with groups in descending numeric order, a trailing group
//     for lines without exon_number, kind rank inside each group, and UTR
//     lines last.
//
// The order is a pure function of record content, independent of worker
// scheduling during the build phase.
func buildEmission(ix *hierarchyIndex, comments [][]byte, threads int) *emission {
	genes := ix.geneEntries()

	// Order the interior of each gene in parallel; genes are independent.
	var g errgroup.Group
	g.SetLimit(threads)
	chunk := (len(genes) + threads - 1) / threads
	if chunk < 1 {
		chunk = 1
	}
	for lo := 0; lo < len(genes); lo += chunk {
		hi := lo + chunk
		if hi > len(genes) {
			hi = len(genes)
		}
		batch := genes[lo:hi]
		g.Go(func() error {
			for _, gene := range batch {
				sortGeneInterior(gene)
			}
			return nil
		})
	}
	_ = g.Wait() // workers cannot fail

	sort.Slice(genes, func(i, j int) bool { return geneLess(genes[i], genes[j]) })

	em := &emission{}
	n := len(comments)
	for _, gene := range genes {
		if gene.HasLine {
			n++
		}
		for _, t := range gene.Transcripts {
			if t.HasLine {
				n++
			}
			n += len(t.Features)
		}
	}
	em.lines = make([][]byte, 0, n)

	appendLine := func(raw []byte) {
		em.lines = append(em.lines, raw)
		em.total += int64(len(raw)) + 1
	}

	for _, c := range comments {
		appendLine(c)
	}
	for _, gene := range genes {
		if gene.HasLine {
			appendLine(gene.Raw)
		}
		for _, t := range gene.Transcripts {
			if t.HasLine {
				appendLine(t.Raw)
			}
			for fi := range t.Features {
				appendLine(t.Features[fi].Raw)
			}
		}
	}
	return em
}

// sortGeneInterior orders a gene's transcripts and each transcript's
// features, and derives placeholder gene coordinates from the first
// transcript once the order is fixed.
func sortGeneInterior(gene *GeneEntry) {
	sort.Slice(gene.Transcripts, func(i, j int) bool {
		a, b := gene.Transcripts[i], gene.Transcripts[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
	for _, t := range gene.Transcripts {
		feats := t.Features
		sort.Slice(feats, func(i, j int) bool { return featureLess(&feats[i], &feats[j]) })
	}
	if gene.Placeholder && len(gene.Transcripts) > 0 {
		gene.Seqname = gene.Transcripts[0].Seqname
		gene.Start = gene.Transcripts[0].Start
	}
}

func geneLess(a, b *GeneEntry) bool {
	if a.Placeholder != b.Placeholder {
		return !a.Placeholder
	}
	if c := natsort.Compare(a.Seqname, b.Seqname); c != 0 {
		return c < 0
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.ID < b.ID
}

// featureLess is the total order over one transcript's feature lines.
// Numbered exon groups come first in descending exon_number order, then the
// group of lines lacking exon_number, with UTR lines always last. Within a
// group the fixed kind rank applies; coordinates and finally the raw bytes
// keep the order total for identical keys.
func featureLess(a, b *FeatureLine) bool {
	ua, ub := a.Kind.IsUTR(), b.Kind.IsUTR()
	if ua != ub {
		return !ua
	}
	if !ua {
		na, nb := a.ExonNumber != "", b.ExonNumber != ""
		if na != nb {
			return na
		}
		if na {
			if c := natsort.Compare(a.ExonNumber, b.ExonNumber); c != 0 {
				return c > 0 // descending by convention, regardless of strand
			}
		}
		if ra, rb := a.Kind.Rank(), b.Kind.Rank(); ra != rb {
			return ra < rb
		}
	} else if a.Kind != b.Kind {
		return a.Kind == gtf.KindUTR5
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End != b.End {
		return a.End < b.End
	}
	return bytes.Compare(a.Raw, b.Raw) < 0
}
