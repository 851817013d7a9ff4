// Package annotsort reorders GTF/GFF3 gene-annotation files into a
// canonical chromosome → position → hierarchical-feature order without
// altering record content. Records are parsed in parallel, the implicit
// gene → transcript → feature hierarchy is rebuilt from attribute
// references rather than file position, and the result is re-serialized as
// zero-copy spans into the original buffer.
//
// # Basic Usage
//
// Sorting a file:
//
//	summary, err := annotsort.SortAnnotations("in.gtf", "out.gtf", 8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("sorted in %.2fs\n", summary.WritingSecs)
//
// Sorting in-memory text to a sink:
//
//	summary, err := annotsort.SortAnnotationsStream(data, annotsort.FormatGTF, 8,
//	    func(p []byte) error {
//	        _, err := w.Write(p)
//	        return err
//	    })
//
// # Guarantees
//
// Sorting is a permutation of the input lines: record lines are re-emitted
// verbatim, comment/header lines are preserved first in original order, and
// the emission order is a pure function of record content, so runs with
// different thread counts produce byte-identical output. The one exception
// is a duplicated gene or transcript id, where a single deterministic line
// is kept per id. Any parse or I/O error fails the whole job; a partially written
// output file is removed rather than left behind.
package annotsort
