package annotsort

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"
)

func gtfLine(seq, feature string, start, end int, attrs string) string {
	return fmt.Sprintf("%s\ttest\t%s\t%d\t%d\t.\t+\t.\t%s", seq, feature, start, end, attrs)
}

func sortText(t *testing.T, input string, format Format, threads int) (string, *JobSummary) {
	t.Helper()
	var buf bytes.Buffer
	sum, err := SortAnnotationsStream([]byte(input), format, threads, func(p []byte) error {
		buf.Write(p)
		return nil
	})
	if err != nil {
		t.Fatalf("SortAnnotationsStream: %v", err)
	}
	return buf.String(), sum
}

// canonicalFixture returns a shuffled two-gene GTF input and the expected
// sorted output. It covers natural chromosome order (chr2 before chr10),
// descending exon groups, kind rank inside a group, the trailing group for
// lines without exon_number, and UTR lines last.
func canonicalFixture() (input, expected string) {
	c1 := "#!genome-build test"
	c2 := "#provider local"

	g1 := gtfLine("chr2", "gene", 500, 2000, `gene_id "g1";`)
	t1 := gtfLine("chr2", "transcript", 500, 2000, `gene_id "g1"; transcript_id "t1";`)
	e3 := gtfLine("chr2", "exon", 1500, 2000, `gene_id "g1"; transcript_id "t1"; exon_number "3";`)
	e2 := gtfLine("chr2", "exon", 1000, 1200, `gene_id "g1"; transcript_id "t1"; exon_number "2";`)
	e1 := gtfLine("chr2", "exon", 500, 700, `gene_id "g1"; transcript_id "t1"; exon_number "1";`)
	sel := gtfLine("chr2", "Selenocysteine", 600, 602, `gene_id "g1"; transcript_id "t1";`)

	g2 := gtfLine("chr10", "gene", 100, 300, `gene_id "g2";`)
	t2 := gtfLine("chr10", "transcript", 100, 300, `gene_id "g2"; transcript_id "t2";`)
	ex2 := gtfLine("chr10", "exon", 250, 300, `gene_id "g2"; transcript_id "t2"; exon_number "2";`)
	cds2 := gtfLine("chr10", "CDS", 250, 280, `gene_id "g2"; transcript_id "t2"; exon_number "2";`)
	stop2 := gtfLine("chr10", "stop_codon", 298, 300, `gene_id "g2"; transcript_id "t2"; exon_number "2";`)
	ex1 := gtfLine("chr10", "exon", 100, 200, `gene_id "g2"; transcript_id "t2"; exon_number "1";`)
	cds1 := gtfLine("chr10", "CDS", 120, 200, `gene_id "g2"; transcript_id "t2"; exon_number "1";`)
	start1 := gtfLine("chr10", "start_codon", 120, 122, `gene_id "g2"; transcript_id "t2"; exon_number "1";`)
	utr5 := gtfLine("chr10", "five_prime_utr", 100, 119, `gene_id "g2"; transcript_id "t2";`)
	utr3 := gtfLine("chr10", "three_prime_utr", 281, 300, `gene_id "g2"; transcript_id "t2";`)

	shuffled := []string{
		ex1, c1, stop2, e2, g2, utr3, t1, cds1, sel,
		e3, start1, g1, c2, ex2, utr5, t2, cds2, e1,
	}
	ordered := []string{
		c1, c2,
		g1, t1, e3, e2, e1, sel,
		g2, t2, ex2, cds2, stop2, ex1, cds1, start1, utr5, utr3,
	}
	return strings.Join(shuffled, "\n") + "\n", strings.Join(ordered, "\n") + "\n"
}

func TestSortCanonicalOrder(t *testing.T) {
	input, expected := canonicalFixture()
	for _, threads := range []int{1, 4} {
		got, sum := sortText(t, input, FormatGTF, threads)
		if got != expected {
			t.Fatalf("threads=%d: wrong order\ngot:\n%s\nwant:\n%s", threads, got, expected)
		}
		if sum.OutputBytes != int64(len(expected)) {
			t.Errorf("threads=%d: OutputBytes = %d, want %d", threads, sum.OutputBytes, len(expected))
		}
		if sum.Input != StreamInput || sum.Output != StreamOutput {
			t.Errorf("threads=%d: summary markers = %q/%q", threads, sum.Input, sum.Output)
		}
	}
}

func TestSortGFFOrder(t *testing.T) {
	gene := "chrX\ttest\tgene\t10\t500\t.\t-\t.\tgene_id=gx"
	tr := "chrX\ttest\ttranscript\t10\t500\t.\t-\t.\tgene_id=gx;transcript_id=tx"
	ex2 := "chrX\ttest\texon\t300\t500\t.\t-\t.\tgene_id=gx;transcript_id=tx;exon_number=2"
	ex1 := "chrX\ttest\texon\t10\t100\t.\t-\t.\tgene_id=gx;transcript_id=tx;exon_number=1"

	input := strings.Join([]string{ex1, tr, ex2, gene}, "\n") + "\n"
	expected := strings.Join([]string{gene, tr, ex2, ex1}, "\n") + "\n"

	got, _ := sortText(t, input, FormatGFF, 2)
	if got != expected {
		t.Fatalf("wrong GFF order\ngot:\n%s\nwant:\n%s", got, expected)
	}
}

func TestSortIdempotent(t *testing.T) {
	input, _ := canonicalFixture()
	once, _ := sortText(t, input, FormatGTF, 2)
	twice, _ := sortText(t, once, FormatGTF, 2)
	if once != twice {
		t.Fatalf("resorting sorted output changed it\nfirst:\n%s\nsecond:\n%s", once, twice)
	}
}

func TestSortCommentsFirstInOriginalOrder(t *testing.T) {
	input, _ := canonicalFixture()
	got, _ := sortText(t, input, FormatGTF, 3)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if lines[0] != "#!genome-build test" || lines[1] != "#provider local" {
		t.Fatalf("comments not first in original order: %q, %q", lines[0], lines[1])
	}
	for _, l := range lines[2:] {
		if strings.HasPrefix(l, "#") {
			t.Fatalf("comment line emitted after records: %q", l)
		}
	}
}

func TestSortBlankLinesSkipped(t *testing.T) {
	input, expected := canonicalFixture()
	input = strings.ReplaceAll(input, "\n", "\n\n")
	got, _ := sortText(t, input, FormatGTF, 2)
	if got != expected {
		t.Fatalf("blank lines leaked into output\ngot:\n%s", got)
	}
}

func TestSortCRLFInput(t *testing.T) {
	input, expected := canonicalFixture()
	input = strings.ReplaceAll(input, "\n", "\r\n")
	got, _ := sortText(t, input, FormatGTF, 2)
	if got != expected {
		t.Fatalf("CRLF input mishandled\ngot:\n%s", got)
	}
}

func TestSortPlaceholderGeneOrdersLast(t *testing.T) {
	gene := gtfLine("chr1", "gene", 900, 1000, `gene_id "real";`)
	tr := gtfLine("chr1", "transcript", 900, 1000, `gene_id "real"; transcript_id "rt";`)
	orphanTr := gtfLine("chr1", "transcript", 10, 100, `gene_id "ghost"; transcript_id "ot";`)
	orphanEx := gtfLine("chr1", "exon", 10, 100, `gene_id "ghost"; transcript_id "ot"; exon_number "1";`)

	input := strings.Join([]string{orphanEx, gene, orphanTr, tr}, "\n") + "\n"
	expected := strings.Join([]string{gene, tr, orphanTr, orphanEx}, "\n") + "\n"

	got, _ := sortText(t, input, FormatGTF, 2)
	if got != expected {
		t.Fatalf("orphan transcript not ordered after real genes\ngot:\n%s\nwant:\n%s", got, expected)
	}
}

func TestSortDuplicateGeneIDKeepsSmaller(t *testing.T) {
	early := gtfLine("chr1", "gene", 100, 200, `gene_id "dup";`)
	late := gtfLine("chr1", "gene", 300, 400, `gene_id "dup";`)
	tr := gtfLine("chr1", "transcript", 100, 200, `gene_id "dup"; transcript_id "dt";`)

	input := strings.Join([]string{late, tr, early}, "\n") + "\n"
	expected := strings.Join([]string{early, tr}, "\n") + "\n"

	got, _ := sortText(t, input, FormatGTF, 2)
	if got != expected {
		t.Fatalf("duplicate gene line not merged deterministically\ngot:\n%s\nwant:\n%s", got, expected)
	}
}

func TestSortMissingTranscriptIDBucket(t *testing.T) {
	gene := gtfLine("chr1", "gene", 1, 100, `gene_id "g";`)
	anon := gtfLine("chr1", "exon", 1, 50, `gene_id "g";`)

	input := strings.Join([]string{anon, gene}, "\n") + "\n"
	got, _ := sortText(t, input, FormatGTF, 1)
	if !strings.Contains(got, anon) {
		t.Fatalf("feature without transcript_id dropped:\n%s", got)
	}
	if !strings.HasPrefix(got, gene) {
		t.Fatalf("gene line not first:\n%s", got)
	}
}

func TestSortLinelessTranscriptsDeterministic(t *testing.T) {
	// Two transcripts without their own lines, each with enough features
	// that parallel runs split them across parse ranges. The transcript
	// whose smallest feature appears LAST in the file must still sort
	// first, and every thread count must agree byte-for-byte.
	lines := []string{gtfLine("chr1", "gene", 1, 1_000_000, `gene_id "g";`)}
	for i := 0; i < 1500; i++ {
		lines = append(lines, gtfLine("chr1", "exon", 50_000+i*10, 50_000+i*10+5,
			fmt.Sprintf(`gene_id "g"; transcript_id "tb"; exon_number "%d";`, i+1)))
	}
	for i := 0; i < 1500; i++ {
		lines = append(lines, gtfLine("chr1", "exon", 100+i*10, 100+i*10+5,
			fmt.Sprintf(`gene_id "g"; transcript_id "ta"; exon_number "%d";`, i+1)))
	}
	input := strings.Join(lines, "\n") + "\n"

	single, _ := sortText(t, input, FormatGTF, 1)
	for _, threads := range []int{2, 8} {
		got, _ := sortText(t, input, FormatGTF, threads)
		if got != single {
			t.Fatalf("threads=%d output differs from threads=1", threads)
		}
	}
	ia := strings.Index(single, `"ta"`)
	ib := strings.Index(single, `"tb"`)
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("ta (smallest feature start) must precede tb: ta at %d, tb at %d", ia, ib)
	}
}

func TestSortLinelessTranscriptGeneAttachment(t *testing.T) {
	// A lineless transcript whose features disagree on gene_id attaches to
	// the gene named by its smallest (start, raw) feature, regardless of
	// the order the features arrive in.
	g1 := gtfLine("chr1", "gene", 100, 200, `gene_id "g1";`)
	g2 := gtfLine("chr1", "gene", 300, 400, `gene_id "g2";`)
	fEarly := gtfLine("chr1", "exon", 100, 150, `gene_id "g1"; transcript_id "t"; exon_number "1";`)
	fLate := gtfLine("chr1", "exon", 300, 350, `gene_id "g2"; transcript_id "t"; exon_number "2";`)

	input := strings.Join([]string{fLate, g2, fEarly, g1}, "\n") + "\n"
	expected := strings.Join([]string{g1, fLate, fEarly, g2}, "\n") + "\n"

	for _, threads := range []int{1, 4} {
		got, _ := sortText(t, input, FormatGTF, threads)
		if got != expected {
			t.Fatalf("threads=%d: wrong attachment\ngot:\n%s\nwant:\n%s", threads, got, expected)
		}
	}
}

func TestSortUTRsLastMinusStrand(t *testing.T) {
	line := func(feature string, start, end int, attrs string) string {
		return fmt.Sprintf("chr3\ttest\t%s\t%d\t%d\t.\t-\t.\t%s", feature, start, end, attrs)
	}
	gene := line("gene", 100, 900, `gene_id "gm";`)
	tr := line("transcript", 100, 900, `gene_id "gm"; transcript_id "tm";`)
	ex2 := line("exon", 500, 900, `gene_id "gm"; transcript_id "tm"; exon_number "2";`)
	ex1 := line("exon", 100, 300, `gene_id "gm"; transcript_id "tm"; exon_number "1";`)
	utr5 := line("five_prime_utr", 850, 900, `gene_id "gm"; transcript_id "tm";`)
	utr3 := line("three_prime_utr", 100, 140, `gene_id "gm"; transcript_id "tm";`)

	input := strings.Join([]string{utr3, ex1, gene, utr5, tr, ex2}, "\n") + "\n"
	expected := strings.Join([]string{gene, tr, ex2, ex1, utr5, utr3}, "\n") + "\n"

	got, _ := sortText(t, input, FormatGTF, 2)
	if got != expected {
		t.Fatalf("minus-strand UTRs not last\ngot:\n%s\nwant:\n%s", got, expected)
	}
}

func TestSortCanonicalInputRoundTrips(t *testing.T) {
	input := strings.Join([]string{
		gtfLine("chr1", "gene", 100, 900, `gene_id "G1";`),
		gtfLine("chr1", "transcript", 100, 900, `gene_id "G1"; transcript_id "T1";`),
		gtfLine("chr1", "exon", 100, 300, `gene_id "G1"; transcript_id "T1"; exon_number "1";`),
	}, "\n") + "\n"

	got, _ := sortText(t, input, FormatGTF, 1)
	if got != input {
		t.Fatalf("already-canonical input changed\ngot:\n%s\nwant:\n%s", got, input)
	}
}

func TestSortPreservesLineMultiset(t *testing.T) {
	input, _ := canonicalFixture()
	got, _ := sortText(t, input, FormatGTF, 4)

	want := strings.Split(strings.TrimSuffix(input, "\n"), "\n")
	have := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	sort.Strings(want)
	sort.Strings(have)
	if len(want) != len(have) {
		t.Fatalf("line count changed: in %d, out %d", len(want), len(have))
	}
	for i := range want {
		if want[i] != have[i] {
			t.Fatalf("line multiset changed at %d: in %q, out %q", i, want[i], have[i])
		}
	}
}
