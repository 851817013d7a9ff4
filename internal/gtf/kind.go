package gtf

// Kind classifies the feature column of an annotation line. Only the kinds
// that influence hierarchy building or emission order are distinguished;
// everything else is KindOther.
type Kind uint8

const (
	KindOther Kind = iota
	KindGene
	KindTranscript
	KindExon
	KindCDS
	KindStartCodon
	KindStopCodon
	KindUTR5
	KindUTR3
	KindSelenocysteine
)

// KindOf maps the raw feature column to a Kind.
func KindOf(feature []byte) Kind {
	switch string(feature) {
	case "gene":
		return KindGene
	case "transcript":
		return KindTranscript
	case "exon":
		return KindExon
	case "CDS":
		return KindCDS
	case "start_codon":
		return KindStartCodon
	case "stop_codon":
		return KindStopCodon
	case "five_prime_utr", "five_prime_UTR":
		return KindUTR5
	case "three_prime_utr", "three_prime_UTR":
		return KindUTR3
	case "Selenocysteine":
		return KindSelenocysteine
	}
	return KindOther
}

// IsUTR reports whether the kind is a 5' or 3' untranslated region.
func (k Kind) IsUTR() bool { return k == KindUTR5 || k == KindUTR3 }

// Rank returns the fixed emission rank of a kind within one exon-number
// group: exon, CDS, start_codon, stop_codon, then everything else.
func (k Kind) Rank() int {
	switch k {
	case KindExon:
		return 0
	case KindCDS:
		return 1
	case KindStartCodon:
		return 2
	case KindStopCodon:
		return 3
	}
	return 4
}
