package natsort

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"chr2", "chr10", -1},
		{"chr9", "chr10", -1},
		{"chr10", "chr2", 1},
		{"chr1", "chr1", 0},
		{"chr1", "chr1_random", -1}, // strict prefix sorts first
		{"chr", "chr1", -1},
		{"1", "10", -1},
		{"2", "10", -1},
		{"GL456210.1", "GL456211.1", -1},
		{"chr02", "chr2", 1},  // same value, more leading zeros second
		{"chr02", "chr10", -1},
		{"chrM", "chrX", -1}, // purely bytewise, no biological reinterpretation
		{"chrX", "chrY", -1},
		{"chr22", "chrX", -1}, // digit run before letter at same offset
		{"scaffold_9", "scaffold_10", -1},
		{"", "", 0},
		{"", "a", -1},
	}
	for _, tc := range tests {
		if got := Compare(tc.a, tc.b); got != tc.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
		if got := Compare(tc.b, tc.a); got != -tc.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tc.b, tc.a, got, -tc.want)
		}
	}
}

func TestLess(t *testing.T) {
	if !Less("chr2", "chr10") {
		t.Error("expected chr2 < chr10")
	}
	if Less("chr10", "chr10") {
		t.Error("expected chr10 == chr10")
	}
}

func TestCompareLongDigitRuns(t *testing.T) {
	// Values beyond uint64 must still compare correctly.
	a := "ctg99999999999999999999999999999998"
	b := "ctg99999999999999999999999999999999"
	if got := Compare(a, b); got != -1 {
		t.Errorf("Compare(big runs) = %d, want -1", got)
	}
}
