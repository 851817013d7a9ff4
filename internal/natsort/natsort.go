// Package natsort implements natural-order string comparison: embedded
// digit runs compare as arbitrary-precision integers rather than bytewise,
// so "chr2" sorts before "chr10".
package natsort

// Compare returns -1, 0 or +1 according to the natural order of a and b.
//
// Both strings are decomposed into alternating runs of digit and non-digit
// bytes. Non-digit runs compare bytewise. Digit runs compare as unbounded
// integers: leading zeros are skipped, then a longer significant run is
// larger, then the runs compare bytewise. Runs of equal numeric value but
// different leading-zero counts are disambiguated by the shorter raw run
// first, keeping the order total. If one string is a strict prefix of the
// other, the shorter sorts first.
func Compare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			ia, ja := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			if c := compareDigitRuns(a[ia:i], b[ja:j]); c != 0 {
				return c
			}
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	}
	return 0
}

// Less reports whether a sorts before b in natural order.
func Less(a, b string) bool { return Compare(a, b) < 0 }

func compareDigitRuns(a, b string) int {
	sa, sb := trimZeros(a), trimZeros(b)
	if len(sa) != len(sb) {
		if len(sa) < len(sb) {
			return -1
		}
		return 1
	}
	for k := 0; k < len(sa); k++ {
		if sa[k] != sb[k] {
			if sa[k] < sb[k] {
				return -1
			}
			return 1
		}
	}
	// Same value; fewer leading zeros first so the order stays total.
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return 0
}

func trimZeros(s string) string {
	k := 0
	for k < len(s) && s[k] == '0' {
		k++
	}
	return s[k:]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
