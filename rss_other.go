//go:build !linux && !darwin

package annotsort

// maxMemUsageMB is unsupported on this platform.
func maxMemUsageMB() float64 {
	return nan()
}
