//go:build darwin

package annotsort

import "golang.org/x/sys/unix"

// maxMemUsageMB returns the peak resident set size in megabytes.
// On macOS, getrusage reports ru_maxrss in bytes.
func maxMemUsageMB() float64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return nan()
	}
	return float64(ru.Maxrss) / 1024.0 / 1024.0
}
