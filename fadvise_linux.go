//go:build linux

package annotsort

import "golang.org/x/sys/unix"

// fadviseSequential asks for aggressive readahead on the buffered
// (non-mmap) input path. Best effort.
func fadviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
