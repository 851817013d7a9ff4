//go:build linux

package annotsort

import "golang.org/x/sys/unix"

// MADV_POPULATE_WRITE, Linux 5.14+. Older kernels return EINVAL, which the
// caller ignores.
const madvPopulateWrite = 23

// adviseSequential marks the mapped annotation input for front-to-back
// scanning so the kernel reads ahead of the parse workers. Best effort.
func adviseSequential(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
	_ = unix.Madvise(data, unix.MADV_WILLNEED)
}

// prefaultRegion faults the output map in before the parallel copy starts,
// keeping page faults out of the copy workers.
func prefaultRegion(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, madvPopulateWrite)
}
