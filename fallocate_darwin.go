//go:build darwin

package annotsort

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves the full sorted-output size before the file is
// mapped, so the parallel copy cannot SIGBUS when the disk fills mid-write.
// macOS has no fallocate; fcntl F_PREALLOCATE is the equivalent.
func fallocateFile(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Offset:  0,
		Length:  size,
	}
	if err := unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst); err != nil {
		return unix.Ftruncate(int(file.Fd()), size)
	}
	// F_PREALLOCATE reserves space without setting the file length.
	return unix.Ftruncate(int(file.Fd()), size)
}
