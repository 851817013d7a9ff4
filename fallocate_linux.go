//go:build linux

package annotsort

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves the full sorted-output size before the file is
// mapped, so the parallel copy cannot SIGBUS when the disk fills mid-write.
func fallocateFile(file *os.File, size int64) error {
	if err := unix.Fallocate(int(file.Fd()), 0, 0, size); err != nil {
		// Some filesystems (NFS among them) reject fallocate; a plain
		// ftruncate still gives the map a valid extent.
		return unix.Ftruncate(int(file.Fd()), size)
	}
	// Blocks are reserved but the file length is not set yet.
	return unix.Ftruncate(int(file.Fd()), size)
}
