//go:build !linux && !darwin

package annotsort

import "os"

// fallocateFile sets the output length with a plain truncate. Without a
// native preallocation call the blocks may not actually be reserved, so a
// full disk can still fault the write map here.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
