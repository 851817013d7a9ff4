//go:build !linux

package annotsort

// fadviseSequential has no portable equivalent off Linux.
func fadviseSequential(fd int, offset, length int64) {}
