//go:build !linux

package annotsort

// adviseSequential has no portable equivalent off Linux.
func adviseSequential(data []byte) {}

// prefaultRegion has no portable equivalent off Linux; the copy workers
// take the page faults instead.
func prefaultRegion(data []byte) {}
