//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package pmm

import "os"

// allocBacking falls back to heap memory on platforms without mmap.
func allocBacking(size int) ([]byte, func() error, error) {
	return make([]byte, size), nil, nil
}

// HostPageSize returns the page size of the machine hosting the arena.
func HostPageSize() int {
	return os.Getpagesize()
}
