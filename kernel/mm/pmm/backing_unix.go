//go:build linux || darwin || freebsd || netbsd || openbsd

package pmm

import "golang.org/x/sys/unix"

// allocBacking maps size bytes of anonymous, private memory for the arena.
func allocBacking(size int) ([]byte, func() error, error) {
	if size == 0 {
		return nil, nil, nil
	}

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, err
	}

	return mem, func() error { return unix.Munmap(mem) }, nil
}

// HostPageSize returns the page size of the machine hosting the arena.
func HostPageSize() int {
	return unix.Getpagesize()
}
