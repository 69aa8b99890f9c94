//go:build linux || darwin || freebsd

package arena

import (
	"errors"

	"golang.org/x/sys/unix"
)

// mapAnon creates a private anonymous read/write mapping of n bytes.
func mapAnon(n int) ([]byte, func() error, Backing, error) {
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, Mmap, err
	}
	release := func() error {
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return data, release, Mmap, nil
}
