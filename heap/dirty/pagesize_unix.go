//go:build linux || darwin || freebsd

package dirty

import "golang.org/x/sys/unix"

func osPageSize() int { return unix.Getpagesize() }
