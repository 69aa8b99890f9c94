//go:build !linux && !darwin && !freebsd

package dirty

func osPageSize() int { return standardPageSize }
