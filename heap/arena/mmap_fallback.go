//go:build !linux && !darwin && !freebsd

package arena

// mapAnon falls back to a Go slice where anonymous mappings are not wired up.
func mapAnon(n int) ([]byte, func() error, Backing, error) {
	return make([]byte, n), nil, Heap, nil
}
