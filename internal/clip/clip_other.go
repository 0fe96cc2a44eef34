//go:build !darwin && !windows && !linux

package clip

// New returns the in-memory clipboard used on platforms without a supported
// system clipboard (containers, CI, unsupported OSes).
func New() Clipboard {
	return NewMemory()
}
