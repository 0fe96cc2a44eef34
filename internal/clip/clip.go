// Package clip provides a unified interface to the system clipboard across
// platforms. Build constraints select the appropriate implementation:
//
//	clip_darwin.go   macOS via golang.design/x/clipboard + cgo changeCount
//	clip_windows.go  Windows via golang.design/x/clipboard + GetClipboardSequenceNumber
//	clip_linux.go    Linux via golang.design/x/clipboard, content-derived revision
//	clip_other.go    headless / container in-memory fallback
//
// Every backend exposes a monotonically increasing revision counter that
// changes whenever the clipboard content changes, so the monitor can detect
// updates without re-reading content on every poll.
package clip

// Format identifies a clipboard content representation.
type Format int

const (
	FmtText Format = iota
	FmtImage // PNG bytes
)

// Clipboard is the interface all platform clipboard implementations satisfy.
type Clipboard interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Revision returns an opaque counter that increases whenever the
	// clipboard content changes, including changes made through Write.
	Revision() uint64

	// Read returns the current clipboard content in the given format, or
	// nil if no representation of that format is present.
	Read(f Format) []byte

	// Write replaces the clipboard content with data in the given format,
	// bumping the revision counter.
	Write(f Format, data []byte)

	// Close releases any resources held by the backend.
	Close()
}
