//go:build darwin

package clip

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
//
// NSInteger clipstash_changeCount() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
import "C"

import (
	"log/slog"

	"golang.design/x/clipboard"
)

type darwinBackend struct{}

// New returns the macOS clipboard backend. The NSPasteboard changeCount is
// the revision counter; no polling state is needed here.
// clipboard.Init is called here rather than in init() so that CLI
// sub-commands that never touch the clipboard don't log spurious warnings.
func New() Clipboard {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard init failed", "err", err)
	}
	return &darwinBackend{}
}

func (b *darwinBackend) Name() string { return "macOS NSPasteboard" }

func (b *darwinBackend) Revision() uint64 {
	return uint64(C.clipstash_changeCount())
}

func (b *darwinBackend) Read(f Format) []byte {
	switch f {
	case FmtText:
		return clipboard.Read(clipboard.FmtText)
	case FmtImage:
		return clipboard.Read(clipboard.FmtImage)
	}
	return nil
}

func (b *darwinBackend) Write(f Format, data []byte) {
	switch f {
	case FmtText:
		clipboard.Write(clipboard.FmtText, data)
	case FmtImage:
		clipboard.Write(clipboard.FmtImage, data)
	}
}

func (b *darwinBackend) Close() {}
