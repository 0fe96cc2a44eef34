// Package item defines the clipboard history item model.
//
// An Item is immutable once created except for the classifier cache fields
// on images, which are filled in lazily the first time OCR or barcode
// extraction runs.
package item

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go.klb.dev/clipstash/internal/urlutil"
)

// Kind identifies the content variant of an Item.
type Kind string

const (
	KindText  Kind = "text"
	KindURL   Kind = "url"
	KindImage Kind = "image"
)

// Item is a single entry in the clipboard history.
//
// Exactly one of Text, URL or Image carries the content, selected by Kind.
// CachedText and CachedBarcode apply to images only: nil means the
// classifier has never run, a pointer to "" means it ran and found nothing.
type Item struct {
	ID   uuid.UUID
	Time time.Time
	Kind Kind

	Text  string
	URL   string
	Image []byte // PNG encoding

	CachedText    *string
	CachedBarcode *string
}

// NewText creates a text item stamped with the current time.
func NewText(text string) Item {
	return Item{ID: uuid.New(), Time: time.Now(), Kind: KindText, Text: text}
}

// NewURL creates a url item from an absolute URL string.
func NewURL(raw string) Item {
	return Item{ID: uuid.New(), Time: time.Now(), Kind: KindURL, URL: raw}
}

// NewImage creates an image item from PNG bytes.
func NewImage(png []byte) Item {
	return Item{ID: uuid.New(), Time: time.Now(), Kind: KindImage, Image: png}
}

// FromString classifies s as a link or plain text and wraps it in an Item.
func FromString(s string) Item {
	if abs, ok := urlutil.Normalize(s); ok {
		return NewURL(abs)
	}
	return NewText(s)
}

// Equal reports content equality for dedup purposes: string equality for
// text and url items, bit-identical PNG payloads for images. Identity and
// timestamps do not participate.
func (it Item) Equal(other Item) bool {
	if it.Kind != other.Kind {
		return false
	}
	switch it.Kind {
	case KindText:
		return it.Text == other.Text
	case KindURL:
		return it.URL == other.URL
	case KindImage:
		return bytes.Equal(it.Image, other.Image)
	}
	return false
}

// Body returns the searchable text representation: the string for text
// items, the absolute URL for url items, "" for images.
func (it Item) Body() string {
	switch it.Kind {
	case KindText:
		return it.Text
	case KindURL:
		return it.URL
	}
	return ""
}

// Log emits the item at INFO (kind, id) and a content preview at DEBUG:
// text truncated to 120 runes, byte size for images.
func (it Item) Log(event string) {
	slog.Info(event, "kind", it.Kind, "id", it.ID)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if it.Kind == KindImage {
		slog.Debug("clipboard item", "kind", it.Kind, "size_bytes", len(it.Image))
		return
	}
	preview := it.Body()
	if len(preview) > 120 {
		preview = preview[:120] + "…"
	}
	slog.Debug("clipboard item", "kind", it.Kind, "preview", preview)
}
