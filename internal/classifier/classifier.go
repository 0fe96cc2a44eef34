// Package classifier extracts text and barcode payloads from image history
// items.
//
// Extraction backends are external and pluggable behind the Classifier
// interface. The Service in front of them consults the engine's per-item
// cache first, including negative results: once a backend has reported
// "nothing found" for an image, that answer is cached as an empty string
// and the backend is never invoked for that image again. Processing
// failures are not cached and may be retried.
package classifier

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"go.klb.dev/clipstash/internal/history"
	"go.klb.dev/clipstash/internal/item"
)

var (
	// ErrNoTextFound means the classifier ran and found no text. Cacheable.
	ErrNoTextFound = errors.New("no text found in image")
	// ErrNoBarcodeFound means the classifier ran and found no barcode. Cacheable.
	ErrNoBarcodeFound = errors.New("no barcode found in image")
	// ErrNotImage is returned when the target item is not an image.
	ErrNotImage = errors.New("item is not an image")
)

// Classifier is an external OCR/barcode backend. Implementations report
// ErrNoTextFound / ErrNoBarcodeFound for a clean "ran, nothing there"; any
// other error is a processing failure.
type Classifier interface {
	ExtractText(ctx context.Context, png []byte) (string, error)
	ExtractBarcode(ctx context.Context, png []byte) (string, error)
}

// Service wraps a Classifier with the engine's result cache.
type Service struct {
	engine *history.Engine
	cls    Classifier
}

// NewService builds a cache-aware extraction service.
func NewService(engine *history.Engine, cls Classifier) *Service {
	return &Service{engine: engine, cls: cls}
}

// TextFor returns the extracted text for an image item, running the
// classifier only on a cache miss. A negative cache hit returns
// ErrNoTextFound without invoking the backend.
func (s *Service) TextFor(ctx context.Context, id uuid.UUID) (string, error) {
	return s.extract(ctx, id,
		func(it item.Item) *string { return it.CachedText },
		s.cls.ExtractText, ErrNoTextFound,
		func(v *string) (*string, *string) { return v, nil },
	)
}

// BarcodeFor is TextFor for barcode payloads.
func (s *Service) BarcodeFor(ctx context.Context, id uuid.UUID) (string, error) {
	return s.extract(ctx, id,
		func(it item.Item) *string { return it.CachedBarcode },
		s.cls.ExtractBarcode, ErrNoBarcodeFound,
		func(v *string) (*string, *string) { return nil, v },
	)
}

func (s *Service) extract(
	ctx context.Context,
	id uuid.UUID,
	cached func(item.Item) *string,
	run func(context.Context, []byte) (string, error),
	notFound error,
	place func(*string) (text, barcode *string),
) (string, error) {
	it, ok := s.engine.Get(id)
	if !ok || it.Kind != item.KindImage {
		return "", ErrNotImage
	}
	if v := cached(it); v != nil {
		if *v == "" {
			return "", notFound
		}
		return *v, nil
	}

	result, err := run(ctx, it.Image)
	switch {
	case errors.Is(err, notFound):
		empty := ""
		text, barcode := place(&empty)
		s.engine.UpdateClassifierCache(id, text, barcode)
		return "", notFound
	case err != nil:
		// Processing failure: not cached, a later attempt may succeed.
		return "", err
	}
	text, barcode := place(&result)
	s.engine.UpdateClassifierCache(id, text, barcode)
	return result, nil
}

// RecallText extracts (or re-uses) an image's text and promotes it into the
// history: an equal item is promoted, otherwise the text is classified as
// url/text and inserted. Repeated extractions of the same image never pile
// up duplicate entries.
func (s *Service) RecallText(ctx context.Context, id uuid.UUID) (item.Item, error) {
	text, err := s.TextFor(ctx, id)
	if err != nil {
		return item.Item{}, err
	}
	return s.engine.PromoteOrInsertResult(text), nil
}

// RecallBarcode is RecallText for barcode payloads.
func (s *Service) RecallBarcode(ctx context.Context, id uuid.UUID) (item.Item, error) {
	code, err := s.BarcodeFor(ctx, id)
	if err != nil {
		return item.Item{}, err
	}
	return s.engine.PromoteOrInsertResult(code), nil
}
