package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// ErrBarcodeUnsupported is a processing failure, not a negative result: the
// tesseract backend has no barcode decoder, so the answer must never be
// cached as "checked, none found".
var ErrBarcodeUnsupported = errors.New("barcode detection not supported by ocr backend")

// OCR is a Classifier backed by tesseract via gosseract.
type OCR struct{}

// NewOCR returns the tesseract-backed classifier.
func NewOCR() *OCR { return &OCR{} }

// ExtractText runs tesseract over the PNG bytes. A clean run that yields
// only whitespace reports ErrNoTextFound.
func (o *OCR) ExtractText(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("ocr: loading image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoTextFound
	}
	return text, nil
}

// ExtractBarcode always fails with ErrBarcodeUnsupported.
func (o *OCR) ExtractBarcode(_ context.Context, _ []byte) (string, error) {
	return "", ErrBarcodeUnsupported
}
