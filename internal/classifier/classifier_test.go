package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipstash/internal/history"
	"go.klb.dev/clipstash/internal/item"
)

type nopRepo struct{}

func (nopRepo) Load() []item.Item     { return nil }
func (nopRepo) Save([]item.Item)      {}
func (nopRepo) SaveAsync([]item.Item) {}
func (nopRepo) ClearAll()             {}

// fakeBackend counts invocations and returns canned results.
type fakeBackend struct {
	textCalls    int
	barcodeCalls int
	text         string
	textErr      error
	barcodeErr   error
}

func (f *fakeBackend) ExtractText(_ context.Context, _ []byte) (string, error) {
	f.textCalls++
	return f.text, f.textErr
}

func (f *fakeBackend) ExtractBarcode(_ context.Context, _ []byte) (string, error) {
	f.barcodeCalls++
	return "", f.barcodeErr
}

func setup(t *testing.T, backend *fakeBackend) (*Service, *history.Engine, item.Item) {
	t.Helper()
	engine := history.New(nopRepo{}, history.Options{})
	img := item.NewImage([]byte{1, 2, 3})
	engine.Insert(img)
	return NewService(engine, backend), engine, img
}

func TestTextForCachesResult(t *testing.T) {
	backend := &fakeBackend{text: "found it"}
	svc, engine, img := setup(t, backend)
	ctx := context.Background()

	got, err := svc.TextFor(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "found it", got)

	got, err = svc.TextFor(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "found it", got)
	assert.Equal(t, 1, backend.textCalls, "second call is served from cache")

	cached, _ := engine.Get(img.ID)
	require.NotNil(t, cached.CachedText)
	assert.Equal(t, "found it", *cached.CachedText)
}

func TestTextForCachesNegativeResult(t *testing.T) {
	backend := &fakeBackend{textErr: ErrNoTextFound}
	svc, engine, img := setup(t, backend)
	ctx := context.Background()

	_, err := svc.TextFor(ctx, img.ID)
	assert.ErrorIs(t, err, ErrNoTextFound)

	_, err = svc.TextFor(ctx, img.ID)
	assert.ErrorIs(t, err, ErrNoTextFound)
	assert.Equal(t, 1, backend.textCalls, "a clean no-result is never re-run")

	cached, _ := engine.Get(img.ID)
	require.NotNil(t, cached.CachedText)
	assert.Equal(t, "", *cached.CachedText)
}

func TestTextForDoesNotCacheProcessingFailure(t *testing.T) {
	backend := &fakeBackend{textErr: errors.New("ocr backend crashed")}
	svc, engine, img := setup(t, backend)
	ctx := context.Background()

	_, err := svc.TextFor(ctx, img.ID)
	require.Error(t, err)
	_, err = svc.TextFor(ctx, img.ID)
	require.Error(t, err)
	assert.Equal(t, 2, backend.textCalls, "failures may be retried")

	cached, _ := engine.Get(img.ID)
	assert.Nil(t, cached.CachedText)
}

func TestBarcodeCacheIsIndependentOfText(t *testing.T) {
	backend := &fakeBackend{text: "some text", barcodeErr: ErrNoBarcodeFound}
	svc, _, img := setup(t, backend)
	ctx := context.Background()

	_, err := svc.TextFor(ctx, img.ID)
	require.NoError(t, err)
	_, err = svc.BarcodeFor(ctx, img.ID)
	assert.ErrorIs(t, err, ErrNoBarcodeFound)
	assert.Equal(t, 1, backend.textCalls)
	assert.Equal(t, 1, backend.barcodeCalls)

	// Neither cache poisons the other.
	got, err := svc.TextFor(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "some text", got)
	_, err = svc.BarcodeFor(ctx, img.ID)
	assert.ErrorIs(t, err, ErrNoBarcodeFound)
	assert.Equal(t, 1, backend.textCalls)
	assert.Equal(t, 1, backend.barcodeCalls)
}

func TestTextForRejectsNonImages(t *testing.T) {
	backend := &fakeBackend{}
	svc, engine, _ := setup(t, backend)
	txt := item.NewText("not an image")
	engine.Insert(txt)

	_, err := svc.TextFor(context.Background(), txt.ID)
	assert.ErrorIs(t, err, ErrNotImage)
	assert.Zero(t, backend.textCalls)
}

func TestRecallTextPromotesWithoutDuplicating(t *testing.T) {
	backend := &fakeBackend{text: "extracted"}
	svc, engine, img := setup(t, backend)
	ctx := context.Background()

	got, err := svc.RecallText(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "extracted", got.Text)
	assert.Equal(t, 2, engine.Len())

	// Recalling again promotes the existing entry instead of adding one.
	again, err := svc.RecallText(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, got.ID, again.ID)
	assert.Equal(t, 2, engine.Len())
}

func TestRecallTextClassifiesURLs(t *testing.T) {
	backend := &fakeBackend{text: "https://example.com"}
	svc, _, img := setup(t, backend)

	got, err := svc.RecallText(context.Background(), img.ID)
	require.NoError(t, err)
	assert.Equal(t, item.KindURL, got.Kind)
	assert.Equal(t, "https://example.com", got.URL)
}
