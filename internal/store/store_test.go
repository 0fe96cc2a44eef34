package store

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipstash/internal/item"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newRepo(t *testing.T) *Repository {
	t.Helper()
	r, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestRoundTrip(t *testing.T) {
	r := newRepo(t)

	cached := "ocr result"
	img := item.NewImage(pngBytes(t, color.White))
	img.CachedText = &cached

	items := []item.Item{
		item.NewText("hello"),
		item.NewURL("https://example.com"),
		img,
	}
	r.Save(items)

	got := r.Load()
	require.Len(t, got, 3)
	for i := range items {
		assert.Equal(t, items[i].ID, got[i].ID)
		assert.Equal(t, items[i].Kind, got[i].Kind)
	}
	assert.Equal(t, "hello", got[0].Text)
	assert.Equal(t, "https://example.com", got[1].URL)
	assert.Equal(t, img.Image, got[2].Image)
	require.NotNil(t, got[2].CachedText)
	assert.Equal(t, "ocr result", *got[2].CachedText)
}

func TestNegativeCacheSurvivesRoundTrip(t *testing.T) {
	r := newRepo(t)

	empty := ""
	img := item.NewImage(pngBytes(t, color.White))
	img.CachedText = &empty

	r.Save([]item.Item{img})
	got := r.Load()

	require.Len(t, got, 1)
	require.NotNil(t, got[0].CachedText, `"" must persist as a value, not as absence`)
	assert.Equal(t, "", *got[0].CachedText)
	assert.Nil(t, got[0].CachedBarcode)
}

func TestIdenticalImagesShareOneBlob(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	payload := pngBytes(t, color.White)
	a := item.NewImage(payload)
	b := item.NewImage(append([]byte(nil), payload...))

	r.Save([]item.Item{a, b})

	entries, err := os.ReadDir(filepath.Join(dir, "images"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, BlobName(payload), entries[0].Name())
}

func TestSweepKeepsSharedBlobWhileReferenced(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	payload := pngBytes(t, color.White)
	a := item.NewImage(payload)
	b := item.NewImage(append([]byte(nil), payload...))
	r.Save([]item.Item{a, b})

	// Drop one record: the shared blob must survive.
	r.Save([]item.Item{b})
	_, err = os.Stat(filepath.Join(dir, "images", BlobName(payload)))
	assert.NoError(t, err)

	got := r.Load()
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	// Drop the last reference: the blob is swept.
	r.Save(nil)
	_, err = os.Stat(filepath.Join(dir, "images", BlobName(payload)))
	assert.True(t, os.IsNotExist(err))
}

func TestSweepRemovesOrphans(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	orphan := filepath.Join(dir, "images", "deadbeef.png")
	require.NoError(t, os.WriteFile(orphan, []byte("stale"), 0o644))

	r.Save([]item.Item{item.NewText("x")})

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err))
}

func TestClearAfterAsyncSave(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	r.SaveAsync([]item.Item{item.NewText("secret"), item.NewImage(pngBytes(t, color.White))})
	r.ClearAll()

	assert.Empty(t, r.Load(), "the queued save must not resurrect cleared data")
	entries, err := os.ReadDir(filepath.Join(dir, "images"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClearAllLogsUnreadableImagesDir(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	// Replace the blob directory with a plain file so ReadDir fails with
	// something other than not-exist.
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "images")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images"), []byte("x"), 0o644))

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	r.ClearAll()

	assert.Contains(t, buf.String(), "clearing image blobs")
}

func TestLoadMissingIndex(t *testing.T) {
	r := newRepo(t)
	assert.Empty(t, r.Load())
}

func TestLoadCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "history.json"), []byte("{not json"), 0o644))
	assert.Empty(t, r.Load())
}

func TestLoadDropsRecordWithMissingBlob(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	payload := pngBytes(t, color.White)
	r.Save([]item.Item{item.NewText("keep"), item.NewImage(payload)})
	require.NoError(t, os.Remove(filepath.Join(dir, "images", BlobName(payload))))

	got := r.Load()
	require.Len(t, got, 1, "missing blob drops its record, not the whole load")
	assert.Equal(t, "keep", got[0].Text)
}

func TestLoadDropsRecordWithUndecodableBlob(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	payload := pngBytes(t, color.White)
	r.Save([]item.Item{item.NewImage(payload)})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", BlobName(payload)), []byte("garbage"), 0o644))

	assert.Empty(t, r.Load())
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	r.Save([]item.Item{item.NewText("x"), item.NewImage(pngBytes(t, color.White))})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}
