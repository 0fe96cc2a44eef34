// Package store persists the clipboard history to disk.
//
// Layout under the data directory:
//
//	history.json   pretty-printed index, one record per item, replaced
//	               atomically (write-to-temp-then-rename)
//	images/        PNG blobs named by the SHA-256 of their bytes, so
//	               identical payloads share a single file
//
// All writes run on one background worker goroutine in submission order.
// Synchronous calls block until their own job, and therefore every job
// queued before it, has finished, which is what keeps a Clear from being
// overwritten by a stale in-flight save.
//
// Disk is a best-effort mirror of the in-memory history: every failure in
// here is logged and absorbed, never surfaced to the mutating caller.
package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"go.klb.dev/clipstash/internal/item"
)

const (
	indexName  = "history.json"
	imagesName = "images"
)

// record is the on-disk shape of one history item.
type record struct {
	ID            uuid.UUID `json:"id"`
	Time          time.Time `json:"timestamp"`
	Kind          item.Kind `json:"kind"`
	Text          string    `json:"text,omitempty"`
	URL           string    `json:"url,omitempty"`
	ImageFilename string    `json:"imageFilename,omitempty"`
	CachedText    *string   `json:"cachedText,omitempty"`
	CachedBarcode *string   `json:"cachedBarcode,omitempty"`
}

type job struct {
	run  func()
	done chan struct{}
}

// Repository owns the index file and blob directory. All mutations funnel
// through its single writer queue.
type Repository struct {
	dir  string
	jobs chan job
	quit chan struct{}
}

// New creates the data directory if needed and starts the writer.
func New(dir string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Join(dir, imagesName), 0o755); err != nil {
		return nil, err
	}
	r := &Repository{
		dir:  dir,
		jobs: make(chan job, 32),
		quit: make(chan struct{}),
	}
	go r.worker()
	return r, nil
}

func (r *Repository) worker() {
	defer close(r.quit)
	for j := range r.jobs {
		j.run()
		close(j.done)
	}
}

func (r *Repository) submit(fn func()) chan struct{} {
	j := job{run: fn, done: make(chan struct{})}
	r.jobs <- j
	return j.done
}

// Close drains the queue and stops the writer.
func (r *Repository) Close() {
	close(r.jobs)
	<-r.quit
}

// Save persists items and blocks until the write (and everything queued
// before it) has completed.
func (r *Repository) Save(items []item.Item) {
	<-r.submit(func() { r.persist(items) })
}

// SaveAsync queues a persist of a snapshot of items and returns immediately.
func (r *Repository) SaveAsync(items []item.Item) {
	snapshot := make([]item.Item, len(items))
	copy(snapshot, items)
	r.submit(func() { r.persist(snapshot) })
}

// ClearAll removes the index and every blob. It blocks until done, so no
// earlier queued save can land after it within this process.
func (r *Repository) ClearAll() {
	<-r.submit(func() {
		if err := os.Remove(r.indexPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("removing history index", "err", err)
		}
		entries, err := os.ReadDir(r.imagesDir())
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Warn("clearing image blobs", "err", err)
			}
			return
		}
		for _, e := range entries {
			if err := os.Remove(filepath.Join(r.imagesDir(), e.Name())); err != nil {
				slog.Warn("removing image blob", "file", e.Name(), "err", err)
			}
		}
	})
}

// Load reads the history back from disk. A missing or corrupt index yields
// an empty list; a record whose blob is missing or undecodable is dropped.
// Load never fails: startup degrades to a shorter but consistent history.
func (r *Repository) Load() []item.Item {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("reading history index", "err", err)
		}
		return nil
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("corrupt history index, starting empty", "err", err)
		return nil
	}

	var items []item.Item
	for _, rec := range records {
		switch rec.Kind {
		case item.KindText:
			items = append(items, item.Item{ID: rec.ID, Time: rec.Time, Kind: item.KindText, Text: rec.Text})
		case item.KindURL:
			items = append(items, item.Item{ID: rec.ID, Time: rec.Time, Kind: item.KindURL, URL: rec.URL})
		case item.KindImage:
			blob, err := os.ReadFile(filepath.Join(r.imagesDir(), filepath.Base(rec.ImageFilename)))
			if err != nil {
				slog.Warn("dropping record with missing blob", "id", rec.ID, "file", rec.ImageFilename, "err", err)
				continue
			}
			if _, err := png.DecodeConfig(bytes.NewReader(blob)); err != nil {
				slog.Warn("dropping record with undecodable blob", "id", rec.ID, "file", rec.ImageFilename, "err", err)
				continue
			}
			items = append(items, item.Item{
				ID: rec.ID, Time: rec.Time, Kind: item.KindImage,
				Image:         blob,
				CachedText:    rec.CachedText,
				CachedBarcode: rec.CachedBarcode,
			})
		default:
			slog.Warn("dropping record with unknown kind", "id", rec.ID, "kind", rec.Kind)
		}
	}
	return items
}

// BlobName returns the content-addressed filename for PNG bytes.
func BlobName(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ".png"
}

// persist runs on the writer goroutine only.
func (r *Repository) persist(items []item.Item) {
	records := make([]record, 0, len(items))
	for _, it := range items {
		rec := record{ID: it.ID, Time: it.Time, Kind: it.Kind}
		switch it.Kind {
		case item.KindText:
			rec.Text = it.Text
		case item.KindURL:
			rec.URL = it.URL
		case item.KindImage:
			name := BlobName(it.Image)
			if err := r.writeBlob(name, it.Image); err != nil {
				slog.Error("writing image blob", "file", name, "err", err)
				continue
			}
			rec.ImageFilename = name
			rec.CachedText = it.CachedText
			rec.CachedBarcode = it.CachedBarcode
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		slog.Error("encoding history index", "err", err)
		return
	}
	if err := writeAtomic(r.indexPath(), data); err != nil {
		slog.Error("writing history index", "err", err)
		return
	}

	// Sweep only after the new index is durably in place, so a blob the
	// index still references can never be deleted first.
	r.sweep(records)
}

// writeBlob stores a content-addressed blob if it does not already exist.
// Identical image payloads across items resolve to the same file.
func (r *Repository) writeBlob(name string, data []byte) error {
	path := filepath.Join(r.imagesDir(), name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return writeAtomic(path, data)
}

// sweep deletes blob files no surviving record references.
func (r *Repository) sweep(records []record) {
	referenced := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.ImageFilename != "" {
			referenced[rec.ImageFilename] = struct{}{}
		}
	}
	entries, err := os.ReadDir(r.imagesDir())
	if err != nil {
		slog.Warn("sweeping image blobs", "err", err)
		return
	}
	for _, e := range entries {
		if _, ok := referenced[e.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(r.imagesDir(), e.Name())); err != nil {
			slog.Warn("removing orphaned blob", "file", e.Name(), "err", err)
		} else {
			slog.Debug("removed orphaned blob", "file", e.Name())
		}
	}
}

// writeAtomic writes data to a temp file in the target directory and renames
// it into place, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (r *Repository) indexPath() string { return filepath.Join(r.dir, indexName) }
func (r *Repository) imagesDir() string { return filepath.Join(r.dir, imagesName) }
