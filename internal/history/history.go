// Package history owns the in-memory clipboard history: a most-recently-used
// ordered list with dedup-on-insert, bounded size, optional age-based
// cleaning and classifier-result caching.
//
// The engine is the source of truth; disk is a best-effort mirror. Mutations
// always succeed against memory and hand persistence to the repository's
// writer queue, so a full disk never breaks the user-visible history.
package history

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.klb.dev/clipstash/internal/item"
)

// Size bounds for the history, clamped onto whatever the config supplies.
const (
	MinItems        = 10
	MaxItems        = 1000
	DefaultMaxItems = 100

	// DefaultRetention is how long items live when auto-clean is on.
	DefaultRetention = 7 * 24 * time.Hour
)

// Repository is the persistence surface the engine drives. *store.Repository
// implements it; tests substitute fakes.
type Repository interface {
	Load() []item.Item
	Save(items []item.Item)
	SaveAsync(items []item.Item)
	ClearAll()
}

// Options carries the runtime-tunable policy surface.
type Options struct {
	MaxItems  int
	AutoClean bool
	Retention time.Duration
}

func (o Options) normalized() Options {
	if o.MaxItems == 0 {
		o.MaxItems = DefaultMaxItems
	}
	o.MaxItems = clampLimit(o.MaxItems)
	if o.Retention <= 0 {
		o.Retention = DefaultRetention
	}
	return o
}

func clampLimit(limit int) int {
	if limit < MinItems {
		return MinItems
	}
	if limit > MaxItems {
		return MaxItems
	}
	return limit
}

// Engine is the authoritative history state machine. All public methods are
// safe for concurrent use; internally every mutation is serialized by one
// mutex, and persistence is serialized by the repository's writer queue.
// Persistence jobs are handed to the repository while the mutation lock is
// still held, so the writer queue receives snapshots in mutation order. The
// lock is never held across disk I/O: SaveAsync only enqueues.
type Engine struct {
	mu    sync.Mutex
	items []item.Item
	repo  Repository
	opts  Options
}

// New hydrates the engine from the repository, applies the current size and
// age policy, and re-saves synchronously if hydration trimmed anything.
func New(repo Repository, opts Options) *Engine {
	e := &Engine{repo: repo, opts: opts.normalized()}

	loaded := repo.Load()
	e.items = loaded
	e.trimSize()
	e.trimAge()
	if len(e.items) != len(loaded) {
		slog.Info("trimmed history on load", "loaded", len(loaded), "kept", len(e.items))
		repo.Save(e.snapshot())
	}
	slog.Info("history loaded", "items", len(e.items), "max_items", e.opts.MaxItems)
	return e
}

// Insert adds a candidate to the front of the history.
//
// A candidate equal to the current front is a no-op: re-reading the same
// clipboard value must not inflate the history. A candidate equal to an
// older item moves that item (with its id and classifier cache) to the
// front instead of storing a second copy.
func (e *Engine) Insert(it item.Item) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.items) > 0 && e.items[0].Equal(it) {
		return
	}
	if idx := e.indexOfEqual(it); idx >= 0 {
		e.moveToFront(idx)
	} else {
		e.items = append([]item.Item{it}, e.items...)
	}
	e.trimSize()
	e.trimAge()
	e.repo.SaveAsync(e.snapshot())
}

// Remove deletes the item with the given id, if present.
func (e *Engine) Remove(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexOf(id)
	if idx < 0 {
		return
	}
	e.items = append(e.items[:idx:idx], e.items[idx+1:]...)
	e.repo.SaveAsync(e.snapshot())
}

// Promote moves the item with the given id to the front. Length and content
// never change, only order.
func (e *Engine) Promote(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexOf(id)
	if idx < 0 {
		return
	}
	e.moveToFront(idx)
	e.repo.SaveAsync(e.snapshot())
}

// Clear empties the history and its backing files. Clearing is
// privacy-sensitive, so both steps run synchronously through the writer
// queue, and the mutation lock stays held until they drain: a save queued
// before the clear completes first, and no concurrent mutator can enqueue a
// stale pre-clear snapshot behind it.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = nil
	e.repo.ClearAll()
	e.repo.Save(nil)
}

// ApplyMaxItems re-clamps the history when the limit changes at runtime.
// It always persists, even if nothing was trimmed.
func (e *Engine) ApplyMaxItems(limit int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.MaxItems = clampLimit(limit)
	e.trimSize()
	e.repo.SaveAsync(e.snapshot())
}

// UpdateClassifierCache merges non-nil extraction results into an image
// item's cache. A nil argument leaves the existing value untouched; a
// pointer to "" is a valid negative result ("classifier ran, found
// nothing") and is stored.
func (e *Engine) UpdateClassifierCache(id uuid.UUID, text, barcode *string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexOf(id)
	if idx < 0 || e.items[idx].Kind != item.KindImage {
		return
	}
	if text != nil {
		e.items[idx].CachedText = text
	}
	if barcode != nil {
		e.items[idx].CachedBarcode = barcode
	}
	e.repo.SaveAsync(e.snapshot())
}

// PromoteOrInsertResult takes a classifier result string and either promotes
// the equal item already in the history or inserts it as a new text/url
// item. Re-extracting the same image therefore never duplicates entries.
func (e *Engine) PromoteOrInsertResult(text string) item.Item {
	cand := item.FromString(text)

	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.indexOfEqual(cand); idx >= 0 {
		e.moveToFront(idx)
		cand = e.items[0]
	} else {
		e.items = append([]item.Item{cand}, e.items...)
		e.trimSize()
		e.trimAge()
	}
	e.repo.SaveAsync(e.snapshot())
	return cand
}

// Filter returns items whose text or url contains query case-insensitively.
// Images never match text search. An empty (or all-space) query returns the
// full history in order.
func (e *Engine) Filter(query string) []item.Item {
	query = strings.TrimSpace(query)
	e.mu.Lock()
	defer e.mu.Unlock()
	if query == "" {
		return e.snapshot()
	}
	query = strings.ToLower(query)
	var out []item.Item
	for _, it := range e.items {
		if it.Kind == item.KindImage {
			continue
		}
		if strings.Contains(strings.ToLower(it.Body()), query) {
			out = append(out, it)
		}
	}
	return out
}

// Items returns a copy of the full history, most recent first.
func (e *Engine) Items() []item.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Get returns the item with the given id.
func (e *Engine) Get(id uuid.UUID) (item.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.indexOf(id); idx >= 0 {
		return e.items[idx], true
	}
	return item.Item{}, false
}

// Len returns the current history length.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

// Locked helpers. Callers hold e.mu.

func (e *Engine) snapshot() []item.Item {
	out := make([]item.Item, len(e.items))
	copy(out, e.items)
	return out
}

func (e *Engine) indexOf(id uuid.UUID) int {
	for i, it := range e.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) indexOfEqual(cand item.Item) int {
	for i, it := range e.items {
		if it.Equal(cand) {
			return i
		}
	}
	return -1
}

func (e *Engine) moveToFront(idx int) {
	if idx == 0 {
		return
	}
	moved := e.items[idx]
	e.items = append(e.items[:idx:idx], e.items[idx+1:]...)
	e.items = append([]item.Item{moved}, e.items...)
}

func (e *Engine) trimSize() {
	if len(e.items) > e.opts.MaxItems {
		e.items = e.items[:e.opts.MaxItems:e.opts.MaxItems]
	}
}

func (e *Engine) trimAge() {
	if !e.opts.AutoClean {
		return
	}
	cutoff := time.Now().Add(-e.opts.Retention)
	kept := e.items[:0:0]
	for _, it := range e.items {
		if !it.Time.Before(cutoff) {
			kept = append(kept, it)
		}
	}
	e.items = kept
}
