// Package monitor watches the system clipboard and emits classified history
// candidates.
//
// Detection is poll-based: each tick compares the clipboard's revision
// counter against the last observed value, so content is only read when
// something actually changed. A single clipboard write usually exposes
// several representations at once; classification takes the richest one,
// image over url over text.
package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.klb.dev/clipstash/internal/clip"
	"go.klb.dev/clipstash/internal/item"
)

// DefaultInterval is the poll period used when the config supplies none.
const DefaultInterval = 500 * time.Millisecond

// Monitor polls a clipboard and delivers candidate items in order on Items.
type Monitor struct {
	board    clip.Clipboard
	interval time.Duration
	items    chan item.Item

	lastRev   uint64
	selfWrite atomic.Bool
}

// New creates a monitor for board. The current revision is recorded at
// construction so content already on the clipboard is not re-ingested.
func New(board clip.Clipboard, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		board:    board,
		interval: interval,
		items:    make(chan item.Item, 16),
		lastRev:  board.Revision(),
	}
}

// Items returns the ordered candidate stream. The channel is closed when
// Run returns.
func (m *Monitor) Items() <-chan item.Item { return m.items }

// MarkSelfWrite arms a one-shot flag telling the monitor that the next
// revision change is our own doing (the engine is about to write a recalled
// item to the clipboard) and must be swallowed instead of re-ingested.
// Call immediately before any engine-initiated clipboard write.
func (m *Monitor) MarkSelfWrite() { m.selfWrite.Store(true) }

// Run polls until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	slog.Info("clipboard monitor started",
		"backend", m.board.Name(),
		"interval", m.interval,
	)
	t := time.NewTicker(m.interval)
	defer t.Stop()
	defer close(m.items)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.check(ctx)
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	rev := m.board.Revision()
	if rev == m.lastRev {
		return
	}
	m.lastRev = rev

	// Exactly one revision bump per self-write is swallowed; anything after
	// that is an external actor again.
	if m.selfWrite.Swap(false) {
		slog.Debug("ignoring self-inflicted clipboard change", "revision", rev)
		return
	}

	it, ok := m.read()
	if !ok {
		return
	}
	it.Log("clipboard changed")

	select {
	case m.items <- it:
	case <-ctx.Done():
	}
}

// read captures and classifies the current clipboard content once.
// Priority: image beats url beats text.
func (m *Monitor) read() (item.Item, bool) {
	if png := m.board.Read(clip.FmtImage); len(png) > 0 {
		return item.NewImage(png), true
	}
	if text := m.board.Read(clip.FmtText); len(text) > 0 {
		return item.FromString(string(text)), true
	}
	return item.Item{}, false
}
