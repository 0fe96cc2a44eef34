// Package focus restores foreground focus to the application that was
// active before a recall and injects a paste keystroke into it.
//
// Activation confirmation is two-path: a confirmation poll watches for the
// target becoming foreground, and a bounded timeout pastes anyway if the
// confirmation never arrives (the app was already foreground, or the OS
// swallowed the transition). Whichever path fires first sends exactly one
// paste; a newer selection disarms any unresolved wait.
package focus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// ActivateTimeout bounds how long we wait for the target application to
	// confirm foreground before pasting anyway.
	ActivateTimeout = 200 * time.Millisecond

	confirmInterval = 20 * time.Millisecond
)

// App identifies a running application that can receive focus.
type App struct {
	PID  int32
	Name string
}

// Apps enumerates and drives application focus. The robotgo implementation
// lives in robot.go; tests substitute fakes.
type Apps interface {
	// Foreground returns the currently foregrounded application, if any.
	Foreground() (App, bool)

	// Activate asks the OS to bring app to the foreground.
	Activate(app App) error

	// IsForeground reports whether app currently has focus.
	IsForeground(app App) bool

	// Paste synthesizes a single paste keystroke into whatever has focus.
	Paste() error
}

// Coordinator sequences focus restoration and paste injection. At most one
// paste wait is pending at a time.
type Coordinator struct {
	apps            Apps
	activateTimeout time.Duration
	confirmEvery    time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCoordinator builds a coordinator over the given focus service.
func NewCoordinator(apps Apps) *Coordinator {
	return &Coordinator{
		apps:            apps,
		activateTimeout: ActivateTimeout,
		confirmEvery:    confirmInterval,
	}
}

// Capture snapshots the currently foregrounded application. Call before
// showing the picker so the recall knows where to paste.
func (c *Coordinator) Capture() (App, bool) {
	return c.apps.Foreground()
}

// PasteInto asynchronously activates app and injects one paste keystroke
// once the app is confirmed foreground, or after the activation timeout,
// whichever comes first. Any unresolved previous wait is disarmed: only one
// pending paste exists at a time. Never blocks the caller.
func (c *Coordinator) PasteInto(app App) {
	ctx := c.arm()
	go c.run(ctx, app)
}

// Restore re-activates app without pasting (the dismiss path). Any pending
// paste wait is disarmed.
func (c *Coordinator) Restore(app App) {
	c.disarm()
	if err := c.apps.Activate(app); err != nil {
		slog.Warn("restoring focus", "app", app.Name, "err", err)
	}
}

// Disarm cancels any pending paste wait.
func (c *Coordinator) Disarm() { c.disarm() }

func (c *Coordinator) arm() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	return ctx
}

func (c *Coordinator) disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Coordinator) run(ctx context.Context, app App) {
	if err := c.apps.Activate(app); err != nil {
		// Keep going: the timeout path pastes into whatever has focus,
		// matching the bounded-fallback contract.
		slog.Warn("activating app", "app", app.Name, "err", err)
	}

	deadline := time.NewTimer(c.activateTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(c.confirmEvery)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if c.apps.IsForeground(app) {
				c.paste(app, "confirmed")
				return
			}
		case <-deadline.C:
			c.paste(app, "timeout")
			return
		}
	}
}

func (c *Coordinator) paste(app App, path string) {
	if err := c.apps.Paste(); err != nil {
		slog.Warn("paste injection failed", "app", app.Name, "err", err)
		return
	}
	slog.Debug("paste injected", "app", app.Name, "path", path)
}
