// Package selection keeps the single selected record consistent across the
// table and the map: it is the one write path for clicks, and it moves the
// map camera when the selection changes.
package selection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Overland-East-Bay/geo-projects-view/internal/app/dashboard"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/window"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/camera"
)

const (
	DefaultZoom     = 12
	DefaultDuration = 1500 * time.Millisecond
)

type Options struct {
	Zoom     float64
	Duration time.Duration
}

func DefaultOptions() Options {
	return Options{Zoom: DefaultZoom, Duration: DefaultDuration}
}

type Coordinator struct {
	store *dashboard.Store
	cam   camera.Camera
	opts  Options
	log   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	target  camera.Target
	active  bool
	flights uint64
	unsub   func()
	closed  bool
}

// NewCoordinator subscribes to store. Call Close to detach.
func NewCoordinator(store *dashboard.Store, cam camera.Camera, opts Options, log *slog.Logger) *Coordinator {
	if opts.Zoom <= 0 {
		opts.Zoom = DefaultZoom
	}
	if opts.Duration < 0 {
		opts.Duration = 0
	}
	c := &Coordinator{store: store, cam: cam, opts: opts, log: log}
	c.unsub = store.Subscribe(c.onChange)
	return c
}

// Click is the write path for both row and marker clicks.
func (c *Coordinator) Click(id domain.RecordID) {
	c.store.Select(id)
}

func (c *Coordinator) Clear() {
	c.store.ClearSelection()
}

// Highlighted reports whether the row or marker for id should be drawn as
// selected.
func (c *Coordinator) Highlighted(id domain.RecordID) bool {
	return c.store.Selection().Is(id)
}

// Target returns the destination of the flight for the current selection.
// ok is false when no flight is outstanding: nothing has been selected yet,
// or the selection was cleared or points at a missing record.
func (c *Coordinator) Target() (t camera.Target, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target, c.active
}

// Flights is the number of fly-to calls issued so far.
func (c *Coordinator) Flights() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flights
}

// ScrollTarget returns the scroll offset that reveals the selected row in v.
// ok is false when nothing is selected or the selected record is filtered out.
func (c *Coordinator) ScrollTarget(v *window.Virtualizer, align window.Align) (offset float64, ok bool) {
	sel := c.store.Selection()
	if !sel.Valid {
		return 0, false
	}
	i, ok := v.IndexOf(sel.ID)
	if !ok {
		return 0, false
	}
	return v.OffsetForIndex(i, align)
}

// Close unsubscribes from the store and abandons any flight in progress.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.unsub()
	c.stopLocked()
}

func (c *Coordinator) onChange(ch dashboard.Change) {
	if ch.Kind != dashboard.ChangeSelection {
		return
	}

	sel := c.store.Selection()
	var (
		rec   domain.Record
		found bool
	)
	if sel.Valid {
		rec, found = c.store.Lookup(sel.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if !found {
		c.stopLocked()
		if sel.Valid {
			c.log.Debug("selection_dangling", "id", sel.ID)
		}
		return
	}

	// The new flight is issued before the old one is released so the camera
	// sees it as superseded rather than cancelled.
	t := camera.Target{Latitude: rec.Latitude, Longitude: rec.Longitude, Zoom: c.opts.Zoom}
	ctx, cancel := context.WithCancel(context.Background())
	if err := c.cam.FlyTo(ctx, t, c.opts.Duration); err != nil {
		cancel()
		c.stopLocked()
		c.log.Warn("camera_fly_to_error", "id", rec.ID, "err", err)
		return
	}
	prev := c.cancel
	c.cancel = cancel
	c.target = t
	c.active = true
	c.flights++
	if prev != nil {
		prev()
	}
	c.log.Debug("camera_fly_to", "id", rec.ID, "lat", t.Latitude, "lon", t.Longitude)
}

func (c *Coordinator) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.target = camera.Target{}
	c.active = false
}
