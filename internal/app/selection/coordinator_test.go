package selection

import (
	"context"
	"sync"
	"testing"
	"time"

	memcamera "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/memory/camera"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/dashboard"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/window"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/logger"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/camera"
)

type flyCall struct {
	ctx    context.Context
	target camera.Target
	d      time.Duration
}

type fakeCamera struct {
	mu    sync.Mutex
	calls []flyCall
}

func (f *fakeCamera) FlyTo(ctx context.Context, t camera.Target, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, flyCall{ctx: ctx, target: t, d: d})
	return nil
}

func (f *fakeCamera) Position() camera.Position { return camera.Position{} }

func (f *fakeCamera) Calls() []flyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]flyCall(nil), f.calls...)
}

func newStore() *dashboard.Store {
	s := dashboard.NewStore()
	s.ReplaceRecords([]domain.Record{
		{ID: "sf", Name: "Bay Bridge", Latitude: 37.79, Longitude: -122.39, Status: domain.StatusActive},
		{ID: "ny", Name: "Harbor Tunnel", Latitude: 40.7, Longitude: -74.0, Status: domain.StatusPending},
	})
	return s
}

func TestCoordinator_ClickFliesToRecord(t *testing.T) {
	t.Parallel()

	store := newStore()
	cam := &fakeCamera{}
	c := NewCoordinator(store, cam, DefaultOptions(), logger.Discard())
	defer c.Close()

	c.Click("sf")

	calls := cam.Calls()
	if len(calls) != 1 {
		t.Fatalf("FlyTo calls=%d, want 1", len(calls))
	}
	want := camera.Target{Latitude: 37.79, Longitude: -122.39, Zoom: 12}
	if calls[0].target != want || calls[0].d != 1500*time.Millisecond {
		t.Fatalf("call=%+v", calls[0])
	}
	if got, ok := c.Target(); !ok || got != want {
		t.Fatalf("Target()=%+v ok=%v", got, ok)
	}
	if !c.Highlighted("sf") || c.Highlighted("ny") {
		t.Fatalf("highlight mismatch")
	}
}

func TestCoordinator_DanglingSelectionDoesNotMove(t *testing.T) {
	t.Parallel()

	store := newStore()
	cam := &fakeCamera{}
	c := NewCoordinator(store, cam, DefaultOptions(), logger.Discard())
	defer c.Close()

	c.Click("missing")
	if n := len(cam.Calls()); n != 0 {
		t.Fatalf("dangling selection flew the camera %d times", n)
	}
	if !store.Selection().Is("missing") {
		t.Fatalf("dangling id should still be the selection")
	}
	if _, ok := c.Target(); ok {
		t.Fatalf("Target() reported a flight")
	}
}

func TestCoordinator_FilteredOutSelectionStillFlies(t *testing.T) {
	t.Parallel()

	store := newStore()
	cam := &fakeCamera{}
	c := NewCoordinator(store, cam, DefaultOptions(), logger.Discard())
	defer c.Close()

	st := domain.StatusPending
	store.UpdateFilter(domain.FilterPatch{Status: &st})
	store.SetSort(domain.SortByLatitude)
	if n := len(cam.Calls()); n != 0 {
		t.Fatalf("filter/sort moved the camera")
	}

	c.Click("sf")
	if n := len(cam.Calls()); n != 1 {
		t.Fatalf("FlyTo calls=%d, want 1 (record exists in the full set)", n)
	}
}

func TestCoordinator_NewSelectionSupersedesFlight(t *testing.T) {
	t.Parallel()

	store := newStore()
	cam := &fakeCamera{}
	c := NewCoordinator(store, cam, DefaultOptions(), logger.Discard())
	defer c.Close()

	c.Click("sf")
	c.Click("ny")
	calls := cam.Calls()
	if len(calls) != 2 {
		t.Fatalf("calls=%d", len(calls))
	}
	if calls[0].ctx.Err() == nil {
		t.Fatalf("first flight was not cancelled")
	}
	if calls[1].ctx.Err() != nil {
		t.Fatalf("latest flight cancelled")
	}

	c.Clear()
	if calls[1].ctx.Err() == nil {
		t.Fatalf("clearing did not cancel the flight")
	}
	if len(cam.Calls()) != 2 {
		t.Fatalf("clearing issued a flight")
	}
}

func TestCoordinator_WithAnimator(t *testing.T) {
	t.Parallel()

	store := newStore()
	anim := memcamera.NewAnimator(camera.Position{Latitude: 20, Zoom: 2}, time.Millisecond)
	c := NewCoordinator(store, anim, Options{Zoom: 12, Duration: 0}, logger.Discard())
	defer c.Close()

	c.Click("ny")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := anim.Wait(ctx); err != nil {
		t.Fatalf("Wait() err=%v", err)
	}
	if got := anim.Position(); got.Latitude != 40.7 || got.Longitude != -74.0 || got.Zoom != 12 {
		t.Fatalf("Position()=%+v", got)
	}
}

func TestCoordinator_CloseDetaches(t *testing.T) {
	t.Parallel()

	store := newStore()
	cam := &fakeCamera{}
	c := NewCoordinator(store, cam, DefaultOptions(), logger.Discard())
	c.Close()
	c.Close()

	c.Click("sf")
	if len(cam.Calls()) != 0 {
		t.Fatalf("closed coordinator still reacts")
	}
}

func TestCoordinator_ScrollTarget(t *testing.T) {
	t.Parallel()

	store := newStore()
	c := NewCoordinator(store, &fakeCamera{}, DefaultOptions(), logger.Discard())
	defer c.Close()

	v := window.New(window.Options{EstimateSize: 50})
	keys := make([]domain.RecordID, 0, 100)
	for i := 0; i < 98; i++ {
		keys = append(keys, domain.RecordID("pad"+string(rune('a'+i%26))+string(rune('a'+i/26))))
	}
	keys = append(keys, "sf", "ny")
	v.SetItems(keys)
	v.SetViewport(0, 500)

	if _, ok := c.ScrollTarget(v, window.AlignStart); ok {
		t.Fatalf("no selection should give no target")
	}
	c.Click("ny")
	off, ok := c.ScrollTarget(v, window.AlignStart)
	if !ok || off != 4500 {
		// row 99 starts at 4950; clamped to total(5000)-height(500).
		t.Fatalf("ScrollTarget()=%v ok=%v, want 4500", off, ok)
	}
	c.Click("missing")
	if _, ok := c.ScrollTarget(v, window.AlignStart); ok {
		t.Fatalf("record not in list should give no target")
	}
}

func TestCoordinator_ReselectRecordsSupersededFlight(t *testing.T) {
	t.Parallel()

	store := newStore()
	anim := memcamera.NewAnimator(camera.Position{Latitude: 20, Zoom: 2}, time.Millisecond)
	c := NewCoordinator(store, anim, Options{Zoom: 12, Duration: 10 * time.Second}, logger.Discard())
	defer c.Close()

	c.Click("sf")
	c.Click("ny")
	c.Clear()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := anim.Wait(ctx); err != nil {
		t.Fatalf("Wait() err=%v", err)
	}
	// The first flight's goroutine may record itself after the second's.
	deadline := time.Now().Add(2 * time.Second)
	for len(anim.Flights()) < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	got := map[uint64]memcamera.Outcome{}
	for _, f := range anim.Flights() {
		got[f.ID] = f.Outcome
	}
	if got[1] != memcamera.OutcomeSuperseded {
		t.Fatalf("first flight outcome=%q, want superseded", got[1])
	}
	if got[2] != memcamera.OutcomeCancelled {
		t.Fatalf("second flight outcome=%q, want cancelled", got[2])
	}
}

func TestCoordinator_TargetClearsWithSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		follow func(c *Coordinator)
	}{
		{name: "clear", follow: func(c *Coordinator) { c.Clear() }},
		{name: "dangling", follow: func(c *Coordinator) { c.Click("missing") }},
		{name: "close", follow: func(c *Coordinator) { c.Close() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cam := &fakeCamera{}
			c := NewCoordinator(newStore(), cam, DefaultOptions(), logger.Discard())
			defer c.Close()

			c.Click("sf")
			if _, ok := c.Target(); !ok {
				t.Fatalf("Target() not set after click")
			}
			tt.follow(c)
			if got, ok := c.Target(); ok || got != (camera.Target{}) {
				t.Fatalf("Target()=%+v ok=%v, want none", got, ok)
			}
			if cam.Calls()[0].ctx.Err() == nil {
				t.Fatalf("flight was not cancelled")
			}
			if c.Flights() != 1 {
				t.Fatalf("Flights()=%d, want 1", c.Flights())
			}
		})
	}
}
