package camera

import (
	"context"
	"sync"
	"time"

	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/metrics"
	cameraport "github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/camera"
)

type Outcome string

const (
	OutcomeCompleted  Outcome = "completed"
	OutcomeSuperseded Outcome = "superseded"
	OutcomeCancelled  Outcome = "cancelled"
)

// Flight is one finished fly-to transition.
type Flight struct {
	ID       uint64
	From     cameraport.Position
	To       cameraport.Target
	Duration time.Duration
	Outcome  Outcome
}

const defaultHistory = 64

// Animator is an in-process camera. It interpolates the viewport position on
// a ticker goroutine and keeps a short history of finished flights.
type Animator struct {
	step time.Duration

	mu      sync.Mutex
	pos     cameraport.Position
	seq     uint64
	cur     *flight
	history []Flight
}

type flight struct {
	Flight
	cancel     context.CancelFunc
	done       chan struct{}
	superseded bool
}

// NewAnimator starts at the given position and updates it every step while a
// flight is running.
func NewAnimator(start cameraport.Position, step time.Duration) *Animator {
	if step <= 0 {
		step = 16 * time.Millisecond
	}
	return &Animator{step: step, pos: start}
}

func (a *Animator) FlyTo(ctx context.Context, t cameraport.Target, d time.Duration) error {
	if err := t.Validate(); err != nil {
		return err
	}

	fctx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	if a.cur != nil {
		a.cur.superseded = true
		a.cur.cancel()
	}
	a.seq++
	f := &flight{
		Flight: Flight{ID: a.seq, From: a.pos, To: t, Duration: d},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	a.cur = f
	a.mu.Unlock()

	go a.run(fctx, f)
	return nil
}

func (a *Animator) Position() cameraport.Position {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pos
}

// Flights returns finished flights, oldest first.
func (a *Animator) Flights() []Flight {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Flight(nil), a.history...)
}

// Wait blocks until no flight is running or ctx is done.
func (a *Animator) Wait(ctx context.Context) error {
	for {
		a.mu.Lock()
		cur := a.cur
		a.mu.Unlock()
		if cur == nil {
			return nil
		}
		select {
		case <-cur.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *Animator) run(ctx context.Context, f *flight) {
	defer close(f.done)
	defer f.cancel()

	if f.Duration <= 0 {
		a.finish(f, true)
		return
	}

	ticker := time.NewTicker(a.step)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.finish(f, false)
			return
		case now := <-ticker.C:
			p := float64(now.Sub(start)) / float64(f.Duration)
			if p >= 1 {
				a.finish(f, true)
				return
			}
			a.advance(f, easeInOutCubic(p))
		}
	}
}

func (a *Animator) advance(f *flight, k float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cur != f {
		return
	}
	a.pos = cameraport.Position{
		Latitude:  lerp(f.From.Latitude, f.To.Latitude, k),
		Longitude: lerp(f.From.Longitude, f.To.Longitude, k),
		Zoom:      lerp(f.From.Zoom, f.To.Zoom, k),
	}
}

func (a *Animator) finish(f *flight, completed bool) {
	a.mu.Lock()
	switch {
	case completed && a.cur == f:
		f.Outcome = OutcomeCompleted
		a.pos = cameraport.Position(f.To)
	case f.superseded:
		f.Outcome = OutcomeSuperseded
	default:
		f.Outcome = OutcomeCancelled
	}
	if a.cur == f {
		a.cur = nil
	}
	a.history = append(a.history, f.Flight)
	if len(a.history) > defaultHistory {
		a.history = a.history[len(a.history)-defaultHistory:]
	}
	a.mu.Unlock()

	metrics.CameraFlightsTotal.WithLabelValues(string(f.Outcome)).Inc()
}

func lerp(a, b, k float64) float64 { return a + (b-a)*k }

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
