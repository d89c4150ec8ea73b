package camera

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidTarget = errors.New("invalid camera target")

// Target is where a flight ends.
type Target struct {
	Latitude  float64
	Longitude float64
	Zoom      float64
}

func (t Target) Validate() error {
	if math.IsNaN(t.Latitude) || t.Latitude < -90 || t.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidTarget, t.Latitude)
	}
	if math.IsNaN(t.Longitude) || t.Longitude < -180 || t.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidTarget, t.Longitude)
	}
	if math.IsNaN(t.Zoom) || t.Zoom < 0 {
		return fmt.Errorf("%w: zoom %v", ErrInvalidTarget, t.Zoom)
	}
	return nil
}

// Position is the current viewport center.
type Position struct {
	Latitude  float64
	Longitude float64
	Zoom      float64
}

// Camera animates the map viewport.
//
// FlyTo starts an animated transition and returns without waiting for it.
// Cancelling ctx abandons the flight wherever it is; starting a new flight
// supersedes any flight still in progress. Flights never queue.
type Camera interface {
	FlyTo(ctx context.Context, t Target, d time.Duration) error
	Position() Position
}
