// Package contracttest holds behaviour suites shared by every implementation
// of an outbound port.
package contracttest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/recordsource"
)

type CleanupFunc = func()

// SourceFactory returns a source whose backing store holds exactly seed.
// Seed rows are written as given, without validation, so backends that
// store raw rows can exercise the load-time filtering.
type SourceFactory func(t *testing.T, seed []domain.Record) (recordsource.Source, CleanupFunc)

func Seed() []domain.Record {
	at := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	return []domain.Record{
		{ID: "p-1", Name: "Harbor Tunnel", Latitude: 37.7749, Longitude: -122.4194, Status: domain.StatusActive, LastUpdated: at},
		{ID: "p-2", Name: "Ring  Road ", Latitude: -33.8688, Longitude: 151.2093, Status: "on hold", LastUpdated: at.Add(-24 * time.Hour)},
		{ID: "p-3", Name: "Solar Farm", Latitude: 0, Longitude: 0, Status: domain.StatusCompleted, LastUpdated: at.Add(-48 * time.Hour)},
		{ID: "p-4", Name: "Bad Status", Latitude: 1, Longitude: 1, Status: "Archived", LastUpdated: at},
		{ID: "p-5", Name: "Bad Latitude", Latitude: 91, Longitude: 1, Status: domain.StatusPending, LastUpdated: at},
	}
}

func RunRecordSource(t *testing.T, newSource SourceFactory) {
	t.Helper()

	t.Run("loads valid records", func(t *testing.T) {
		src, cleanup := newSource(t, Seed())
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		got, err := src.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		slices.SortFunc(got, func(a, b domain.Record) int { return strings.Compare(string(a.ID), string(b.ID)) })

		if len(got) != 3 {
			t.Fatalf("expected 3 valid records, got %d: %+v", len(got), got)
		}
		want := Seed()[:3]
		for i := range want {
			g, w := got[i], want[i]
			if g.ID != w.ID || g.Latitude != w.Latitude || g.Longitude != w.Longitude {
				t.Fatalf("record %d: got %+v want %+v", i, g, w)
			}
			if !g.LastUpdated.Equal(w.LastUpdated) || g.LastUpdated.Location() != time.UTC {
				t.Fatalf("record %d: LastUpdated=%v want %v UTC", i, g.LastUpdated, w.LastUpdated)
			}
		}
		if got[1].Name != "Ring Road" || got[1].Status != domain.StatusOnHold {
			t.Fatalf("expected normalized name and status, got %+v", got[1])
		}
	})

	t.Run("duplicate ids keep the first row", func(t *testing.T) {
		at := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
		seed := []domain.Record{
			{ID: "dup", Name: "First Write", Latitude: 1, Longitude: 1, Status: domain.StatusActive, LastUpdated: at},
			{ID: "other", Name: "Other", Latitude: 2, Longitude: 2, Status: domain.StatusPending, LastUpdated: at},
			{ID: "dup", Name: "Second Write", Latitude: 3, Longitude: 3, Status: domain.StatusCompleted, LastUpdated: at},
		}
		src, cleanup := newSource(t, seed)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		got, err := src.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %+v", got)
		}
		for _, r := range got {
			if r.ID == "dup" && (r.Name != "First Write" || r.Status != domain.StatusActive) {
				t.Fatalf("duplicate id resolved to %+v, want the first row", r)
			}
		}
	})

	t.Run("empty store", func(t *testing.T) {
		src, cleanup := newSource(t, nil)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		got, err := src.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no records, got %+v", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		src, cleanup := newSource(t, Seed())
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := src.Load(ctx); err == nil {
			t.Fatalf("expected error for cancelled context")
		} else if !errors.Is(err, context.Canceled) && !errors.Is(err, recordsource.ErrUnavailable) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("caller owns the slice", func(t *testing.T) {
		src, cleanup := newSource(t, Seed())
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		first, err := src.Load(context.Background())
		if err != nil || len(first) == 0 {
			t.Fatalf("Load: %v", err)
		}
		first[0].Name = "mutated"
		second, err := src.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		for _, r := range second {
			if r.Name == "mutated" {
				t.Fatalf("second load observed a caller's mutation")
			}
		}
	})
}
