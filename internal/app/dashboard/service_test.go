package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	memclock "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/memory/clock"
	memnotifier "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/memory/notifier"
	memrecordsource "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/memory/recordsource"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/logger"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/notifier"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/recordsource"
)

func newTestService(src recordsource.Source) (*Service, *memnotifier.Recorder) {
	rec := memnotifier.NewRecorder(10)
	clk := memclock.NewManualClock(time.Unix(100, 0).UTC())
	return NewService(NewStore(), src, rec, clk, logger.Discard()), rec
}

func TestService_Load_Success(t *testing.T) {
	t.Parallel()

	src := memrecordsource.NewStatic([]domain.Record{
		rec("1", "b", domain.StatusActive),
		rec("2", "a", domain.StatusPending),
	})
	svc, notes := newTestService(src)

	n, err := svc.Load(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Load()=%d err=%v", n, err)
	}
	if got := len(svc.Store().Records()); got != 2 {
		t.Fatalf("store has %d records", got)
	}
	last, ok := notes.Last()
	if !ok || last.Level != notifier.LevelSuccess || last.Message != "Loaded 2 projects" {
		t.Fatalf("notification=%+v", last)
	}
}

func TestService_Load_FailureKeepsRecords(t *testing.T) {
	t.Parallel()

	fail := false
	src := recordsource.Func(func(ctx context.Context) ([]domain.Record, error) {
		if fail {
			return nil, recordsource.ErrUnavailable
		}
		return []domain.Record{rec("1", "a", domain.StatusActive)}, nil
	})
	svc, notes := newTestService(src)
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("first Load() err=%v", err)
	}

	fail = true
	_, err := svc.Load(context.Background())
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 503 || ae.Code != CodeLoadFailed {
		t.Fatalf("err=%v (type=%T), want LOAD_FAILED 503", err, err)
	}
	if !errors.Is(err, recordsource.ErrUnavailable) {
		t.Fatalf("cause not wrapped: %v", err)
	}
	if len(svc.Store().Records()) != 1 {
		t.Fatalf("failed load cleared the record set")
	}

	errs := 0
	for _, n := range notes.All() {
		if n.Level == notifier.LevelError {
			errs++
			if n.Message != "Failed to load projects" {
				t.Fatalf("message=%q", n.Message)
			}
		}
	}
	if errs != 1 {
		t.Fatalf("error notifications=%d, want 1", errs)
	}
}

func TestService_UpdateFilter(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(memrecordsource.NewStatic(nil))

	status := "on hold"
	search := "bridge"
	f, err := svc.UpdateFilter(FilterInput{Status: &status, Search: &search})
	if err != nil {
		t.Fatalf("UpdateFilter() err=%v", err)
	}
	if f.Status != domain.StatusOnHold || f.Search != "bridge" {
		t.Fatalf("filter=%+v", f)
	}

	bad := "Archived"
	f, err = svc.UpdateFilter(FilterInput{Status: &bad})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 || ae.Code != CodeInvalidFilterValue {
		t.Fatalf("err=%v, want INVALID_FILTER_VALUE", err)
	}
	if f.Status != domain.StatusOnHold {
		t.Fatalf("rejected update changed the filter: %+v", f)
	}

	all := "All"
	if f, _ := svc.UpdateFilter(FilterInput{Status: &all}); f.Status != domain.StatusAll || f.Search != "bridge" {
		t.Fatalf("partial update: %+v", f)
	}
}

func TestService_SetSort(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(memrecordsource.NewStatic(nil))

	spec, err := svc.SetSort("lastUpdated")
	if err != nil || spec != (domain.SortSpec{Key: domain.SortByLastUpdated, Direction: domain.Ascending}) {
		t.Fatalf("SetSort()=%+v err=%v", spec, err)
	}
	_, err = svc.SetSort("budget")
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Code != CodeInvalidSortKey {
		t.Fatalf("err=%v, want INVALID_SORT_KEY", err)
	}
}
