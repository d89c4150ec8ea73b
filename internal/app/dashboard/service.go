package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/metrics"
	clockport "github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/clock"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/notifier"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/recordsource"
)

// FilterInput is an unvalidated partial filter update as received from a UI
// or API. Nil fields are left unchanged.
type FilterInput struct {
	Status *string
	Search *string
}

// Service is the boundary in front of the Store: it validates user input,
// loads the record set and reports load outcomes to the user.
type Service struct {
	store    *Store
	source   recordsource.Source
	notifier notifier.Notifier
	clk      clockport.Clock
	log      *slog.Logger

	// loadMu serializes Load; loadedGen is the generation now in the store.
	loadMu    sync.Mutex
	loadedGen uint64
	loaded    bool
}

func NewService(store *Store, source recordsource.Source, n notifier.Notifier, clk clockport.Clock, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		source:   source,
		notifier: n,
		clk:      clk,
		log:      log,
	}
}

func (s *Service) Store() *Store { return s.store }

// Load fetches the record set and swaps it into the store. On failure the
// current record set is left untouched, a single error notification is
// emitted and a LOAD_FAILED error is returned.
//
// When the source is a recordsource.Generational and reports the generation
// already in the store, Load returns its size without touching the store or
// notifying.
func (s *Service) Load(ctx context.Context) (int, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	records, gen, err := s.fetch(ctx)
	if err != nil {
		metrics.LoadTotal.WithLabelValues("error").Inc()
		s.log.Error("records_load_error", "err", err)
		s.notify(ctx, notifier.LevelError, "Failed to load projects")
		return 0, &Error{
			Status:  503,
			Code:    CodeLoadFailed,
			Message: "Failed to load projects",
			Err:     err,
		}
	}

	if gen != 0 && s.loaded && gen == s.loadedGen {
		metrics.LoadTotal.WithLabelValues("unchanged").Inc()
		s.log.Debug("records_unchanged", "count", len(records), "gen", gen)
		return len(records), nil
	}

	s.store.ReplaceRecords(records)
	s.loadedGen, s.loaded = gen, true
	metrics.LoadTotal.WithLabelValues("ok").Inc()
	s.log.Info("records_loaded", "count", len(records))
	s.notify(ctx, notifier.LevelSuccess, fmt.Sprintf("Loaded %d projects", len(records)))
	return len(records), nil
}

// fetch returns gen 0 for sources that do not label their results.
func (s *Service) fetch(ctx context.Context) ([]domain.Record, uint64, error) {
	if g, ok := s.source.(recordsource.Generational); ok {
		return g.LoadGen(ctx)
	}
	records, err := s.source.Load(ctx)
	return records, 0, err
}

// UpdateFilter validates in and merges it into the current filter. An
// unknown status is rejected and leaves the filter unchanged.
func (s *Service) UpdateFilter(in FilterInput) (domain.Filter, error) {
	var p domain.FilterPatch
	if in.Status != nil {
		st, err := domain.ParseFilterStatus(*in.Status)
		if err != nil {
			return s.store.Filter(), &Error{
				Status:  422,
				Code:    CodeInvalidFilterValue,
				Message: "invalid status filter",
				Details: map[string]any{"status": "must be one of " + statusChoices()},
				Err:     err,
			}
		}
		p.Status = &st
	}
	if in.Search != nil {
		search := *in.Search
		p.Search = &search
	}
	s.store.UpdateFilter(p)
	return s.store.Filter(), nil
}

// SetSort applies a column-header click by key name.
func (s *Service) SetSort(key string) (domain.SortSpec, error) {
	k, err := domain.ParseSortKey(key)
	if err != nil {
		return s.store.Sort(), &Error{
			Status:  422,
			Code:    CodeInvalidSortKey,
			Message: "invalid sort key",
			Details: map[string]any{"key": key},
			Err:     err,
		}
	}
	return s.store.SetSort(k), nil
}

func (s *Service) Select(id domain.RecordID) { s.store.Select(id) }

func (s *Service) ClearSelection() { s.store.ClearSelection() }

func (s *Service) notify(ctx context.Context, lvl notifier.Level, msg string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, notifier.Notification{Level: lvl, Message: msg, At: s.clk.Now()})
}

func statusChoices() string {
	out := []string{string(domain.StatusAll)}
	for _, st := range domain.RecordStatuses() {
		out = append(out, string(st))
	}
	return strings.Join(out, ", ")
}
