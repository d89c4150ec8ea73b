// Package fetch wraps a record source in a session-scoped, memoized load.
package fetch

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/metrics"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/recordsource"
)

const loadKey = "records"

// Loader memoizes a recordsource.Source. Concurrent callers share one
// in-flight request and at most one request is outstanding at a time. A
// successful result is kept until Reset; failures are not kept, so the next
// Load retries.
//
// Loader satisfies recordsource.Generational: every fetch that reaches the
// source yields a new generation, cached results repeat theirs.
type Loader struct {
	src recordsource.Source
	sf  singleflight.Group

	mu        sync.Mutex
	cached    []domain.Record
	cachedGen uint64
	ok        bool
	epoch     uint64
	gen       uint64
}

type result struct {
	records []domain.Record
	gen     uint64
}

func NewLoader(src recordsource.Source) *Loader {
	return &Loader{src: src}
}

func (l *Loader) Load(ctx context.Context) ([]domain.Record, error) {
	records, _, err := l.LoadGen(ctx)
	return records, err
}

func (l *Loader) LoadGen(ctx context.Context) ([]domain.Record, uint64, error) {
	l.mu.Lock()
	if l.ok {
		out, gen := l.cached, l.cachedGen
		l.mu.Unlock()
		return out, gen, nil
	}
	epoch := l.epoch
	l.mu.Unlock()

	ch := l.sf.DoChan(loadKey, func() (any, error) {
		metrics.SourceRequestsTotal.Inc()
		// The shared request outlives any single caller's cancellation.
		records, err := l.src.Load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		l.gen++
		if l.epoch == epoch {
			l.cached = records
			l.cachedGen = l.gen
			l.ok = true
		}
		return result{records: records, gen: l.gen}, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, 0, res.Err
		}
		r := res.Val.(result)
		return r.records, r.gen, nil
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}

// Loaded reports whether a successful result is cached.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ok
}

// Reset drops the cached result so a later Load fetches again. A request
// already in flight is neither cancelled nor duplicated: Loads issued before
// it settles join it, and its result is not cached.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
	l.ok = false
	l.epoch++
}
