package dashboard

import (
	"sync"
	"time"

	"github.com/Overland-East-Bay/geo-projects-view/internal/app/projection"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/metrics"
)

type ChangeKind int

const (
	ChangeRecords ChangeKind = iota + 1
	ChangeFilter
	ChangeSort
	ChangeSelection
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeRecords:
		return "records"
	case ChangeFilter:
		return "filter"
	case ChangeSort:
		return "sort"
	case ChangeSelection:
		return "selection"
	default:
		return "unknown"
	}
}

// Change describes one logical state change. Version increases by one per change.
type Change struct {
	Kind    ChangeKind
	Version uint64
}

// Listener is called once per change, after the store lock is released.
type Listener func(Change)

// Store is the single state aggregate behind both views: the full record set,
// the filter, the sort and the selection. All mutation goes through its
// methods; each mutation that changes state notifies subscribers exactly once.
//
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	records   []domain.Record
	byID      map[domain.RecordID]int
	recordGen uint64

	filter    domain.Filter
	sort      domain.SortSpec
	selection domain.Selection
	version   uint64

	memo    projection.Memo
	projGen uint64

	lmu       sync.Mutex
	listeners map[int]Listener
	nextLID   int
}

func NewStore() *Store {
	return &Store{
		byID:      make(map[domain.RecordID]int),
		filter:    domain.DefaultFilter(),
		sort:      domain.DefaultSort(),
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextLID
	s.nextLID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

// ReplaceRecords atomically swaps the full record set. Filter, sort and
// selection are left as they are. The store keeps its own copy.
func (s *Store) ReplaceRecords(records []domain.Record) {
	cp := append([]domain.Record(nil), records...)
	idx := make(map[domain.RecordID]int, len(cp))
	for i, r := range cp {
		if _, dup := idx[r.ID]; !dup {
			idx[r.ID] = i
		}
	}

	s.mu.Lock()
	s.records = cp
	s.byID = idx
	s.recordGen++
	ch := s.bumpLocked(ChangeRecords)
	s.mu.Unlock()

	metrics.RecordSetSize.Set(float64(len(cp)))
	s.notify(ch)
}

// UpdateFilter merges p into the current filter. Status values are expected
// to be validated by the caller.
func (s *Store) UpdateFilter(p domain.FilterPatch) {
	s.mu.Lock()
	next := p.Apply(s.filter)
	if next == s.filter {
		s.mu.Unlock()
		return
	}
	s.filter = next
	ch := s.bumpLocked(ChangeFilter)
	s.mu.Unlock()

	s.notify(ch)
}

// SetSort applies a column click: repeating the current key flips the
// direction, a new key sorts ascending.
func (s *Store) SetSort(key domain.SortKey) domain.SortSpec {
	s.mu.Lock()
	s.sort = s.sort.Toggle(key)
	next := s.sort
	ch := s.bumpLocked(ChangeSort)
	s.mu.Unlock()

	s.notify(ch)
	return next
}

// Select sets the selection to id. The id is not checked against the record
// set; a dangling id simply resolves to nothing.
func (s *Store) Select(id domain.RecordID) {
	s.setSelection(domain.Selected(id))
}

func (s *Store) ClearSelection() {
	s.setSelection(domain.NoSelection())
}

func (s *Store) setSelection(sel domain.Selection) {
	s.mu.Lock()
	if sel == s.selection {
		s.mu.Unlock()
		return
	}
	s.selection = sel
	ch := s.bumpLocked(ChangeSelection)
	s.mu.Unlock()

	s.notify(ch)
}

// Records returns the full record set. Callers must not mutate it.
func (s *Store) Records() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Lookup finds id in the full record set.
func (s *Store) Lookup(id domain.RecordID) (domain.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return domain.Record{}, false
	}
	return s.records[i], true
}

func (s *Store) Filter() domain.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *Store) Sort() domain.SortSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

func (s *Store) Selection() domain.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Projection returns the filtered, sorted view of the record set. It is
// computed at most once per records/filter/sort change and the same slice is
// returned until one of them changes. Callers must not mutate it.
func (s *Store) Projection() []domain.Record {
	p, _ := s.ProjectionGen()
	return p
}

// Generation identifies one projection. RecordsGen changes only when the full
// set is replaced.
type Generation struct {
	Projection uint64
	Records    uint64
}

// ProjectionGen is Projection plus the generation that produced it.
func (s *Store) ProjectionGen() ([]domain.Record, Generation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectionLocked()
}

func (s *Store) projectionLocked() ([]domain.Record, Generation) {
	start := time.Now()
	out, recomputed := s.memo.Get(s.recordGen, s.records, s.filter, s.sort)
	if recomputed {
		s.projGen++
		metrics.ProjectionRecomputeTotal.Inc()
		metrics.ProjectionDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
		metrics.ProjectionSize.Set(float64(len(out)))
	}
	return out, Generation{Projection: s.projGen, Records: s.recordGen}
}

// Snapshot is a consistent read of the whole aggregate.
type Snapshot struct {
	Filter    domain.Filter
	Sort      domain.SortSpec
	Selection domain.Selection
	Total     int
	Shown     int
	Version   uint64
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	proj, _ := s.projectionLocked()
	return Snapshot{
		Filter:    s.filter,
		Sort:      s.sort,
		Selection: s.selection,
		Total:     len(s.records),
		Shown:     len(proj),
		Version:   s.version,
	}
}

func (s *Store) bumpLocked(kind ChangeKind) Change {
	s.version++
	return Change{Kind: kind, Version: s.version}
}

func (s *Store) notify(ch Change) {
	s.lmu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextLID; id++ {
		if fn, ok := s.listeners[id]; ok {
			ls = append(ls, fn)
		}
	}
	s.lmu.Unlock()

	for _, fn := range ls {
		fn(ch)
	}
}
