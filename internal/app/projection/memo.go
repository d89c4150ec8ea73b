package projection

import "github.com/Overland-East-Bay/geo-projects-view/internal/domain"

// Memo holds the most recent projection. Callers identify the record set by a
// generation number that changes whenever the set is replaced; while the
// generation, filter and sort are unchanged, Get returns the same slice.
//
// Memo is not safe for concurrent use.
type Memo struct {
	valid  bool
	gen    uint64
	filter domain.Filter
	sort   domain.SortSpec
	out    []domain.Record
}

// Get returns the memoized projection, recomputing it when any input changed.
// recomputed reports whether Project ran.
func (m *Memo) Get(gen uint64, records []domain.Record, f domain.Filter, s domain.SortSpec) (out []domain.Record, recomputed bool) {
	if m.valid && m.gen == gen && m.filter == f && m.sort == s {
		return m.out, false
	}
	// Only the latest projection is retained.
	m.out = Project(records, f, s)
	m.gen, m.filter, m.sort, m.valid = gen, f, s, true
	return m.out, true
}

// Invalidate drops the cached projection.
func (m *Memo) Invalidate() {
	*m = Memo{}
}
