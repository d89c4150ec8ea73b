// Package listview renders the project table through a window.Virtualizer
// kept in step with a dashboard.Store.
package listview

import (
	"fmt"
	"sync"

	"github.com/Overland-East-Bay/geo-projects-view/internal/app/dashboard"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/window"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/metrics"
)

// Row is one rendered table row.
type Row struct {
	Index       int
	Start       float64
	Size        float64
	Measured    bool
	Highlighted bool

	ID          domain.RecordID
	Name        string
	Latitude    string
	Longitude   string
	Status      domain.Status
	LastUpdated string
}

// Column is a sortable header cell. Direction is set only on the active column.
type Column struct {
	Key       domain.SortKey
	Label     string
	Direction domain.SortDirection
}

type Table struct {
	Columns      []Column
	Rows         []Row
	TotalSize    float64
	ScrollOffset float64
	Shown        int
	Total        int
}

// Summary is the header count, e.g. "12 of 500 projects".
func (t Table) Summary() string {
	return fmt.Sprintf("%d of %d projects", t.Shown, t.Total)
}

// Measurement is a row height reported by the renderer after layout.
type Measurement struct {
	ID     domain.RecordID
	Height float64
}

// View owns the table's scroll state. It is safe for concurrent use.
type View struct {
	store *dashboard.Store

	mu     sync.Mutex
	virt   *window.Virtualizer
	gen    dashboard.Generation
	synced bool
}

func New(store *dashboard.Store, opts window.Options) *View {
	return &View{store: store, virt: window.New(opts)}
}

// Render lays out the rows intersecting [scrollOffset, scrollOffset+height)
// plus overscan. The returned ScrollOffset is the clamped offset.
func (v *View) Render(scrollOffset, height float64) Table {
	v.mu.Lock()
	defer v.mu.Unlock()

	proj := v.syncLocked()
	v.virt.SetViewport(scrollOffset, height)
	return v.tableLocked(proj)
}

// Current re-renders with the last viewport.
func (v *View) Current() Table {
	v.mu.Lock()
	defer v.mu.Unlock()

	proj := v.syncLocked()
	return v.tableLocked(proj)
}

// Measure records the laid-out height of a row. Measurements for rows that
// are no longer in the projection, or with a non-positive height, are
// ignored and reported as false.
func (v *View) Measure(id domain.RecordID, height float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.syncLocked()
	return v.measureLocked(id, height)
}

// MeasureAll applies a batch of measurements.
func (v *View) MeasureAll(ms []Measurement) (applied, ignored int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.syncLocked()
	for _, m := range ms {
		if v.measureLocked(m.ID, m.Height) {
			applied++
		} else {
			ignored++
		}
	}
	return applied, ignored
}

// ScrollToSelected moves the viewport to reveal the selected row. ok is false
// when nothing is selected or the selection is filtered out.
func (v *View) ScrollToSelected(align window.Align) (offset float64, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.syncLocked()
	sel := v.store.Selection()
	if !sel.Valid {
		return 0, false
	}
	i, ok := v.virt.IndexOf(sel.ID)
	if !ok || !v.virt.ScrollToIndex(i, align) {
		return 0, false
	}
	return v.virt.ScrollOffset(), true
}

// Do runs fn with the synced Virtualizer while holding the view lock.
func (v *View) Do(fn func(*window.Virtualizer)) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.syncLocked()
	fn(v.virt)
}

func (v *View) measureLocked(id domain.RecordID, height float64) bool {
	if v.virt.Measure(id, height) {
		metrics.MeasurementsTotal.WithLabelValues("applied").Inc()
		return true
	}
	metrics.MeasurementsTotal.WithLabelValues("ignored").Inc()
	return false
}

// syncLocked brings the Virtualizer up to date with the store's projection.
// A new record set drops every cached measurement; a new projection of the
// same set only re-keys the rows.
func (v *View) syncLocked() []domain.Record {
	proj, gen := v.store.ProjectionGen()
	if v.synced && gen == v.gen {
		return proj
	}
	if v.synced && gen.Records != v.gen.Records {
		v.virt.ResetMeasurements()
	}
	keys := make([]domain.RecordID, len(proj))
	for i, r := range proj {
		keys[i] = r.ID
	}
	v.virt.SetItems(keys)
	v.gen = gen
	v.synced = true
	return proj
}

func (v *View) tableLocked(proj []domain.Record) Table {
	sort := v.store.Sort()
	sel := v.store.Selection()

	items := v.virt.VirtualItems()
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		r := proj[it.Index]
		rows = append(rows, Row{
			Index:       it.Index,
			Start:       it.Start,
			Size:        it.Size,
			Measured:    it.Measured,
			Highlighted: sel.Is(r.ID),
			ID:          r.ID,
			Name:        r.Name,
			Latitude:    domain.FormatCoord(r.Latitude),
			Longitude:   domain.FormatCoord(r.Longitude),
			Status:      r.Status,
			LastUpdated: domain.FormatDate(r.LastUpdated),
		})
	}

	return Table{
		Columns:      columns(sort),
		Rows:         rows,
		TotalSize:    v.virt.TotalSize(),
		ScrollOffset: v.virt.ScrollOffset(),
		Shown:        len(proj),
		Total:        len(v.store.Records()),
	}
}

func columns(s domain.SortSpec) []Column {
	keys := domain.SortKeys()
	out := make([]Column, len(keys))
	for i, k := range keys {
		out[i] = Column{Key: k, Label: k.Label()}
		if k == s.Key {
			out[i].Direction = s.Direction
		}
	}
	return out
}
