// Package window computes scroll geometry for a virtualized list whose rows
// have variable heights that are only known after they are first laid out.
//
// A Virtualizer tracks an ordered list of item keys, an estimated size for
// rows that have not been measured yet, and a measurement cache keyed by
// item identity. From those it derives each row's offset, the total
// scrollable size, and the contiguous range of rows to render for the
// current viewport (plus overscan).
//
// A Virtualizer is not safe for concurrent use; owners serialize access.
package window

import (
	"math"
	"sort"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
)

const (
	DefaultEstimateSize = 52
	DefaultOverscan     = 10
)

type Options struct {
	// EstimateSize is used for rows that have not been measured.
	EstimateSize float64
	// Overscan is the number of extra rows rendered on each side of the
	// visible range. Negative values are treated as zero.
	Overscan     int
	PaddingStart float64
	PaddingEnd   float64
}

func DefaultOptions() Options {
	return Options{EstimateSize: DefaultEstimateSize, Overscan: DefaultOverscan}
}

func (o Options) normalized() Options {
	if !finitePositive(o.EstimateSize) {
		o.EstimateSize = DefaultEstimateSize
	}
	if o.Overscan < 0 {
		o.Overscan = 0
	}
	o.PaddingStart = nonNegative(o.PaddingStart)
	o.PaddingEnd = nonNegative(o.PaddingEnd)
	return o
}

// Item is one rendered row.
type Item struct {
	Index    int
	Key      domain.RecordID
	Start    float64
	Size     float64
	End      float64
	Measured bool
}

type Align int

const (
	// AlignAuto scrolls the minimum distance needed to reveal the row.
	AlignAuto Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

type Virtualizer struct {
	opts Options

	keys  []domain.RecordID
	index map[domain.RecordID]int
	// sizes is keyed by identity so measurements follow a row when the list
	// is refiltered or reordered.
	sizes map[domain.RecordID]float64

	// Derived from keys+sizes; rebuilt lazily when dirty.
	starts   []float64
	lens     []float64
	measured []bool
	total    float64
	dirty    bool

	offset float64
	height float64
}

func New(opts Options) *Virtualizer {
	return &Virtualizer{
		opts:  opts.normalized(),
		index: make(map[domain.RecordID]int),
		sizes: make(map[domain.RecordID]float64),
		dirty: true,
	}
}

func (v *Virtualizer) Options() Options { return v.opts }

// SetItems replaces the ordered item keys. Cached measurements are kept for
// every key, including keys that are no longer present.
func (v *Virtualizer) SetItems(keys []domain.RecordID) {
	v.keys = append([]domain.RecordID(nil), keys...)
	v.index = make(map[domain.RecordID]int, len(keys))
	for i, k := range v.keys {
		if _, dup := v.index[k]; !dup {
			v.index[k] = i
		}
	}
	v.dirty = true
}

func (v *Virtualizer) Count() int { return len(v.keys) }

// ResetMeasurements evicts the whole measurement cache.
func (v *Virtualizer) ResetMeasurements() {
	v.sizes = make(map[domain.RecordID]float64)
	v.dirty = true
}

// MeasuredCount reports how many keys have a cached measurement.
func (v *Virtualizer) MeasuredCount() int { return len(v.sizes) }

func (v *Virtualizer) IndexOf(key domain.RecordID) (int, bool) {
	i, ok := v.index[key]
	return i, ok
}

// SetViewport sets the scroll offset and the visible height in one step.
func (v *Virtualizer) SetViewport(scrollOffset, height float64) {
	v.offset = nonNegative(scrollOffset)
	v.height = nonNegative(height)
}

func (v *Virtualizer) ScrollTo(offset float64) { v.offset = nonNegative(offset) }

func (v *Virtualizer) Resize(height float64) { v.height = nonNegative(height) }

func (v *Virtualizer) ViewportHeight() float64 { return v.height }

// ScrollOffset returns the current offset clamped to the scrollable range.
func (v *Virtualizer) ScrollOffset() float64 {
	v.layout()
	return v.clampedOffset()
}

// TotalSize is the full scrollable size: padding plus every row's measured or
// estimated size.
func (v *Virtualizer) TotalSize() float64 {
	v.layout()
	return v.total
}

// Measure records the laid-out size of the row identified by key. It returns
// false, leaving state untouched, when key is not in the current item list
// or size is not a finite positive number.
func (v *Virtualizer) Measure(key domain.RecordID, size float64) bool {
	i, ok := v.index[key]
	if !ok || !finitePositive(size) {
		return false
	}
	v.layout()
	prev := v.lens[i]
	if v.measured[i] && prev == size {
		return true
	}
	// Keep visible content anchored when a row above the viewport changes size.
	if v.starts[i] < v.clampedOffset() {
		v.offset += size - prev
	}
	v.sizes[key] = size
	v.dirty = true
	return true
}

// Range returns the half-open index range [start, end) to render. ok is
// false when there is nothing to render.
func (v *Virtualizer) Range() (start, end int, ok bool) {
	v.layout()
	n := len(v.keys)
	if n == 0 || v.height <= 0 {
		return 0, 0, false
	}
	top := v.clampedOffset()
	bottom := top + v.height

	first := sort.Search(n, func(i int) bool { return v.starts[i]+v.lens[i] > top })
	if first == n {
		first = n - 1
	}
	last := sort.Search(n, func(i int) bool { return v.starts[i] >= bottom }) - 1
	if last < first {
		last = first
	}

	start = max(0, first-v.opts.Overscan)
	end = min(n, last+1+v.opts.Overscan)
	return start, end, true
}

// VirtualItems returns the rows in Range with their absolute positions.
func (v *Virtualizer) VirtualItems() []Item {
	start, end, ok := v.Range()
	if !ok {
		return nil
	}
	out := make([]Item, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, v.item(i))
	}
	return out
}

// ItemAt returns geometry for index i.
func (v *Virtualizer) ItemAt(i int) (Item, bool) {
	v.layout()
	if i < 0 || i >= len(v.keys) {
		return Item{}, false
	}
	return v.item(i), true
}

// OffsetForIndex returns the scroll offset that reveals row i with the given
// alignment, clamped to the scrollable range.
func (v *Virtualizer) OffsetForIndex(i int, align Align) (float64, bool) {
	v.layout()
	if i < 0 || i >= len(v.keys) {
		return 0, false
	}
	start, size := v.starts[i], v.lens[i]
	cur := v.clampedOffset()

	var target float64
	switch align {
	case AlignStart:
		target = start
	case AlignEnd:
		target = start + size - v.height
	case AlignCenter:
		target = start + size/2 - v.height/2
	default:
		switch {
		case start >= cur && start+size <= cur+v.height:
			return cur, true
		case start < cur:
			target = start
		default:
			target = start + size - v.height
		}
	}
	return v.clamp(target), true
}

// ScrollToIndex moves the viewport so row i is revealed.
func (v *Virtualizer) ScrollToIndex(i int, align Align) bool {
	off, ok := v.OffsetForIndex(i, align)
	if ok {
		v.offset = off
	}
	return ok
}

func (v *Virtualizer) item(i int) Item {
	return Item{
		Index:    i,
		Key:      v.keys[i],
		Start:    v.starts[i],
		Size:     v.lens[i],
		End:      v.starts[i] + v.lens[i],
		Measured: v.measured[i],
	}
}

func (v *Virtualizer) layout() {
	if !v.dirty {
		return
	}
	n := len(v.keys)
	v.starts = resize(v.starts, n)
	v.lens = resize(v.lens, n)
	if cap(v.measured) < n {
		v.measured = make([]bool, n)
	}
	v.measured = v.measured[:n]

	pos := v.opts.PaddingStart
	for i, k := range v.keys {
		size, ok := v.sizes[k]
		if !ok {
			size = v.opts.EstimateSize
		}
		v.starts[i] = pos
		v.lens[i] = size
		v.measured[i] = ok
		pos += size
	}
	v.total = pos + v.opts.PaddingEnd
	v.dirty = false
}

func (v *Virtualizer) clampedOffset() float64 {
	v.offset = v.clamp(v.offset)
	return v.offset
}

func (v *Virtualizer) clamp(off float64) float64 {
	maxOff := math.Max(0, v.total-v.height)
	return math.Min(math.Max(0, off), maxOff)
}

func resize(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}

func finitePositive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if math.IsInf(f, 1) {
		return math.MaxFloat64
	}
	return f
}
