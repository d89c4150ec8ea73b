package listview

import (
	"fmt"
	"testing"
	"time"

	"github.com/Overland-East-Bay/geo-projects-view/internal/app/dashboard"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/window"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
)

// seed loads n records named p000.. so that the default name sort puts
// record i at index i. Even indexes are Active, odd ones Pending.
func seed(n int) *dashboard.Store {
	rs := make([]domain.Record, n)
	for i := range rs {
		st := domain.StatusActive
		if i%2 == 1 {
			st = domain.StatusPending
		}
		rs[i] = domain.Record{
			ID:          domain.RecordID(fmt.Sprintf("id-%03d", i)),
			Name:        fmt.Sprintf("p%03d", i),
			Latitude:    float64(i) / 10,
			Longitude:   -float64(i) / 10,
			Status:      st,
			LastUpdated: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		}
	}
	s := dashboard.NewStore()
	s.ReplaceRecords(rs)
	return s
}

func TestView_RenderWindow(t *testing.T) {
	t.Parallel()

	v := New(seed(100), window.DefaultOptions())
	tbl := v.Render(0, 520)

	if len(tbl.Rows) != 20 {
		t.Fatalf("rows=%d, want 20 (10 visible + 10 overscan)", len(tbl.Rows))
	}
	if tbl.TotalSize != 5200 {
		t.Fatalf("TotalSize=%v, want 5200", tbl.TotalSize)
	}
	if tbl.Summary() != "100 of 100 projects" {
		t.Fatalf("Summary()=%q", tbl.Summary())
	}
	r := tbl.Rows[3]
	if r.Index != 3 || r.Start != 156 || r.Name != "p003" || r.Latitude != "0.3000" || r.Longitude != "-0.3000" {
		t.Fatalf("row 3=%+v", r)
	}
	if r.LastUpdated != "Mar 4, 2025" {
		t.Fatalf("LastUpdated=%q", r.LastUpdated)
	}

	for _, c := range tbl.Columns {
		if (c.Key == domain.SortByName) != (c.Direction == domain.Ascending) {
			t.Fatalf("column %+v, want only name marked asc", c)
		}
	}
}

func TestView_EmptyProjection(t *testing.T) {
	t.Parallel()

	s := seed(10)
	v := New(s, window.DefaultOptions())
	search := "nothing matches"
	s.UpdateFilter(domain.FilterPatch{Search: &search})

	tbl := v.Render(300, 520)
	if len(tbl.Rows) != 0 || tbl.TotalSize != 0 || tbl.ScrollOffset != 0 {
		t.Fatalf("table=%+v", tbl)
	}
	if tbl.Summary() != "0 of 10 projects" {
		t.Fatalf("Summary()=%q", tbl.Summary())
	}
}

func TestView_HighlightFollowsSelection(t *testing.T) {
	t.Parallel()

	s := seed(30)
	v := New(s, window.DefaultOptions())
	s.Select("id-004")

	for _, r := range v.Render(0, 520).Rows {
		if r.Highlighted != (r.ID == "id-004") {
			t.Fatalf("row %s highlighted=%v", r.ID, r.Highlighted)
		}
	}

	// Selected row far outside the window: nothing highlighted now, but the
	// highlight appears once it scrolls in.
	s.Select("id-029")
	for _, r := range v.Render(0, 52).Rows {
		if r.Highlighted {
			t.Fatalf("unexpected highlight on %s", r.ID)
		}
	}
	found := false
	for _, r := range v.Render(1500, 52).Rows {
		if r.ID == "id-029" {
			found = r.Highlighted
		}
	}
	if !found {
		t.Fatalf("highlight not applied after scrolling to the row")
	}
}

func TestView_MeasurementsFollowRecordIdentity(t *testing.T) {
	t.Parallel()

	s := seed(20)
	v := New(s, window.DefaultOptions())
	v.Render(0, 520)

	if !v.Measure("id-001", 80) {
		t.Fatalf("Measure(id-001) rejected")
	}
	if v.Measure("id-001", -3) {
		t.Fatalf("negative height accepted")
	}

	// id-001 is Pending; filtering to Active drops it.
	active := domain.StatusActive
	s.UpdateFilter(domain.FilterPatch{Status: &active})
	if v.Measure("id-001", 90) {
		t.Fatalf("measurement for a filtered-out row was applied")
	}

	all := domain.StatusAll
	s.UpdateFilter(domain.FilterPatch{Status: &all})
	tbl := v.Render(0, 520)
	if row := tbl.Rows[1]; row.ID != "id-001" || !row.Measured || row.Size != 80 {
		t.Fatalf("row 1=%+v, want cached measurement 80", row)
	}
	if tbl.TotalSize != 19*52+80 {
		t.Fatalf("TotalSize=%v", tbl.TotalSize)
	}

	// A new record set starts from estimates again.
	s.ReplaceRecords(s.Records())
	if row := v.Render(0, 520).Rows[1]; row.Measured {
		t.Fatalf("measurement survived a reload: %+v", row)
	}
}

func TestView_MeasureAll(t *testing.T) {
	t.Parallel()

	v := New(seed(5), window.DefaultOptions())
	applied, ignored := v.MeasureAll([]Measurement{
		{ID: "id-000", Height: 60},
		{ID: "id-004", Height: 70},
		{ID: "gone", Height: 70},
		{ID: "id-001", Height: 0},
	})
	if applied != 2 || ignored != 2 {
		t.Fatalf("applied=%d ignored=%d", applied, ignored)
	}
}

func TestView_ScrollToSelected(t *testing.T) {
	t.Parallel()

	s := seed(100)
	v := New(s, window.DefaultOptions())
	v.Render(0, 520)

	if _, ok := v.ScrollToSelected(window.AlignStart); ok {
		t.Fatalf("no selection should not scroll")
	}
	s.Select("id-050")
	off, ok := v.ScrollToSelected(window.AlignStart)
	if !ok || off != 2600 {
		t.Fatalf("ScrollToSelected()=%v ok=%v, want 2600", off, ok)
	}
	if got := v.Current().ScrollOffset; got != 2600 {
		t.Fatalf("Current().ScrollOffset=%v", got)
	}
}
