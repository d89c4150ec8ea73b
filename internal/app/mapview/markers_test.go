package mapview

import (
	"math"
	"testing"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
)

var records = []domain.Record{
	{ID: "sf1", Name: "Bay Bridge Retrofit", Latitude: 37.7749, Longitude: -122.4194, Status: domain.StatusActive},
	{ID: "sf2", Name: "Transbay Rail", Latitude: 37.7790, Longitude: -122.4150, Status: domain.StatusPending},
	{ID: "syd", Name: "Harbour Tunnel", Latitude: -33.8688, Longitude: 151.2093, Status: domain.StatusOnHold},
}

func TestMarkers_IconFollowsSelection(t *testing.T) {
	t.Parallel()

	ms := Markers(records, domain.Selected("sf2"))
	if len(ms) != 3 {
		t.Fatalf("len=%d", len(ms))
	}
	for _, m := range ms {
		want := IconFor(m.ID == "sf2")
		if m.Icon != want {
			t.Fatalf("marker %s icon=%+v, want %+v", m.ID, m.Icon, want)
		}
	}
	if ms[1].Icon.Color != "#0ea5e9" || ms[1].Icon.Scale != 1.3 {
		t.Fatalf("selected icon=%+v", ms[1].Icon)
	}
	if ms[0].Icon.Color != "#64748b" || ms[0].Icon.Scale != 1 {
		t.Fatalf("default icon=%+v", ms[0].Icon)
	}
	if len(ms[0].Geohash) != 12 || ms[0].Geohash[:4] != "9q8y" {
		t.Fatalf("geohash=%q", ms[0].Geohash)
	}
}

func TestMarkers_FilteredOutSelectionHighlightsNothing(t *testing.T) {
	t.Parallel()

	for _, m := range Markers(records, domain.Selected("elsewhere")) {
		if m.Icon.Selected {
			t.Fatalf("marker %s highlighted", m.ID)
		}
	}
}

func TestCenter(t *testing.T) {
	t.Parallel()

	if got := Center(nil); got != (LatLng{Latitude: 20, Longitude: 0}) {
		t.Fatalf("Center(nil)=%+v", got)
	}
	got := Center(records[:2])
	if math.Abs(got.Latitude-37.77695) > 1e-9 || math.Abs(got.Longitude+122.4172) > 1e-9 {
		t.Fatalf("Center()=%+v", got)
	}
}

func TestClusters(t *testing.T) {
	t.Parallel()

	ms := Markers(records, domain.Selected("sf1"))
	cs := Clusters(ms, 4)
	if len(cs) != 2 {
		t.Fatalf("clusters=%+v, want 2", cs)
	}
	var sf Cluster
	for _, c := range cs {
		if c.Count == 2 {
			sf = c
		}
	}
	if sf.Geohash != "9q8y" || !sf.Selected || len(sf.IDs) != 2 {
		t.Fatalf("sf cluster=%+v", sf)
	}

	if got := Clusters(ms, 40); len(got) != 3 {
		t.Fatalf("full precision clusters=%d, want 3", len(got))
	}
	if got := Clusters(ms, 0); len(got) != 2 {
		// precision 1: "9" for both SF points, "r" for Sydney.
		t.Fatalf("precision 1 clusters=%d, want 2", len(got))
	}
	if got := Clusters(nil, 5); len(got) != 0 {
		t.Fatalf("Clusters(nil)=%v", got)
	}
}

func TestPopup(t *testing.T) {
	t.Parallel()

	want := "Harbour Tunnel\nStatus: On Hold\n-33.8688, 151.2093"
	if got := Popup(records[2]); got != want {
		t.Fatalf("Popup()=%q, want %q", got, want)
	}
}
