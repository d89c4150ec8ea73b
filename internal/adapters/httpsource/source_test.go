package httpsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/recordsource"
)

const doc = `[
  {"id": "a", "project_name": "Harbor  Tunnel", "latitude": 1.5, "longitude": 2.5, "status": "Active", "last_updated": "2025-03-04T10:00:00Z"},
  {"id": 2, "name": "Ring Road", "latitude": -3, "longitude": 4, "status": "on hold", "lastUpdated": "2024-12-01"},
  {"id": "c", "project_name": "Bad Status", "latitude": 0, "longitude": 0, "status": "Archived", "last_updated": "2025-01-01"},
  {"id": "d", "project_name": "Bad Lat", "latitude": 95, "longitude": 0, "status": "Active", "last_updated": "2025-01-01"},
  {"id": "a", "project_name": "Duplicate", "latitude": 0, "longitude": 0, "status": "Active", "last_updated": "2025-01-01"}
]`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSource_Load(t *testing.T) {
	t.Parallel()

	srv := serve(t, http.StatusOK, doc)
	got, err := New(Options{URL: srv.URL + DefaultPath}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records=%+v, want 2 valid", got)
	}
	if got[0].Name != "Harbor Tunnel" || got[0].LastUpdated != time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC) {
		t.Fatalf("record 0=%+v", got[0])
	}
	if got[1].ID != "2" || got[1].Name != "Ring Road" || got[1].Status != domain.StatusOnHold {
		t.Fatalf("record 1=%+v", got[1])
	}
}

func TestSource_Stride(t *testing.T) {
	t.Parallel()

	srv := serve(t, http.StatusOK, doc)
	got, err := New(Options{URL: srv.URL + DefaultPath, Stride: 2}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	// Indexes 0, 2, 4 survive sampling; 2 has a bad status and 4 repeats id "a".
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("records=%+v", got)
	}
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		path   string
		want   []error
	}{
		{name: "server error", status: 500, body: "boom", path: DefaultPath, want: []error{ErrAPIFailed, recordsource.ErrUnavailable}},
		{name: "not found", status: 200, body: doc, path: "/missing.json", want: []error{ErrAPIFailed}},
		{name: "malformed", status: 200, body: `{"not": "an array"}`, path: DefaultPath, want: []error{recordsource.ErrMalformed}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := serve(t, tc.status, tc.body)
			_, err := New(Options{URL: srv.URL + tc.path}).Load(context.Background())
			for _, want := range tc.want {
				if !errors.Is(err, want) {
					t.Fatalf("err=%v, want %v", err, want)
				}
			}
		})
	}
}

func TestSource_Unreachable(t *testing.T) {
	t.Parallel()

	srv := serve(t, http.StatusOK, doc)
	url := srv.URL + DefaultPath
	srv.Close()

	_, err := New(Options{URL: url}).Load(context.Background())
	if !errors.Is(err, recordsource.ErrUnavailable) {
		t.Fatalf("err=%v, want ErrUnavailable", err)
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"2025-03-04", "2025-03-04T00:00:00Z", "2025-03-04T00:00:00", "2025-03-04 00:00:00", "2025-03-04T02:00:00+02:00"} {
		got, err := ParseTime(s)
		if err != nil || !got.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("ParseTime(%q)=%v err=%v", s, got, err)
		}
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Fatalf("expected error")
	}
}
