package projection

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
)

func scenarioRecords() []domain.Record {
	return []domain.Record{
		{ID: "a", Name: "Zeta", Status: domain.StatusActive, Latitude: 10, Longitude: 10},
		{ID: "b", Name: "Alpha", Status: domain.StatusPending, Latitude: 20, Longitude: 20},
	}
}

func ids(rs []domain.Record) []domain.RecordID {
	out := make([]domain.RecordID, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func randomRecords(n int, seed int64) []domain.Record {
	rng := rand.New(rand.NewSource(seed))
	names := []string{"Lima Energy", "lima water", "Oslo Transit", "OSLO grid", "Nairobi Urban", "Quito"}
	statuses := domain.RecordStatuses()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Record{
			ID:          domain.RecordID(fmt.Sprintf("r%03d", i)),
			Name:        names[rng.Intn(len(names))],
			Latitude:    float64(rng.Intn(5)),
			Longitude:   float64(rng.Intn(5)),
			Status:      statuses[rng.Intn(len(statuses))],
			LastUpdated: base.Add(time.Duration(rng.Intn(4)) * 24 * time.Hour),
		})
	}
	return out
}

func TestProject_Scenario(t *testing.T) {
	t.Parallel()

	records := scenarioRecords()
	f := domain.DefaultFilter()
	s := domain.DefaultSort()

	got := Project(records, f, s)
	if !slices.Equal(ids(got), []domain.RecordID{"b", "a"}) {
		t.Fatalf("asc=%v, want [b a]", ids(got))
	}

	s = s.Toggle(domain.SortByName)
	got = Project(records, f, s)
	if !slices.Equal(ids(got), []domain.RecordID{"a", "b"}) {
		t.Fatalf("desc=%v, want [a b]", ids(got))
	}

	f.Status = domain.StatusPending
	got = Project(records, f, s)
	if !slices.Equal(ids(got), []domain.RecordID{"b"}) {
		t.Fatalf("pending=%v, want [b]", ids(got))
	}
}

func TestProject_WildcardIsPermutation(t *testing.T) {
	t.Parallel()

	records := randomRecords(200, 1)
	for _, key := range domain.SortKeys() {
		for _, dir := range []domain.SortDirection{domain.Ascending, domain.Descending} {
			got := Project(records, domain.DefaultFilter(), domain.SortSpec{Key: key, Direction: dir})
			if len(got) != len(records) {
				t.Fatalf("%s/%s len=%d, want %d", key, dir, len(got), len(records))
			}
			seen := map[domain.RecordID]int{}
			for _, r := range got {
				seen[r.ID]++
			}
			for _, r := range records {
				if seen[r.ID] != 1 {
					t.Fatalf("%s/%s id %s seen %d times", key, dir, r.ID, seen[r.ID])
				}
			}
		}
	}
}

func TestProject_SearchIsExactPredicate(t *testing.T) {
	t.Parallel()

	records := randomRecords(150, 2)
	for _, q := range []string{"lima", "OSLO", "o", "an E", "missing"} {
		got := Project(records, domain.Filter{Status: domain.StatusAll, Search: q}, domain.DefaultSort())
		in := map[domain.RecordID]bool{}
		for _, r := range got {
			in[r.ID] = true
			if !strings.Contains(strings.ToLower(r.Name), strings.ToLower(q)) {
				t.Fatalf("q=%q: %q does not match", q, r.Name)
			}
		}
		for _, r := range records {
			if !in[r.ID] && strings.Contains(strings.ToLower(r.Name), strings.ToLower(q)) {
				t.Fatalf("q=%q: %q matches but was dropped", q, r.Name)
			}
		}
	}
}

func TestProject_StatusFilterIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	records := []domain.Record{
		{ID: "1", Name: "x", Status: domain.StatusOnHold},
		{ID: "2", Name: "y", Status: domain.StatusActive},
	}
	got := Project(records, domain.Filter{Status: "on hold"}, domain.DefaultSort())
	if !slices.Equal(ids(got), []domain.RecordID{"1"}) {
		t.Fatalf("got=%v", ids(got))
	}
}

func TestProject_StableAndIdempotent(t *testing.T) {
	t.Parallel()

	records := randomRecords(300, 3)
	for _, key := range domain.SortKeys() {
		s := domain.SortSpec{Key: key, Direction: domain.Ascending}
		first := Project(records, domain.DefaultFilter(), s)
		second := Project(records, domain.DefaultFilter(), s)
		if !slices.Equal(ids(first), ids(second)) {
			t.Fatalf("%s: not idempotent", key)
		}
		// Ties keep input order in both directions.
		pos := map[domain.RecordID]int{}
		for i, r := range records {
			pos[r.ID] = i
		}
		for _, dir := range []domain.SortDirection{domain.Ascending, domain.Descending} {
			got := Project(records, domain.DefaultFilter(), domain.SortSpec{Key: key, Direction: dir})
			for i := 1; i < len(got); i++ {
				c := Compare(got[i-1], got[i], key)
				if dir == domain.Descending {
					c = -c
				}
				if c > 0 {
					t.Fatalf("%s/%s: out of order at %d", key, dir, i)
				}
				if c == 0 && pos[got[i-1].ID] > pos[got[i].ID] {
					t.Fatalf("%s/%s: tie at %d broke input order", key, dir, i)
				}
			}
		}
	}
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	records := randomRecords(50, 4)
	before := slices.Clone(records)
	_ = Project(records, domain.Filter{Status: domain.StatusActive, Search: "o"}, domain.SortSpec{Key: domain.SortByLatitude, Direction: domain.Descending})
	if !slices.Equal(ids(records), ids(before)) {
		t.Fatalf("input reordered")
	}
}

func TestProject_Empty(t *testing.T) {
	t.Parallel()

	got := Project(nil, domain.DefaultFilter(), domain.DefaultSort())
	if got == nil || len(got) != 0 {
		t.Fatalf("got=%v, want empty non-nil", got)
	}
}

func TestMemo_ReferentiallyStable(t *testing.T) {
	t.Parallel()

	records := scenarioRecords()
	var m Memo
	first, recomputed := m.Get(1, records, domain.DefaultFilter(), domain.DefaultSort())
	if !recomputed {
		t.Fatalf("first Get should compute")
	}
	second, recomputed := m.Get(1, records, domain.DefaultFilter(), domain.DefaultSort())
	if recomputed || &first[0] != &second[0] {
		t.Fatalf("unchanged inputs recomputed")
	}
	_, recomputed = m.Get(1, records, domain.Filter{Status: domain.StatusAll, Search: "z"}, domain.DefaultSort())
	if !recomputed {
		t.Fatalf("filter change did not recompute")
	}
	_, recomputed = m.Get(2, records, domain.Filter{Status: domain.StatusAll, Search: "z"}, domain.DefaultSort())
	if !recomputed {
		t.Fatalf("generation change did not recompute")
	}
}
