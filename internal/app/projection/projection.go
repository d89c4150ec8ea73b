// Package projection derives the filtered, sorted view of a record set.
//
// Everything here is pure: inputs are never mutated and every call returns a
// fresh slice, so a projection can be recomputed on each keystroke.
package projection

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
)

// Project filters records by f and stable-sorts the survivors by s.
func Project(records []domain.Record, f domain.Filter, s domain.SortSpec) []domain.Record {
	search := strings.ToLower(f.Search)
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if matches(r, f.Status, search) {
			out = append(out, r)
		}
	}

	sign := 1
	if s.Direction == domain.Descending {
		sign = -1
	}
	// Flip the comparator, not the slice: equal keys keep input order either way.
	slices.SortStableFunc(out, func(a, b domain.Record) int {
		return sign * Compare(a, b, s.Key)
	})
	return out
}

// Matches reports whether r passes f.
func Matches(r domain.Record, f domain.Filter) bool {
	return matches(r, f.Status, strings.ToLower(f.Search))
}

func matches(r domain.Record, status domain.Status, lowerSearch string) bool {
	if status != "" && status != domain.StatusAll && !strings.EqualFold(string(r.Status), string(status)) {
		return false
	}
	if lowerSearch != "" && !strings.Contains(strings.ToLower(r.Name), lowerSearch) {
		return false
	}
	return true
}

// Compare orders a and b ascending by key. String columns compare
// case-insensitively; unknown keys compare equal.
func Compare(a, b domain.Record, key domain.SortKey) int {
	switch key {
	case domain.SortByName:
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case domain.SortByLatitude:
		return cmp.Compare(a.Latitude, b.Latitude)
	case domain.SortByLongitude:
		return cmp.Compare(a.Longitude, b.Longitude)
	case domain.SortByStatus:
		return cmp.Compare(strings.ToLower(string(a.Status)), strings.ToLower(string(b.Status)))
	case domain.SortByLastUpdated:
		return a.LastUpdated.Compare(b.LastUpdated)
	default:
		return 0
	}
}
