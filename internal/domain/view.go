package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Filter narrows the full record set. The zero Search matches every record,
// and StatusAll matches every status.
type Filter struct {
	Status Status
	Search string
}

func DefaultFilter() Filter {
	return Filter{Status: StatusAll}
}

// FilterPatch is a partial filter update; nil fields are left unchanged.
type FilterPatch struct {
	Status *Status
	Search *string
}

// Apply merges p into f.
func (p FilterPatch) Apply(f Filter) Filter {
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Search != nil {
		f.Search = *p.Search
	}
	return f
}

type SortKey string

const (
	SortByName        SortKey = "name"
	SortByLatitude    SortKey = "latitude"
	SortByLongitude   SortKey = "longitude"
	SortByStatus      SortKey = "status"
	SortByLastUpdated SortKey = "last_updated"
)

var ErrInvalidSortKey = errors.New("invalid sort key")

// SortKeys returns the sortable columns in table order.
func SortKeys() []SortKey {
	return []SortKey{SortByName, SortByLatitude, SortByLongitude, SortByStatus, SortByLastUpdated}
}

// ParseSortKey accepts the canonical keys plus the column names used by the
// exported data (project_name, lastUpdated).
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "project_name":
		return SortByName, nil
	case "latitude", "lat":
		return SortByLatitude, nil
	case "longitude", "lon", "lng":
		return SortByLongitude, nil
	case "status":
		return SortByStatus, nil
	case "last_updated", "lastupdated":
		return SortByLastUpdated, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
}

// Label is the column header text.
func (k SortKey) Label() string {
	switch k {
	case SortByName:
		return "project name"
	case SortByLastUpdated:
		return "last updated"
	default:
		return string(k)
	}
}

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

type SortSpec struct {
	Key       SortKey
	Direction SortDirection
}

func DefaultSort() SortSpec {
	return SortSpec{Key: SortByName, Direction: Ascending}
}

// Toggle applies a column-header click: the same key flips direction, a
// different key starts ascending.
func (s SortSpec) Toggle(key SortKey) SortSpec {
	if s.Key == key {
		if s.Direction == Ascending {
			return SortSpec{Key: key, Direction: Descending}
		}
		return SortSpec{Key: key, Direction: Ascending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}

// Selection is a weak reference into the full record set. The zero value is
// "no selection".
type Selection struct {
	ID    RecordID
	Valid bool
}

func NoSelection() Selection { return Selection{} }

func Selected(id RecordID) Selection { return Selection{ID: id, Valid: true} }

// Is reports whether id is the selected record.
func (s Selection) Is(id RecordID) bool {
	return s.Valid && s.ID == id
}
