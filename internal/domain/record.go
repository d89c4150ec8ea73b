package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusPending   Status = "Pending"
	StatusOnHold    Status = "On Hold"

	// StatusAll is the filter wildcard. It is never a valid record status.
	StatusAll Status = "All"
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidRecord = errors.New("invalid record")
)

// RecordStatuses returns the enumerated record statuses in display order.
func RecordStatuses() []Status {
	return []Status{StatusActive, StatusCompleted, StatusPending, StatusOnHold}
}

// ParseStatus maps s onto a canonical record status.
// Canonical values match exactly; other casings are accepted and canonicalized.
func ParseStatus(s string) (Status, error) {
	for _, st := range RecordStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	for _, st := range RecordStatuses() {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// ParseFilterStatus is ParseStatus extended with the "All" wildcard.
func ParseFilterStatus(s string) (Status, error) {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusAll)) {
		return StatusAll, nil
	}
	return ParseStatus(s)
}

// Record is one geo-tagged project. Records are immutable once loaded.
type Record struct {
	ID          RecordID
	Name        string
	Latitude    float64
	Longitude   float64
	Status      Status
	LastUpdated time.Time
}

func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("%w: %s latitude %v out of range", ErrInvalidRecord, r.ID, r.Latitude)
	}
	if math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("%w: %s longitude %v out of range", ErrInvalidRecord, r.ID, r.Longitude)
	}
	if _, err := ParseStatus(string(r.Status)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRecord, r.ID, err)
	}
	return nil
}

// ValidateRecordSet returns the records that are safe to load along with one
// problem per rejected record. Names are normalized and statuses canonicalized.
// When an id repeats, the first occurrence wins.
func ValidateRecordSet(records []Record) ([]Record, []error) {
	out := make([]Record, 0, len(records))
	var problems []error
	seen := make(map[RecordID]struct{}, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			problems = append(problems, err)
			continue
		}
		if _, dup := seen[r.ID]; dup {
			problems = append(problems, fmt.Errorf("%w: duplicate id %s", ErrInvalidRecord, r.ID))
			continue
		}
		seen[r.ID] = struct{}{}
		r.Status, _ = ParseStatus(string(r.Status))
		r.Name = NormalizeHumanName(r.Name)
		r.LastUpdated = r.LastUpdated.UTC()
		out = append(out, r)
	}
	return out, problems
}

// UniqueByID drops every record whose id already appeared earlier in records.
func UniqueByID(records []Record) []Record {
	out := make([]Record, 0, len(records))
	seen := make(map[RecordID]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
