// Package httpsource loads the record set from a static JSON document served
// over HTTP.
package httpsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/recordsource"
)

// ErrAPIFailed is returned for any non-2xx response.
var ErrAPIFailed = errors.New("API failed")

const DefaultPath = "/geo-projects-data.json"

type Options struct {
	URL string
	// Stride keeps every Nth record of the document. Values below 1 keep all.
	Stride int
	Client *http.Client
	Log    *slog.Logger
}

type Source struct {
	url    string
	stride int
	client *http.Client
	log    *slog.Logger
}

func New(opts Options) *Source {
	if opts.Stride < 1 {
		opts.Stride = 1
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Source{url: opts.URL, stride: opts.Stride, client: opts.Client, log: opts.Log}
}

func (s *Source) Load(ctx context.Context) ([]domain.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", recordsource.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %w", ErrAPIFailed, resp.StatusCode, recordsource.ErrUnavailable)
	}

	var wire []wireRecord
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %w", recordsource.ErrMalformed, err)
	}

	records := make([]domain.Record, 0, len(wire)/s.stride+1)
	var bad int
	for i, w := range wire {
		if i%s.stride != 0 {
			continue
		}
		r, err := w.record()
		if err != nil {
			bad++
			continue
		}
		records = append(records, r)
	}

	valid, problems := domain.ValidateRecordSet(records)
	if dropped := bad + len(problems); dropped > 0 {
		s.log.Warn("records_dropped", "source", "http", "count", dropped)
	}
	return valid, nil
}

// wireRecord accepts both the exported column names and the camelCase
// variants seen in hand-written data files.
type wireRecord struct {
	ID               flexID  `json:"id"`
	Name             string  `json:"name"`
	ProjectName      string  `json:"project_name"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Status           string  `json:"status"`
	LastUpdated      string  `json:"last_updated"`
	LastUpdatedCamel string  `json:"lastUpdated"`
}

func (w wireRecord) record() (domain.Record, error) {
	name := w.ProjectName
	if name == "" {
		name = w.Name
	}
	raw := w.LastUpdated
	if raw == "" {
		raw = w.LastUpdatedCamel
	}
	var ts time.Time
	if raw != "" {
		t, err := ParseTime(raw)
		if err != nil {
			return domain.Record{}, err
		}
		ts = t
	}
	return domain.Record{
		ID:          domain.RecordID(w.ID),
		Name:        name,
		Latitude:    w.Latitude,
		Longitude:   w.Longitude,
		Status:      domain.Status(w.Status),
		LastUpdated: ts,
	}, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTime accepts RFC 3339 timestamps and plain dates.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// flexID decodes a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}
