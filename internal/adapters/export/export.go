// Package export serializes the current projection for download.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
)

type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
)

var ErrUnknownFormat = errors.New("unknown export format")

func Formats() []Format { return []Format{FormatCSV, FormatJSON, FormatGeoJSON} }

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatGeoJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatGeoJSON:
		return "application/geo+json"
	default:
		return "application/json"
	}
}

// FileName is the suggested download name, e.g. geo-projects-2025-03-04.csv.
func FileName(f Format, now time.Time) string {
	return "geo-projects-" + now.UTC().Format(time.DateOnly) + "." + string(f)
}

// Write serializes records in format f.
func Write(w io.Writer, f Format, records []domain.Record) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatGeoJSON:
		return WriteGeoJSON(w, records)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

var csvHeader = []string{"Project Name", "Latitude", "Longitude", "Status", "Last Updated"}

func WriteCSV(w io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{
			r.Name,
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			string(r.Status),
			domain.FormatDate(r.LastUpdated),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonRecord struct {
	ID          string  `json:"id"`
	ProjectName string  `json:"project_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Status      string  `json:"status"`
	LastUpdated string  `json:"last_updated"`
}

func toJSON(r domain.Record) jsonRecord {
	out := jsonRecord{
		ID:          string(r.ID),
		ProjectName: r.Name,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Status:      string(r.Status),
	}
	if !r.LastUpdated.IsZero() {
		out.LastUpdated = r.LastUpdated.UTC().Format(time.RFC3339)
	}
	return out
}

// WriteJSON writes an indented array using the same field names as the
// source data, so an export can be loaded back as a record document.
func WriteJSON(w io.Writer, records []domain.Record) error {
	out := make([]jsonRecord, len(records))
	for i, r := range records {
		out[i] = toJSON(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteGeoJSON writes a FeatureCollection with one Point per record.
func WriteGeoJSON(w io.Writer, records []domain.Record) error {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		f := geojson.NewPointFeature([]float64{r.Longitude, r.Latitude})
		f.ID = string(r.ID)
		f.SetProperty("project_name", r.Name)
		f.SetProperty("status", string(r.Status))
		if !r.LastUpdated.IsZero() {
			f.SetProperty("last_updated", r.LastUpdated.UTC().Format(time.RFC3339))
		}
		fc.AddFeature(f)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
