// Package mapview derives what the map draws from the current projection and
// selection: one marker per record, a default center, and geohash clusters.
package mapview

import (
	"slices"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
)

const (
	SelectedColor = "#0ea5e9"
	DefaultColor  = "#64748b"

	SelectedScale = 1.3

	// DefaultZoom is the zoom the map opens at.
	DefaultZoom = 2

	// maxPrecision is the geohash length produced by geohash.Encode.
	maxPrecision = 12
)

// DefaultCenter is used when there is nothing to average.
var DefaultCenter = LatLng{Latitude: 20, Longitude: 0}

type LatLng struct {
	Latitude  float64
	Longitude float64
}

// Icon is the style hint for a marker.
type Icon struct {
	Selected bool
	Color    string
	Scale    float64
}

func IconFor(selected bool) Icon {
	if selected {
		return Icon{Selected: true, Color: SelectedColor, Scale: SelectedScale}
	}
	return Icon{Color: DefaultColor, Scale: 1}
}

type Marker struct {
	ID        domain.RecordID
	Latitude  float64
	Longitude float64
	Name      string
	Status    domain.Status
	Icon      Icon
	Geohash   string
}

// Markers returns one marker per record in projection order. A selection
// that is not in the projection highlights nothing.
func Markers(projection []domain.Record, sel domain.Selection) []Marker {
	out := make([]Marker, len(projection))
	for i, r := range projection {
		out[i] = Marker{
			ID:        r.ID,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Name:      r.Name,
			Status:    r.Status,
			Icon:      IconFor(sel.Is(r.ID)),
			Geohash:   geohash.Encode(r.Latitude, r.Longitude),
		}
	}
	return out
}

// Center is the mean coordinate of the projection.
func Center(projection []domain.Record) LatLng {
	if len(projection) == 0 {
		return DefaultCenter
	}
	var lat, lon float64
	for _, r := range projection {
		lat += r.Latitude
		lon += r.Longitude
	}
	n := float64(len(projection))
	return LatLng{Latitude: lat / n, Longitude: lon / n}
}

// Popup is the text shown when a marker is opened.
func Popup(r domain.Record) string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteString("\nStatus: ")
	b.WriteString(string(r.Status))
	b.WriteString("\n")
	b.WriteString(domain.FormatCoord(r.Latitude))
	b.WriteString(", ")
	b.WriteString(domain.FormatCoord(r.Longitude))
	return b.String()
}

// Cluster groups markers that share a geohash prefix.
type Cluster struct {
	Geohash  string
	Center   LatLng
	Count    int
	IDs      []domain.RecordID
	Selected bool
}

// Clusters buckets markers by the first precision characters of their
// geohash. Precision is clamped to [1, 12]. Clusters are ordered by geohash.
func Clusters(markers []Marker, precision int) []Cluster {
	precision = min(max(precision, 1), maxPrecision)

	byHash := make(map[string]*Cluster)
	for _, m := range markers {
		gh := m.Geohash
		if gh == "" {
			gh = geohash.Encode(m.Latitude, m.Longitude)
		}
		prefix := gh[:min(precision, len(gh))]
		c, ok := byHash[prefix]
		if !ok {
			c = &Cluster{Geohash: prefix}
			byHash[prefix] = c
		}
		c.Count++
		c.IDs = append(c.IDs, m.ID)
		c.Center.Latitude += m.Latitude
		c.Center.Longitude += m.Longitude
		c.Selected = c.Selected || m.Icon.Selected
	}

	out := make([]Cluster, 0, len(byHash))
	for _, c := range byHash {
		c.Center.Latitude /= float64(c.Count)
		c.Center.Longitude /= float64(c.Count)
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b Cluster) int { return strings.Compare(a.Geohash, b.Geohash) })
	return out
}
