package httpapi

import (
	"github.com/oapi-codegen/nullable"
)

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type Filter struct {
	Status string `json:"status"`
	Search string `json:"search"`
}

// FilterPatch is a partial filter update; absent fields are left unchanged.
type FilterPatch struct {
	Status *string `json:"status,omitempty"`
	Search *string `json:"search,omitempty"`
}

type Sort struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

type State struct {
	Filter     Filter                    `json:"filter"`
	Sort       Sort                      `json:"sort"`
	SelectedId nullable.Nullable[string] `json:"selectedId"`
	Total      int                       `json:"total"`
	Shown      int                       `json:"shown"`
	Summary    string                    `json:"summary"`
	Version    uint64                    `json:"version"`
}

// SelectionRequest sets or clears the selection. {"id": null} clears it;
// a missing id is rejected.
type SelectionRequest struct {
	Id nullable.Nullable[string] `json:"id"`
}

type LoadResponse struct {
	Loaded int `json:"loaded"`
}

type Column struct {
	Key       string                    `json:"key"`
	Label     string                    `json:"label"`
	Direction nullable.Nullable[string] `json:"direction,omitempty"`
}

type Row struct {
	Index       int     `json:"index"`
	Start       float64 `json:"start"`
	Size        float64 `json:"size"`
	Measured    bool    `json:"measured"`
	Highlighted bool    `json:"highlighted"`
	Id          string  `json:"id"`
	ProjectName string  `json:"project_name"`
	Latitude    string  `json:"latitude"`
	Longitude   string  `json:"longitude"`
	Status      string  `json:"status"`
	LastUpdated string  `json:"last_updated"`
}

type Rows struct {
	Columns      []Column `json:"columns"`
	Rows         []Row    `json:"rows"`
	TotalSize    float64  `json:"totalSize"`
	ScrollOffset float64  `json:"scrollOffset"`
	Shown        int      `json:"shown"`
	Total        int      `json:"total"`
	Summary      string   `json:"summary"`
}

type Measurement struct {
	Id     string  `json:"id"`
	Height float64 `json:"height"`
}

type MeasurementsResponse struct {
	Applied int `json:"applied"`
	Ignored int `json:"ignored"`
}

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Icon struct {
	Selected bool    `json:"selected"`
	Color    string  `json:"color"`
	Scale    float64 `json:"scale"`
}

type Marker struct {
	Id        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	Icon      Icon    `json:"icon"`
	Geohash   string  `json:"geohash"`
	Popup     string  `json:"popup"`
}

type Cluster struct {
	Geohash  string   `json:"geohash"`
	Center   LatLng   `json:"center"`
	Count    int      `json:"count"`
	Ids      []string `json:"ids"`
	Selected bool     `json:"selected"`
}

type Markers struct {
	Center   LatLng    `json:"center"`
	Zoom     int       `json:"zoom"`
	Markers  []Marker  `json:"markers"`
	Clusters []Cluster `json:"clusters,omitempty"`
}

type CameraTarget struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
}

type Camera struct {
	Position CameraTarget                    `json:"position"`
	Target   nullable.Nullable[CameraTarget] `json:"target"`
	Flights  uint64                          `json:"flights"`
}

type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	At      string `json:"at"`
}

type Notifications struct {
	Notifications []Notification `json:"notifications"`
}

type SavedExport struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Location    string `json:"location"`
}
