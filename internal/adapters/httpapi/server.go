package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime"

	"github.com/Overland-East-Bay/geo-projects-view/internal/adapters/export"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/dashboard"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/listview"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/mapview"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/selection"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/metrics"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/camera"
	clockport "github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/clock"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/exportsink"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/notifier"
)

const (
	defaultViewportHeight = 600
	maxBodyBytes          = 1 << 20
)

// NotificationLog exposes recent notifications.
type NotificationLog interface {
	All() []notifier.Notification
}

// Resetter drops a cached record set so the next load refetches.
type Resetter interface {
	Reset()
}

// Server is the HTTP adapter for one dashboard session.
type Server struct {
	Dashboard     *dashboard.Service
	Table         *listview.View
	Selection     *selection.Coordinator
	Camera        camera.Camera
	Cache         Resetter
	Notifications NotificationLog
	Sink          exportsink.Sink
	Clock         clockport.Clock

	log *slog.Logger
}

type ServerDeps struct {
	Dashboard     *dashboard.Service
	Table         *listview.View
	Selection     *selection.Coordinator
	Camera        camera.Camera
	Cache         Resetter
	Notifications NotificationLog
	// Sink is optional; without it POST /export/{format}/save answers 503.
	Sink  exportsink.Sink
	Clock clockport.Clock
	Log   *slog.Logger
}

func NewServer(d ServerDeps) *Server {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		Dashboard:     d.Dashboard,
		Table:         d.Table,
		Selection:     d.Selection,
		Camera:        d.Camera,
		Cache:         d.Cache,
		Notifications: d.Notifications,
		Sink:          d.Sink,
		Clock:         d.Clock,
		log:           log,
	}
}

func (s *Server) Load(w http.ResponseWriter, r *http.Request) {
	reload := false
	if err := runtime.BindQueryParameter("form", true, false, "reload", r.URL.Query(), &reload); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error(), map[string]any{"param": "reload"})
		return
	}
	if reload && s.Cache != nil {
		s.Cache.Reset()
	}
	n, err := s.Dashboard.Load(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoadResponse{Loaded: n})
}

func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateDTO(s.Dashboard.Store().Snapshot()))
}

func (s *Server) PatchFilter(w http.ResponseWriter, r *http.Request) {
	var body FilterPatch
	if !decodeBody(w, r, &body) {
		return
	}
	if _, err := s.Dashboard.UpdateFilter(dashboard.FilterInput{Status: body.Status, Search: body.Search}); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateDTO(s.Dashboard.Store().Snapshot()))
}

func (s *Server) PostSort(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Dashboard.SetSort(chi.URLParam(r, "key")); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateDTO(s.Dashboard.Store().Snapshot()))
}

func (s *Server) PutSelection(w http.ResponseWriter, r *http.Request) {
	var body SelectionRequest
	if !decodeBody(w, r, &body) {
		return
	}
	switch {
	case !body.Id.IsSpecified():
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "id is required (use null to clear)", map[string]any{"id": "required"})
		return
	case body.Id.IsNull():
		s.Selection.Clear()
	default:
		id, _ := body.Id.Get()
		s.Selection.Click(domain.RecordID(id))
	}
	writeJSON(w, http.StatusOK, stateDTO(s.Dashboard.Store().Snapshot()))
}

func (s *Server) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	s.Selection.Clear()
	writeJSON(w, http.StatusOK, stateDTO(s.Dashboard.Store().Snapshot()))
}

func (s *Server) GetRows(w http.ResponseWriter, r *http.Request) {
	var (
		scrollOffset float64
		height       float64 = defaultViewportHeight
	)
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "scrollOffset", q, &scrollOffset); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error(), map[string]any{"param": "scrollOffset"})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "height", q, &height); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error(), map[string]any{"param": "height"})
		return
	}
	writeJSON(w, http.StatusOK, rowsDTO(s.Table.Render(scrollOffset, height)))
}

func (s *Server) PostMeasurements(w http.ResponseWriter, r *http.Request) {
	var body []Measurement
	if !decodeBody(w, r, &body) {
		return
	}
	ms := make([]listview.Measurement, len(body))
	for i, m := range body {
		ms[i] = listview.Measurement{ID: domain.RecordID(m.Id), Height: m.Height}
	}
	applied, ignored := s.Table.MeasureAll(ms)
	writeJSON(w, http.StatusOK, MeasurementsResponse{Applied: applied, Ignored: ignored})
}

func (s *Server) GetMarkers(w http.ResponseWriter, r *http.Request) {
	var precision int
	if err := runtime.BindQueryParameter("form", true, false, "precision", r.URL.Query(), &precision); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error(), map[string]any{"param": "precision"})
		return
	}

	store := s.Dashboard.Store()
	proj := store.Projection()
	ms := mapview.Markers(proj, store.Selection())

	out := Markers{
		Center:  latLng(mapview.Center(proj)),
		Zoom:    mapview.DefaultZoom,
		Markers: make([]Marker, len(ms)),
	}
	for i, m := range ms {
		out.Markers[i] = Marker{
			Id:        string(m.ID),
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
			Name:      m.Name,
			Status:    string(m.Status),
			Icon:      Icon{Selected: m.Icon.Selected, Color: m.Icon.Color, Scale: m.Icon.Scale},
			Geohash:   m.Geohash,
			Popup:     mapview.Popup(proj[i]),
		}
	}
	if precision > 0 {
		for _, c := range mapview.Clusters(ms, precision) {
			ids := make([]string, len(c.IDs))
			for i, id := range c.IDs {
				ids[i] = string(id)
			}
			out.Clusters = append(out.Clusters, Cluster{
				Geohash:  c.Geohash,
				Center:   latLng(c.Center),
				Count:    c.Count,
				Ids:      ids,
				Selected: c.Selected,
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetCamera(w http.ResponseWriter, r *http.Request) {
	pos := s.Camera.Position()
	out := Camera{
		Position: CameraTarget{Latitude: pos.Latitude, Longitude: pos.Longitude, Zoom: pos.Zoom},
		Flights:  s.Selection.Flights(),
	}
	if t, ok := s.Selection.Target(); ok {
		out.Target = nullable.NewNullableWithValue(CameraTarget{Latitude: t.Latitude, Longitude: t.Longitude, Zoom: t.Zoom})
	} else {
		out.Target = nullable.NewNullNullable[CameraTarget]()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	f, ok := s.exportFormat(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, f, s.Dashboard.Store().Projection()); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	metrics.ExportsTotal.WithLabelValues(string(f)).Inc()

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(f, s.now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) SaveExport(w http.ResponseWriter, r *http.Request) {
	f, ok := s.exportFormat(w, r)
	if !ok {
		return
	}
	if s.Sink == nil {
		writeError(w, r, http.StatusServiceUnavailable, "EXPORT_SINK_DISABLED", "no export sink is configured", nil)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, f, s.Dashboard.Store().Projection()); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	obj, err := s.Sink.Put(r.Context(), export.FileName(f, s.now()), f.ContentType(), &buf)
	if err != nil {
		s.log.Error("export_save_error", "format", string(f), "err", err)
		writeError(w, r, http.StatusBadGateway, "EXPORT_SAVE_FAILED", "failed to save export", nil)
		return
	}
	metrics.ExportsTotal.WithLabelValues(string(f)).Inc()
	s.log.Info("export_saved", "format", string(f), "location", obj.Location, "bytes", obj.Size)
	writeJSON(w, http.StatusCreated, SavedExport{Key: obj.Key, ContentType: obj.ContentType, Size: obj.Size, Location: obj.Location})
}

func (s *Server) GetNotifications(w http.ResponseWriter, r *http.Request) {
	out := Notifications{Notifications: []Notification{}}
	if s.Notifications != nil {
		for _, n := range s.Notifications.All() {
			out.Notifications = append(out.Notifications, Notification{
				Level:   string(n.Level),
				Message: n.Message,
				At:      n.At.UTC().Format(time.RFC3339),
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) exportFormat(w http.ResponseWriter, r *http.Request) (export.Format, bool) {
	f, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "UNKNOWN_EXPORT_FORMAT", "unknown export format", map[string]any{"formats": export.Formats()})
		return "", false
	}
	return f, true
}

func (s *Server) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "malformed JSON body"
		if errors.Is(err, io.EOF) {
			msg = "missing request body"
		}
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", msg, nil)
		return false
	}
	return true
}

func stateDTO(snap dashboard.Snapshot) State {
	out := State{
		Filter:  Filter{Status: string(snap.Filter.Status), Search: snap.Filter.Search},
		Sort:    Sort{Key: string(snap.Sort.Key), Direction: string(snap.Sort.Direction)},
		Total:   snap.Total,
		Shown:   snap.Shown,
		Summary: listview.Table{Shown: snap.Shown, Total: snap.Total}.Summary(),
		Version: snap.Version,
	}
	if snap.Selection.Valid {
		out.SelectedId = nullable.NewNullableWithValue(string(snap.Selection.ID))
	} else {
		out.SelectedId = nullable.NewNullNullable[string]()
	}
	return out
}

func rowsDTO(t listview.Table) Rows {
	out := Rows{
		Columns:      make([]Column, len(t.Columns)),
		Rows:         make([]Row, len(t.Rows)),
		TotalSize:    t.TotalSize,
		ScrollOffset: t.ScrollOffset,
		Shown:        t.Shown,
		Total:        t.Total,
		Summary:      t.Summary(),
	}
	for i, c := range t.Columns {
		out.Columns[i] = Column{Key: string(c.Key), Label: c.Label}
		if c.Direction != "" {
			out.Columns[i].Direction = nullable.NewNullableWithValue(string(c.Direction))
		}
	}
	for i, r := range t.Rows {
		out.Rows[i] = Row{
			Index:       r.Index,
			Start:       r.Start,
			Size:        r.Size,
			Measured:    r.Measured,
			Highlighted: r.Highlighted,
			Id:          string(r.ID),
			ProjectName: r.Name,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			Status:      string(r.Status),
			LastUpdated: r.LastUpdated,
		}
	}
	return out
}

func latLng(p mapview.LatLng) LatLng {
	return LatLng{Latitude: p.Latitude, Longitude: p.Longitude}
}
