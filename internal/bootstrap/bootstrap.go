// Package bootstrap assembles record sources, export sinks and dashboard
// sessions from configuration for the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	blobfs "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/blob/fs"
	blobs3 "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/blob/s3"
	"github.com/Overland-East-Bay/geo-projects-view/internal/adapters/fetch"
	"github.com/Overland-East-Bay/geo-projects-view/internal/adapters/httpsource"
	"github.com/Overland-East-Bay/geo-projects-view/internal/adapters/lognotifier"
	memcamera "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/memory/camera"
	memnotifier "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/memory/notifier"
	memrecordsource "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/memory/recordsource"
	"github.com/Overland-East-Bay/geo-projects-view/internal/adapters/postgres"
	pgrecordsource "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/postgres/recordsource"
	sqliterecordsource "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/sqlite/recordsource"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/dashboard"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/listview"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/mapview"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/selection"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/window"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/config"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/camera"
	clockport "github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/clock"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/exportsink"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/recordsource"
)

const notificationHistory = 50

// NewSource builds the record source named by cfg.Kind. cleanup is never nil.
func NewSource(ctx context.Context, cfg config.SourceConfig, clk clockport.Clock, log *slog.Logger) (src recordsource.Source, cleanup func(), err error) {
	cleanup = func() {}
	switch cfg.Kind {
	case "http":
		src = httpsource.New(httpsource.Options{
			URL:    cfg.URL,
			Stride: cfg.Stride,
			Client: &http.Client{Timeout: cfg.HTTPTimeout},
			Log:    log,
		})
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.DefaultPoolOptions())
		if err != nil {
			return nil, cleanup, fmt.Errorf("postgres: %w", err)
		}
		pg, err := pgrecordsource.NewSource(pool, cfg.Table, log)
		if err != nil {
			pool.Close()
			return nil, cleanup, err
		}
		src, cleanup = pg, pool.Close
	case "sqlite":
		db, err := sqliterecordsource.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, cleanup, fmt.Errorf("sqlite: %w", err)
		}
		src = db
		cleanup = func() {
			if err := db.Close(); err != nil {
				log.Warn("sqlite_close_error", "err", err)
			}
		}
	case "mock", "":
		src = memrecordsource.NewMock(cfg.MockCount, cfg.MockSeed, clk)
	default:
		return nil, cleanup, fmt.Errorf("unknown record source %q", cfg.Kind)
	}
	return src, cleanup, nil
}

// NewSink builds the export sink named by cfg.Sink.
func NewSink(ctx context.Context, cfg config.ExportConfig) (exportsink.Sink, error) {
	switch cfg.Sink {
	case "s3":
		sink, err := blobs3.New(ctx, blobs3.Config{
			Bucket:   cfg.Bucket,
			Prefix:   cfg.Prefix,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil
	case "fs", "":
		sink, err := blobfs.New(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown export sink %q", cfg.Sink)
	}
}

// Session is one single-user dashboard: state, loader, read models and camera.
type Session struct {
	Store         *dashboard.Store
	Service       *dashboard.Service
	Loader        *fetch.Loader
	Table         *listview.View
	Selection     *selection.Coordinator
	Camera        *memcamera.Animator
	Notifications *memnotifier.Recorder
	Clock         clockport.Clock
}

// NewSession wires a session over src. win sizes table rows; the API uses
// pixels and the terminal UI lines.
func NewSession(src recordsource.Source, view config.ViewConfig, win window.Options, clk clockport.Clock, log *slog.Logger) *Session {
	store := dashboard.NewStore()
	loader := fetch.NewLoader(src)
	notes := memnotifier.NewRecorder(notificationHistory)
	svc := dashboard.NewService(store, loader, lognotifier.New(log, notes), clk, log)

	anim := memcamera.NewAnimator(camera.Position{
		Latitude:  mapview.DefaultCenter.Latitude,
		Longitude: mapview.DefaultCenter.Longitude,
		Zoom:      mapview.DefaultZoom,
	}, 0)
	sel := selection.NewCoordinator(store, anim, selection.Options{
		Zoom:     view.CameraZoom,
		Duration: view.CameraDuration,
	}, log)

	return &Session{
		Store:         store,
		Service:       svc,
		Loader:        loader,
		Table:         listview.New(store, win),
		Selection:     sel,
		Camera:        anim,
		Notifications: notes,
		Clock:         clk,
	}
}

// WindowOptions maps the view configuration onto table geometry.
func WindowOptions(view config.ViewConfig) window.Options {
	return window.Options{EstimateSize: view.EstimateSize, Overscan: view.Overscan}
}

// Close detaches the selection coordinator.
func (s *Session) Close() {
	s.Selection.Close()
}
