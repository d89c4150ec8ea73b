package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Overland-East-Bay/geo-projects-view/internal/adapters/httpapi"
	"github.com/Overland-East-Bay/geo-projects-view/internal/bootstrap"
	platformclock "github.com/Overland-East-Bay/geo-projects-view/internal/platform/clock"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/config"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/logger"
)

func main() {
	_ = godotenv.Load()
	log := logger.Setup()

	port := getenv("PORT", "8080")

	srcCfg, err := config.LoadSourceConfigFromEnv()
	if err != nil {
		log.Error("invalid source config", "err", err)
		os.Exit(1)
	}
	viewCfg, err := config.LoadViewConfigFromEnv()
	if err != nil {
		log.Error("invalid view config", "err", err)
		os.Exit(1)
	}
	exportCfg, err := config.LoadExportConfigFromEnv()
	if err != nil {
		log.Error("invalid export config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClock()

	src, cleanup, err := bootstrap.NewSource(ctx, srcCfg, clk, log)
	if err != nil {
		log.Error("record source init failed", "kind", srcCfg.Kind, "err", err)
		os.Exit(1)
	}
	defer cleanup()

	sink, err := bootstrap.NewSink(ctx, exportCfg)
	if err != nil {
		// Saving exports is optional; downloads still work.
		log.Warn("export sink disabled", "sink", exportCfg.Sink, "err", err)
	}

	session := bootstrap.NewSession(src, viewCfg, bootstrap.WindowOptions(viewCfg), clk, log)
	defer session.Close()

	if getenv("LOAD_ON_START", "true") == "true" {
		if _, err := session.Service.Load(ctx); err != nil {
			log.Warn("initial load failed", "err", err)
		}
	}

	api := httpapi.NewServer(httpapi.ServerDeps{
		Dashboard:     session.Service,
		Table:         session.Table,
		Selection:     session.Selection,
		Camera:        session.Camera,
		Cache:         session.Loader,
		Notifications: session.Notifications,
		Sink:          sink,
		Clock:         clk,
		Log:           log,
	})
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{Logger: log, Metrics: true})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "source", srcCfg.Kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
