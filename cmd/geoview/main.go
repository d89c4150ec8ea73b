package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/Overland-East-Bay/geo-projects-view/internal/adapters/tui"
	"github.com/Overland-East-Bay/geo-projects-view/internal/bootstrap"
	platformclock "github.com/Overland-East-Bay/geo-projects-view/internal/platform/clock"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/config"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "geoview:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	// The UI owns the terminal, so log lines go to a file.
	logFile, err := os.OpenFile(getenv("GEOVIEW_LOG", "geoview.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	log := logger.SetupWriter(logFile)

	srcCfg, err := config.LoadSourceConfigFromEnv()
	if err != nil {
		return err
	}
	viewCfg, err := config.LoadViewConfigFromEnv()
	if err != nil {
		return err
	}

	clk := platformclock.NewSystemClock()
	src, cleanup, err := bootstrap.NewSource(context.Background(), srcCfg, clk, log)
	if err != nil {
		return err
	}
	defer cleanup()

	session := bootstrap.NewSession(src, viewCfg, tui.WindowOptions(), clk, log)
	defer session.Close()

	m := tui.New(tui.Deps{
		Dashboard:     session.Service,
		Table:         session.Table,
		Selection:     session.Selection,
		Camera:        session.Camera,
		Notifications: session.Notifications,
		Cache:         session.Loader,
		Log:           log,
	})
	log.Info("geoview_start", "source", srcCfg.Kind)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
