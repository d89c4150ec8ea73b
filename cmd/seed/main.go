// Command seed fills a Postgres or SQLite record table with generated projects.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	memrecordsource "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/memory/recordsource"
	"github.com/Overland-East-Bay/geo-projects-view/internal/adapters/postgres"
	pgrecordsource "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/postgres/recordsource"
	sqliterecordsource "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/sqlite/recordsource"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	platformclock "github.com/Overland-East-Bay/geo-projects-view/internal/platform/clock"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/config"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/logger"
)

type writer interface {
	EnsureSchema(ctx context.Context) error
	ReplaceAll(ctx context.Context, records []domain.Record) error
}

var errUsage = errors.New("usage: seed [count] (RECORD_SOURCE=postgres|sqlite)")

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:]); err != nil {
		logger.L().Error("seed failed", "err", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	log := logger.Setup()

	cfg, err := config.LoadSourceConfigFromEnv()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return errUsage
		}
		cfg.MockCount = n
	}

	var w writer
	switch cfg.Kind {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.DefaultPoolOptions())
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		src, err := pgrecordsource.NewSource(pool, cfg.Table, log)
		if err != nil {
			return err
		}
		w = src
	case "sqlite":
		src, err := sqliterecordsource.Open(cfg.SQLitePath, log)
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		defer src.Close()
		w = src
	default:
		return fmt.Errorf("%w: got %q", errUsage, cfg.Kind)
	}

	records := memrecordsource.Generate(cfg.MockCount, rand.New(rand.NewSource(cfg.MockSeed)), platformclock.NewSystemClock().Now())
	if err := w.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if err := w.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("replace records: %w", err)
	}
	log.Info("seeded", "kind", cfg.Kind, "count", len(records))
	return nil
}
