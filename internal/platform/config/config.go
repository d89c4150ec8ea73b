package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SourceConfig selects where the record set is loaded from.
type SourceConfig struct {
	// Kind is one of: mock, http, postgres, sqlite.
	Kind string

	URL    string
	Stride int

	MockCount int
	MockSeed  int64

	DatabaseURL string
	// Table is the Postgres table holding records.
	Table      string
	SQLitePath string

	HTTPTimeout time.Duration
}

// ViewConfig configures the windowed table and the map camera.
type ViewConfig struct {
	EstimateSize float64
	Overscan     int

	CameraZoom     float64
	CameraDuration time.Duration
}

// ExportConfig selects where saved exports go.
type ExportConfig struct {
	// Sink is one of: fs, s3.
	Sink string
	Dir  string

	Bucket   string
	Prefix   string
	Endpoint string
	Region   string
}

func LoadSourceConfigFromEnv() (SourceConfig, error) {
	cfg := SourceConfig{
		Kind:        getenv("RECORD_SOURCE", "mock"),
		URL:         getenv("RECORDS_URL", "http://localhost:5173/geo-projects-data.json"),
		Stride:      1,
		MockCount:   5000,
		MockSeed:    time.Now().UnixNano(),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Table:       getenv("RECORDS_TABLE", "geo_projects"),
		SQLitePath:  getenv("SQLITE_PATH", "geo-projects.db"),
		HTTPTimeout: 10 * time.Second,
	}

	var err error
	if cfg.Stride, err = intFromEnv("RECORDS_STRIDE", cfg.Stride); err != nil {
		return SourceConfig{}, err
	}
	if cfg.Stride < 1 {
		return SourceConfig{}, fmt.Errorf("RECORDS_STRIDE must be >= 1")
	}
	if cfg.MockCount, err = intFromEnv("MOCK_COUNT", cfg.MockCount); err != nil {
		return SourceConfig{}, err
	}
	if v := os.Getenv("MOCK_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return SourceConfig{}, fmt.Errorf("MOCK_SEED must be an integer: %w", err)
		}
		cfg.MockSeed = n
	}
	if cfg.HTTPTimeout, err = durationFromEnv("RECORDS_HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return SourceConfig{}, err
	}

	switch cfg.Kind {
	case "mock", "http", "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return SourceConfig{}, fmt.Errorf("RECORD_SOURCE=postgres requires DATABASE_URL")
		}
	default:
		return SourceConfig{}, fmt.Errorf("unknown RECORD_SOURCE %q (want mock, http, postgres or sqlite)", cfg.Kind)
	}
	return cfg, nil
}

func LoadViewConfigFromEnv() (ViewConfig, error) {
	// 52px rows, 10 rows overscan, zoom 12 over 1.5s.
	cfg := ViewConfig{
		EstimateSize:   52,
		Overscan:       10,
		CameraZoom:     12,
		CameraDuration: 1500 * time.Millisecond,
	}
	var err error
	if v := os.Getenv("VIEW_ESTIMATE_SIZE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return ViewConfig{}, fmt.Errorf("VIEW_ESTIMATE_SIZE must be a positive number")
		}
		cfg.EstimateSize = f
	}
	if cfg.Overscan, err = intFromEnv("VIEW_OVERSCAN", cfg.Overscan); err != nil {
		return ViewConfig{}, err
	}
	if cfg.Overscan < 0 {
		return ViewConfig{}, fmt.Errorf("VIEW_OVERSCAN must be >= 0")
	}
	if v := os.Getenv("CAMERA_ZOOM"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ViewConfig{}, fmt.Errorf("CAMERA_ZOOM must be a number: %w", err)
		}
		cfg.CameraZoom = f
	}
	if cfg.CameraDuration, err = durationFromEnv("CAMERA_DURATION", cfg.CameraDuration); err != nil {
		return ViewConfig{}, err
	}
	return cfg, nil
}

func LoadExportConfigFromEnv() (ExportConfig, error) {
	cfg := ExportConfig{
		Sink:     getenv("EXPORT_SINK", "fs"),
		Dir:      getenv("EXPORT_DIR", "exports"),
		Bucket:   os.Getenv("S3_BUCKET"),
		Prefix:   os.Getenv("S3_PREFIX"),
		Endpoint: os.Getenv("S3_ENDPOINT"),
		Region:   getenv("S3_REGION", "us-east-1"),
	}
	switch cfg.Sink {
	case "fs":
	case "s3":
		if cfg.Bucket == "" {
			return ExportConfig{}, fmt.Errorf("EXPORT_SINK=s3 requires S3_BUCKET")
		}
	default:
		return ExportConfig{}, fmt.Errorf("unknown EXPORT_SINK %q (want fs or s3)", cfg.Sink)
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intFromEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", k, err)
	}
	return n, nil
}

func durationFromEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 1500ms): %w", k, err)
	}
	return d, nil
}
