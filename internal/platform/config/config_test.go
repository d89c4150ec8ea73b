package config

import (
	"testing"
	"time"
)

func TestLoadViewConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("VIEW_ESTIMATE_SIZE", "")
	t.Setenv("VIEW_OVERSCAN", "")
	t.Setenv("CAMERA_ZOOM", "")
	t.Setenv("CAMERA_DURATION", "")

	cfg, err := LoadViewConfigFromEnv()
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.EstimateSize != 52 || cfg.Overscan != 10 || cfg.CameraZoom != 12 || cfg.CameraDuration != 1500*time.Millisecond {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadViewConfigFromEnv_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"negative overscan": {"VIEW_OVERSCAN", "-1"},
		"bad estimate":      {"VIEW_ESTIMATE_SIZE", "0"},
		"bad duration":      {"CAMERA_DURATION", "soon"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := LoadViewConfigFromEnv(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestLoadSourceConfigFromEnv(t *testing.T) {
	t.Setenv("RECORD_SOURCE", "http")
	t.Setenv("RECORDS_URL", "http://example.test/data.json")
	t.Setenv("RECORDS_STRIDE", "50")
	t.Setenv("MOCK_SEED", "42")

	cfg, err := LoadSourceConfigFromEnv()
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Kind != "http" || cfg.URL != "http://example.test/data.json" || cfg.Stride != 50 || cfg.MockSeed != 42 {
		t.Fatalf("cfg=%+v", cfg)
	}

	t.Setenv("RECORD_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadSourceConfigFromEnv(); err == nil {
		t.Fatalf("expected error for postgres without DATABASE_URL")
	}

	t.Setenv("RECORD_SOURCE", "ftp")
	if _, err := LoadSourceConfigFromEnv(); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

func TestLoadExportConfigFromEnv(t *testing.T) {
	t.Setenv("EXPORT_SINK", "s3")
	t.Setenv("S3_BUCKET", "")
	if _, err := LoadExportConfigFromEnv(); err == nil {
		t.Fatalf("expected error for s3 without bucket")
	}
	t.Setenv("S3_BUCKET", "exports")
	cfg, err := LoadExportConfigFromEnv()
	if err != nil || cfg.Bucket != "exports" || cfg.Region != "us-east-1" {
		t.Fatalf("cfg=%+v err=%v", cfg, err)
	}
}
