package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-activity-export/internal/config"
)

func testConfig(outputPath string) config.Config {
	return config.Config{
		AppName:            "activity-exporter",
		AppEnv:             "test",
		LogLevel:           "info",
		OutputPath:         outputPath,
		SideChannelTimeout: time.Second,
	}
}

func TestRunExitsNonZeroWhenDirectoryMissing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "missing", "activities.json")

	code := run(context.Background(), testConfig(target), zerolog.Nop())
	require.Equal(t, 1, code)

	_, err := os.Stat(filepath.Join(dir, "missing"))
	require.True(t, os.IsNotExist(err))
}

func TestRunWritesDocument(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "activities.json")
	metrics := filepath.Join(dir, "activity_export.prom")

	cfg := testConfig(target)
	cfg.MetricsTextfile = metrics

	code := run(context.Background(), cfg, zerolog.Nop())
	require.Equal(t, 0, code)

	stored, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Contains(t, string(stored), `"name": "Krambambouli cantus"`)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	require.Contains(t, string(prom), "activity_export_records 5")
}

func TestRunIgnoresUnreachableSideChannels(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "activities.json")

	cfg := testConfig(target)
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	cfg.RedisKey = "activities:json"
	cfg.NATSURL = "nats://127.0.0.1:1"
	cfg.NATSSubject = "activities.exported"
	cfg.DatabaseDriver = "sqlite"
	cfg.DatabaseURL = "file:run_side_channels?mode=memory&cache=shared"

	code := run(context.Background(), cfg, zerolog.Nop())
	require.Equal(t, 0, code)

	_, err := os.Stat(target)
	require.NoError(t, err)
}
