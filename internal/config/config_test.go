package config_test

import (
	"testing"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != config.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, config.DefaultPort)
	}
	if cfg.DataSource != "sqlite" {
		t.Errorf("DataSource = %q, want sqlite", cfg.DataSource)
	}
	if cfg.HistoryTurns != config.DefaultHistoryTurns {
		t.Errorf("HistoryTurns = %d", cfg.HistoryTurns)
	}
	if cfg.EnableAuth {
		t.Error("auth enabled by default without keys")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COPILOT_PORT", "9100")
	t.Setenv("COPILOT_DATA_SOURCE", "csv")
	t.Setenv("COPILOT_CSV_PATH", "/tmp/sales.csv")
	t.Setenv("COPILOT_API_KEYS", "k1,k2")
	t.Setenv("COPILOT_HISTORY_TURNS", "4")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if cfg.DataSource != "csv" || cfg.CSVPath != "/tmp/sales.csv" {
		t.Errorf("data source = %q path = %q", cfg.DataSource, cfg.CSVPath)
	}
	if !cfg.EnableAuth || len(cfg.APIKeys) != 2 {
		t.Errorf("auth = %v keys = %v, setting keys should enable auth", cfg.EnableAuth, cfg.APIKeys)
	}
	if cfg.HistoryTurns != 4 {
		t.Errorf("HistoryTurns = %d, want 4", cfg.HistoryTurns)
	}
}
