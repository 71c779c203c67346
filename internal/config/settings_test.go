package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/metrics"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if !s.Thresholds.ExcellentBelow.Equal(decimal.NewFromInt(30)) || !s.Thresholds.AcceptableUpTo.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected default thresholds: %+v", s.Thresholds)
	}
	if s.ReportWorkers != defaultReportWorkers {
		t.Fatalf("workers=%d, want %d", s.ReportWorkers, defaultReportWorkers)
	}
}

func TestLoadSettings_OverridesThresholds(t *testing.T) {
	path := writeSettings(t, `
food_cost:
  excellent_below: 25
  acceptable_up_to: 33.5
  target_percent: 28
report:
  workers: 2
`)
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if !s.Thresholds.ExcellentBelow.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("excellent_below=%s", s.Thresholds.ExcellentBelow)
	}
	if !s.Thresholds.AcceptableUpTo.Equal(decimal.RequireFromString("33.5")) {
		t.Fatalf("acceptable_up_to=%s", s.Thresholds.AcceptableUpTo)
	}
	if !s.TargetFoodCost.Equal(decimal.NewFromInt(28)) || s.ReportWorkers != 2 {
		t.Fatalf("unexpected settings: %+v", s)
	}
}

func TestLoadSettings_RejectsInvertedThresholds(t *testing.T) {
	path := writeSettings(t, `
food_cost:
  excellent_below: 45
  acceptable_up_to: 40
`)
	if _, err := LoadSettings(path); !errors.Is(err, metrics.ErrInvalidThresholds) {
		t.Fatalf("expected invalid thresholds, got %v", err)
	}
}

func TestLoadSettings_RejectsMalformedYAML(t *testing.T) {
	path := writeSettings(t, "food_cost: [1, 2")
	if _, err := LoadSettings(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_DEBUG", "true")
	t.Setenv("SETTINGS_PATH", filepath.Join(t.TempDir(), "none.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsDev() || cfg.DBPath != defaultDBPath || cfg.Port != "9090" || !cfg.LogDebug {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_RejectsBadLogDebug(t *testing.T) {
	t.Setenv("LOG_DEBUG", "maybe")
	t.Setenv("SETTINGS_PATH", filepath.Join(t.TempDir(), "none.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for LOG_DEBUG=maybe")
	}
}
