package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/menucost/internal/metrics"
)

const defaultReportWorkers = 4

// Settings are the user-adjustable costing preferences.
type Settings struct {
	Thresholds     metrics.Thresholds
	TargetFoodCost decimal.Decimal
	ReportWorkers  int
}

// DefaultSettings returns 30/40 bands and a 30% target.
func DefaultSettings() Settings {
	return Settings{
		Thresholds:     metrics.DefaultThresholds(),
		TargetFoodCost: decimal.NewFromInt(30),
		ReportWorkers:  defaultReportWorkers,
	}
}

type settingsDTO struct {
	FoodCost struct {
		ExcellentBelow *float64 `yaml:"excellent_below"`
		AcceptableUpTo *float64 `yaml:"acceptable_up_to"`
		TargetPercent  *float64 `yaml:"target_percent"`
	} `yaml:"food_cost"`
	Report struct {
		Workers *int `yaml:"workers"`
	} `yaml:"report"`
}

// LoadSettings reads a YAML settings file. A missing file yields defaults;
// keys left out keep their default values.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	var dto settingsDTO
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if v := dto.FoodCost.ExcellentBelow; v != nil {
		s.Thresholds.ExcellentBelow = decimal.NewFromFloat(*v)
	}
	if v := dto.FoodCost.AcceptableUpTo; v != nil {
		s.Thresholds.AcceptableUpTo = decimal.NewFromFloat(*v)
	}
	if v := dto.FoodCost.TargetPercent; v != nil {
		s.TargetFoodCost = decimal.NewFromFloat(*v)
	}
	if v := dto.Report.Workers; v != nil {
		s.ReportWorkers = *v
	}

	if err := s.Thresholds.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	if !s.TargetFoodCost.IsPositive() || s.TargetFoodCost.GreaterThan(decimal.NewFromInt(100)) {
		return Settings{}, fmt.Errorf("settings %s: target_percent must be within (0, 100]", path)
	}
	if s.ReportWorkers < 1 {
		return Settings{}, fmt.Errorf("settings %s: report.workers must be at least 1", path)
	}

	return s, nil
}
