package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads and parses a configuration file. Fields absent from the
// file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfigYAML parses configuration YAML over the defaults and validates
// the result.
func ParseConfigYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.HTTPAddr == "" {
		return fmt.Errorf("http_addr cannot be empty")
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}

	if cfg.Eligibility.SafetyMarginKm < 0 {
		return fmt.Errorf("eligibility safety_margin_km cannot be negative, got %f", cfg.Eligibility.SafetyMarginKm)
	}
	if cfg.Confidence.Base < 0 || cfg.Confidence.Base > 1 {
		return fmt.Errorf("confidence base must be between 0 and 1, got %f", cfg.Confidence.Base)
	}

	if err := validateConstraints(cfg); err != nil {
		return fmt.Errorf("constraints validation failed: %w", err)
	}

	if cfg.FleetData != nil {
		if err := validateUpstream("fleet_data", cfg.FleetData); err != nil {
			return err
		}
	}
	if cfg.Optimizer != nil {
		if err := validateUpstream("optimizer", cfg.Optimizer); err != nil {
			return err
		}
	}

	return nil
}

// validateConstraints checks the invariant that every numeric constraint
// field is non-negative.
func validateConstraints(cfg *Config) error {
	c := cfg.Constraints
	checks := []struct {
		name  string
		value float64
	}{
		{"min_turnaround_minutes", c.MinTurnaroundMinutes},
		{"max_daily_operating_hours", c.MaxDailyOperatingHours},
		{"max_distance_before_maintenance_km", c.MaxDistanceBeforeMaintKm},
		{"max_crew_duty_hours", c.MaxCrewDutyHours},
		{"min_crew_rest_hours", c.MinCrewRestHours},
		{"depot_capacity", float64(c.DepotCapacity)},
		{"platform_capacity", float64(c.PlatformCapacity)},
		{"stabling_capacity", float64(c.StablingCapacity)},
	}
	for _, check := range checks {
		if check.value < 0 {
			return fmt.Errorf("%s cannot be negative, got %v", check.name, check.value)
		}
	}
	return nil
}

// validateUpstream validates one external collaborator block.
func validateUpstream(name string, u *Upstream) error {
	if u.BaseURL == "" {
		return fmt.Errorf("%s base_url cannot be empty", name)
	}
	if u.TimeoutSeconds < 0 {
		return fmt.Errorf("%s timeout_seconds cannot be negative, got %d", name, u.TimeoutSeconds)
	}
	if u.RatePerSec < 0 {
		return fmt.Errorf("%s rate_per_sec cannot be negative, got %f", name, u.RatePerSec)
	}
	if u.Burst < 0 {
		return fmt.Errorf("%s burst cannot be negative, got %d", name, u.Burst)
	}
	return nil
}
