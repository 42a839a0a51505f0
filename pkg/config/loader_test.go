package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Eligibility.SafetyMarginKm != 500 {
		t.Fatalf("safety margin = %v", cfg.Eligibility.SafetyMarginKm)
	}
	if cfg.Confidence.Base != 0.85 {
		t.Fatalf("confidence base = %v", cfg.Confidence.Base)
	}
	if sum := cfg.Weights.Sum(); sum < 0.99 || sum > 1.01 {
		t.Fatalf("default weights sum = %v, want ~1.0", sum)
	}
	if !cfg.Constraints.FitnessComplianceRequired {
		t.Fatalf("fitness compliance should be required by default")
	}
}

func TestParseConfigYAML(t *testing.T) {
	data := []byte(`
log_level: debug
http_addr: ":9090"
eligibility:
  safety_margin_km: 750
fleet_data:
  base_url: http://fleet.internal:8081
  timeout_seconds: 5
  rate_per_sec: 20
  burst: 10
constraints:
  fitness_compliance_required: false
  depot_capacity: 24
`)
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		t.Fatalf("ParseConfigYAML: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("http addr = %q", cfg.HTTPAddr)
	}
	if cfg.Eligibility.SafetyMarginKm != 750 {
		t.Fatalf("safety margin = %v", cfg.Eligibility.SafetyMarginKm)
	}
	if cfg.FleetData == nil || cfg.FleetData.BaseURL != "http://fleet.internal:8081" {
		t.Fatalf("fleet_data = %+v", cfg.FleetData)
	}
	if cfg.FleetData.Timeout() != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.FleetData.Timeout())
	}
	if cfg.Constraints.FitnessComplianceRequired {
		t.Fatalf("fitness_compliance_required override not applied")
	}
	if cfg.Constraints.DepotCapacity != 24 {
		t.Fatalf("depot_capacity = %d", cfg.Constraints.DepotCapacity)
	}

	// Unspecified fields keep their defaults.
	if cfg.DBPath != "fleetsim.db" {
		t.Fatalf("db_path default lost: %q", cfg.DBPath)
	}
	if cfg.Constraints.MinTurnaroundMinutes != 30 {
		t.Fatalf("min_turnaround_minutes default lost: %v", cfg.Constraints.MinTurnaroundMinutes)
	}
}

func TestParseConfigYAMLRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad log level", "log_level: verbose", "invalid log_level"},
		{"empty http addr", `http_addr: ""`, "http_addr"},
		{"negative safety margin", "eligibility:\n  safety_margin_km: -1", "safety_margin_km"},
		{"confidence above one", "confidence:\n  base: 1.5", "confidence base"},
		{"negative constraint", "constraints:\n  max_crew_duty_hours: -8", "max_crew_duty_hours"},
		{"upstream without url", "optimizer:\n  timeout_seconds: 5", "base_url"},
		{"not yaml", ":\n  - {", "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfigYAML([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: warn\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file must error")
	}
}
