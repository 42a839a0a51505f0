package config

import (
	"time"

	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

// Config is the main daemon configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	HTTPAddr string `yaml:"http_addr"`
	DBPath   string `yaml:"db_path"`

	Eligibility Eligibility `yaml:"eligibility"`
	Confidence  Confidence  `yaml:"confidence"`

	FleetData *Upstream `yaml:"fleet_data,omitempty"`
	Optimizer *Upstream `yaml:"optimizer,omitempty"`

	// Defaults used when a request does not carry its own constraint set
	// or weight profile.
	Constraints models.ConstraintSet    `yaml:"constraints"`
	Weights     models.ObjectiveWeights `yaml:"weights"`
}

// Eligibility holds the tunables of the trainset eligibility filter.
type Eligibility struct {
	// SafetyMarginKm is the distance margin a trainset must retain before
	// its maintenance-due threshold to stay eligible.
	SafetyMarginKm float64 `yaml:"safety_margin_km"`
}

// Confidence holds the tunables of the confidence estimator.
type Confidence struct {
	// Base is the placeholder confidence attached to every simulation
	// result until a calibrated signal replaces it.
	Base float64 `yaml:"base"`
}

// Upstream describes one external HTTP collaborator (the fleet-data
// service or the scheduling optimizer).
type Upstream struct {
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"`
	RatePerSec     float64 `yaml:"rate_per_sec,omitempty"`
	Burst          int     `yaml:"burst,omitempty"`
}

// Timeout returns the configured request timeout, defaulting to 10s.
func (u *Upstream) Timeout() time.Duration {
	if u.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		HTTPAddr: ":8080",
		DBPath:   "fleetsim.db",
		Eligibility: Eligibility{
			SafetyMarginKm: 500,
		},
		Confidence: Confidence{
			Base: 0.85,
		},
		Constraints: models.ConstraintSet{
			MinTurnaroundMinutes:      30,
			MaxDailyOperatingHours:    18,
			FitnessComplianceRequired: true,
			MaxDistanceBeforeMaintKm:  10000,
			MaxCrewDutyHours:          8,
			MinCrewRestHours:          12,
			DepotCapacity:             30,
			PlatformCapacity:          25,
			StablingCapacity:          10,
		},
		Weights: models.ObjectiveWeights{
			FitnessCompliance:     0.25,
			MaintenanceScheduling: 0.20,
			MileageBalancing:      0.15,
			EnergyEfficiency:      0.15,
			PassengerComfort:      0.10,
			OperationalCost:       0.15,
		},
	}
}
