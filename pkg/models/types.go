package models

import "time"

// TrainsetStatus is the operational state of a trainset as reported by the
// fleet-data service.
type TrainsetStatus string

const (
	StatusAvailable        TrainsetStatus = "available"
	StatusInService        TrainsetStatus = "in-service"
	StatusUnderMaintenance TrainsetStatus = "under-maintenance"
	StatusOutOfService     TrainsetStatus = "out-of-service"
	StatusCleaning         TrainsetStatus = "cleaning"
)

// Trainset is a read-only view of a physical train unit. It is owned by the
// external fleet-data service; this core never mutates it.
type Trainset struct {
	ID                string         `json:"id"`
	Status            TrainsetStatus `json:"status"`
	FitnessExpiry     *time.Time     `json:"fitnessExpiry,omitempty"`
	CurrentDistanceKm float64        `json:"currentDistanceKm"`
	MaintenanceDueKm  float64        `json:"maintenanceDueKm"`
}

// ConstraintSet holds the operational limits an induction plan must respect.
// All numeric fields are non-negative; boolean fields are explicit.
type ConstraintSet struct {
	MinTurnaroundMinutes      float64 `json:"minTurnaroundMinutes" yaml:"min_turnaround_minutes"`
	MaxDailyOperatingHours    float64 `json:"maxDailyOperatingHours" yaml:"max_daily_operating_hours"`
	FitnessComplianceRequired bool    `json:"fitnessComplianceRequired" yaml:"fitness_compliance_required"`
	MaxDistanceBeforeMaintKm  float64 `json:"maxDistanceBeforeMaintenanceKm" yaml:"max_distance_before_maintenance_km"`
	MaxCrewDutyHours          float64 `json:"maxCrewDutyHours" yaml:"max_crew_duty_hours"`
	MinCrewRestHours          float64 `json:"minCrewRestHours" yaml:"min_crew_rest_hours"`
	DepotCapacity             int     `json:"depotCapacity" yaml:"depot_capacity"`
	PlatformCapacity          int     `json:"platformCapacity" yaml:"platform_capacity"`
	StablingCapacity          int     `json:"stablingCapacity" yaml:"stabling_capacity"`
}

// ObjectiveWeights maps the six optimization objectives to their weights.
// Each weight must lie in [0,1] and the six must sum to 1.0 within an
// absolute tolerance of 0.01 before a request may be dispatched to the
// optimizer.
type ObjectiveWeights struct {
	FitnessCompliance     float64 `json:"fitnessCompliance" yaml:"fitness_compliance"`
	MaintenanceScheduling float64 `json:"maintenanceScheduling" yaml:"maintenance_scheduling"`
	MileageBalancing      float64 `json:"mileageBalancing" yaml:"mileage_balancing"`
	EnergyEfficiency      float64 `json:"energyEfficiency" yaml:"energy_efficiency"`
	PassengerComfort      float64 `json:"passengerComfort" yaml:"passenger_comfort"`
	OperationalCost       float64 `json:"operationalCost" yaml:"operational_cost"`
}

// Sum returns the total of all six weights.
func (w ObjectiveWeights) Sum() float64 {
	return w.FitnessCompliance + w.MaintenanceScheduling + w.MileageBalancing +
		w.EnergyEfficiency + w.PassengerComfort + w.OperationalCost
}

// ChangeType categorizes a scenario parameter override.
type ChangeType string

const (
	ChangeMaintenance ChangeType = "MAINTENANCE"
	ChangeFitness     ChangeType = "FITNESS"
	ChangeOperational ChangeType = "OPERATIONAL"
	ChangeConstraint  ChangeType = "CONSTRAINT"
)

// ScenarioParameter is a single trainset-field override inside a scenario.
type ScenarioParameter struct {
	TrainsetID    string     `json:"trainsetId"`
	Field         string     `json:"field"`
	OriginalValue any        `json:"originalValue"`
	NewValue      any        `json:"newValue"`
	ChangeType    ChangeType `json:"changeType"`
}

// ConstraintChange is a single constraint-value override inside a scenario.
type ConstraintChange struct {
	Constraint    string  `json:"constraint"`
	OriginalValue float64 `json:"originalValue"`
	NewValue      float64 `json:"newValue"`
}

// ImpactVector is the six-field delta describing a scenario's projected
// effect on operations. All fields except RiskScore are percentage-style
// deltas; RiskScore is a score roughly on a 0..1 scale.
type ImpactVector struct {
	ServiceAvailability float64 `json:"serviceAvailability"`
	MaintenanceLoad     float64 `json:"maintenanceLoad"`
	EnergyConsumption   float64 `json:"energyConsumption"`
	CostImpact          float64 `json:"costImpact"`
	RiskScore           float64 `json:"riskScore"`
	BrandingCompliance  float64 `json:"brandingCompliance"`
}

// Zero reports whether every impact field is exactly zero.
func (v ImpactVector) Zero() bool {
	return v == ImpactVector{}
}

// Scenario is an immutable what-if definition. A custom scenario is built
// once via the catalog's Define and is thereafter treated exactly like a
// predefined one.
type Scenario struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Parameters  []ScenarioParameter `json:"parameters"`
	Constraints []ConstraintChange  `json:"constraints"`
	Impacts     ImpactVector        `json:"impacts"`
}

// BaselineMetrics is the eight-field reference operational snapshot a
// scenario is compared against. The field set is load-bearing: the impact
// transform is defined field-by-field over exactly these metrics.
type BaselineMetrics struct {
	InService          float64 `json:"inService"`
	Maintenance        float64 `json:"maintenance"`
	Standby            float64 `json:"standby"`
	TotalShunting      float64 `json:"totalShunting"`
	EnergyConsumption  float64 `json:"energyConsumption"`
	OperationalCost    float64 `json:"operationalCost"`
	Punctuality        float64 `json:"punctuality"`
	BrandingCompliance float64 `json:"brandingCompliance"`
}

// FleetSize is the trainset count summed across the three allocation states.
func (m BaselineMetrics) FleetSize() float64 {
	return m.InService + m.Maintenance + m.Standby
}

// Difference is one per-metric row of a simulation result. PercentChange is
// nil when the baseline value is zero (undefined, never NaN or Inf).
type Difference struct {
	Metric        string   `json:"metric"`
	Baseline      float64  `json:"baseline"`
	Simulated     float64  `json:"simulated"`
	Difference    float64  `json:"difference"`
	PercentChange *float64 `json:"percentChange"`
}

// SimulationResult is the immutable output of one what-if run. It is not
// persisted unless the user explicitly saves the scenario.
type SimulationResult struct {
	RunID           string          `json:"runId,omitempty"`
	ScenarioID      string          `json:"scenarioId"`
	Baseline        BaselineMetrics `json:"baseline"`
	Simulated       BaselineMetrics `json:"simulated"`
	Differences     []Difference    `json:"differences"`
	Recommendations []string        `json:"recommendations"`
	ConfidenceScore float64         `json:"confidenceScore"`
	BaselineSource  string          `json:"baselineSource,omitempty"`
}
