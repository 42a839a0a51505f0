package scenario

import (
	"errors"
	"fmt"
	"sync"

	"github.com/metrorail-ops/fleetsim-core/pkg/models"
	"github.com/metrorail-ops/fleetsim-core/pkg/utils"
)

// ErrNotFound is returned when a scenario id is unknown to the catalog.
var ErrNotFound = errors.New("scenario not found")

// Catalog holds the predefined what-if scenarios and accepts user-authored
// custom ones. Scenarios are immutable once defined; the catalog hands out
// copies so callers cannot mutate shared state.
type Catalog struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]models.Scenario
}

// NewCatalog returns a catalog seeded with the predefined scenarios.
func NewCatalog() *Catalog {
	c := &Catalog{
		byID: make(map[string]models.Scenario),
	}
	for _, s := range predefined() {
		c.byID[s.ID] = s
		c.order = append(c.order, s.ID)
	}
	return c
}

// List returns all scenarios in definition order.
func (c *Catalog) List() []models.Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Scenario, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Get returns the scenario with the given id, or ErrNotFound.
func (c *Catalog) Get(id string) (models.Scenario, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byID[id]
	if !ok {
		return models.Scenario{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Define registers a custom scenario, filling any omitted field with a
// neutral default: generated id, empty parameter and constraint lists, and
// a zero-valued impact vector. The returned scenario is what was stored.
func (c *Catalog) Define(partial models.Scenario) (models.Scenario, error) {
	if partial.ID == "" {
		partial.ID = utils.NewScenarioID()
	}
	if partial.Name == "" {
		partial.Name = partial.ID
	}
	if partial.Parameters == nil {
		partial.Parameters = []models.ScenarioParameter{}
	}
	if partial.Constraints == nil {
		partial.Constraints = []models.ConstraintChange{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byID[partial.ID]; exists {
		return models.Scenario{}, fmt.Errorf("scenario already exists: %s", partial.ID)
	}
	c.byID[partial.ID] = partial
	c.order = append(c.order, partial.ID)
	return partial, nil
}

// predefined returns the fixed scenario definitions. These are data, not
// derived by any algorithm, but their shape (parameters + constraints +
// six-field impact vector) is the contract the simulation pipeline depends
// on: every entry must supply all six impact fields.
func predefined() []models.Scenario {
	return []models.Scenario{
		{
			ID:          "emergency-maintenance-surge",
			Name:        "Emergency Maintenance Surge",
			Description: "Multiple trainsets pulled from revenue service at once after a defect notice, overloading the maintenance bays.",
			Parameters: []models.ScenarioParameter{
				{TrainsetID: "TS-04", Field: "status", OriginalValue: "in-service", NewValue: "under-maintenance", ChangeType: models.ChangeMaintenance},
				{TrainsetID: "TS-11", Field: "status", OriginalValue: "in-service", NewValue: "under-maintenance", ChangeType: models.ChangeMaintenance},
				{TrainsetID: "TS-17", Field: "status", OriginalValue: "available", NewValue: "under-maintenance", ChangeType: models.ChangeMaintenance},
			},
			Constraints: []models.ConstraintChange{
				{Constraint: "depot_capacity", OriginalValue: 30, NewValue: 24},
			},
			Impacts: models.ImpactVector{
				ServiceAvailability: -15,
				MaintenanceLoad:     60,
				EnergyConsumption:   -10,
				CostImpact:          45000,
				RiskScore:           0.7,
				BrandingCompliance:  -8,
			},
		},
		{
			ID:          "fitness-expiry-wave",
			Name:        "Fitness Certificate Expiry Wave",
			Description: "A batch of fitness certificates lapses in the same week before renewals clear, shrinking the eligible roster.",
			Parameters: []models.ScenarioParameter{
				{TrainsetID: "TS-02", Field: "fitnessExpiry", OriginalValue: "2026-09-14", NewValue: "2026-08-20", ChangeType: models.ChangeFitness},
				{TrainsetID: "TS-08", Field: "fitnessExpiry", OriginalValue: "2026-09-18", NewValue: "2026-08-21", ChangeType: models.ChangeFitness},
				{TrainsetID: "TS-21", Field: "fitnessExpiry", OriginalValue: "2026-10-02", NewValue: "2026-08-22", ChangeType: models.ChangeFitness},
			},
			Constraints: []models.ConstraintChange{},
			Impacts: models.ImpactVector{
				ServiceAvailability: -12,
				MaintenanceLoad:     10,
				EnergyConsumption:   0,
				CostImpact:          12000,
				RiskScore:           0.55,
				BrandingCompliance:  -3,
			},
		},
		{
			ID:          "energy-price-spike",
			Name:        "Energy Price Spike",
			Description: "Traction energy tariff rises sharply; operations shift to minimize shunting and off-peak movements.",
			Parameters:  []models.ScenarioParameter{},
			Constraints: []models.ConstraintChange{
				{Constraint: "max_daily_operating_hours", OriginalValue: 18, NewValue: 16},
			},
			Impacts: models.ImpactVector{
				ServiceAvailability: -4,
				MaintenanceLoad:     0,
				EnergyConsumption:   25,
				CostImpact:          30000,
				RiskScore:           0.2,
				BrandingCompliance:  0,
			},
		},
		{
			ID:          "festival-peak-demand",
			Name:        "Festival Peak Demand",
			Description: "Seasonal ridership surge: every serviceable trainset inducted, standby pool drawn down, crews at duty-hour limits.",
			Parameters: []models.ScenarioParameter{
				{TrainsetID: "TS-06", Field: "status", OriginalValue: "available", NewValue: "in-service", ChangeType: models.ChangeOperational},
				{TrainsetID: "TS-14", Field: "status", OriginalValue: "available", NewValue: "in-service", ChangeType: models.ChangeOperational},
			},
			Constraints: []models.ConstraintChange{
				{Constraint: "min_turnaround_minutes", OriginalValue: 30, NewValue: 20},
				{Constraint: "max_crew_duty_hours", OriginalValue: 8, NewValue: 10},
			},
			Impacts: models.ImpactVector{
				ServiceAvailability: 18,
				MaintenanceLoad:     -15,
				EnergyConsumption:   15,
				CostImpact:          20000,
				RiskScore:           0.4,
				BrandingCompliance:  5,
			},
		},
		{
			ID:          "branding-contract-audit",
			Name:        "Branding Contract Audit",
			Description: "Advertiser audit week: branded trainsets must hit exposure-hour targets, constraining which units may be stabled.",
			Parameters: []models.ScenarioParameter{
				{TrainsetID: "TS-09", Field: "status", OriginalValue: "cleaning", NewValue: "in-service", ChangeType: models.ChangeOperational},
			},
			Constraints: []models.ConstraintChange{
				{Constraint: "stabling_capacity", OriginalValue: 10, NewValue: 8},
			},
			Impacts: models.ImpactVector{
				ServiceAvailability: 2,
				MaintenanceLoad:     5,
				EnergyConsumption:   3,
				CostImpact:          -5000,
				RiskScore:           0.1,
				BrandingCompliance:  -7,
			},
		},
		{
			ID:          "depot-track-closure",
			Name:        "Depot Track Closure",
			Description: "One stabling road closed for track renewal; extra shunting needed to cycle trainsets through the remaining roads.",
			Parameters:  []models.ScenarioParameter{},
			Constraints: []models.ConstraintChange{
				{Constraint: "stabling_capacity", OriginalValue: 10, NewValue: 7},
				{Constraint: "depot_capacity", OriginalValue: 30, NewValue: 26},
			},
			Impacts: models.ImpactVector{
				ServiceAvailability: -6,
				MaintenanceLoad:     20,
				EnergyConsumption:   22,
				CostImpact:          18000,
				RiskScore:           0.35,
				BrandingCompliance:  -2,
			},
		},
	}
}
