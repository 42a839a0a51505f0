package whatif

import (
	"github.com/metrorail-ops/fleetsim-core/pkg/logger"
	"github.com/metrorail-ops/fleetsim-core/pkg/models"
	"github.com/metrorail-ops/fleetsim-core/pkg/utils"
)

// Simulate applies a scenario's impact vector to the baseline metrics and
// returns the simulated metrics plus the per-metric differences. It is a
// pure, deterministic transform: identical inputs always yield identical
// outputs, and neither argument is mutated.
//
// Fleet size is conserved: the scenario shifts the allocation across
// in-service, maintenance and standby, but the total never changes. A
// standby shortfall indicates an internally inconsistent impact vector;
// it is clamped to zero and logged, never raised as an error.
func Simulate(sc models.Scenario, baseline models.BaselineMetrics) (models.BaselineMetrics, []models.Difference) {
	impacts := sc.Impacts
	fleetSize := baseline.FleetSize()

	simulated := models.BaselineMetrics{
		InService:          baseline.InService + impacts.ServiceAvailability/5,
		Maintenance:        utils.FloorAtZero(baseline.Maintenance + impacts.MaintenanceLoad/20),
		TotalShunting:      baseline.TotalShunting + impacts.EnergyConsumption/2,
		EnergyConsumption:  baseline.EnergyConsumption * (1 + impacts.EnergyConsumption/100),
		OperationalCost:    baseline.OperationalCost + impacts.CostImpact,
		Punctuality:        maxFloat(90, baseline.Punctuality-impacts.RiskScore*5),
		BrandingCompliance: utils.FloorAtZero(baseline.BrandingCompliance + impacts.BrandingCompliance),
	}

	standby := fleetSize - simulated.InService - simulated.Maintenance
	if standby < 0 {
		logger.Warn("standby allocation went negative, clamping to zero",
			"scenario_id", sc.ID, "standby", standby)
		standby = 0
	}
	simulated.Standby = standby

	return simulated, diff(baseline, simulated)
}

// diff builds the per-metric difference rows. Metrics whose value did not
// change are omitted, so an all-zero impact vector yields an empty list.
func diff(baseline, simulated models.BaselineMetrics) []models.Difference {
	fields := []struct {
		name       string
		base, simd float64
	}{
		{"inService", baseline.InService, simulated.InService},
		{"maintenance", baseline.Maintenance, simulated.Maintenance},
		{"standby", baseline.Standby, simulated.Standby},
		{"totalShunting", baseline.TotalShunting, simulated.TotalShunting},
		{"energyConsumption", baseline.EnergyConsumption, simulated.EnergyConsumption},
		{"operationalCost", baseline.OperationalCost, simulated.OperationalCost},
		{"punctuality", baseline.Punctuality, simulated.Punctuality},
		{"brandingCompliance", baseline.BrandingCompliance, simulated.BrandingCompliance},
	}

	differences := make([]models.Difference, 0, len(fields))
	for _, f := range fields {
		delta := f.simd - f.base
		if delta == 0 {
			continue
		}
		d := models.Difference{
			Metric:     f.name,
			Baseline:   f.base,
			Simulated:  f.simd,
			Difference: delta,
		}
		if f.base != 0 {
			pct := delta / f.base * 100
			d.PercentChange = &pct
		}
		differences = append(differences, d)
	}
	return differences
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
