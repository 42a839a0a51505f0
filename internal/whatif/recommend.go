package whatif

import "github.com/metrorail-ops/fleetsim-core/pkg/models"

// rule is one threshold check over a scenario's impact vector.
type rule struct {
	fires   func(models.ImpactVector) bool
	message string
}

// The rules are evaluated independently, in insertion order; zero or more
// may fire. An empty recommendation list is valid output, not an error.
var rules = []rule{
	{
		fires:   func(v models.ImpactVector) bool { return v.ServiceAvailability < -10 },
		message: "Promote high-scoring standby trainsets to service to offset the availability drop",
	},
	{
		fires:   func(v models.ImpactVector) bool { return v.MaintenanceLoad > 30 },
		message: "Schedule non-critical maintenance during off-peak hours to relieve bay congestion",
	},
	{
		fires:   func(v models.ImpactVector) bool { return v.EnergyConsumption > 20 },
		message: "Optimize stabling positions to reduce shunting movements and energy use",
	},
	{
		fires:   func(v models.ImpactVector) bool { return v.RiskScore > 0.5 },
		message: "Implement contingency plans for the high-risk scenario before committing the schedule",
	},
	{
		fires:   func(v models.ImpactVector) bool { return v.BrandingCompliance < -5 },
		message: "Prioritize branded trainsets in the induction order to preserve contractual compliance",
	},
}

// Recommend derives the human-readable recommendations for an impact
// vector.
func Recommend(v models.ImpactVector) []string {
	out := []string{}
	for _, r := range rules {
		if r.fires(v) {
			out = append(out, r.message)
		}
	}
	return out
}
