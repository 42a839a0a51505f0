package fleetdata

import (
	"time"

	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

// RosterSource tags whether a roster came from the live service or from
// the built-in demo data. Demo data keeps the UI usable when the upstream
// is down but must be visibly flagged as non-authoritative.
type RosterSource string

const (
	RosterLive RosterSource = "live"
	RosterDemo RosterSource = "demo"
)

// DemoRoster returns a small synthetic roster for use when the fleet-data
// service is unavailable. Expiries are placed relative to now so the
// eligibility filter behaves sensibly regardless of wall-clock time.
func DemoRoster(now time.Time) []models.Trainset {
	expiry := func(days int) *time.Time {
		t := now.AddDate(0, 0, days)
		return &t
	}
	return []models.Trainset{
		{ID: "TS-01", Status: models.StatusInService, FitnessExpiry: expiry(120), CurrentDistanceKm: 41200, MaintenanceDueKm: 50000},
		{ID: "TS-02", Status: models.StatusInService, FitnessExpiry: expiry(45), CurrentDistanceKm: 48700, MaintenanceDueKm: 50000},
		{ID: "TS-03", Status: models.StatusAvailable, FitnessExpiry: expiry(200), CurrentDistanceKm: 12500, MaintenanceDueKm: 50000},
		{ID: "TS-04", Status: models.StatusUnderMaintenance, FitnessExpiry: expiry(90), CurrentDistanceKm: 49800, MaintenanceDueKm: 50000},
		{ID: "TS-05", Status: models.StatusAvailable, FitnessExpiry: expiry(-10), CurrentDistanceKm: 22000, MaintenanceDueKm: 50000},
		{ID: "TS-06", Status: models.StatusAvailable, FitnessExpiry: expiry(365), CurrentDistanceKm: 8300, MaintenanceDueKm: 50000},
		{ID: "TS-07", Status: models.StatusCleaning, FitnessExpiry: expiry(150), CurrentDistanceKm: 31000, MaintenanceDueKm: 50000},
		{ID: "TS-08", Status: models.StatusInService, FitnessExpiry: nil, CurrentDistanceKm: 27400, MaintenanceDueKm: 50000},
		{ID: "TS-09", Status: models.StatusOutOfService, FitnessExpiry: expiry(60), CurrentDistanceKm: 44100, MaintenanceDueKm: 50000},
		{ID: "TS-10", Status: models.StatusInService, FitnessExpiry: expiry(300), CurrentDistanceKm: 15900, MaintenanceDueKm: 50000},
	}
}
