package eligibility

import (
	"time"

	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

// DefaultSafetyMarginKm is the distance margin a trainset must retain
// before its maintenance-due threshold to stay eligible for induction.
const DefaultSafetyMarginKm = 500.0

// Evaluator filters a trainset roster down to the subset eligible for a
// scheduling run. It is a pure function of its inputs and the evaluation
// instant; it holds no state beyond its tunables.
type Evaluator struct {
	// SafetyMarginKm overrides DefaultSafetyMarginKm when positive.
	SafetyMarginKm float64
}

// NewEvaluator returns an evaluator with the given safety margin.
// A non-positive margin falls back to DefaultSafetyMarginKm.
func NewEvaluator(safetyMarginKm float64) *Evaluator {
	if safetyMarginKm <= 0 {
		safetyMarginKm = DefaultSafetyMarginKm
	}
	return &Evaluator{SafetyMarginKm: safetyMarginKm}
}

// FilterEligible returns the trainsets eligible for induction at the given
// instant under the given constraints. An empty result is a valid outcome,
// not an error; callers surface it as a warning.
func (e *Evaluator) FilterEligible(now time.Time, trainsets []models.Trainset, constraints models.ConstraintSet) []models.Trainset {
	eligible := make([]models.Trainset, 0, len(trainsets))
	for _, ts := range trainsets {
		if e.isEligible(now, ts, constraints) {
			eligible = append(eligible, ts)
		}
	}
	return eligible
}

func (e *Evaluator) isEligible(now time.Time, ts models.Trainset, constraints models.ConstraintSet) bool {
	if ts.Status != models.StatusAvailable && ts.Status != models.StatusInService {
		return false
	}

	if constraints.FitnessComplianceRequired {
		// A missing expiry counts as non-compliant: without a certificate
		// on record the trainset must not be inducted.
		if ts.FitnessExpiry == nil || !ts.FitnessExpiry.After(now) {
			return false
		}
	}

	remaining := ts.MaintenanceDueKm - ts.CurrentDistanceKm
	return remaining >= e.SafetyMarginKm
}
