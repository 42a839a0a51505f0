package whatif

import (
	"github.com/metrorail-ops/fleetsim-core/pkg/models"
	"github.com/metrorail-ops/fleetsim-core/pkg/utils"
)

// DefaultConfidence is the placeholder score attached to every result.
const DefaultConfidence = 0.85

// Estimator attaches a confidence score in [0,1] to a simulation result.
//
// The score is an explicitly-labeled PLACEHOLDER constant: it carries no
// statistical meaning and must not be presented to users as a calibrated
// probability. Replacing it with a real signal (e.g. the back-tested error
// rate of past scenario predictions against actual outcomes) requires a
// history of scenario-vs-actual data this system does not yet collect.
type Estimator struct {
	Base float64
}

// NewEstimator returns an estimator with the given base score; a
// non-positive base falls back to DefaultConfidence.
func NewEstimator(base float64) *Estimator {
	if base <= 0 {
		base = DefaultConfidence
	}
	return &Estimator{Base: utils.ClampFloat64(base, 0, 1)}
}

// Estimate returns the confidence score for a simulation of the given
// scenario. Deterministic: no jitter.
func (e *Estimator) Estimate(models.Scenario) float64 {
	return utils.ClampFloat64(e.Base, 0, 1)
}
