package objective

import (
	"fmt"

	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

// SumTolerance is the absolute tolerance allowed on the weight sum.
const SumTolerance = 0.01

// Names of the six optimization objectives, in their canonical order.
const (
	FitnessCompliance     = "fitnessCompliance"
	MaintenanceScheduling = "maintenanceScheduling"
	MileageBalancing      = "mileageBalancing"
	EnergyEfficiency      = "energyEfficiency"
	PassengerComfort      = "passengerComfort"
	OperationalCost       = "operationalCost"
)

// InvalidWeightsError reports why a weight set cannot be used. Either Field
// names a weight outside [0,1], or Sum carries the out-of-tolerance total.
type InvalidWeightsError struct {
	Field string
	Value float64
	Sum   float64
}

func (e *InvalidWeightsError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("objective weight %s must be between 0 and 1, got %.4f", e.Field, e.Value)
	}
	return fmt.Sprintf("objective weights must sum to 1.0 (±%.2f), got %.4f", SumTolerance, e.Sum)
}

// Validate checks that each of the six weights lies in [0,1] and that their
// sum is within SumTolerance of 1.0. It must be called before any request
// is dispatched to the external optimizer; rejecting bad weights is this
// core's job, not the optimizer's.
func Validate(w models.ObjectiveWeights) error {
	fields := []struct {
		name  string
		value float64
	}{
		{FitnessCompliance, w.FitnessCompliance},
		{MaintenanceScheduling, w.MaintenanceScheduling},
		{MileageBalancing, w.MileageBalancing},
		{EnergyEfficiency, w.EnergyEfficiency},
		{PassengerComfort, w.PassengerComfort},
		{OperationalCost, w.OperationalCost},
	}
	for _, f := range fields {
		if f.value < 0 || f.value > 1 {
			return &InvalidWeightsError{Field: f.name, Value: f.value}
		}
	}

	sum := w.Sum()
	if diff := sum - 1.0; diff > SumTolerance || diff < -SumTolerance {
		return &InvalidWeightsError{Sum: sum}
	}
	return nil
}
