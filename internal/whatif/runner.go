package whatif

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/metrorail-ops/fleetsim-core/internal/scenario"
	"github.com/metrorail-ops/fleetsim-core/pkg/logger"
	"github.com/metrorail-ops/fleetsim-core/pkg/models"
	"github.com/metrorail-ops/fleetsim-core/pkg/utils"
)

// ErrSimulationInFlight is returned when a simulation is requested while
// another is still running. Requests are rejected, never interleaved: the
// latest result is a singleton per runner.
var ErrSimulationInFlight = errors.New("a simulation is already in flight")

// Runner composes catalog lookup, baseline acquisition, the impact
// transform, the recommendation rules and the confidence estimator into
// the runSimulation pipeline.
type Runner struct {
	catalog    *scenario.Catalog
	baseline   BaselineProvider
	confidence *Estimator

	mu   sync.Mutex
	busy bool
	last *models.SimulationResult
}

// NewRunner wires the pipeline. A nil baseline provider falls back to the
// static reference snapshot; a nil estimator falls back to the default
// placeholder confidence.
func NewRunner(catalog *scenario.Catalog, baseline BaselineProvider, confidence *Estimator) *Runner {
	if baseline == nil {
		baseline = StaticProvider{}
	}
	if confidence == nil {
		confidence = NewEstimator(DefaultConfidence)
	}
	return &Runner{
		catalog:    catalog,
		baseline:   baseline,
		confidence: confidence,
	}
}

// Run executes the pipeline for the given scenario id. Only one simulation
// may be in flight at a time; concurrent calls fail fast with
// ErrSimulationInFlight. There is no cancellation: a started simulation
// runs to completion or fails, and a failure resets the runner to idle.
func (r *Runner) Run(ctx context.Context, scenarioID string) (*models.SimulationResult, error) {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return nil, ErrSimulationInFlight
	}
	r.busy = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()
	}()

	sc, err := r.catalog.Get(scenarioID)
	if err != nil {
		return nil, err
	}

	baseline, source, err := r.baseline.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("baseline acquisition failed: %w", err)
	}

	started := time.Now()
	simulated, differences := Simulate(sc, baseline)

	result := &models.SimulationResult{
		RunID:           utils.NewSimulationID(),
		ScenarioID:      sc.ID,
		Baseline:        baseline,
		Simulated:       simulated,
		Differences:     differences,
		Recommendations: Recommend(sc.Impacts),
		ConfidenceScore: r.confidence.Estimate(sc),
		BaselineSource:  string(source),
	}

	r.mu.Lock()
	r.last = result
	r.mu.Unlock()

	logger.Info("simulation completed",
		"run_id", result.RunID,
		"scenario_id", sc.ID,
		"baseline_source", source,
		"differences", len(differences),
		"recommendations", len(result.Recommendations),
		"elapsed", time.Since(started))

	return result, nil
}

// Baseline returns the provider the runner was wired with.
func (r *Runner) Baseline() BaselineProvider {
	return r.baseline
}

// Latest returns the most recent completed result, if any.
func (r *Runner) Latest() (*models.SimulationResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil, false
	}
	return r.last, true
}
