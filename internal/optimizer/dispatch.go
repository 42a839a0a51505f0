package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/metrorail-ops/fleetsim-core/internal/eligibility"
	"github.com/metrorail-ops/fleetsim-core/internal/objective"
	"github.com/metrorail-ops/fleetsim-core/pkg/logger"
	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

// ErrNoEligibleTrainsets is returned when the eligibility filter leaves an
// empty roster. Not fatal: callers surface it as a warning and the user
// may relax the constraints.
var ErrNoEligibleTrainsets = errors.New("no trainsets eligible under the given constraints")

// ErrUnavailable indicates the optimizer service could not be reached.
var ErrUnavailable = errors.New("optimizer service unavailable")

// Request is the payload dispatched to the external scheduling optimizer.
// The optimizer's search algorithm is outside this system.
type Request struct {
	Constraints models.ConstraintSet    `json:"constraints"`
	Objectives  models.ObjectiveWeights `json:"objectives"`
	TrainsetIDs []string                `json:"trainsetIds"`
}

// Response is the optimizer's acknowledgement of a run.
type Response struct {
	RunID string `json:"runId"`
}

// Dispatcher gates and dispatches optimization requests. The gate order is
// fixed: objective weights are validated first, then the roster is
// filtered for eligibility; only a request that passes both reaches the
// network.
type Dispatcher struct {
	http      *http.Client
	baseURL   string
	limiter   *rate.Limiter
	evaluator *eligibility.Evaluator
}

// NewDispatcher creates a dispatcher for the given optimizer base URL.
func NewDispatcher(baseURL string, timeout time.Duration, ratePerSec float64, burst int, evaluator *eligibility.Evaluator) *Dispatcher {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if burst <= 0 {
		burst = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if evaluator == nil {
		evaluator = eligibility.NewEvaluator(0)
	}
	return &Dispatcher{
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), burst),
		evaluator: evaluator,
	}
}

// Dispatch validates the weights, filters the roster and submits the run.
// A gate failure never reaches the network; an upstream failure maps to
// ErrUnavailable so callers can fall back without parsing messages.
func (d *Dispatcher) Dispatch(ctx context.Context, roster []models.Trainset, constraints models.ConstraintSet, weights models.ObjectiveWeights) (string, error) {
	if err := objective.Validate(weights); err != nil {
		return "", err
	}

	eligible := d.evaluator.FilterEligible(time.Now(), roster, constraints)
	if len(eligible) == 0 {
		return "", ErrNoEligibleTrainsets
	}

	ids := make([]string, 0, len(eligible))
	for _, ts := range eligible {
		ids = append(ids, ts.ID)
	}

	resp, err := d.post(ctx, Request{
		Constraints: constraints,
		Objectives:  weights,
		TrainsetIDs: ids,
	})
	if err != nil {
		return "", err
	}

	logger.Info("optimization dispatched", "run_id", resp.RunID, "trainsets", len(ids))
	return resp.RunID, nil
}

func (d *Dispatcher) post(ctx context.Context, payload Request) (*Response, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/optimize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("optimizer rejected request: status %d", resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
