package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/metrorail-ops/fleetsim-core/internal/eligibility"
	"github.com/metrorail-ops/fleetsim-core/internal/fleetdata"
	"github.com/metrorail-ops/fleetsim-core/internal/objective"
	"github.com/metrorail-ops/fleetsim-core/internal/optimizer"
	"github.com/metrorail-ops/fleetsim-core/internal/scenario"
	"github.com/metrorail-ops/fleetsim-core/internal/whatif"
	"github.com/metrorail-ops/fleetsim-core/pkg/config"
	"github.com/metrorail-ops/fleetsim-core/pkg/logger"
	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

// RosterClient is the slice of the fleet-data client the server needs.
type RosterClient interface {
	Roster(ctx context.Context) ([]models.Trainset, error)
}

// OptimizerDispatcher is the slice of the optimizer dispatcher the server
// needs.
type OptimizerDispatcher interface {
	Dispatch(ctx context.Context, roster []models.Trainset, constraints models.ConstraintSet, weights models.ObjectiveWeights) (string, error)
}

// HTTPServer is the JSON control surface of the fleet-operations core.
type HTTPServer struct {
	mux        *http.ServeMux
	catalog    *scenario.Catalog
	store      *scenario.Store
	runner     *whatif.Runner
	evaluator  *eligibility.Evaluator
	fleet      RosterClient
	dispatcher OptimizerDispatcher
	defaults   *config.Config
}

// NewHTTPServer wires the handlers. fleet and dispatcher may be nil, in
// which case eligibility uses the demo roster and /v1/optimize reports the
// upstream as unavailable.
func NewHTTPServer(catalog *scenario.Catalog, store *scenario.Store, runner *whatif.Runner,
	evaluator *eligibility.Evaluator, fleet RosterClient, dispatcher OptimizerDispatcher,
	defaults *config.Config) *HTTPServer {

	if defaults == nil {
		defaults = config.Default()
	}
	s := &HTTPServer{
		mux:        http.NewServeMux(),
		catalog:    catalog,
		store:      store,
		runner:     runner,
		evaluator:  evaluator,
		fleet:      fleet,
		dispatcher: dispatcher,
		defaults:   defaults,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/scenarios", s.handleScenarios)
	s.mux.HandleFunc("/v1/scenarios/", s.handleScenarioByID)
	s.mux.HandleFunc("/v1/simulations/latest", s.handleLatestSimulation)
	s.mux.HandleFunc("/v1/baseline", s.handleBaseline)
	s.mux.HandleFunc("/v1/eligibility", s.handleEligibility)
	s.mux.HandleFunc("/v1/optimize", s.handleOptimize)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleScenarios handles /v1/scenarios
func (s *HTTPServer) handleScenarios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, map[string]any{
			"scenarios": s.catalog.List(),
		})
	case http.MethodPost:
		s.handleDefineScenario(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleScenarioByID handles /v1/scenarios/{id} and related endpoints
func (s *HTTPServer) handleScenarioByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/scenarios/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "scenario ID is required")
		return
	}

	if path == "saved" {
		if r.Method == http.MethodGet {
			s.handleSavedScenarios(w, r)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if strings.HasSuffix(path, ":save") {
		id := strings.TrimSuffix(path, ":save")
		if r.Method == http.MethodPost {
			s.handleSaveScenario(w, r, id)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if strings.HasSuffix(path, ":simulate") {
		id := strings.TrimSuffix(path, ":simulate")
		if r.Method == http.MethodPost {
			s.handleSimulate(w, r, id)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sc, err := s.catalog.Get(path)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"scenario": sc})
}

// handleDefineScenario handles POST /v1/scenarios
func (s *HTTPServer) handleDefineScenario(w http.ResponseWriter, r *http.Request) {
	var partial models.Scenario
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sc, err := s.catalog.Define(partial)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			s.writeError(w, http.StatusConflict, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("scenario defined", "scenario_id", sc.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{"scenario": sc})
}

// handleSaveScenario handles POST /v1/scenarios/{id}:save
func (s *HTTPServer) handleSaveScenario(w http.ResponseWriter, r *http.Request, id string) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "scenario store not configured")
		return
	}

	sc, err := s.catalog.Get(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := s.store.Save(r.Context(), sc); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("scenario saved", "scenario_id", id)
	s.writeJSON(w, http.StatusOK, map[string]any{"saved": id})
}

// handleSavedScenarios handles GET /v1/scenarios/saved
func (s *HTTPServer) handleSavedScenarios(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "scenario store not configured")
		return
	}

	saved, err := s.store.LoadAll(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"scenarios": saved})
}

// handleSimulate handles POST /v1/scenarios/{id}:simulate
func (s *HTTPServer) handleSimulate(w http.ResponseWriter, r *http.Request, id string) {
	result, err := s.runner.Run(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, whatif.ErrSimulationInFlight):
			s.writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, scenario.ErrNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleLatestSimulation handles GET /v1/simulations/latest
func (s *HTTPServer) handleLatestSimulation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	result, ok := s.runner.Latest()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no simulation has completed yet")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleBaseline handles GET /v1/baseline
func (s *HTTPServer) handleBaseline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	provider := s.runnerBaseline()
	metrics, source, err := provider.Current(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"baseline": metrics,
		"source":   source,
	})
}

// handleEligibility handles POST /v1/eligibility
func (s *HTTPServer) handleEligibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Constraints *models.ConstraintSet `json:"constraints"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	constraints := s.defaults.Constraints
	if req.Constraints != nil {
		constraints = *req.Constraints
	}

	roster, source := s.roster(r.Context())
	eligible := s.evaluator.FilterEligible(time.Now(), roster, constraints)

	response := map[string]any{
		"eligible":     eligible,
		"rosterSource": source,
		"rosterSize":   len(roster),
	}
	if len(eligible) == 0 {
		response["warning"] = "no trainsets are eligible under the given constraints"
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleOptimize handles POST /v1/optimize
func (s *HTTPServer) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.dispatcher == nil {
		s.writeError(w, http.StatusServiceUnavailable, "optimizer not configured")
		return
	}

	var req struct {
		Constraints *models.ConstraintSet    `json:"constraints"`
		Objectives  *models.ObjectiveWeights `json:"objectives"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	constraints := s.defaults.Constraints
	if req.Constraints != nil {
		constraints = *req.Constraints
	}
	weights := s.defaults.Weights
	if req.Objectives != nil {
		weights = *req.Objectives
	}

	roster, source := s.roster(r.Context())

	runID, err := s.dispatcher.Dispatch(r.Context(), roster, constraints, weights)
	if err != nil {
		var weightsErr *objective.InvalidWeightsError
		switch {
		case errors.As(err, &weightsErr):
			s.writeError(w, http.StatusUnprocessableEntity, weightsErr.Error())
		case errors.Is(err, optimizer.ErrNoEligibleTrainsets):
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, optimizer.ErrUnavailable):
			s.writeError(w, http.StatusBadGateway, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"runId":        runID,
		"rosterSource": source,
	})
}

// roster fetches the live roster, substituting the demo roster when the
// fleet-data service is unavailable. The source tag travels with every
// response built from it.
func (s *HTTPServer) roster(ctx context.Context) ([]models.Trainset, fleetdata.RosterSource) {
	if s.fleet != nil {
		if roster, err := s.fleet.Roster(ctx); err == nil {
			return roster, fleetdata.RosterLive
		} else {
			logger.Warn("fleet-data unavailable, using demo roster", "error", err)
		}
	}
	return fleetdata.DemoRoster(time.Now()), fleetdata.RosterDemo
}

// runnerBaseline exposes the runner's baseline provider for the baseline
// endpoint. The runner owns the live-vs-reference fallback policy.
func (s *HTTPServer) runnerBaseline() whatif.BaselineProvider {
	return s.runner.Baseline()
}

// Helper functions

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
