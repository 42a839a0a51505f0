package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metrorail-ops/fleetsim-core/internal/eligibility"
	"github.com/metrorail-ops/fleetsim-core/internal/objective"
	"github.com/metrorail-ops/fleetsim-core/internal/optimizer"
	"github.com/metrorail-ops/fleetsim-core/internal/scenario"
	"github.com/metrorail-ops/fleetsim-core/internal/whatif"
	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

type fakeRoster struct {
	trainsets []models.Trainset
	err       error
}

func (f *fakeRoster) Roster(context.Context) ([]models.Trainset, error) {
	return f.trainsets, f.err
}

type fakeDispatcher struct {
	runID string
	err   error
	calls int
}

func (f *fakeDispatcher) Dispatch(context.Context, []models.Trainset, models.ConstraintSet, models.ObjectiveWeights) (string, error) {
	f.calls++
	return f.runID, f.err
}

func newTestServer(t *testing.T, fleet RosterClient, dispatcher OptimizerDispatcher) *HTTPServer {
	t.Helper()
	store, err := scenario.NewStore(filepath.Join(t.TempDir(), "scenarios.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	catalog := scenario.NewCatalog()
	runner := whatif.NewRunner(catalog, nil, nil)
	return NewHTTPServer(catalog, store, runner, eligibility.NewEvaluator(0), fleet, dispatcher, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestListScenarios(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/v1/scenarios", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	scenarios, ok := body["scenarios"].([]any)
	if !ok || len(scenarios) != 6 {
		t.Fatalf("scenarios = %v", body["scenarios"])
	}
}

func TestGetScenario(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/v1/scenarios/energy-price-spike", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}

	rec, body = doJSON(t, s.Handler(), http.MethodGet, "/v1/scenarios/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown scenario: status = %d", rec.Code)
	}
	if _, ok := body["error"]; !ok {
		t.Fatalf("error body missing: %v", body)
	}
}

func TestDefineScenario(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/v1/scenarios",
		`{"name":"Custom Disruption","impacts":{"serviceAvailability":-5}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}
	sc, ok := body["scenario"].(map[string]any)
	if !ok {
		t.Fatalf("body = %v", body)
	}
	id, _ := sc["id"].(string)
	if !strings.HasPrefix(id, "custom-") {
		t.Fatalf("generated id = %q", id)
	}

	// The defined scenario is immediately retrievable and simulatable.
	rec, _ = doJSON(t, s.Handler(), http.MethodGet, "/v1/scenarios/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get after define: status = %d", rec.Code)
	}
}

func TestDefineScenarioConflict(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/v1/scenarios",
		`{"id":"emergency-maintenance-surge"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestDefineScenarioBadBody(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/v1/scenarios", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSimulateScenario(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/v1/scenarios/emergency-maintenance-surge:simulate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}
	if body["scenarioId"] != "emergency-maintenance-surge" {
		t.Fatalf("scenarioId = %v", body["scenarioId"])
	}
	if body["baselineSource"] != "reference" {
		t.Fatalf("baselineSource = %v", body["baselineSource"])
	}
	if _, ok := body["differences"].([]any); !ok {
		t.Fatalf("differences missing: %v", body)
	}

	// The result is now the latest simulation.
	rec, latest := doJSON(t, s.Handler(), http.MethodGet, "/v1/simulations/latest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("latest: status = %d", rec.Code)
	}
	if latest["scenarioId"] != "emergency-maintenance-surge" {
		t.Fatalf("latest scenarioId = %v", latest["scenarioId"])
	}
}

func TestSimulateUnknownScenario(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/v1/scenarios/nope:simulate", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestLatestBeforeAnySimulation(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, _ := doJSON(t, s.Handler(), http.MethodGet, "/v1/simulations/latest", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSaveAndListSavedScenarios(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, _ := doJSON(t, s.Handler(), http.MethodGet, "/v1/scenarios/saved", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("saved list: status = %d", rec.Code)
	}

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/v1/scenarios/fitness-expiry-wave:save", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("save: status = %d, body %v", rec.Code, body)
	}

	rec, body = doJSON(t, s.Handler(), http.MethodGet, "/v1/scenarios/saved", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("saved list after save: status = %d", rec.Code)
	}
	saved, ok := body["scenarios"].([]any)
	if !ok || len(saved) != 1 {
		t.Fatalf("saved = %v", body["scenarios"])
	}
}

func TestSaveUnknownScenario(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/v1/scenarios/nope:save", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBaselineEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/v1/baseline", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["source"] != "reference" {
		t.Fatalf("source = %v", body["source"])
	}
	baseline, ok := body["baseline"].(map[string]any)
	if !ok {
		t.Fatalf("baseline missing: %v", body)
	}
	if baseline["inService"] != 18.0 {
		t.Fatalf("inService = %v", baseline["inService"])
	}
}

func TestEligibilityFallsBackToDemoRoster(t *testing.T) {
	// No fleet client at all: the demo roster serves the page.
	s := newTestServer(t, nil, nil)
	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/v1/eligibility", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["rosterSource"] != "demo" {
		t.Fatalf("rosterSource = %v", body["rosterSource"])
	}
	if body["rosterSize"] != 10.0 {
		t.Fatalf("rosterSize = %v", body["rosterSize"])
	}
	eligible, ok := body["eligible"].([]any)
	if !ok || len(eligible) == 0 {
		t.Fatalf("eligible = %v", body["eligible"])
	}
}

func TestEligibilityLiveRoster(t *testing.T) {
	fleet := &fakeRoster{trainsets: []models.Trainset{
		{ID: "TS-99", Status: models.StatusOutOfService},
	}}
	s := newTestServer(t, fleet, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/v1/eligibility",
		`{"constraints":{"fitnessComplianceRequired":false}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["rosterSource"] != "live" {
		t.Fatalf("rosterSource = %v", body["rosterSource"])
	}
	if _, ok := body["warning"]; !ok {
		t.Fatalf("empty eligible set must carry a warning: %v", body)
	}
}

func TestEligibilityRosterErrorFallsBack(t *testing.T) {
	fleet := &fakeRoster{err: errors.New("connection refused")}
	s := newTestServer(t, fleet, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/v1/eligibility", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["rosterSource"] != "demo" {
		t.Fatalf("rosterSource = %v, want demo fallback", body["rosterSource"])
	}
}

func TestOptimizeWithoutDispatcher(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/v1/optimize", `{}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestOptimizeAccepted(t *testing.T) {
	dispatcher := &fakeDispatcher{runID: "run-7"}
	s := newTestServer(t, nil, dispatcher)

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/v1/optimize", `{}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}
	if body["runId"] != "run-7" {
		t.Fatalf("runId = %v", body["runId"])
	}
	if body["rosterSource"] != "demo" {
		t.Fatalf("rosterSource = %v", body["rosterSource"])
	}
	if dispatcher.calls != 1 {
		t.Fatalf("dispatcher called %d times", dispatcher.calls)
	}
}

func TestOptimizeErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid weights", &objective.InvalidWeightsError{Sum: 0.5}, http.StatusUnprocessableEntity},
		{"no eligible trainsets", optimizer.ErrNoEligibleTrainsets, http.StatusUnprocessableEntity},
		{"optimizer down", optimizer.ErrUnavailable, http.StatusBadGateway},
		{"other failure", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil, &fakeDispatcher{err: tt.err})
			rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/v1/optimize", `{}`)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil, nil)
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/v1/scenarios"},
		{http.MethodPost, "/v1/simulations/latest"},
		{http.MethodPost, "/v1/baseline"},
		{http.MethodGet, "/v1/eligibility"},
		{http.MethodGet, "/v1/optimize"},
		{http.MethodGet, "/v1/scenarios/energy-price-spike:simulate"},
	}
	for _, tt := range tests {
		rec, _ := doJSON(t, s.Handler(), tt.method, tt.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: status = %d, want 405", tt.method, tt.path, rec.Code)
		}
	}
}
