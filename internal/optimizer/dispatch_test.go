package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metrorail-ops/fleetsim-core/internal/eligibility"
	"github.com/metrorail-ops/fleetsim-core/internal/objective"
	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

func validWeights() models.ObjectiveWeights {
	return models.ObjectiveWeights{
		FitnessCompliance:     0.25,
		MaintenanceScheduling: 0.2,
		MileageBalancing:      0.15,
		EnergyEfficiency:      0.15,
		PassengerComfort:      0.1,
		OperationalCost:       0.15,
	}
}

func testRoster(now time.Time) []models.Trainset {
	future := now.AddDate(0, 1, 0)
	return []models.Trainset{
		{ID: "TS-01", Status: models.StatusAvailable, FitnessExpiry: &future, CurrentDistanceKm: 10000, MaintenanceDueKm: 50000},
		{ID: "TS-02", Status: models.StatusInService, FitnessExpiry: &future, CurrentDistanceKm: 20000, MaintenanceDueKm: 50000},
		{ID: "TS-03", Status: models.StatusOutOfService, FitnessExpiry: &future, CurrentDistanceKm: 5000, MaintenanceDueKm: 50000},
	}
}

func TestDispatchSubmitsEligibleRoster(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/optimize" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"runId":"run-42"}`))
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, 5*time.Second, 100, 10, nil)
	constraints := models.ConstraintSet{FitnessComplianceRequired: true}

	runID, err := d.Dispatch(context.Background(), testRoster(time.Now()), constraints, validWeights())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if runID != "run-42" {
		t.Fatalf("run id = %q", runID)
	}
	if len(got.TrainsetIDs) != 2 {
		t.Fatalf("dispatched ids = %v, want TS-01 and TS-02 only", got.TrainsetIDs)
	}
	for _, id := range got.TrainsetIDs {
		if id == "TS-03" {
			t.Fatalf("out-of-service trainset must not be dispatched")
		}
	}
}

func TestDispatchInvalidWeightsNeverReachNetwork(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, 5*time.Second, 100, 10, nil)
	bad := models.ObjectiveWeights{FitnessCompliance: 0.5, OperationalCost: 0.2}

	_, err := d.Dispatch(context.Background(), testRoster(time.Now()), models.ConstraintSet{}, bad)
	var iwe *objective.InvalidWeightsError
	if !errors.As(err, &iwe) {
		t.Fatalf("err = %v, want *objective.InvalidWeightsError", err)
	}
	if hits != 0 {
		t.Fatalf("invalid weights reached the network %d times", hits)
	}
}

func TestDispatchEmptyEligibleSet(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, 5*time.Second, 100, 10, nil)
	roster := []models.Trainset{
		{ID: "TS-09", Status: models.StatusOutOfService},
	}

	_, err := d.Dispatch(context.Background(), roster, models.ConstraintSet{}, validWeights())
	if !errors.Is(err, ErrNoEligibleTrainsets) {
		t.Fatalf("err = %v, want ErrNoEligibleTrainsets", err)
	}
	if hits != 0 {
		t.Fatalf("empty roster reached the network %d times", hits)
	}
}

func TestDispatchUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, 5*time.Second, 100, 10, nil)
	_, err := d.Dispatch(context.Background(), testRoster(time.Now()), models.ConstraintSet{}, validWeights())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestDispatchRespectsCustomEvaluator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"runId":"run-1"}`))
	}))
	defer srv.Close()

	// With a huge safety margin nothing qualifies.
	strict := eligibility.NewEvaluator(1_000_000)
	d := NewDispatcher(srv.URL, 5*time.Second, 100, 10, strict)

	_, err := d.Dispatch(context.Background(), testRoster(time.Now()), models.ConstraintSet{}, validWeights())
	if !errors.Is(err, ErrNoEligibleTrainsets) {
		t.Fatalf("err = %v, want ErrNoEligibleTrainsets under a strict margin", err)
	}
}
