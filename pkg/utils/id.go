package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewScenarioID generates a unique identifier for a custom scenario.
func NewScenarioID() string {
	return "custom-" + uuid.NewString()
}

// NewSimulationID generates a simulation run identifier with a timestamp
// prefix so identifiers sort chronologically.
func NewSimulationID() string {
	timestamp := time.Now().UTC().Format("20060102-150405")
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("sim-%s-%s", timestamp, suffix)
}
