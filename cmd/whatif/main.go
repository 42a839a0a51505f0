package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/metrorail-ops/fleetsim-core/internal/scenario"
	"github.com/metrorail-ops/fleetsim-core/internal/whatif"
	"github.com/metrorail-ops/fleetsim-core/pkg/logger"
	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

// whatif runs the what-if pipeline locally against the reference baseline
// and prints the per-metric differences as a table. Useful for inspecting
// a scenario without a running daemon.
func main() {
	var scenarioID string
	var scenarioFile string
	var list bool
	var logLevel string

	flag.StringVar(&scenarioID, "scenario", "", "predefined scenario id to simulate")
	flag.StringVar(&scenarioFile, "file", "", "path to a custom scenario JSON file")
	flag.BoolVar(&list, "list", false, "list the predefined scenarios and exit")
	flag.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	logger.SetDefault(logger.NewText(logLevel, os.Stderr))

	catalog := scenario.NewCatalog()

	if list {
		printCatalog(catalog)
		return
	}

	if scenarioID == "" && scenarioFile == "" {
		fmt.Fprintln(os.Stderr, "either -scenario or -file is required (use -list to see predefined scenarios)")
		os.Exit(2)
	}

	if scenarioFile != "" {
		sc, err := loadScenarioFile(scenarioFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load scenario file: %v\n", err)
			os.Exit(1)
		}
		defined, err := catalog.Define(sc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "define scenario: %v\n", err)
			os.Exit(1)
		}
		scenarioID = defined.ID
	}

	runner := whatif.NewRunner(catalog, whatif.StaticProvider{}, nil)
	result, err := runner.Run(context.Background(), scenarioID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}

	printResult(result)
}

func loadScenarioFile(path string) (models.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Scenario{}, err
	}
	var sc models.Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return models.Scenario{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return sc, nil
}

func printCatalog(catalog *scenario.Catalog) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Description")
	for _, sc := range catalog.List() {
		table.Append(sc.ID, sc.Name, sc.Description)
	}
	table.Render()
}

func printResult(result *models.SimulationResult) {
	fmt.Printf("scenario:  %s\n", result.ScenarioID)
	fmt.Printf("baseline:  %s\n", result.BaselineSource)
	fmt.Printf("confidence: %.2f (placeholder, not calibrated)\n\n", result.ConfidenceScore)

	if len(result.Differences) == 0 {
		fmt.Println("no metric changed under this scenario")
	} else {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Metric", "Baseline", "Simulated", "Diff", "Change %")
		for _, d := range result.Differences {
			pct := "n/a"
			if d.PercentChange != nil {
				pct = fmt.Sprintf("%+.1f%%", *d.PercentChange)
			}
			table.Append(
				d.Metric,
				fmt.Sprintf("%.1f", d.Baseline),
				fmt.Sprintf("%.1f", d.Simulated),
				fmt.Sprintf("%+.1f", d.Difference),
				pct,
			)
		}
		table.Render()
	}

	if len(result.Recommendations) > 0 {
		fmt.Println("\nrecommendations:")
		for _, rec := range result.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
}
