package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/metrorail-ops/fleetsim-core/internal/eligibility"
	"github.com/metrorail-ops/fleetsim-core/internal/fleetdata"
	"github.com/metrorail-ops/fleetsim-core/internal/optimizer"
	"github.com/metrorail-ops/fleetsim-core/internal/scenario"
	"github.com/metrorail-ops/fleetsim-core/internal/server"
	"github.com/metrorail-ops/fleetsim-core/internal/whatif"
	"github.com/metrorail-ops/fleetsim-core/pkg/config"
	"github.com/metrorail-ops/fleetsim-core/pkg/logger"
)

func main() {
	var configPath string
	var httpAddr string
	var logLevel string

	flag.StringVar(&configPath, "config", "", "path to YAML configuration file")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP listen address (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error; overrides config)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Default()
	if configPath == "" {
		configPath = os.Getenv("FLEETSIM_CONFIG")
	}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := scenario.NewStore(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open scenario store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	catalog := scenario.NewCatalog()
	evaluator := eligibility.NewEvaluator(cfg.Eligibility.SafetyMarginKm)
	estimator := whatif.NewEstimator(cfg.Confidence.Base)

	var fleet *fleetdata.Client
	var baseline whatif.BaselineProvider = whatif.StaticProvider{}
	if cfg.FleetData != nil {
		fleet = fleetdata.NewClient(cfg.FleetData.BaseURL, cfg.FleetData.Timeout(), cfg.FleetData.RatePerSec, cfg.FleetData.Burst)
		baseline = &whatif.FallbackProvider{Live: fleet.Baseline}
		logger.Info("fleet-data client configured", "base_url", cfg.FleetData.BaseURL)
	}

	var dispatcher *optimizer.Dispatcher
	if cfg.Optimizer != nil {
		dispatcher = optimizer.NewDispatcher(cfg.Optimizer.BaseURL, cfg.Optimizer.Timeout(), cfg.Optimizer.RatePerSec, cfg.Optimizer.Burst, evaluator)
		logger.Info("optimizer dispatcher configured", "base_url", cfg.Optimizer.BaseURL)
	}

	runner := whatif.NewRunner(catalog, baseline, estimator)

	// server.RosterClient and server.OptimizerDispatcher are satisfied by
	// the concrete clients, but a typed nil must not reach the interface.
	var rosterClient server.RosterClient
	if fleet != nil {
		rosterClient = fleet
	}
	var optDispatcher server.OptimizerDispatcher
	if dispatcher != nil {
		optDispatcher = dispatcher
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewHTTPServer(catalog, store, runner, evaluator, rosterClient, optDispatcher, cfg).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
}
