package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ainews/internal/config"
	"ainews/internal/logger"
	"ainews/internal/metrics"
	"ainews/internal/pipeline"
	"ainews/internal/source"
	"ainews/internal/store"
)

func main() {
	log := logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	sources, err := source.Load(cfg.SourcesConfigPath)
	if err != nil {
		log.Error("sources load failed", "error", err, "path", cfg.SourcesConfigPath)
		os.Exit(1)
	}

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer(log)
	}

	// A run is a bounded batch; cap it and make Ctrl-C persist partial
	// progress instead of dropping it.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, runTimeout())
	defer timeoutCancel()

	st := store.New(cfg.StoreFilePath)
	report, err := pipeline.New(cfg, sources, st, log).Run(ctx)
	if err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}

	log.Info("done",
		"total_articles", report.TotalStored,
		"new_articles", report.NewlyAdded,
		"failed_sources", report.SourcesFailed,
		"elapsed", report.Elapsed.Round(time.Millisecond))
}

func runTimeout() time.Duration {
	if v := os.Getenv("RUN_TIMEOUT_MINUTES"); v != "" {
		if d, err := time.ParseDuration(v + "m"); err == nil && d > 0 {
			return d
		}
	}
	return 15 * time.Minute
}

func startMonitoringServer(log *slog.Logger) {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
