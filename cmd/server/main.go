package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"typeracer-server/internal/config"
	"typeracer-server/internal/race"
	"typeracer-server/internal/text"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", envOr("RACER_CONFIG", "resources/config.conf"), "path to the server config file")
	textsDir := flag.String("texts", envOr("RACER_TEXTS", "resources/text"), "directory holding race texts 1.txt..10.txt")
	metricsAddr := flag.String("metrics-addr", ":9090", "metrics listen address")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	corpus, err := text.Load(*textsDir)
	if err != nil {
		logger.Error("failed to load race texts", "dir", *textsDir, "error", err)
		os.Exit(1)
	}

	srv := race.NewServer(fmt.Sprintf(":%d", cfg.Port), corpus, logger)
	if err := srv.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			logger.Error("metrics endpoint failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	srv.Stop()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
