// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

// Command server runs the EduLens insight engine: the DuckDB record store,
// the predictive models and the HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edulens/edulens/internal/analytics"
	"github.com/edulens/edulens/internal/api"
	"github.com/edulens/edulens/internal/config"
	"github.com/edulens/edulens/internal/features"
	"github.com/edulens/edulens/internal/logging"
	"github.com/edulens/edulens/internal/ml"
	"github.com/edulens/edulens/internal/sentiment"
	"github.com/edulens/edulens/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().Msg("edulens starting")

	db, err := store.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open record store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close record store")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.SeedDemoData {
		if err := db.SeedDemoData(ctx); err != nil {
			logging.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	aggregator := features.NewAggregator(db)
	analyzer := sentiment.NewAnalyzer()

	artifacts, err := ml.NewArtifactStore(cfg.Models.ArtifactDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open model artifact store")
	}

	mlService := ml.NewService(aggregator, analyzer, artifacts, ml.ServiceConfig{
		Regressor: ml.RegressorConfig{
			NumTrees: cfg.Models.NumTrees,
			MaxDepth: cfg.Models.RegressorMaxDepth,
			Seed:     cfg.Models.Seed,
		},
		Classifier: ml.ClassifierConfig{
			NumTrees: cfg.Models.NumTrees,
			MaxDepth: cfg.Models.ClassifierMaxDepth,
			Seed:     cfg.Models.Seed,
		},
	})
	if err := mlService.LoadModels(); err != nil {
		logging.Warn().Err(err).Msg("failed to load model artifacts, models will train on demand")
	}
	if cfg.Models.TrainOnStartup {
		if _, err := mlService.TrainModels(ctx); err != nil {
			logging.Warn().Err(err).Msg("startup training failed, models will train on demand")
		}
	}

	analyticsService := analytics.NewService(db, aggregator, analyzer)

	handler := api.NewHandler(db, mlService, analyticsService)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	})
	server := api.NewServer(&cfg.Server, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logging.Error().Err(err).Msg("http server failed")
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	logging.Info().Msg("edulens stopped")
}
