// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

// Package config provides layered configuration for EduLens using Koanf v2.
//
// Configuration loading order:
//  1. Defaults: built-in sensible defaults for all settings
//  2. Config file: optional YAML file (config.yaml) for persistent settings
//  3. Environment variables: EDULENS_* overrides any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Models   ModelsConfig   `koanf:"models"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig configures the DuckDB record store.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" opens an in-memory store.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedDemoData inserts a small demo roster on first startup when the
	// store is empty. Intended for development only.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// ModelsConfig configures the predictive models and their persistence.
type ModelsConfig struct {
	// ArtifactDir is where trained model artifacts are stored.
	ArtifactDir string `koanf:"artifact_dir"`

	// Seed fixes the train/test split and forest bootstrap sampling for
	// reproducible training runs.
	Seed int64 `koanf:"seed"`

	// NumTrees is the forest size for both models.
	NumTrees int `koanf:"num_trees"`

	// RegressorMaxDepth limits tree depth in the performance regressor.
	RegressorMaxDepth int `koanf:"regressor_max_depth"`

	// ClassifierMaxDepth limits tree depth in the risk classifier.
	ClassifierMaxDepth int `koanf:"classifier_max_depth"`

	// TrainOnStartup trains both models during startup instead of lazily
	// on the first prediction request.
	TrainOnStartup bool `koanf:"train_on_startup"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs is the per-IP request budget per RateLimitWindow.
	// 0 disables rate limiting.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for malformed values.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Models.ArtifactDir == "" {
		return fmt.Errorf("models.artifact_dir must not be empty")
	}
	if c.Models.NumTrees <= 0 {
		return fmt.Errorf("models.num_trees must be positive, got %d", c.Models.NumTrees)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("server.rate_limit_reqs must not be negative")
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
