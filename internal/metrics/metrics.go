// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

// Package metrics provides Prometheus instrumentation for the insight engine:
// model training runs and duration, prediction throughput, sentiment cache
// efficiency, and record-store query latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Model lifecycle metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edulens_model_training_runs_total",
			Help: "Total number of model training runs",
		},
		[]string{"trigger"}, // "explicit", "lazy"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edulens_model_training_duration_seconds",
			Help:    "Duration of full training passes (both models) in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	TrainingErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edulens_model_training_errors_total",
			Help: "Total number of failed training runs",
		},
	)

	// Prediction metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edulens_predictions_total",
			Help: "Total number of predictions served",
		},
		[]string{"model", "outcome"}, // model: "performance", "risk"; outcome: "ok", "no_data", "error"
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edulens_prediction_duration_seconds",
			Help:    "Per-student prediction latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	// Sentiment cache metrics
	SentimentCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edulens_sentiment_cache_hits_total",
			Help: "Total number of sentiment analysis cache hits",
		},
	)

	SentimentCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edulens_sentiment_cache_misses_total",
			Help: "Total number of sentiment analysis cache misses",
		},
	)

	SentimentCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edulens_sentiment_cache_entries",
			Help: "Current number of cached sentiment results",
		},
	)

	// Record store metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edulens_store_query_duration_seconds",
			Help:    "Duration of record store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edulens_store_query_errors_total",
			Help: "Total number of record store query errors",
		},
		[]string{"operation", "table"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edulens_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edulens_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// ObserveStoreQuery records the duration of a store query and increments the
// error counter when err is non-nil.
func ObserveStoreQuery(operation, table string, start time.Time, err error) {
	StoreQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(operation, table).Inc()
	}
}
