// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

// Package api exposes the insight engine over HTTP using the Chi router.
//
// The surface has three groups: ingest endpoints for students and records,
// model endpoints (train, predict, classify, sentiment) and read-only
// analytics endpoints. All responses are JSON; domain errors map to 400/404
// and everything else to 500.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	// RateLimitReqs is the per-IP request budget per RateLimitWindow.
	// 0 disables rate limiting.
	RateLimitReqs   int
	RateLimitWindow time.Duration
}

// NewRouter builds the full route tree.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(correlationID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/api/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitReqs > 0 {
			window := cfg.RateLimitWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(httprate.LimitByIP(cfg.RateLimitReqs, window))
		}
		r.Use(requestMetrics)

		r.Route("/students", func(r chi.Router) {
			r.Get("/", h.ListStudents)
			r.Post("/", h.CreateStudent)
		})

		r.Route("/records", func(r chi.Router) {
			r.Post("/academic", h.AddAcademicRecord)
			r.Post("/behavior", h.AddBehaviorRecord)
		})

		r.Route("/ml", func(r chi.Router) {
			r.Post("/train", h.TrainModels)
			r.Get("/predict-performance/{studentID}", h.PredictPerformance)
			r.Get("/classify-risk/{studentID}", h.ClassifyRisk)
			r.Post("/batch-predict", h.BatchPredict)
			r.Post("/analyze-sentiment", h.AnalyzeSentiment)
			r.Get("/model-info", h.ModelInfo)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/class", h.ClassAnalytics)
			r.Get("/attendance-correlation", h.AttendanceCorrelation)
			r.Get("/stress-correlation", h.StressCorrelation)
			r.Get("/mental-health-trends", h.MentalHealthTrends)
			r.Get("/student-trends/{studentID}", h.StudentTrends)
			r.Get("/recommendations/{studentID}", h.Recommendations)
			r.Get("/department-summary", h.DepartmentSummary)
		})
	})

	return r
}
