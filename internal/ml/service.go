// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

// Package ml contains the predictive models and the orchestration service
// that owns their lifecycle.
//
// Two estimators share the six-feature contract defined in the features
// package: a random-forest regressor predicting average marks and a
// random-forest classifier assigning one of three ordinal risk levels. Both
// standardize features with statistics fit on the training split only, and
// both persist to opaque gob artifacts.
//
// The Service composes the feature aggregator, both models and the sentiment
// analyzer. Prediction on an untrained model lazily triggers one full
// training pass; a mutex guarantees a single in-flight training run, with
// concurrent predictors waiting on the same pass rather than racing.
package ml

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulens/edulens/internal/features"
	"github.com/edulens/edulens/internal/logging"
	"github.com/edulens/edulens/internal/metrics"
	"github.com/edulens/edulens/internal/models"
	"github.com/edulens/edulens/internal/sentiment"
)

// TrainingReport aggregates the metrics of one full training pass.
type TrainingReport struct {
	Regressor  *RegressionMetrics     `json:"performance_predictor"`
	Classifier *ClassificationMetrics `json:"risk_classifier"`
	Samples    int                    `json:"samples"`
	TrainedAt  time.Time              `json:"trained_at"`
}

// PerformancePrediction is the regressor's answer for one student.
type PerformancePrediction struct {
	StudentID         int64              `json:"student_id"`
	PredictedScore    float64            `json:"predicted_final_score"`
	Features          features.Vector    `json:"current_features"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	Interpretation    string             `json:"interpretation"`
}

// RiskPrediction is the classifier's answer for one student.
type RiskPrediction struct {
	StudentID         int64                        `json:"student_id"`
	RiskLevel         models.RiskLevel             `json:"risk_level"`
	Probabilities     map[models.RiskLevel]float64 `json:"probabilities"`
	Features          features.Vector              `json:"current_features"`
	FeatureImportance map[string]float64           `json:"feature_importance"`
	Interpretation    string                       `json:"interpretation"`
}

// BatchPrediction pairs both model outputs for one student.
type BatchPrediction struct {
	StudentID      int64                        `json:"student_id"`
	PredictedScore float64                      `json:"predicted_score"`
	RiskLevel      models.RiskLevel             `json:"risk_level"`
	Probabilities  map[models.RiskLevel]float64 `json:"risk_probabilities"`
}

// BatchResult is the per-item-degrading batch answer: students whose
// aggregation fails are omitted rather than failing the batch.
type BatchResult struct {
	Predictions    []BatchPrediction `json:"predictions"`
	TotalProcessed int               `json:"total_processed"`
}

// SentimentReport extends a sentiment result with the wellbeing score.
type SentimentReport struct {
	sentiment.Result
	MentalHealthScore int    `json:"mental_health_score"`
	MentalHealthLabel string `json:"mental_health_label"`
}

// ModelInfo describes the current state of both models.
type ModelInfo struct {
	Performance ModelStatus     `json:"performance_predictor"`
	Risk        ModelStatus     `json:"risk_classifier"`
	LastReport  *TrainingReport `json:"training_metrics,omitempty"`
}

// ModelStatus is one model's lifecycle summary.
type ModelStatus struct {
	IsTrained         bool               `json:"is_trained"`
	ModelType         string             `json:"model_type"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
}

// Service owns both predictive models and composes them with the feature
// aggregator and sentiment analyzer. Safe for concurrent use.
type Service struct {
	aggregator *features.Aggregator
	analyzer   *sentiment.Analyzer
	regressor  *PerformanceRegressor
	classifier *RiskClassifier
	artifacts  *ArtifactStore
	logger     zerolog.Logger

	// trainMu serializes training passes so a lazy train triggered by
	// concurrent predictions runs exactly once.
	trainMu sync.Mutex

	reportMu   sync.RWMutex
	lastReport *TrainingReport

	trainingRuns atomic.Int64
}

// ServiceConfig configures the orchestration service.
type ServiceConfig struct {
	Regressor  RegressorConfig
	Classifier ClassifierConfig
}

// NewService creates the orchestration service with untrained models.
func NewService(agg *features.Aggregator, analyzer *sentiment.Analyzer, artifacts *ArtifactStore, cfg ServiceConfig) *Service {
	return &Service{
		aggregator: agg,
		analyzer:   analyzer,
		regressor:  NewPerformanceRegressor(cfg.Regressor),
		classifier: NewRiskClassifier(cfg.Classifier),
		artifacts:  artifacts,
		logger:     logging.With().Str("component", "ml").Logger(),
	}
}

// LoadModels restores both models from their artifacts. Missing artifacts
// leave the corresponding model untrained; that is not an error.
func (s *Service) LoadModels() error {
	if err := s.regressor.Load(s.artifacts); err != nil {
		return fmt.Errorf("load performance model: %w", err)
	}
	if err := s.classifier.Load(s.artifacts); err != nil {
		return fmt.Errorf("load risk model: %w", err)
	}

	s.logger.Info().
		Bool("performance_trained", s.regressor.IsTrained()).
		Bool("risk_trained", s.classifier.IsTrained()).
		Msg("model artifacts loaded")
	return nil
}

// TrainModels builds the training set, trains both models, persists both
// artifacts and records the metrics. Returns models.ErrNoData when no
// student has academic records.
func (s *Service) TrainModels(ctx context.Context) (*TrainingReport, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()
	return s.trainLocked(ctx, "explicit")
}

// trainLocked runs one full training pass. Caller must hold trainMu.
func (s *Service) trainLocked(ctx context.Context, trigger string) (*TrainingReport, error) {
	start := time.Now()

	set, err := s.aggregator.TrainingSet(ctx)
	if err != nil {
		metrics.TrainingErrors.Inc()
		return nil, err
	}

	regMetrics, err := s.regressor.Train(set.Features, set.Marks)
	if err != nil {
		metrics.TrainingErrors.Inc()
		return nil, fmt.Errorf("train performance model: %w", err)
	}

	clsMetrics, err := s.classifier.Train(set.Features, set.Risks)
	if err != nil {
		metrics.TrainingErrors.Inc()
		return nil, fmt.Errorf("train risk model: %w", err)
	}

	if err := s.regressor.Save(s.artifacts); err != nil {
		return nil, err
	}
	if err := s.classifier.Save(s.artifacts); err != nil {
		return nil, err
	}

	report := &TrainingReport{
		Regressor:  regMetrics,
		Classifier: clsMetrics,
		Samples:    len(set.StudentIDs),
		TrainedAt:  time.Now().UTC(),
	}

	s.reportMu.Lock()
	s.lastReport = report
	s.reportMu.Unlock()

	s.trainingRuns.Add(1)
	metrics.TrainingRunsTotal.WithLabelValues(trigger).Inc()
	metrics.TrainingDuration.Observe(time.Since(start).Seconds())

	s.logger.Info().
		Str("trigger", trigger).
		Int("samples", report.Samples).
		Float64("rmse", regMetrics.RMSE).
		Float64("accuracy", clsMetrics.Accuracy).
		Dur("elapsed", time.Since(start)).
		Msg("models trained")

	return report, nil
}

// ensureTrained lazily trains both models when either is untrained.
// Concurrent callers share a single in-flight training pass.
func (s *Service) ensureTrained(ctx context.Context) error {
	if s.regressor.IsTrained() && s.classifier.IsTrained() {
		return nil
	}

	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	// Another caller may have finished the pass while we waited.
	if s.regressor.IsTrained() && s.classifier.IsTrained() {
		return nil
	}

	_, err := s.trainLocked(ctx, "lazy")
	return err
}

// TrainingRuns reports how many training passes have completed.
func (s *Service) TrainingRuns() int64 {
	return s.trainingRuns.Load()
}

// LastReport returns the metrics of the most recent training pass, or nil.
func (s *Service) LastReport() *TrainingReport {
	s.reportMu.RLock()
	defer s.reportMu.RUnlock()
	return s.lastReport
}

// PredictPerformance predicts a student's final score. Returns
// models.ErrNoData when the student has no academic records ("student
// unknown to the model").
func (s *Service) PredictPerformance(ctx context.Context, studentID int64) (*PerformancePrediction, error) {
	start := time.Now()
	defer func() {
		metrics.PredictionDuration.WithLabelValues("performance").Observe(time.Since(start).Seconds())
	}()

	if err := s.ensureTrained(ctx); err != nil {
		metrics.PredictionsTotal.WithLabelValues("performance", "error").Inc()
		return nil, err
	}

	vector, err := s.aggregator.Features(ctx, studentID)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("performance", "no_data").Inc()
		return nil, err
	}

	score, err := s.regressor.Predict(vector.Values())
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("performance", "error").Inc()
		return nil, err
	}

	metrics.PredictionsTotal.WithLabelValues("performance", "ok").Inc()
	return &PerformancePrediction{
		StudentID:         studentID,
		PredictedScore:    round2(score),
		Features:          vector,
		FeatureImportance: s.regressor.FeatureImportance(),
		Interpretation:    interpretScore(score),
	}, nil
}

// ClassifyRisk assigns a student's risk level. Returns models.ErrNoData
// when the student has no academic records.
func (s *Service) ClassifyRisk(ctx context.Context, studentID int64) (*RiskPrediction, error) {
	start := time.Now()
	defer func() {
		metrics.PredictionDuration.WithLabelValues("risk").Observe(time.Since(start).Seconds())
	}()

	if err := s.ensureTrained(ctx); err != nil {
		metrics.PredictionsTotal.WithLabelValues("risk", "error").Inc()
		return nil, err
	}

	vector, err := s.aggregator.Features(ctx, studentID)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("risk", "no_data").Inc()
		return nil, err
	}

	level, probs, err := s.classifier.Predict(vector.Values())
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("risk", "error").Inc()
		return nil, err
	}

	metrics.PredictionsTotal.WithLabelValues("risk", "ok").Inc()
	return &RiskPrediction{
		StudentID:         studentID,
		RiskLevel:         level,
		Probabilities:     probs,
		Features:          vector,
		FeatureImportance: s.classifier.FeatureImportance(),
		Interpretation:    interpretRisk(level, probs),
	}, nil
}

// BatchPredict predicts and classifies each student independently. Students
// whose aggregation fails (unknown ids) are silently omitted; the result
// counts only the successful subset.
func (s *Service) BatchPredict(ctx context.Context, studentIDs []int64) (*BatchResult, error) {
	if err := s.ensureTrained(ctx); err != nil {
		return nil, err
	}

	result := &BatchResult{Predictions: []BatchPrediction{}}
	for _, id := range studentIDs {
		perf, err := s.PredictPerformance(ctx, id)
		if err != nil {
			s.logger.Debug().Int64("student_id", id).Err(err).Msg("batch prediction skipped")
			continue
		}
		risk, err := s.ClassifyRisk(ctx, id)
		if err != nil {
			s.logger.Debug().Int64("student_id", id).Err(err).Msg("batch classification skipped")
			continue
		}

		result.Predictions = append(result.Predictions, BatchPrediction{
			StudentID:      id,
			PredictedScore: perf.PredictedScore,
			RiskLevel:      risk.RiskLevel,
			Probabilities:  risk.Probabilities,
		})
	}

	result.TotalProcessed = len(result.Predictions)
	return result, nil
}

// AnalyzeSentiment scores one text and attaches the wellbeing score.
func (s *Service) AnalyzeSentiment(text string) SentimentReport {
	result := s.analyzer.Analyze(text)
	score := sentiment.MentalHealthScore(result)
	return SentimentReport{
		Result:            result,
		MentalHealthScore: score,
		MentalHealthLabel: sentiment.MentalHealthLabel(score),
	}
}

// Info reports both models' lifecycle state and the last training metrics.
func (s *Service) Info() *ModelInfo {
	return &ModelInfo{
		Performance: ModelStatus{
			IsTrained:         s.regressor.IsTrained(),
			ModelType:         "RandomForestRegressor",
			FeatureImportance: s.regressor.FeatureImportance(),
		},
		Risk: ModelStatus{
			IsTrained:         s.classifier.IsTrained(),
			ModelType:         "RandomForestClassifier",
			FeatureImportance: s.classifier.FeatureImportance(),
		},
		LastReport: s.LastReport(),
	}
}

// interpretScore bands a predicted score into advice text.
func interpretScore(score float64) string {
	switch {
	case score >= 80:
		return "Excellent performance expected. Keep up the great work!"
	case score >= 60:
		return "Good performance expected. Consider focusing on weaker areas."
	case score >= 40:
		return "Average performance expected. Additional effort and support recommended."
	default:
		return "Below average performance predicted. Immediate intervention recommended."
	}
}

// interpretRisk bands a risk classification by its winning probability.
func interpretRisk(level models.RiskLevel, probs map[models.RiskLevel]float64) string {
	var confidence float64
	for _, p := range probs {
		if p > confidence {
			confidence = p
		}
	}

	switch level {
	case models.RiskHigh:
		return fmt.Sprintf("High risk detected with %.1f%% confidence. Immediate attention required.", confidence*100)
	case models.RiskMedium:
		return fmt.Sprintf("Medium risk detected with %.1f%% confidence. Monitor progress closely.", confidence*100)
	default:
		return fmt.Sprintf("Low risk with %.1f%% confidence. Student is performing well.", confidence*100)
	}
}

// round2 rounds to two decimal places for stable JSON output.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
