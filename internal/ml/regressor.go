// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package ml

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/edulens/edulens/internal/features"
	"github.com/edulens/edulens/internal/models"
)

// regressorArtifact is the artifact name for the performance model.
const regressorArtifact = "performance"

// RegressorConfig configures the performance regressor.
type RegressorConfig struct {
	// NumTrees is the forest size.
	NumTrees int

	// MaxDepth limits tree depth.
	MaxDepth int

	// Seed fixes the train/test split and bootstrap sampling.
	Seed int64
}

// DefaultRegressorConfig returns the default regressor configuration.
func DefaultRegressorConfig() RegressorConfig {
	return RegressorConfig{
		NumTrees: 100,
		MaxDepth: 10,
		Seed:     42,
	}
}

// RegressionMetrics reports held-out evaluation of a training run.
type RegressionMetrics struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2_score"`
}

// PerformanceRegressor predicts a student's average marks from the
// six-feature vector using a random forest over standardized features.
// Safe for concurrent use: training takes an exclusive lock, prediction a
// shared lock.
type PerformanceRegressor struct {
	cfg RegressorConfig

	mu        sync.RWMutex
	forest    *Forest
	scaler    StandardScaler
	trained   bool
	trainedAt time.Time
	samples   int
}

// NewPerformanceRegressor creates an untrained regressor. Zero config
// fields fall back to defaults.
func NewPerformanceRegressor(cfg RegressorConfig) *PerformanceRegressor {
	def := DefaultRegressorConfig()
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = def.NumTrees
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	return &PerformanceRegressor{cfg: cfg}
}

// IsTrained reports whether the model has fitted parameters.
func (m *PerformanceRegressor) IsTrained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}

// Train fits the forest on an 80/20 split and reports held-out metrics.
// Retraining overwrites the previous fit. With fewer than five rows the
// test partition is empty and metrics are computed on the training rows.
func (m *PerformanceRegressor) Train(x [][]float64, y []float64) (*RegressionMetrics, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("regressor train: %w: %d feature rows, %d targets",
			models.ErrInvalidInput, len(x), len(y))
	}
	for i := range x {
		if len(x[i]) != features.NumFeatures {
			return nil, fmt.Errorf("regressor train: %w: row %d has %d features, want %d",
				models.ErrInvalidInput, i, len(x[i]), features.NumFeatures)
		}
	}

	trainIdx, testIdx := splitIndices(len(x), m.cfg.Seed)
	xTrain, yTrain := selectRows(x, trainIdx), selectFloats(y, trainIdx)
	xTest, yTest := selectRows(x, testIdx), selectFloats(y, testIdx)

	var scaler StandardScaler
	xTrainScaled, err := scaler.FitTransform(xTrain)
	if err != nil {
		return nil, err
	}

	forest := growForest(xTrainScaled, treeTargets{reg: yTrain}, forestParams{
		numTrees: m.cfg.NumTrees,
		maxDepth: m.cfg.MaxDepth,
		minLeaf:  1,
		seed:     m.cfg.Seed,
	})

	// Evaluate on the held-out split, falling back to the training rows
	// when the dataset was too small to hold any out.
	evalX, evalY := xTest, yTest
	if len(evalX) == 0 {
		evalX, evalY = xTrain, yTrain
	}
	evalScaled, err := scaler.Transform(evalX)
	if err != nil {
		return nil, err
	}

	predictions := make([]float64, len(evalScaled))
	for i, row := range evalScaled {
		predictions[i] = forest.predictValue(row)
	}
	metricsOut := evaluateRegression(evalY, predictions)

	m.mu.Lock()
	m.forest = forest
	m.scaler = scaler
	m.trained = true
	m.trainedAt = time.Now().UTC()
	m.samples = len(x)
	m.mu.Unlock()

	return metricsOut, nil
}

// Predict returns the predicted average marks, clamped to [0, 100].
// Returns ErrNotTrained before a successful Train or Load.
func (m *PerformanceRegressor) Predict(row []float64) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.trained {
		return 0, fmt.Errorf("performance regressor: %w", ErrNotTrained)
	}

	scaled, err := m.scaler.TransformRow(row)
	if err != nil {
		return 0, err
	}
	return clampScore(m.forest.predictValue(scaled)), nil
}

// FeatureImportance maps feature names to their normalized importance.
// Returns an empty map when untrained.
func (m *PerformanceRegressor) FeatureImportance() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]float64)
	if !m.trained {
		return out
	}
	for i, name := range features.FeatureNames {
		out[name] = m.forest.Importances[i]
	}
	return out
}

// regressorState is the gob payload persisted per artifact.
type regressorState struct {
	Forest    *Forest
	Scaler    StandardScaler
	Trained   bool
	TrainedAt time.Time
	Samples   int
}

// Save persists the fitted state as one opaque artifact.
func (m *PerformanceRegressor) Save(store *ArtifactStore) error {
	m.mu.RLock()
	state := regressorState{
		Forest:    m.forest,
		Scaler:    m.scaler,
		Trained:   m.trained,
		TrainedAt: m.trainedAt,
		Samples:   m.samples,
	}
	m.mu.RUnlock()

	return store.Save(regressorArtifact, &state, ArtifactMetadata{
		TrainedAt:   state.TrainedAt,
		SampleCount: state.Samples,
	})
}

// Load restores fitted state from the artifact store. A missing artifact is
// a no-op success: the model stays untrained and the caller trains
// explicitly or relies on lazy training downstream.
func (m *PerformanceRegressor) Load(store *ArtifactStore) error {
	var state regressorState
	found, err := store.Load(regressorArtifact, &state)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	m.mu.Lock()
	m.forest = state.Forest
	m.scaler = state.Scaler
	m.trained = state.Trained
	m.trainedAt = state.TrainedAt
	m.samples = state.Samples
	m.mu.Unlock()

	return nil
}

// evaluateRegression computes MSE, RMSE and R² for predictions.
func evaluateRegression(actual, predicted []float64) *RegressionMetrics {
	n := float64(len(actual))
	if n == 0 {
		return &RegressionMetrics{}
	}

	var mean float64
	for _, v := range actual {
		mean += v
	}
	mean /= n

	var ssRes, ssTot float64
	for i := range actual {
		d := actual[i] - predicted[i]
		ssRes += d * d
		t := actual[i] - mean
		ssTot += t * t
	}

	mse := ssRes / n
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	return &RegressionMetrics{
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		R2:   r2,
	}
}
