// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package ml

import (
	"fmt"
	"sync"
	"time"

	"github.com/edulens/edulens/internal/features"
	"github.com/edulens/edulens/internal/models"
)

// classifierArtifact is the artifact name for the risk model.
const classifierArtifact = "risk"

// ClassifierConfig configures the risk classifier.
type ClassifierConfig struct {
	// NumTrees is the forest size.
	NumTrees int

	// MaxDepth limits tree depth.
	MaxDepth int

	// MaxFeatures is the feature subset size considered per split.
	// Defaults to 2 (~sqrt of the six-feature contract).
	MaxFeatures int

	// Seed fixes the stratified split and bootstrap sampling.
	Seed int64
}

// DefaultClassifierConfig returns the default classifier configuration.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		NumTrees:    100,
		MaxDepth:    8,
		MaxFeatures: 2,
		Seed:        42,
	}
}

// ClassMetrics is the per-class precision/recall/F1 breakdown.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

// ClassificationMetrics reports held-out evaluation of a training run.
type ClassificationMetrics struct {
	Accuracy float64 `json:"accuracy"`

	// Report maps each risk level to its metrics on the held-out split.
	Report map[models.RiskLevel]ClassMetrics `json:"classification_report"`
}

// RiskClassifier categorizes students into the three ordinal risk levels
// from the six-feature vector, using a random forest over standardized
// features. Safe for concurrent use.
type RiskClassifier struct {
	cfg ClassifierConfig

	mu        sync.RWMutex
	forest    *Forest
	scaler    StandardScaler
	trained   bool
	trainedAt time.Time
	samples   int
}

// NewRiskClassifier creates an untrained classifier. Zero config fields
// fall back to defaults.
func NewRiskClassifier(cfg ClassifierConfig) *RiskClassifier {
	def := DefaultClassifierConfig()
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = def.NumTrees
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = def.MaxFeatures
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	return &RiskClassifier{cfg: cfg}
}

// IsTrained reports whether the model has fitted parameters.
func (m *RiskClassifier) IsTrained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}

// Train fits the forest on a stratified 80/20 split and reports held-out
// accuracy plus a per-class breakdown. Retraining overwrites the previous
// fit. Classes too small to hold a row out stay entirely in training.
func (m *RiskClassifier) Train(x [][]float64, y []models.RiskLevel) (*ClassificationMetrics, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("classifier train: %w: %d feature rows, %d targets",
			models.ErrInvalidInput, len(x), len(y))
	}

	labels := make([]int, len(y))
	for i, level := range y {
		idx := level.Index()
		if idx < 0 {
			return nil, fmt.Errorf("classifier train: %w: unknown risk level %q",
				models.ErrInvalidInput, level)
		}
		labels[i] = idx
	}
	for i := range x {
		if len(x[i]) != features.NumFeatures {
			return nil, fmt.Errorf("classifier train: %w: row %d has %d features, want %d",
				models.ErrInvalidInput, i, len(x[i]), features.NumFeatures)
		}
	}

	trainIdx, testIdx := stratifiedSplitIndices(labels, m.cfg.Seed)
	xTrain, yTrain := selectRows(x, trainIdx), selectInts(labels, trainIdx)
	xTest, yTest := selectRows(x, testIdx), selectInts(labels, testIdx)

	var scaler StandardScaler
	xTrainScaled, err := scaler.FitTransform(xTrain)
	if err != nil {
		return nil, err
	}

	forest := growForest(xTrainScaled, treeTargets{cls: yTrain, numClasses: len(models.RiskLevels)}, forestParams{
		numTrees:    m.cfg.NumTrees,
		maxDepth:    m.cfg.MaxDepth,
		minLeaf:     1,
		maxFeatures: m.cfg.MaxFeatures,
		seed:        m.cfg.Seed,
	})

	evalX, evalY := xTest, yTest
	if len(evalX) == 0 {
		evalX, evalY = xTrain, yTrain
	}
	evalScaled, err := scaler.Transform(evalX)
	if err != nil {
		return nil, err
	}

	predicted := make([]int, len(evalScaled))
	for i, row := range evalScaled {
		predicted[i] = argmax(forest.predictProbs(row))
	}
	metricsOut := evaluateClassification(evalY, predicted)

	m.mu.Lock()
	m.forest = forest
	m.scaler = scaler
	m.trained = true
	m.trainedAt = time.Now().UTC()
	m.samples = len(x)
	m.mu.Unlock()

	return metricsOut, nil
}

// Predict returns the risk level plus the full probability distribution
// over the three classes. Returns ErrNotTrained before a successful
// Train or Load.
func (m *RiskClassifier) Predict(row []float64) (models.RiskLevel, map[models.RiskLevel]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.trained {
		return "", nil, fmt.Errorf("risk classifier: %w", ErrNotTrained)
	}

	scaled, err := m.scaler.TransformRow(row)
	if err != nil {
		return "", nil, err
	}

	probs := m.forest.predictProbs(scaled)
	dist := make(map[models.RiskLevel]float64, len(models.RiskLevels))
	for i, level := range models.RiskLevels {
		dist[level] = probs[i]
	}

	return models.RiskLevelFromIndex(argmax(probs)), dist, nil
}

// FeatureImportance maps feature names to their normalized importance.
// Returns an empty map when untrained.
func (m *RiskClassifier) FeatureImportance() map[string]float64 {
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

// classifierState is the gob payload persisted per artifact.
type classifierState struct {
	Forest    *Forest
	Scaler    StandardScaler
	Trained   bool
	TrainedAt time.Time
	Samples   int
}

// Save persists the fitted state as one opaque artifact.
func (m *RiskClassifier) Save(store *ArtifactStore) error {
	m.mu.RLock()
	state := classifierState{
		Forest:    m.forest,
		Scaler:    m.scaler,
		Trained:   m.trained,
		TrainedAt: m.trainedAt,
		Samples:   m.samples,
	}
	m.mu.RUnlock()

	return store.Save(classifierArtifact, &state, ArtifactMetadata{
		TrainedAt:   state.TrainedAt,
		SampleCount: state.Samples,
	})
}

// Load restores fitted state from the artifact store. A missing artifact is
// a no-op success; the model stays untrained.
func (m *RiskClassifier) Load(store *ArtifactStore) error {
	var state classifierState
	found, err := store.Load(classifierArtifact, &state)
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

// evaluateClassification computes accuracy and the per-class breakdown.
func evaluateClassification(actual, predicted []int) *ClassificationMetrics {
	out := &ClassificationMetrics{
		Report: make(map[models.RiskLevel]ClassMetrics, len(models.RiskLevels)),
	}
	if len(actual) == 0 {
		return out
	}

	correct := 0
	for i := range actual {
		if actual[i] == predicted[i] {
			correct++
		}
	}
	out.Accuracy = float64(correct) / float64(len(actual))

	for classIdx, level := range models.RiskLevels {
		var tp, fp, fn, support int
		for i := range actual {
			switch {
			case actual[i] == classIdx && predicted[i] == classIdx:
				tp++
			case actual[i] != classIdx && predicted[i] == classIdx:
				fp++
			case actual[i] == classIdx && predicted[i] != classIdx:
				fn++
			}
			if actual[i] == classIdx {
				support++
			}
		}

		var precision, recall, f1 float64
		if tp+fp > 0 {
			precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			recall = float64(tp) / float64(tp+fn)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		out.Report[level] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support,
		}
	}

	return out
}
