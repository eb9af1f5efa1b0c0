// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package ml

import (
	"fmt"
	"math"

	"github.com/edulens/edulens/internal/models"
)

// StandardScaler standardizes features to zero mean and unit variance.
// Statistics are fit on the training split only and reused at inference.
// Fields are exported for gob serialization in model artifacts.
type StandardScaler struct {
	Means  []float64
	Stds   []float64
	Fitted bool
}

// Fit computes per-feature mean and standard deviation.
func (s *StandardScaler) Fit(x [][]float64) error {
	if len(x) == 0 {
		return fmt.Errorf("scaler fit: %w: empty matrix", models.ErrInvalidInput)
	}

	numFeatures := len(x[0])
	s.Means = make([]float64, numFeatures)
	s.Stds = make([]float64, numFeatures)

	for _, row := range x {
		if len(row) != numFeatures {
			return fmt.Errorf("scaler fit: %w: ragged matrix", models.ErrInvalidInput)
		}
		for j, v := range row {
			s.Means[j] += v
		}
	}
	n := float64(len(x))
	for j := range s.Means {
		s.Means[j] /= n
	}

	for _, row := range x {
		for j, v := range row {
			d := v - s.Means[j]
			s.Stds[j] += d * d
		}
	}
	for j := range s.Stds {
		s.Stds[j] = math.Sqrt(s.Stds[j] / n)
		// Constant features pass through unscaled.
		if s.Stds[j] == 0 {
			s.Stds[j] = 1
		}
	}

	s.Fitted = true
	return nil
}

// Transform standardizes rows using the fitted statistics.
func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	if !s.Fitted {
		return nil, fmt.Errorf("scaler transform: %w", ErrNotTrained)
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		scaled, err := s.TransformRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// TransformRow standardizes a single feature vector.
func (s *StandardScaler) TransformRow(row []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, fmt.Errorf("scaler transform: %w", ErrNotTrained)
	}
	if len(row) != len(s.Means) {
		return nil, fmt.Errorf("scaler transform: %w: got %d features, want %d",
			models.ErrInvalidInput, len(row), len(s.Means))
	}

	scaled := make([]float64, len(row))
	for j, v := range row {
		scaled[j] = (v - s.Means[j]) / s.Stds[j]
	}
	return scaled, nil
}

// FitTransform fits the scaler and returns the standardized matrix.
func (s *StandardScaler) FitTransform(x [][]float64) ([][]float64, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}
