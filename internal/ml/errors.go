// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package ml

import "errors"

// ErrNotTrained indicates a prediction was requested on a model with no
// fitted parameters. The orchestration service recovers by lazy training;
// it is fatal only when training itself cannot produce a fitted model.
var ErrNotTrained = errors.New("model not trained")
