// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors shared across the analytics core. Callers match them with
// errors.Is after unwrapping.
var (
	// ErrNoData indicates an aggregation or analytics query found zero
	// qualifying records. Callers recover by returning an empty or absent
	// result; it is never fatal.
	ErrNoData = errors.New("no qualifying records")

	// ErrInvalidInput indicates a malformed record or feature vector
	// (wrong shape, out-of-range scores). Reported to the caller, never
	// silently coerced.
	ErrInvalidInput = errors.New("invalid input")
)

// wrapValidation converts validator errors into ErrInvalidInput so callers
// can match the sentinel without importing the validator package.
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, fields)
	}

	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
