// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// correlationIDKey is the context key for request correlation IDs.
const correlationIDKey contextKey = "correlation_id"

// NewCorrelationID creates a new unique correlation ID.
// Returns the first 8 characters of a UUID for log readability.
func NewCorrelationID() string {
	return uuid.New().String()[:8]
}

// WithCorrelationID returns a new context carrying the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID retrieves the correlation ID from context.
// Returns an empty string if not present.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns a logger that includes the correlation ID from the context,
// if one is present. Use this inside request handlers and services so a
// single request's log lines can be stitched together.
//
//	logging.Ctx(ctx).Info().Int64("student_id", id).Msg("risk classified")
func Ctx(ctx context.Context) zerolog.Logger {
	logger := Logger()
	if id := CorrelationID(ctx); id != "" {
		logger = logger.With().Str(string(correlationIDKey), id).Logger()
	}
	return logger
}
