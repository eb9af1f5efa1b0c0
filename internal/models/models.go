// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

// Package models defines the record shapes shared across the analytics core.
//
// These are the plain data types the engine reads from and writes back to the
// surrounding application: per-student academic and behavioral records, the
// derived feature vector consumed by the predictive models, and the prediction
// and recommendation records returned to callers.
//
// Records are immutable once written. The core never mutates a record it has
// read; derived values (feature vectors, predictions, recommendations) are
// computed on demand and never persisted back into the record tables.
package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Role identifies the kind of user a record belongs to.
type Role string

const (
	// RoleStudent marks users whose academic and behavioral records feed the engine.
	RoleStudent Role = "student"
	// RoleTeacher marks teaching staff. Teachers carry no analytics records.
	RoleTeacher Role = "teacher"
	// RoleCounselor marks counseling staff.
	RoleCounselor Role = "counselor"
)

// Student is the per-user metadata the analytics layer joins against.
type Student struct {
	// ID is the application-assigned user identifier.
	ID int64 `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Email is the unique account email.
	Email string `json:"email"`

	// Role is the user role. Only RoleStudent rows enter analytics.
	Role Role `json:"role"`

	// Department groups students for population-level analytics.
	Department string `json:"department"`
}

// AcademicRecord is one academic snapshot for a student.
// A student accumulates many, ordered by RecordedAt.
type AcademicRecord struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`

	// Marks is the exam/internal score on a 0-100 scale.
	Marks float64 `json:"marks" validate:"gte=0,lte=100"`

	// Attendance is the attendance percentage on a 0-100 scale.
	Attendance float64 `json:"attendance" validate:"gte=0,lte=100"`

	// AssignmentScore is the assignment score on a 0-100 scale.
	AssignmentScore float64 `json:"assignment_score" validate:"gte=0,lte=100"`

	RecordedAt time.Time `json:"recorded_at"`
}

// BehaviorRecord is one wellbeing check-in for a student.
type BehaviorRecord struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`

	// MoodScore is a self-reported mood on a 1 (worst) to 5 (best) scale.
	MoodScore int `json:"mood_score" validate:"gte=1,lte=5"`

	// SleepHours is average sleep per night.
	SleepHours float64 `json:"sleep_hours" validate:"gte=0"`

	// StudyHours is average study time per day.
	StudyHours float64 `json:"study_hours" validate:"gte=0"`

	// TextFeedback is the optional free-text check-in, fed to the
	// sentiment scorer. May be empty.
	TextFeedback string `json:"text_feedback,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`
}

// validate is the shared validator instance. validator.Validate is safe for
// concurrent use and caches struct metadata, so a single instance is kept.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateAcademicRecord checks field ranges on an inbound academic record.
// Returns ErrInvalidInput wrapped with the offending fields.
func ValidateAcademicRecord(rec *AcademicRecord) error {
	return wrapValidation(validate.Struct(rec))
}

// ValidateBehaviorRecord checks field ranges on an inbound behavior record.
// Returns ErrInvalidInput wrapped with the offending fields.
func ValidateBehaviorRecord(rec *BehaviorRecord) error {
	return wrapValidation(validate.Struct(rec))
}
