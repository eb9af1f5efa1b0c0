// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

// Package features converts raw per-student records into the numeric feature
// vectors consumed by the predictive models.
//
// The aggregator is a stateless transformer: given a student identifier it
// fetches that student's academic and behavioral records from the RecordSource
// collaborator and reduces them to per-field arithmetic means. It also builds
// the full training set (features plus regression and classification targets)
// by aggregating every student with academic records.
//
// A student with zero academic records is unknown to the models and
// aggregation fails with models.ErrNoData. Missing behavioral records are
// substituted with fixed defaults instead, because predictions must remain
// possible from academics alone.
package features

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edulens/edulens/internal/logging"
	"github.com/edulens/edulens/internal/models"
)

// Defaults substituted when a student has no behavioral records.
const (
	DefaultMood       = 3.0
	DefaultStudyHours = 5.0
	DefaultSleepHours = 6.0
)

// FeatureNames lists the model features in their fixed contract order. Both
// predictive models are trained against vectors in exactly this order.
var FeatureNames = []string{
	"avg_attendance",
	"avg_assignment",
	"avg_internal",
	"avg_mood",
	"avg_study_hours",
	"avg_sleep_hours",
}

// NumFeatures is the dimensionality of the feature contract.
const NumFeatures = 6

// Vector is the six-dimensional numeric summary of a student's history.
// AvgInternal carries the average marks as an internal-assessment proxy.
type Vector struct {
	AvgAttendance float64 `json:"avg_attendance"`
	AvgAssignment float64 `json:"avg_assignment"`
	AvgInternal   float64 `json:"avg_internal"`
	AvgMood       float64 `json:"avg_mood"`
	AvgStudyHours float64 `json:"avg_study_hours"`
	AvgSleepHours float64 `json:"avg_sleep_hours"`
}

// Values returns the vector fields in FeatureNames order.
func (v Vector) Values() []float64 {
	return []float64{
		v.AvgAttendance,
		v.AvgAssignment,
		v.AvgInternal,
		v.AvgMood,
		v.AvgStudyHours,
		v.AvgSleepHours,
	}
}

// Summary extends the feature vector with the raw marks average and student
// metadata. It feeds the analytics layer and the recommendation rules.
type Summary struct {
	StudentID  int64  `json:"student_id"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`

	AvgMarks      float64 `json:"avg_marks"`
	AvgAttendance float64 `json:"avg_attendance"`
	AvgAssignment float64 `json:"avg_assignment"`
	AvgMood       float64 `json:"avg_mood"`
	AvgStudyHours float64 `json:"avg_study_hours"`
	AvgSleepHours float64 `json:"avg_sleep_hours"`
}

// Vector derives the model feature vector from the summary.
func (s *Summary) Vector() Vector {
	return Vector{
		AvgAttendance: s.AvgAttendance,
		AvgAssignment: s.AvgAssignment,
		AvgInternal:   s.AvgMarks,
		AvgMood:       s.AvgMood,
		AvgStudyHours: s.AvgStudyHours,
		AvgSleepHours: s.AvgSleepHours,
	}
}

// RiskLevel applies the shared ground-truth rule to the summary.
func (s *Summary) RiskLevel() models.RiskLevel {
	return models.RiskLevelFor(s.AvgMarks, s.AvgMood)
}

// RecordSource is the external persistence collaborator. It is typically
// implemented by the store package; tests supply fakes.
type RecordSource interface {
	// Students returns all users with the student role, optionally
	// filtered by department ("" = all departments).
	Students(ctx context.Context, department string) ([]models.Student, error)

	// AcademicRecords returns one student's academic records, oldest first.
	AcademicRecords(ctx context.Context, studentID int64) ([]models.AcademicRecord, error)

	// BehaviorRecords returns one student's behavior records, oldest first.
	BehaviorRecords(ctx context.Context, studentID int64) ([]models.BehaviorRecord, error)

	// AllAcademicRecords returns every academic record.
	AllAcademicRecords(ctx context.Context) ([]models.AcademicRecord, error)

	// AllBehaviorRecords returns every behavior record.
	AllBehaviorRecords(ctx context.Context) ([]models.BehaviorRecord, error)
}

// TrainingSet holds aggregated features plus both model targets, row-aligned.
type TrainingSet struct {
	// Features holds one row per student in FeatureNames order.
	Features [][]float64

	// Marks is the regression target (average marks per student).
	Marks []float64

	// Risks is the classification target per student.
	Risks []models.RiskLevel

	// StudentIDs identifies the student behind each row.
	StudentIDs []int64
}

// Aggregator reduces raw records to feature vectors and training sets.
type Aggregator struct {
	src    RecordSource
	logger zerolog.Logger
}

// NewAggregator creates an aggregator over the given record source.
func NewAggregator(src RecordSource) *Aggregator {
	return &Aggregator{
		src:    src,
		logger: logging.With().Str("component", "features").Logger(),
	}
}

// Features aggregates one student's records into a feature vector.
// Returns models.ErrNoData when the student has no academic records.
func (a *Aggregator) Features(ctx context.Context, studentID int64) (Vector, error) {
	summary, err := a.Summarize(ctx, studentID)
	if err != nil {
		return Vector{}, err
	}
	return summary.Vector(), nil
}

// Summarize aggregates one student's records into a Summary.
// Returns models.ErrNoData when the student has no academic records.
func (a *Aggregator) Summarize(ctx context.Context, studentID int64) (*Summary, error) {
	academics, err := a.src.AcademicRecords(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("fetch academic records for student %d: %w", studentID, err)
	}
	if len(academics) == 0 {
		return nil, fmt.Errorf("student %d: %w", studentID, models.ErrNoData)
	}

	behaviors, err := a.src.BehaviorRecords(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("fetch behavior records for student %d: %w", studentID, err)
	}

	summary := &Summary{StudentID: studentID}

	var marks, attendance, assignment float64
	for i := range academics {
		marks += academics[i].Marks
		attendance += academics[i].Attendance
		assignment += academics[i].AssignmentScore
	}
	n := float64(len(academics))
	summary.AvgMarks = marks / n
	summary.AvgAttendance = attendance / n
	summary.AvgAssignment = assignment / n

	if len(behaviors) == 0 {
		summary.AvgMood = DefaultMood
		summary.AvgStudyHours = DefaultStudyHours
		summary.AvgSleepHours = DefaultSleepHours
		return summary, nil
	}

	var mood, study, sleep float64
	for i := range behaviors {
		mood += float64(behaviors[i].MoodScore)
		study += behaviors[i].StudyHours
		sleep += behaviors[i].SleepHours
	}
	m := float64(len(behaviors))
	summary.AvgMood = mood / m
	summary.AvgStudyHours = study / m
	summary.AvgSleepHours = sleep / m

	return summary, nil
}

// SummarizeAll aggregates every student with academic records, optionally
// filtered by department. Students without academic records are skipped.
func (a *Aggregator) SummarizeAll(ctx context.Context, department string) ([]*Summary, error) {
	students, err := a.src.Students(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	summaries := make([]*Summary, 0, len(students))
	for i := range students {
		summary, err := a.Summarize(ctx, students[i].ID)
		if err != nil {
			if errors.Is(err, models.ErrNoData) {
				continue
			}
			return nil, err
		}
		summary.Name = students[i].Name
		summary.Department = students[i].Department
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// TrainingSet builds the supervised training data over all students.
// Returns models.ErrNoData when no student has academic records.
func (a *Aggregator) TrainingSet(ctx context.Context) (*TrainingSet, error) {
	summaries, err := a.SummarizeAll(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("training set: %w", models.ErrNoData)
	}

	set := &TrainingSet{
		Features:   make([][]float64, 0, len(summaries)),
		Marks:      make([]float64, 0, len(summaries)),
		Risks:      make([]models.RiskLevel, 0, len(summaries)),
		StudentIDs: make([]int64, 0, len(summaries)),
	}
	for _, s := range summaries {
		set.Features = append(set.Features, s.Vector().Values())
		set.Marks = append(set.Marks, s.AvgMarks)
		set.Risks = append(set.Risks, s.RiskLevel())
		set.StudentIDs = append(set.StudentIDs, s.StudentID)
	}

	a.logger.Debug().
		Int("students", len(set.StudentIDs)).
		Msg("training set built")

	return set, nil
}
