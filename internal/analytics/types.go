// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package analytics

import (
	"github.com/edulens/edulens/internal/features"
	"github.com/edulens/edulens/internal/models"
	"github.com/edulens/edulens/internal/sentiment"
)

// PerformanceCategory buckets average marks for distribution reporting.
type PerformanceCategory string

const (
	PerformanceExcellent PerformanceCategory = "Excellent" // >= 80
	PerformanceGood      PerformanceCategory = "Good"      // >= 60
	PerformanceAverage   PerformanceCategory = "Average"   // >= 40
	PerformancePoor      PerformanceCategory = "Poor"      // < 40
)

// CategorizePerformance buckets average marks into its category.
func CategorizePerformance(avgMarks float64) PerformanceCategory {
	switch {
	case avgMarks >= 80:
		return PerformanceExcellent
	case avgMarks >= 60:
		return PerformanceGood
	case avgMarks >= 40:
		return PerformanceAverage
	default:
		return PerformancePoor
	}
}

// AtRiskStudent is one High-risk roster entry.
type AtRiskStudent struct {
	StudentID  int64   `json:"student_id"`
	Name       string  `json:"name"`
	Department string  `json:"department"`
	AvgMarks   float64 `json:"avg_marks"`
	AvgMood    float64 `json:"avg_mood"`
}

// ClassStatistics summarizes a student population.
type ClassStatistics struct {
	TotalStudents int     `json:"total_students"`
	AvgMarks      float64 `json:"avg_marks"`
	AvgAttendance float64 `json:"avg_attendance"`
	AvgMood       float64 `json:"avg_mood"`
	MarksStd      float64 `json:"marks_std"`
}

// ClassAnalytics is the population-level dashboard answer.
type ClassAnalytics struct {
	PerformanceDistribution map[PerformanceCategory]int `json:"performance_distribution"`
	RiskDistribution        map[models.RiskLevel]int    `json:"risk_distribution"`
	AtRiskStudents          []AtRiskStudent             `json:"at_risk_students"`
	Statistics              ClassStatistics             `json:"statistics"`
}

// ScatterPoint is one attendance/marks sample for visualization.
type ScatterPoint struct {
	Attendance float64 `json:"attendance_percentage"`
	Marks      float64 `json:"subject_marks"`
}

// AttendanceCorrelation reports the attendance-marks relationship.
type AttendanceCorrelation struct {
	CorrelationCoefficient float64 `json:"correlation_coefficient"`
	Interpretation         string  `json:"interpretation"`

	// RangeWiseAverage maps attendance ranges to mean marks.
	RangeWiseAverage map[string]float64 `json:"range_wise_average"`

	// DataPoints is an up-to-100-point sample for plotting.
	DataPoints []ScatterPoint `json:"data_points"`
}

// StressCorrelation reports wellbeing/academic correlations at the
// per-student aggregate level.
type StressCorrelation struct {
	Correlations    map[string]float64 `json:"correlations"`
	Interpretations map[string]string  `json:"interpretations"`
	Insights        []string           `json:"insights"`
}

// DailyTrend is a per-date mean of the behavioral indicators.
type DailyTrend struct {
	Date       string  `json:"recorded_date"`
	MoodScore  float64 `json:"mood_score"`
	StudyHours float64 `json:"study_hours"`
	SleepHours float64 `json:"sleep_hours"`
}

// ConcerningCase is a low-mood check-in annotated with its sentiment.
type ConcerningCase struct {
	StudentID        int64           `json:"student_id"`
	MoodScore        int             `json:"mood_score"`
	RecordedDate     string          `json:"recorded_date"`
	TextFeedback     string          `json:"text_feedback"`
	Sentiment        sentiment.Label `json:"sentiment"`
	StressIndicators []string        `json:"stress_indicators"`
}

// MentalHealthTrends is the population wellbeing answer.
type MentalHealthTrends struct {
	SentimentDistribution  map[sentiment.Label]int `json:"sentiment_distribution"`
	MoodDistribution       map[int]int             `json:"mood_distribution"`
	TimeTrends             []DailyTrend            `json:"time_trends"`
	ConcerningCases        []ConcerningCase        `json:"concerning_cases"`
	CommonStressIndicators []string                `json:"common_stress_indicators"`
	AveragePolarity        float64                 `json:"average_polarity"`
}

// AcademicPoint is one academic record in a student's trend history.
type AcademicPoint struct {
	Marks           float64 `json:"marks"`
	Attendance      float64 `json:"attendance"`
	AssignmentScore float64 `json:"assignment_score"`
	RecordedDate    string  `json:"recorded_date"`
}

// MentalPoint is one check-in in a student's trend history, annotated with
// its single-text sentiment.
type MentalPoint struct {
	Date       string          `json:"date"`
	MoodScore  int             `json:"mood_score"`
	StudyHours float64         `json:"study_hours"`
	SleepHours float64         `json:"sleep_hours"`
	Sentiment  sentiment.Label `json:"sentiment"`
	Polarity   float64         `json:"polarity"`
}

// StudentTrends is the per-student history plus its aggregate summary.
type StudentTrends struct {
	Academics    []AcademicPoint   `json:"academics"`
	MentalTrends []MentalPoint     `json:"mental_trends"`
	Summary      *features.Summary `json:"summary"`
}

// DepartmentStats is one row of the department summary.
type DepartmentStats struct {
	Department    string  `json:"department"`
	TotalStudents int     `json:"total_students"`
	AvgMarks      float64 `json:"avg_marks"`
	AvgAttendance float64 `json:"avg_attendance"`
	AvgMood       float64 `json:"avg_mood"`
	HighRiskCount int     `json:"high_risk_count"`
}

// Priority orders recommendations by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Recommendation is one rule-engine suggestion for a student. Generated on
// demand, never persisted.
type Recommendation struct {
	Type        string   `json:"type"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ActionItems []string `json:"action_items"`
}
