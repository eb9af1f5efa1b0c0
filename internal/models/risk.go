// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package models

// RiskLevel is the ordinal classification of a student's combined
// academic/wellbeing status.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskLevels lists the classes in ordinal order. This is also the class
// index order used by the risk classifier.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// Index returns the ordinal class index (Low=0, Medium=1, High=2).
func (r RiskLevel) Index() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return -1
	}
}

// RiskLevelFromIndex maps a class index back to its label.
// Out-of-range indices map to RiskMedium.
func RiskLevelFromIndex(i int) RiskLevel {
	if i < 0 || i >= len(RiskLevels) {
		return RiskMedium
	}
	return RiskLevels[i]
}

// RiskLevelFor applies the ground-truth risk rule to a student's aggregate
// marks and mood. The same rule builds classifier training targets and
// buckets students in population analytics:
//
//	marks >= 75 and mood >= 4  -> Low
//	marks < 50  or  mood <= 2  -> High
//	otherwise                  -> Medium
func RiskLevelFor(avgMarks, avgMood float64) RiskLevel {
	switch {
	case avgMarks >= 75 && avgMood >= 4:
		return RiskLow
	case avgMarks < 50 || avgMood <= 2:
		return RiskHigh
	default:
		return RiskMedium
	}
}
