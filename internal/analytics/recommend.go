// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package analytics

import (
	"context"
	"fmt"

	"github.com/edulens/edulens/internal/features"
)

// GenerateRecommendations evaluates the fixed rule set against a student's
// aggregate summary. Rules fire independently and in a fixed order, so the
// output is deterministic for a given summary; a student can receive zero
// recommendations. Returns models.ErrNoData when the student has no records.
func (s *Service) GenerateRecommendations(ctx context.Context, studentID int64) ([]Recommendation, error) {
	trends, err := s.StudentTrends(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return RecommendationsFor(trends.Summary), nil
}

// RecommendationsFor applies the rule set to an aggregate summary.
func RecommendationsFor(summary *features.Summary) []Recommendation {
	recs := []Recommendation{}

	if summary.AvgMarks < 60 {
		recs = append(recs, Recommendation{
			Type:     "academic",
			Priority: PriorityHigh,
			Title:    "Improve Academic Performance",
			Description: fmt.Sprintf("Your average marks (%.1f%%) need improvement. Consider forming study groups and utilizing tutoring services.",
				summary.AvgMarks),
			ActionItems: []string{
				"Schedule regular tutoring sessions",
				"Join or form a study group",
				"Create a structured study schedule",
				"Seek help from professors during office hours",
			},
		})
	}

	if summary.AvgAttendance < 75 {
		recs = append(recs, Recommendation{
			Type:     "attendance",
			Priority: PriorityHigh,
			Title:    "Improve Attendance",
			Description: fmt.Sprintf("Your attendance (%.1f%%) is below the recommended threshold. Regular attendance is correlated with better academic performance.",
				summary.AvgAttendance),
			ActionItems: []string{
				"Set multiple alarms for morning classes",
				"Partner with a classmate for accountability",
				"Address any underlying issues affecting attendance",
			},
		})
	}

	switch {
	case summary.AvgMood <= 2:
		recs = append(recs, Recommendation{
			Type:        "mental_health",
			Priority:    PriorityUrgent,
			Title:       "Seek Mental Health Support",
			Description: "Your recent mood indicators suggest you may be experiencing significant stress. Please consider reaching out to campus counseling services.",
			ActionItems: []string{
				"Schedule an appointment with a campus counselor",
				"Talk to a trusted friend, family member, or mentor",
				"Practice stress-reduction techniques like meditation",
				"Helpline: Campus Wellness Center",
			},
		})
	case summary.AvgMood <= 3:
		recs = append(recs, Recommendation{
			Type:        "wellness",
			Priority:    PriorityMedium,
			Title:       "Focus on Well-being",
			Description: "Consider incorporating wellness activities into your routine to maintain a healthy balance.",
			ActionItems: []string{
				"Take regular breaks during study sessions",
				"Engage in physical activity",
				"Maintain social connections",
			},
		})
	}

	if summary.AvgSleepHours < 6 {
		recs = append(recs, Recommendation{
			Type:     "health",
			Priority: PriorityMedium,
			Title:    "Improve Sleep Habits",
			Description: fmt.Sprintf("You're averaging %.1f hours of sleep. Adults need 7-9 hours for optimal cognitive function.",
				summary.AvgSleepHours),
			ActionItems: []string{
				"Set a consistent bedtime",
				"Limit screen time before bed",
				"Create a relaxing pre-sleep routine",
				"Avoid caffeine in the evening",
			},
		})
	}

	if summary.AvgStudyHours < 4 {
		recs = append(recs, Recommendation{
			Type:     "study_habits",
			Priority: PriorityMedium,
			Title:    "Increase Study Time",
			Description: fmt.Sprintf("Consider increasing your study hours from %.1f hours to at least 4-6 hours daily.",
				summary.AvgStudyHours),
			ActionItems: []string{
				"Use the Pomodoro technique for focused study",
				"Identify and minimize distractions",
				"Create a dedicated study space",
			},
		})
	}

	if summary.AvgMarks >= 80 && summary.AvgMood >= 4 {
		recs = append(recs, Recommendation{
			Type:        "positive",
			Priority:    PriorityLow,
			Title:       "Keep Up the Great Work!",
			Description: "Your academic performance and well-being indicators are excellent. Continue maintaining your healthy habits.",
			ActionItems: []string{
				"Consider mentoring other students",
				"Explore advanced opportunities like research",
				"Maintain your work-life balance",
			},
		})
	}

	return recs
}
