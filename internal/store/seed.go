// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package store

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/edulens/edulens/internal/models"
)

// seedProfile drives one demo student's record generation.
type seedProfile struct {
	name       string
	department string

	// Means for the generated records; per-record jitter is applied on top.
	marks, attendance, assignment float64
	mood                          int
	sleep, study                  float64
	feedback                      string
}

// demoRoster spans the performance/risk spectrum so every analytics bucket
// and both model classes have data out of the box.
var demoRoster = []seedProfile{
	{"Aisha Khan", "Computer Science", 88, 94, 90, 5, 7.5, 6, "I feel confident and motivated, the project work is great"},
	{"Ben Carter", "Computer Science", 72, 85, 74, 4, 7, 4.5, "Happy with my progress so far, enjoying the coursework"},
	{"Chloe Diaz", "Computer Science", 55, 71, 58, 3, 6, 3.5, "Some topics are difficult but I am keeping up"},
	{"Dev Patel", "Mathematics", 91, 96, 88, 4, 8, 5.5, "Proud of my results, feeling accomplished this term"},
	{"Elena Rossi", "Mathematics", 64, 78, 66, 3, 6.5, 4, "It is fine, nothing special to report"},
	{"Farid Osman", "Mathematics", 42, 58, 45, 2, 5, 2.5, "I am stressed and worried, falling behind in every subject"},
	{"Grace Lee", "Physics", 79, 88, 81, 4, 7, 5, "Excited about the lab sessions, learning a lot"},
	{"Hugo Meyer", "Physics", 48, 64, 51, 2, 5.5, 3, "Exhausted and overwhelmed, the pressure is too much"},
	{"Iris Novak", "Physics", 67, 80, 70, 3, 6.5, 4.5, "Managing okay, some weeks are harder than others"},
	{"Jonas Weber", "Computer Science", 35, 52, 40, 1, 4.5, 2, "I feel hopeless and want to quit, everything is terrible"},
}

// SeedDemoData inserts the demo roster when the store is empty. Each student
// gets four weekly academic and behavior records with deterministic jitter,
// so repeated startups against a fresh database produce identical data.
func (s *Store) SeedDemoData(ctx context.Context) error {
	count, err := s.StudentCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Debug().Int("students", count).Msg("store not empty, skipping demo seed")
		return nil
	}

	rng := rand.New(rand.NewSource(42))
	base := time.Now().UTC().AddDate(0, 0, -28).Truncate(24 * time.Hour)

	for i, p := range demoRoster {
		student := models.Student{
			Name:       p.name,
			Email:      fmt.Sprintf("student%02d@edulens.test", i+1),
			Role:       models.RoleStudent,
			Department: p.department,
		}
		if err := s.CreateStudent(ctx, &student); err != nil {
			return fmt.Errorf("seed student %s: %w", p.name, err)
		}

		for week := 0; week < 4; week++ {
			recordedAt := base.AddDate(0, 0, week*7)

			academic := models.AcademicRecord{
				StudentID:       student.ID,
				Marks:           clamp100(p.marks + rng.Float64()*8 - 4),
				Attendance:      clamp100(p.attendance + rng.Float64()*6 - 3),
				AssignmentScore: clamp100(p.assignment + rng.Float64()*8 - 4),
				RecordedAt:      recordedAt,
			}
			if err := s.AddAcademicRecord(ctx, &academic); err != nil {
				return fmt.Errorf("seed academic record for %s: %w", p.name, err)
			}

			behavior := models.BehaviorRecord{
				StudentID:    student.ID,
				MoodScore:    p.mood,
				SleepHours:   p.sleep + rng.Float64() - 0.5,
				StudyHours:   p.study + rng.Float64() - 0.5,
				TextFeedback: p.feedback,
				RecordedAt:   recordedAt,
			}
			if err := s.AddBehaviorRecord(ctx, &behavior); err != nil {
				return fmt.Errorf("seed behavior record for %s: %w", p.name, err)
			}
		}
	}

	s.logger.Info().Int("students", len(demoRoster)).Msg("demo roster seeded")
	return nil
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
