// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/edulens/edulens/internal/config"
	"github.com/edulens/edulens/internal/models"
)

// newTestStore opens a file-backed store in a temp dir. A file path rather
// than :memory: keeps all pool connections on the same database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(&config.DatabaseConfig{
		Path:      filepath.Join(t.TempDir(), "test.duckdb"),
		MaxMemory: "256MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestCreateAndFetchStudent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	student := models.Student{Name: "Aisha Khan", Email: "aisha@example.edu", Department: "Computer Science"}
	if err := s.CreateStudent(ctx, &student); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	if student.ID == 0 {
		t.Fatal("student id not assigned")
	}
	if student.Role != models.RoleStudent {
		t.Errorf("role = %q, want default student", student.Role)
	}

	got, err := s.Student(ctx, student.ID)
	if err != nil {
		t.Fatalf("Student: %v", err)
	}
	if got.Name != student.Name || got.Email != student.Email || got.Department != student.Department {
		t.Errorf("fetched %+v, want %+v", got, student)
	}
}

func TestStudentMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Student(context.Background(), 12345)
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("got err %v, want ErrNoData", err)
	}
}

func TestStudentsDepartmentFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, st := range []models.Student{
		{Name: "A", Email: "a@x.edu", Department: "Physics"},
		{Name: "B", Email: "b@x.edu", Department: "Mathematics"},
		{Name: "C", Email: "c@x.edu", Department: "Physics"},
	} {
		st := st
		if err := s.CreateStudent(ctx, &st); err != nil {
			t.Fatalf("CreateStudent: %v", err)
		}
	}

	all, err := s.Students(ctx, "")
	if err != nil {
		t.Fatalf("Students: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("listed %d students, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID < all[i-1].ID {
			t.Errorf("students not ordered by id: %v", all)
		}
	}

	physics, err := s.Students(ctx, "Physics")
	if err != nil {
		t.Fatalf("Students(Physics): %v", err)
	}
	if len(physics) != 2 {
		t.Errorf("physics filter listed %d students, want 2", len(physics))
	}
}

func TestAcademicRecordRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	student := models.Student{Name: "A", Email: "a@x.edu"}
	if err := s.CreateStudent(ctx, &student); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	// Insert out of order; reads come back oldest first.
	later := models.AcademicRecord{
		StudentID: student.ID, Marks: 80, Attendance: 90, AssignmentScore: 85,
		RecordedAt: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
	}
	earlier := models.AcademicRecord{
		StudentID: student.ID, Marks: 70, Attendance: 88, AssignmentScore: 75,
		RecordedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, rec := range []*models.AcademicRecord{&later, &earlier} {
		if err := s.AddAcademicRecord(ctx, rec); err != nil {
			t.Fatalf("AddAcademicRecord: %v", err)
		}
	}

	recs, err := s.AcademicRecords(ctx, student.ID)
	if err != nil {
		t.Fatalf("AcademicRecords: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Marks != 70 || recs[1].Marks != 80 {
		t.Errorf("records not ordered oldest first: %v", recs)
	}
}

func TestAddAcademicRecordValidates(t *testing.T) {
	s := newTestStore(t)

	err := s.AddAcademicRecord(context.Background(), &models.AcademicRecord{
		StudentID: 1, Marks: 150, Attendance: 90, AssignmentScore: 80,
	})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("got err %v, want ErrInvalidInput", err)
	}
}

func TestAddAcademicRecordDefaultsTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	student := models.Student{Name: "A", Email: "a@x.edu"}
	if err := s.CreateStudent(ctx, &student); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	rec := models.AcademicRecord{StudentID: student.ID, Marks: 60, Attendance: 70, AssignmentScore: 65}
	if err := s.AddAcademicRecord(ctx, &rec); err != nil {
		t.Fatalf("AddAcademicRecord: %v", err)
	}
	if rec.RecordedAt.IsZero() {
		t.Error("RecordedAt not defaulted")
	}
}

func TestBehaviorRecordRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	student := models.Student{Name: "A", Email: "a@x.edu"}
	if err := s.CreateStudent(ctx, &student); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	rec := models.BehaviorRecord{
		StudentID: student.ID, MoodScore: 4, SleepHours: 7.5, StudyHours: 4,
		TextFeedback: "feeling good about this week",
		RecordedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.AddBehaviorRecord(ctx, &rec); err != nil {
		t.Fatalf("AddBehaviorRecord: %v", err)
	}

	recs, err := s.BehaviorRecords(ctx, student.ID)
	if err != nil {
		t.Fatalf("BehaviorRecords: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].MoodScore != 4 || recs[0].TextFeedback != rec.TextFeedback {
		t.Errorf("got %+v, want %+v", recs[0], rec)
	}

	if err := s.AddBehaviorRecord(ctx, &models.BehaviorRecord{
		StudentID: student.ID, MoodScore: 0, SleepHours: 7, StudyHours: 4,
	}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("mood 0: got err %v, want ErrInvalidInput", err)
	}
}

func TestAllRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		student := models.Student{Name: "S", Email: string(rune('a'+i)) + "@x.edu"}
		if err := s.CreateStudent(ctx, &student); err != nil {
			t.Fatalf("CreateStudent: %v", err)
		}
		if err := s.AddAcademicRecord(ctx, &models.AcademicRecord{
			StudentID: student.ID, Marks: 60, Attendance: 80, AssignmentScore: 70,
		}); err != nil {
			t.Fatalf("AddAcademicRecord: %v", err)
		}
		if err := s.AddBehaviorRecord(ctx, &models.BehaviorRecord{
			StudentID: student.ID, MoodScore: 3, SleepHours: 6, StudyHours: 4,
		}); err != nil {
			t.Fatalf("AddBehaviorRecord: %v", err)
		}
	}

	academics, err := s.AllAcademicRecords(ctx)
	if err != nil {
		t.Fatalf("AllAcademicRecords: %v", err)
	}
	behaviors, err := s.AllBehaviorRecords(ctx)
	if err != nil {
		t.Fatalf("AllBehaviorRecords: %v", err)
	}
	if len(academics) != 2 || len(behaviors) != 2 {
		t.Errorf("got %d academic and %d behavior records, want 2/2", len(academics), len(behaviors))
	}
}

func TestSeedDemoData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SeedDemoData(ctx); err != nil {
		t.Fatalf("SeedDemoData: %v", err)
	}

	count, err := s.StudentCount(ctx)
	if err != nil {
		t.Fatalf("StudentCount: %v", err)
	}
	if count != len(demoRoster) {
		t.Errorf("seeded %d students, want %d", count, len(demoRoster))
	}

	recs, err := s.AllAcademicRecords(ctx)
	if err != nil {
		t.Fatalf("AllAcademicRecords: %v", err)
	}
	if len(recs) != len(demoRoster)*4 {
		t.Errorf("seeded %d academic records, want %d", len(recs), len(demoRoster)*4)
	}

	// Seeding again is a no-op on a non-empty store.
	if err := s.SeedDemoData(ctx); err != nil {
		t.Fatalf("second SeedDemoData: %v", err)
	}
	count, err = s.StudentCount(ctx)
	if err != nil {
		t.Fatalf("StudentCount: %v", err)
	}
	if count != len(demoRoster) {
		t.Errorf("re-seed changed count to %d", count)
	}
}
