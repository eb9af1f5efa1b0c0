// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package features

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/edulens/edulens/internal/models"
)

// fakeSource is an in-memory RecordSource for tests.
type fakeSource struct {
	students  []models.Student
	academics map[int64][]models.AcademicRecord
	behaviors map[int64][]models.BehaviorRecord
}

func (f *fakeSource) Students(_ context.Context, department string) ([]models.Student, error) {
	if department == "" {
		return f.students, nil
	}
	out := []models.Student{}
	for _, s := range f.students {
		if s.Department == department {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSource) AcademicRecords(_ context.Context, id int64) ([]models.AcademicRecord, error) {
	return f.academics[id], nil
}

func (f *fakeSource) BehaviorRecords(_ context.Context, id int64) ([]models.BehaviorRecord, error) {
	return f.behaviors[id], nil
}

func (f *fakeSource) AllAcademicRecords(_ context.Context) ([]models.AcademicRecord, error) {
	out := []models.AcademicRecord{}
	for _, recs := range f.academics {
		out = append(out, recs...)
	}
	return out, nil
}

func (f *fakeSource) AllBehaviorRecords(_ context.Context) ([]models.BehaviorRecord, error) {
	out := []models.BehaviorRecord{}
	for _, recs := range f.behaviors {
		out = append(out, recs...)
	}
	return out, nil
}

func testSource() *fakeSource {
	now := time.Now()
	return &fakeSource{
		students: []models.Student{
			{ID: 1, Name: "Ada", Role: models.RoleStudent, Department: "CS"},
			{ID: 2, Name: "Ben", Role: models.RoleStudent, Department: "Math"},
			{ID: 3, Name: "Cara", Role: models.RoleStudent, Department: "CS"},
		},
		academics: map[int64][]models.AcademicRecord{
			1: {
				{StudentID: 1, Marks: 80, Attendance: 90, AssignmentScore: 85, RecordedAt: now},
				{StudentID: 1, Marks: 90, Attendance: 94, AssignmentScore: 95, RecordedAt: now},
			},
			2: {
				{StudentID: 2, Marks: 55, Attendance: 70, AssignmentScore: 60, RecordedAt: now},
			},
			// Student 3 has no academic records.
		},
		behaviors: map[int64][]models.BehaviorRecord{
			1: {
				{StudentID: 1, MoodScore: 4, SleepHours: 7, StudyHours: 5, RecordedAt: now},
				{StudentID: 1, MoodScore: 5, SleepHours: 8, StudyHours: 6, RecordedAt: now},
			},
			// Student 2 has no behavior records.
		},
	}
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize(t *testing.T) {
	agg := NewAggregator(testSource())

	summary, err := agg.Summarize(context.Background(), 1)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if !floatEq(summary.AvgMarks, 85) {
		t.Errorf("AvgMarks = %v, want 85", summary.AvgMarks)
	}
	if !floatEq(summary.AvgAttendance, 92) {
		t.Errorf("AvgAttendance = %v, want 92", summary.AvgAttendance)
	}
	if !floatEq(summary.AvgAssignment, 90) {
		t.Errorf("AvgAssignment = %v, want 90", summary.AvgAssignment)
	}
	if !floatEq(summary.AvgMood, 4.5) {
		t.Errorf("AvgMood = %v, want 4.5", summary.AvgMood)
	}
	if !floatEq(summary.AvgStudyHours, 5.5) {
		t.Errorf("AvgStudyHours = %v, want 5.5", summary.AvgStudyHours)
	}
	if !floatEq(summary.AvgSleepHours, 7.5) {
		t.Errorf("AvgSleepHours = %v, want 7.5", summary.AvgSleepHours)
	}
}

func TestSummarizeBehaviorDefaults(t *testing.T) {
	agg := NewAggregator(testSource())

	summary, err := agg.Summarize(context.Background(), 2)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if summary.AvgMood != DefaultMood {
		t.Errorf("AvgMood = %v, want default %v", summary.AvgMood, DefaultMood)
	}
	if summary.AvgStudyHours != DefaultStudyHours {
		t.Errorf("AvgStudyHours = %v, want default %v", summary.AvgStudyHours, DefaultStudyHours)
	}
	if summary.AvgSleepHours != DefaultSleepHours {
		t.Errorf("AvgSleepHours = %v, want default %v", summary.AvgSleepHours, DefaultSleepHours)
	}
}

func TestSummarizeNoAcademicRecords(t *testing.T) {
	agg := NewAggregator(testSource())

	_, err := agg.Summarize(context.Background(), 3)
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("got err %v, want ErrNoData", err)
	}
}

func TestFeaturesVectorOrder(t *testing.T) {
	agg := NewAggregator(testSource())

	vec, err := agg.Features(context.Background(), 1)
	if err != nil {
		t.Fatalf("Features: %v", err)
	}

	values := vec.Values()
	if len(values) != NumFeatures {
		t.Fatalf("len(values) = %d, want %d", len(values), NumFeatures)
	}

	// Order must match FeatureNames: attendance, assignment, internal
	// (marks), mood, study, sleep.
	want := []float64{92, 90, 85, 4.5, 5.5, 7.5}
	for i, v := range want {
		if !floatEq(values[i], v) {
			t.Errorf("values[%d] (%s) = %v, want %v", i, FeatureNames[i], values[i], v)
		}
	}
}

func TestSummarizeAllSkipsStudentsWithoutData(t *testing.T) {
	agg := NewAggregator(testSource())

	summaries, err := agg.SummarizeAll(context.Background(), "")
	if err != nil {
		t.Fatalf("SummarizeAll: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2 (student without academics skipped)", len(summaries))
	}
	if summaries[0].Name != "Ada" || summaries[1].Name != "Ben" {
		t.Errorf("summaries carry wrong metadata: %v, %v", summaries[0].Name, summaries[1].Name)
	}
}

func TestSummarizeAllDepartmentFilter(t *testing.T) {
	agg := NewAggregator(testSource())

	summaries, err := agg.SummarizeAll(context.Background(), "CS")
	if err != nil {
		t.Fatalf("SummarizeAll: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if summaries[0].StudentID != 1 {
		t.Errorf("StudentID = %d, want 1", summaries[0].StudentID)
	}
}

func TestTrainingSet(t *testing.T) {
	agg := NewAggregator(testSource())

	set, err := agg.TrainingSet(context.Background())
	if err != nil {
		t.Fatalf("TrainingSet: %v", err)
	}

	if len(set.Features) != 2 || len(set.Marks) != 2 || len(set.Risks) != 2 || len(set.StudentIDs) != 2 {
		t.Fatalf("training set not row-aligned: %d/%d/%d/%d",
			len(set.Features), len(set.Marks), len(set.Risks), len(set.StudentIDs))
	}
	for i, row := range set.Features {
		if len(row) != NumFeatures {
			t.Errorf("row %d has %d features, want %d", i, len(row), NumFeatures)
		}
	}

	// Student 1: marks 85, mood 4.5 -> Low. Student 2: marks 55, mood 3 -> Medium.
	if set.Risks[0] != models.RiskLow {
		t.Errorf("Risks[0] = %v, want Low", set.Risks[0])
	}
	if set.Risks[1] != models.RiskMedium {
		t.Errorf("Risks[1] = %v, want Medium", set.Risks[1])
	}
}

func TestTrainingSetNoData(t *testing.T) {
	agg := NewAggregator(&fakeSource{
		students:  []models.Student{{ID: 9, Role: models.RoleStudent}},
		academics: map[int64][]models.AcademicRecord{},
		behaviors: map[int64][]models.BehaviorRecord{},
	})

	_, err := agg.TrainingSet(context.Background())
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("got err %v, want ErrNoData", err)
	}
}
