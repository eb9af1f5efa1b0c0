// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package ml

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/edulens/edulens/internal/features"
	"github.com/edulens/edulens/internal/models"
	"github.com/edulens/edulens/internal/sentiment"
)

// fakeSource is an in-memory features.RecordSource spanning all three risk
// classes, four students each.
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

func trainingSource() *fakeSource {
	type profile struct {
		marks, attendance, assignment float64
		mood                          int
		sleep, study                  float64
	}
	profiles := []profile{
		// Low risk cluster
		{88, 94, 90, 5, 7.5, 6},
		{84, 91, 85, 4, 7, 5.5},
		{92, 96, 93, 5, 8, 6},
		{79, 89, 82, 4, 7.5, 5},
		// Medium risk cluster
		{62, 79, 65, 3, 6.5, 4},
		{57, 74, 60, 3, 6, 4},
		{68, 82, 70, 3, 6.5, 4.5},
		{55, 72, 58, 3, 6, 3.5},
		// High risk cluster
		{35, 52, 40, 1, 5, 2},
		{42, 58, 45, 2, 5, 2.5},
		{30, 48, 35, 1, 4.5, 2},
		{45, 60, 48, 2, 5.5, 3},
	}

	src := &fakeSource{
		academics: make(map[int64][]models.AcademicRecord),
		behaviors: make(map[int64][]models.BehaviorRecord),
	}
	now := time.Now()
	for i, p := range profiles {
		id := int64(i + 1)
		src.students = append(src.students, models.Student{ID: id, Role: models.RoleStudent})
		src.academics[id] = []models.AcademicRecord{{
			StudentID: id, Marks: p.marks, Attendance: p.attendance,
			AssignmentScore: p.assignment, RecordedAt: now,
		}}
		src.behaviors[id] = []models.BehaviorRecord{{
			StudentID: id, MoodScore: p.mood, SleepHours: p.sleep,
			StudyHours: p.study, RecordedAt: now,
		}}
	}
	return src
}

func newTestService(t *testing.T, src features.RecordSource) *Service {
	t.Helper()
	artifacts, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	return NewService(features.NewAggregator(src), sentiment.NewAnalyzer(), artifacts, ServiceConfig{
		Regressor:  RegressorConfig{NumTrees: 20, MaxDepth: 6, Seed: 42},
		Classifier: ClassifierConfig{NumTrees: 20, MaxDepth: 6, Seed: 42},
	})
}

func TestTrainModels(t *testing.T) {
	svc := newTestService(t, trainingSource())

	report, err := svc.TrainModels(context.Background())
	if err != nil {
		t.Fatalf("TrainModels: %v", err)
	}
	if report.Samples != 12 {
		t.Errorf("Samples = %d, want 12", report.Samples)
	}
	if report.Regressor == nil || report.Classifier == nil {
		t.Fatal("report missing model metrics")
	}
	if svc.TrainingRuns() != 1 {
		t.Errorf("TrainingRuns = %d, want 1", svc.TrainingRuns())
	}
	if svc.LastReport() != report {
		t.Error("LastReport does not return the latest report")
	}
}

func TestTrainModelsNoData(t *testing.T) {
	svc := newTestService(t, &fakeSource{
		students:  []models.Student{{ID: 1, Role: models.RoleStudent}},
		academics: map[int64][]models.AcademicRecord{},
		behaviors: map[int64][]models.BehaviorRecord{},
	})

	_, err := svc.TrainModels(context.Background())
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("got err %v, want ErrNoData", err)
	}
	if svc.TrainingRuns() != 0 {
		t.Errorf("TrainingRuns = %d after failed pass, want 0", svc.TrainingRuns())
	}
}

func TestPredictPerformanceLazyTrainsOnce(t *testing.T) {
	svc := newTestService(t, trainingSource())

	first, err := svc.PredictPerformance(context.Background(), 1)
	if err != nil {
		t.Fatalf("PredictPerformance: %v", err)
	}
	if first.PredictedScore < 0 || first.PredictedScore > 100 {
		t.Errorf("score %v out of [0, 100]", first.PredictedScore)
	}
	if first.Interpretation == "" {
		t.Error("interpretation empty")
	}

	// Further predictions reuse the trained models.
	if _, err := svc.PredictPerformance(context.Background(), 2); err != nil {
		t.Fatalf("second prediction: %v", err)
	}
	if _, err := svc.ClassifyRisk(context.Background(), 3); err != nil {
		t.Fatalf("classification: %v", err)
	}

	if svc.TrainingRuns() != 1 {
		t.Errorf("TrainingRuns = %d, want exactly 1 lazy pass", svc.TrainingRuns())
	}
}

func TestLazyTrainSharedAcrossConcurrentPredictions(t *testing.T) {
	svc := newTestService(t, trainingSource())

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		id := int64(i%12 + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.PredictPerformance(context.Background(), id); err != nil {
				errs <- err
			}
			if _, _, err := predictRisk(svc, id); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent prediction: %v", err)
	}

	if svc.TrainingRuns() != 1 {
		t.Errorf("TrainingRuns = %d, want exactly 1", svc.TrainingRuns())
	}
}

func predictRisk(svc *Service, id int64) (models.RiskLevel, map[models.RiskLevel]float64, error) {
	pred, err := svc.ClassifyRisk(context.Background(), id)
	if err != nil {
		return "", nil, err
	}
	return pred.RiskLevel, pred.Probabilities, nil
}

func TestClassifyRiskInterpretation(t *testing.T) {
	svc := newTestService(t, trainingSource())

	// Student 11 sits deep in the high-risk cluster.
	pred, err := svc.ClassifyRisk(context.Background(), 11)
	if err != nil {
		t.Fatalf("ClassifyRisk: %v", err)
	}
	if pred.RiskLevel != models.RiskHigh {
		t.Errorf("RiskLevel = %v, want High", pred.RiskLevel)
	}
	if !strings.Contains(pred.Interpretation, "High risk detected") {
		t.Errorf("interpretation = %q", pred.Interpretation)
	}
	if len(pred.FeatureImportance) != features.NumFeatures {
		t.Errorf("feature importance has %d entries, want %d",
			len(pred.FeatureImportance), features.NumFeatures)
	}
}

func TestPredictPerformanceUnknownStudent(t *testing.T) {
	svc := newTestService(t, trainingSource())

	_, err := svc.PredictPerformance(context.Background(), 999)
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("got err %v, want ErrNoData", err)
	}
}

func TestBatchPredictSkipsUnknownStudents(t *testing.T) {
	svc := newTestService(t, trainingSource())

	result, err := svc.BatchPredict(context.Background(), []int64{1, 999, 5})
	if err != nil {
		t.Fatalf("BatchPredict: %v", err)
	}
	if result.TotalProcessed != 2 {
		t.Errorf("TotalProcessed = %d, want 2", result.TotalProcessed)
	}
	if len(result.Predictions) != 2 {
		t.Fatalf("predictions = %d, want 2", len(result.Predictions))
	}
	if result.Predictions[0].StudentID != 1 || result.Predictions[1].StudentID != 5 {
		t.Errorf("prediction ids = %d, %d; want 1, 5",
			result.Predictions[0].StudentID, result.Predictions[1].StudentID)
	}
}

func TestAnalyzeSentimentAttachesWellbeingScore(t *testing.T) {
	svc := newTestService(t, trainingSource())

	report := svc.AnalyzeSentiment("I am stressed and overwhelmed, feeling hopeless")
	if report.Sentiment != sentiment.Negative {
		t.Errorf("sentiment = %v, want Negative", report.Sentiment)
	}
	if report.MentalHealthScore < 1 || report.MentalHealthScore > 10 {
		t.Errorf("score %d out of [1, 10]", report.MentalHealthScore)
	}
	if report.MentalHealthLabel != sentiment.MentalHealthLabel(report.MentalHealthScore) {
		t.Errorf("label %q inconsistent with score %d", report.MentalHealthLabel, report.MentalHealthScore)
	}
}

func TestModelInfoLifecycle(t *testing.T) {
	svc := newTestService(t, trainingSource())

	before := svc.Info()
	if before.Performance.IsTrained || before.Risk.IsTrained {
		t.Error("models report trained before any pass")
	}
	if before.Performance.ModelType != "RandomForestRegressor" ||
		before.Risk.ModelType != "RandomForestClassifier" {
		t.Errorf("model types = %q / %q", before.Performance.ModelType, before.Risk.ModelType)
	}

	if _, err := svc.TrainModels(context.Background()); err != nil {
		t.Fatalf("TrainModels: %v", err)
	}

	after := svc.Info()
	if !after.Performance.IsTrained || !after.Risk.IsTrained {
		t.Error("models report untrained after training")
	}
	if after.LastReport == nil {
		t.Error("LastReport missing from info")
	}
}

func TestServicePersistsAndReloadsModels(t *testing.T) {
	src := trainingSource()
	dir := t.TempDir()

	artifacts, err := NewArtifactStore(dir)
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	cfg := ServiceConfig{
		Regressor:  RegressorConfig{NumTrees: 20, MaxDepth: 6, Seed: 42},
		Classifier: ClassifierConfig{NumTrees: 20, MaxDepth: 6, Seed: 42},
	}

	first := NewService(features.NewAggregator(src), sentiment.NewAnalyzer(), artifacts, cfg)
	if _, err := first.TrainModels(context.Background()); err != nil {
		t.Fatalf("TrainModels: %v", err)
	}

	// A fresh service over the same artifact directory starts trained.
	second := NewService(features.NewAggregator(src), sentiment.NewAnalyzer(), artifacts, cfg)
	if err := second.LoadModels(); err != nil {
		t.Fatalf("LoadModels: %v", err)
	}

	info := second.Info()
	if !info.Performance.IsTrained || !info.Risk.IsTrained {
		t.Error("restored service not trained")
	}
	if second.TrainingRuns() != 0 {
		t.Errorf("TrainingRuns = %d on restored service, want 0", second.TrainingRuns())
	}

	if _, err := second.PredictPerformance(context.Background(), 1); err != nil {
		t.Fatalf("prediction on restored service: %v", err)
	}
	if second.TrainingRuns() != 0 {
		t.Errorf("restored service retrained lazily: runs = %d", second.TrainingRuns())
	}
}
