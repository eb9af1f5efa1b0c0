// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

// Package analytics answers population-level and per-student dashboard
// questions over the aggregated record data: performance and risk
// distributions, correlation analyses, wellbeing trends and the rule-based
// recommendation engine.
//
// Every answer is computed on demand from the record source; nothing in this
// package is persisted. Reads that find no matching records fail with
// models.ErrNoData so callers can distinguish an empty population from a
// degenerate result.
package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/edulens/edulens/internal/features"
	"github.com/edulens/edulens/internal/logging"
	"github.com/edulens/edulens/internal/models"
	"github.com/edulens/edulens/internal/sentiment"
)

// maxScatterPoints caps the plotting sample returned to dashboards.
const maxScatterPoints = 100

// Service computes analytics over the record source.
type Service struct {
	src      features.RecordSource
	agg      *features.Aggregator
	analyzer *sentiment.Analyzer
	logger   zerolog.Logger
}

// NewService creates an analytics service over the given collaborators.
func NewService(src features.RecordSource, agg *features.Aggregator, analyzer *sentiment.Analyzer) *Service {
	return &Service{
		src:      src,
		agg:      agg,
		analyzer: analyzer,
		logger:   logging.With().Str("component", "analytics").Logger(),
	}
}

// ClassAnalytics summarizes the student population, optionally filtered by
// department ("" = all). Returns models.ErrNoData when no student in scope
// has academic records.
func (s *Service) ClassAnalytics(ctx context.Context, department string) (*ClassAnalytics, error) {
	summaries, err := s.agg.SummarizeAll(ctx, department)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("class analytics: %w", models.ErrNoData)
	}

	out := &ClassAnalytics{
		PerformanceDistribution: make(map[PerformanceCategory]int),
		RiskDistribution:        make(map[models.RiskLevel]int),
		AtRiskStudents:          []AtRiskStudent{},
	}

	marks := make([]float64, 0, len(summaries))
	var attendanceSum, moodSum float64
	for _, sum := range summaries {
		out.PerformanceDistribution[CategorizePerformance(sum.AvgMarks)]++

		risk := sum.RiskLevel()
		out.RiskDistribution[risk]++
		if risk == models.RiskHigh {
			out.AtRiskStudents = append(out.AtRiskStudents, AtRiskStudent{
				StudentID:  sum.StudentID,
				Name:       sum.Name,
				Department: sum.Department,
				AvgMarks:   sum.AvgMarks,
				AvgMood:    sum.AvgMood,
			})
		}

		marks = append(marks, sum.AvgMarks)
		attendanceSum += sum.AvgAttendance
		moodSum += sum.AvgMood
	}

	n := float64(len(summaries))
	out.Statistics = ClassStatistics{
		TotalStudents: len(summaries),
		AvgMarks:      mean(marks),
		AvgAttendance: attendanceSum / n,
		AvgMood:       moodSum / n,
		MarksStd:      stddev(marks),
	}

	return out, nil
}

// AttendanceMarksCorrelation correlates attendance with marks at the
// per-record level and buckets mean marks by attendance range. Returns
// models.ErrNoData when no academic records exist.
func (s *Service) AttendanceMarksCorrelation(ctx context.Context) (*AttendanceCorrelation, error) {
	records, err := s.src.AllAcademicRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch academic records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("attendance correlation: %w", models.ErrNoData)
	}

	attendance := make([]float64, len(records))
	marks := make([]float64, len(records))
	rangeSums := make(map[string]float64)
	rangeCounts := make(map[string]int)
	points := make([]ScatterPoint, 0, maxScatterPoints)

	for i, rec := range records {
		attendance[i] = rec.Attendance
		marks[i] = rec.Marks

		bucket := attendanceRange(rec.Attendance)
		rangeSums[bucket] += rec.Marks
		rangeCounts[bucket]++

		if len(points) < maxScatterPoints {
			points = append(points, ScatterPoint{
				Attendance: rec.Attendance,
				Marks:      rec.Marks,
			})
		}
	}

	rangeAvg := make(map[string]float64, len(rangeCounts))
	for bucket, count := range rangeCounts {
		rangeAvg[bucket] = rangeSums[bucket] / float64(count)
	}

	r := pearson(attendance, marks)
	return &AttendanceCorrelation{
		CorrelationCoefficient: round3(r),
		Interpretation:         InterpretCorrelation(r),
		RangeWiseAverage:       rangeAvg,
		DataPoints:             points,
	}, nil
}

// attendanceRange buckets an attendance percentage for range reporting.
func attendanceRange(att float64) string {
	switch {
	case att >= 90:
		return "90-100%"
	case att >= 75:
		return "75-89%"
	case att >= 60:
		return "60-74%"
	default:
		return "<60%"
	}
}

// StressMarksCorrelation correlates the wellbeing indicators with academic
// performance at the per-student aggregate level. Returns models.ErrNoData
// when no student has academic records.
func (s *Service) StressMarksCorrelation(ctx context.Context) (*StressCorrelation, error) {
	summaries, err := s.agg.SummarizeAll(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("stress correlation: %w", models.ErrNoData)
	}

	mood := make([]float64, len(summaries))
	sleep := make([]float64, len(summaries))
	study := make([]float64, len(summaries))
	marks := make([]float64, len(summaries))
	attendance := make([]float64, len(summaries))
	for i, sum := range summaries {
		mood[i] = sum.AvgMood
		sleep[i] = sum.AvgSleepHours
		study[i] = sum.AvgStudyHours
		marks[i] = sum.AvgMarks
		attendance[i] = sum.AvgAttendance
	}

	correlations := map[string]float64{
		"mood_vs_marks":      round3(pearson(mood, marks)),
		"sleep_vs_marks":     round3(pearson(sleep, marks)),
		"study_vs_marks":     round3(pearson(study, marks)),
		"mood_vs_attendance": round3(pearson(mood, attendance)),
	}

	interpretations := make(map[string]string, len(correlations))
	for key, val := range correlations {
		interpretations[key] = InterpretCorrelation(val)
	}

	return &StressCorrelation{
		Correlations:    correlations,
		Interpretations: interpretations,
		Insights:        correlationInsights(correlations),
	}, nil
}

// correlationInsights derives human-readable insights from the stress
// correlation map. Always returns at least one entry.
func correlationInsights(correlations map[string]float64) []string {
	insights := []string{}

	if correlations["mood_vs_marks"] > 0.3 {
		insights = append(insights, "Students with higher mood scores tend to perform better academically. Mental health support could improve academic outcomes.")
	}
	if correlations["sleep_vs_marks"] > 0.3 {
		insights = append(insights, "Better sleep habits are associated with higher academic performance. Sleep hygiene should be promoted.")
	}
	if correlations["study_vs_marks"] > 0.5 {
		insights = append(insights, "Study hours show strong correlation with marks. Encouraging productive study habits is beneficial.")
	}
	if correlations["mood_vs_attendance"] > 0.4 {
		insights = append(insights, "Students with better mental health show higher attendance. Early mental health intervention could reduce absenteeism.")
	}

	if len(insights) == 0 {
		insights = append(insights, "Continue monitoring patterns as more data becomes available for deeper insights.")
	}
	return insights
}

// MentalHealthTrends analyzes wellbeing check-ins across the population,
// optionally filtered by department. Returns models.ErrNoData when no
// behavior records are in scope.
func (s *Service) MentalHealthTrends(ctx context.Context, department string) (*MentalHealthTrends, error) {
	students, err := s.src.Students(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	inScope := make(map[int64]struct{}, len(students))
	for i := range students {
		inScope[students[i].ID] = struct{}{}
	}

	all, err := s.src.AllBehaviorRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch behavior records: %w", err)
	}

	records := make([]models.BehaviorRecord, 0, len(all))
	for i := range all {
		if _, ok := inScope[all[i].StudentID]; ok {
			records = append(records, all[i])
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("mental health trends: %w", models.ErrNoData)
	}

	texts := make([]string, len(records))
	for i := range records {
		texts[i] = records[i].TextFeedback
	}
	batch := s.analyzer.AnalyzeBatch(texts)

	out := &MentalHealthTrends{
		SentimentDistribution:  batch.Distribution,
		MoodDistribution:       make(map[int]int),
		ConcerningCases:        []ConcerningCase{},
		CommonStressIndicators: batch.CommonStressIndicators,
		AveragePolarity:        batch.AveragePolarity,
	}

	type dailyAccum struct {
		mood, study, sleep float64
		n                  int
	}
	byDate := make(map[string]*dailyAccum)

	for i := range records {
		rec := &records[i]
		out.MoodDistribution[rec.MoodScore]++

		date := rec.RecordedAt.Format("2006-01-02")
		acc := byDate[date]
		if acc == nil {
			acc = &dailyAccum{}
			byDate[date] = acc
		}
		acc.mood += float64(rec.MoodScore)
		acc.study += rec.StudyHours
		acc.sleep += rec.SleepHours
		acc.n++

		if rec.MoodScore <= 2 {
			res := s.analyzer.Analyze(rec.TextFeedback)
			out.ConcerningCases = append(out.ConcerningCases, ConcerningCase{
				StudentID:        rec.StudentID,
				MoodScore:        rec.MoodScore,
				RecordedDate:     date,
				TextFeedback:     rec.TextFeedback,
				Sentiment:        res.Sentiment,
				StressIndicators: res.StressIndicators,
			})
		}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out.TimeTrends = make([]DailyTrend, 0, len(dates))
	for _, date := range dates {
		acc := byDate[date]
		n := float64(acc.n)
		out.TimeTrends = append(out.TimeTrends, DailyTrend{
			Date:       date,
			MoodScore:  acc.mood / n,
			StudyHours: acc.study / n,
			SleepHours: acc.sleep / n,
		})
	}

	return out, nil
}

// StudentTrends returns one student's academic and wellbeing history plus the
// aggregate summary. A student with academic records but no check-ins gets
// the behavioral defaults in the summary; models.ErrNoData is returned only
// when the student has no records of either kind.
func (s *Service) StudentTrends(ctx context.Context, studentID int64) (*StudentTrends, error) {
	academics, err := s.src.AcademicRecords(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("fetch academic records for student %d: %w", studentID, err)
	}
	behaviors, err := s.src.BehaviorRecords(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("fetch behavior records for student %d: %w", studentID, err)
	}
	if len(academics) == 0 && len(behaviors) == 0 {
		return nil, fmt.Errorf("student %d trends: %w", studentID, models.ErrNoData)
	}

	out := &StudentTrends{
		Academics:    make([]AcademicPoint, 0, len(academics)),
		MentalTrends: make([]MentalPoint, 0, len(behaviors)),
	}

	summary := &features.Summary{StudentID: studentID}

	var marks, attendance, assignment float64
	for i := range academics {
		rec := &academics[i]
		out.Academics = append(out.Academics, AcademicPoint{
			Marks:           rec.Marks,
			Attendance:      rec.Attendance,
			AssignmentScore: rec.AssignmentScore,
			RecordedDate:    rec.RecordedAt.Format("2006-01-02"),
		})
		marks += rec.Marks
		attendance += rec.Attendance
		assignment += rec.AssignmentScore
	}
	if len(academics) > 0 {
		n := float64(len(academics))
		summary.AvgMarks = marks / n
		summary.AvgAttendance = attendance / n
		summary.AvgAssignment = assignment / n
	}

	var mood, study, sleep float64
	for i := range behaviors {
		rec := &behaviors[i]
		res := s.analyzer.Analyze(rec.TextFeedback)
		out.MentalTrends = append(out.MentalTrends, MentalPoint{
			Date:       rec.RecordedAt.Format("2006-01-02"),
			MoodScore:  rec.MoodScore,
			StudyHours: rec.StudyHours,
			SleepHours: rec.SleepHours,
			Sentiment:  res.Sentiment,
			Polarity:   res.Polarity,
		})
		mood += float64(rec.MoodScore)
		study += rec.StudyHours
		sleep += rec.SleepHours
	}
	if len(behaviors) > 0 {
		m := float64(len(behaviors))
		summary.AvgMood = mood / m
		summary.AvgStudyHours = study / m
		summary.AvgSleepHours = sleep / m
	} else {
		summary.AvgMood = features.DefaultMood
		summary.AvgStudyHours = features.DefaultStudyHours
		summary.AvgSleepHours = features.DefaultSleepHours
	}

	out.Summary = summary
	return out, nil
}

// DepartmentSummary aggregates population statistics per department, sorted
// by department name. Students without academic records are excluded, same
// as everywhere else in the aggregation pipeline.
func (s *Service) DepartmentSummary(ctx context.Context) ([]DepartmentStats, error) {
	summaries, err := s.agg.SummarizeAll(ctx, "")
	if err != nil {
		return nil, err
	}

	type deptAccum struct {
		marks, attendance, mood float64
		students, highRisk      int
	}
	byDept := make(map[string]*deptAccum)
	for _, sum := range summaries {
		acc := byDept[sum.Department]
		if acc == nil {
			acc = &deptAccum{}
			byDept[sum.Department] = acc
		}
		acc.marks += sum.AvgMarks
		acc.attendance += sum.AvgAttendance
		acc.mood += sum.AvgMood
		acc.students++
		if sum.RiskLevel() == models.RiskHigh {
			acc.highRisk++
		}
	}

	names := make([]string, 0, len(byDept))
	for name := range byDept {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]DepartmentStats, 0, len(names))
	for _, name := range names {
		acc := byDept[name]
		n := float64(acc.students)
		out = append(out, DepartmentStats{
			Department:    name,
			TotalStudents: acc.students,
			AvgMarks:      acc.marks / n,
			AvgAttendance: acc.attendance / n,
			AvgMood:       acc.mood / n,
			HighRiskCount: acc.highRisk,
		})
	}

	return out, nil
}
