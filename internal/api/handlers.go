// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edulens/edulens/internal/analytics"
	"github.com/edulens/edulens/internal/features"
	"github.com/edulens/edulens/internal/ml"
	"github.com/edulens/edulens/internal/models"
)

// RecordStore is the persistence surface the API needs: the read side shared
// with the aggregation pipeline plus the ingest write paths.
type RecordStore interface {
	features.RecordSource

	Student(ctx context.Context, id int64) (*models.Student, error)
	CreateStudent(ctx context.Context, student *models.Student) error
	AddAcademicRecord(ctx context.Context, rec *models.AcademicRecord) error
	AddBehaviorRecord(ctx context.Context, rec *models.BehaviorRecord) error
}

// Handler holds the service collaborators behind the HTTP surface.
type Handler struct {
	store     RecordStore
	ml        *ml.Service
	analytics *analytics.Service
}

// NewHandler creates the API handler set.
func NewHandler(store RecordStore, mlSvc *ml.Service, analyticsSvc *analytics.Service) *Handler {
	return &Handler{
		store:     store,
		ml:        mlSvc,
		analytics: analyticsSvc,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateStudent registers a student.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var student models.Student
	if err := decodeJSON(r, &student); err != nil {
		writeError(w, r, err)
		return
	}
	if student.Name == "" || student.Email == "" {
		writeError(w, r, fmt.Errorf("%w: name and email are required", models.ErrInvalidInput))
		return
	}

	if err := h.store.CreateStudent(r.Context(), &student); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, student)
}

// ListStudents lists students, optionally filtered by department.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.Students(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, students)
}

// AddAcademicRecord ingests one academic record.
func (h *Handler) AddAcademicRecord(w http.ResponseWriter, r *http.Request) {
	var rec models.AcademicRecord
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.AddAcademicRecord(r.Context(), &rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, rec)
}

// AddBehaviorRecord ingests one wellbeing check-in.
func (h *Handler) AddBehaviorRecord(w http.ResponseWriter, r *http.Request) {
	var rec models.BehaviorRecord
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.AddBehaviorRecord(r.Context(), &rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, rec)
}

// TrainModels triggers an explicit full training pass.
func (h *Handler) TrainModels(w http.ResponseWriter, r *http.Request) {
	report, err := h.ml.TrainModels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// PredictPerformance predicts one student's average marks.
func (h *Handler) PredictPerformance(w http.ResponseWriter, r *http.Request) {
	id, err := studentIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	prediction, err := h.ml.PredictPerformance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, prediction)
}

// ClassifyRisk classifies one student's risk level.
func (h *Handler) ClassifyRisk(w http.ResponseWriter, r *http.Request) {
	id, err := studentIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	prediction, err := h.ml.ClassifyRisk(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, prediction)
}

// BatchPredict predicts performance and risk for a list of students.
func (h *Handler) BatchPredict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentIDs []int64 `json:"student_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.StudentIDs) == 0 {
		writeError(w, r, fmt.Errorf("%w: student_ids must not be empty", models.ErrInvalidInput))
		return
	}

	result, err := h.ml.BatchPredict(r.Context(), req.StudentIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// AnalyzeSentiment scores one free-text check-in.
func (h *Handler) AnalyzeSentiment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.ml.AnalyzeSentiment(req.Text))
}

// ModelInfo reports both models' training status and configuration.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.ml.Info())
}

// ClassAnalytics returns population analytics.
func (h *Handler) ClassAnalytics(w http.ResponseWriter, r *http.Request) {
	out, err := h.analytics.ClassAnalytics(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// AttendanceCorrelation returns the attendance-marks correlation analysis.
func (h *Handler) AttendanceCorrelation(w http.ResponseWriter, r *http.Request) {
	out, err := h.analytics.AttendanceMarksCorrelation(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// StressCorrelation returns the wellbeing-academics correlation analysis.
func (h *Handler) StressCorrelation(w http.ResponseWriter, r *http.Request) {
	out, err := h.analytics.StressMarksCorrelation(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// MentalHealthTrends returns the population wellbeing analysis.
func (h *Handler) MentalHealthTrends(w http.ResponseWriter, r *http.Request) {
	out, err := h.analytics.MentalHealthTrends(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// StudentTrends returns one student's history and summary.
func (h *Handler) StudentTrends(w http.ResponseWriter, r *http.Request) {
	id, err := studentIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.analytics.StudentTrends(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// Recommendations returns the rule-engine suggestions for one student.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	id, err := studentIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.analytics.GenerateRecommendations(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// DepartmentSummary returns per-department aggregate statistics.
func (h *Handler) DepartmentSummary(w http.ResponseWriter, r *http.Request) {
	out, err := h.analytics.DepartmentSummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// studentIDParam parses the {studentID} route parameter.
func studentIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "studentID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid student id %q", models.ErrInvalidInput, raw)
	}
	return id, nil
}
