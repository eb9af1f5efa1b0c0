// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

// Package store persists students and their records in DuckDB.
//
// The store implements features.RecordSource for the aggregation pipeline and
// adds the write paths the API uses to ingest records. DuckDB keeps the whole
// deployment a single process with a single data file, which matches how the
// engine is operated: analytical reads dominate and the write volume is a few
// records per student per day.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/edulens/edulens/internal/config"
	"github.com/edulens/edulens/internal/logging"
	"github.com/edulens/edulens/internal/metrics"
	"github.com/edulens/edulens/internal/models"
)

// Store wraps the DuckDB connection and provides record access.
type Store struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// New opens (or creates) the DuckDB store and initializes the schema.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for a file-backed database.
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
			}
		}
	}

	// Disable extension auto-install/auto-load; nothing here needs
	// extensions and it prevents hangs in restricted network environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// DuckDB is embedded; a small pool is enough and avoids file-lock
	// contention between writers.
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	s := &Store{
		conn:   conn,
		logger: logging.With().Str("component", "store").Logger(),
	}

	if err := s.initSchema(); err != nil {
		if cerr := conn.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("failed to close database after init error")
		}
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	s.logger.Info().Str("path", cfg.Path).Msg("record store opened")
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying SQL connection for health checks.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// initSchema creates tables and sequences when missing. Statements are
// idempotent so startup after an unclean shutdown is safe.
func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE SEQUENCE IF NOT EXISTS students_id_seq`,
		`CREATE TABLE IF NOT EXISTS students (
			id BIGINT PRIMARY KEY DEFAULT nextval('students_id_seq'),
			name VARCHAR NOT NULL,
			email VARCHAR NOT NULL UNIQUE,
			role VARCHAR NOT NULL DEFAULT 'student',
			department VARCHAR NOT NULL DEFAULT ''
		)`,
		`CREATE SEQUENCE IF NOT EXISTS academic_records_id_seq`,
		`CREATE TABLE IF NOT EXISTS academic_records (
			id BIGINT PRIMARY KEY DEFAULT nextval('academic_records_id_seq'),
			student_id BIGINT NOT NULL,
			marks DOUBLE NOT NULL,
			attendance DOUBLE NOT NULL,
			assignment_score DOUBLE NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)`,
		`CREATE SEQUENCE IF NOT EXISTS behavior_records_id_seq`,
		`CREATE TABLE IF NOT EXISTS behavior_records (
			id BIGINT PRIMARY KEY DEFAULT nextval('behavior_records_id_seq'),
			student_id BIGINT NOT NULL,
			mood_score INTEGER NOT NULL,
			sleep_hours DOUBLE NOT NULL,
			study_hours DOUBLE NOT NULL,
			text_feedback VARCHAR NOT NULL DEFAULT '',
			recorded_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_academic_student ON academic_records(student_id)`,
		`CREATE INDEX IF NOT EXISTS idx_behavior_student ON behavior_records(student_id)`,
	}

	for _, stmt := range stmts {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}

// CreateStudent inserts a student and returns it with the assigned ID.
func (s *Store) CreateStudent(ctx context.Context, student *models.Student) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("insert", "students", start, err) }()

	role := student.Role
	if role == "" {
		role = models.RoleStudent
	}

	row := s.conn.QueryRowContext(ctx,
		`INSERT INTO students (name, email, role, department)
		 VALUES (?, ?, ?, ?) RETURNING id`,
		student.Name, student.Email, string(role), student.Department)
	if err = row.Scan(&student.ID); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	student.Role = role
	return nil
}

// Student fetches one student by ID. Returns models.ErrNoData when missing.
func (s *Store) Student(ctx context.Context, id int64) (st *models.Student, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("select", "students", start, err) }()

	var student models.Student
	var role string
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, email, role, department FROM students WHERE id = ?`, id)
	if err = row.Scan(&student.ID, &student.Name, &student.Email, &role, &student.Department); err != nil {
		if err == sql.ErrNoRows {
			err = fmt.Errorf("student %d: %w", id, models.ErrNoData)
		} else {
			err = fmt.Errorf("select student %d: %w", id, err)
		}
		return nil, err
	}
	student.Role = models.Role(role)
	return &student, nil
}

// Students returns all student-role users, optionally filtered by department
// ("" = all), ordered by ID.
func (s *Store) Students(ctx context.Context, department string) (out []models.Student, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("select", "students", start, err) }()

	query := `SELECT id, name, email, role, department FROM students WHERE role = ?`
	args := []any{string(models.RoleStudent)}
	if department != "" {
		query += ` AND department = ?`
		args = append(args, department)
	}
	query += ` ORDER BY id`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select students: %w", err)
	}
	defer closeRows(rows, &err)

	out = []models.Student{}
	for rows.Next() {
		var student models.Student
		var role string
		if err = rows.Scan(&student.ID, &student.Name, &student.Email, &role, &student.Department); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		student.Role = models.Role(role)
		out = append(out, student)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return out, nil
}

// AddAcademicRecord validates and inserts one academic record.
func (s *Store) AddAcademicRecord(ctx context.Context, rec *models.AcademicRecord) (err error) {
	if err = models.ValidateAcademicRecord(rec); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("insert", "academic_records", start, err) }()

	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO academic_records (student_id, marks, attendance, assignment_score, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.StudentID, rec.Marks, rec.Attendance, rec.AssignmentScore, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert academic record: %w", err)
	}
	return nil
}

// AddBehaviorRecord validates and inserts one behavior record.
func (s *Store) AddBehaviorRecord(ctx context.Context, rec *models.BehaviorRecord) (err error) {
	if err = models.ValidateBehaviorRecord(rec); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("insert", "behavior_records", start, err) }()

	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO behavior_records (student_id, mood_score, sleep_hours, study_hours, text_feedback, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.StudentID, rec.MoodScore, rec.SleepHours, rec.StudyHours, rec.TextFeedback, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert behavior record: %w", err)
	}
	return nil
}

// AcademicRecords returns one student's academic records, oldest first.
func (s *Store) AcademicRecords(ctx context.Context, studentID int64) (out []models.AcademicRecord, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("select", "academic_records", start, err) }()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT student_id, marks, attendance, assignment_score, recorded_at
		 FROM academic_records WHERE student_id = ? ORDER BY recorded_at, id`, studentID)
	if err != nil {
		return nil, fmt.Errorf("select academic records: %w", err)
	}
	defer closeRows(rows, &err)

	return scanAcademicRecords(rows)
}

// AllAcademicRecords returns every academic record, oldest first.
func (s *Store) AllAcademicRecords(ctx context.Context) (out []models.AcademicRecord, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("select", "academic_records", start, err) }()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT student_id, marks, attendance, assignment_score, recorded_at
		 FROM academic_records ORDER BY recorded_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select academic records: %w", err)
	}
	defer closeRows(rows, &err)

	return scanAcademicRecords(rows)
}

// BehaviorRecords returns one student's behavior records, oldest first.
func (s *Store) BehaviorRecords(ctx context.Context, studentID int64) (out []models.BehaviorRecord, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("select", "behavior_records", start, err) }()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT student_id, mood_score, sleep_hours, study_hours, text_feedback, recorded_at
		 FROM behavior_records WHERE student_id = ? ORDER BY recorded_at, id`, studentID)
	if err != nil {
		return nil, fmt.Errorf("select behavior records: %w", err)
	}
	defer closeRows(rows, &err)

	return scanBehaviorRecords(rows)
}

// AllBehaviorRecords returns every behavior record, oldest first.
func (s *Store) AllBehaviorRecords(ctx context.Context) (out []models.BehaviorRecord, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("select", "behavior_records", start, err) }()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT student_id, mood_score, sleep_hours, study_hours, text_feedback, recorded_at
		 FROM behavior_records ORDER BY recorded_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select behavior records: %w", err)
	}
	defer closeRows(rows, &err)

	return scanBehaviorRecords(rows)
}

// StudentCount returns the number of student-role users.
func (s *Store) StudentCount(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("select", "students", start, err) }()

	row := s.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM students WHERE role = ?`, string(models.RoleStudent))
	if err = row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return n, nil
}

func scanAcademicRecords(rows *sql.Rows) ([]models.AcademicRecord, error) {
	out := []models.AcademicRecord{}
	for rows.Next() {
		var rec models.AcademicRecord
		if err := rows.Scan(&rec.StudentID, &rec.Marks, &rec.Attendance, &rec.AssignmentScore, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan academic record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate academic records: %w", err)
	}
	return out, nil
}

func scanBehaviorRecords(rows *sql.Rows) ([]models.BehaviorRecord, error) {
	out := []models.BehaviorRecord{}
	for rows.Next() {
		var rec models.BehaviorRecord
		if err := rows.Scan(&rec.StudentID, &rec.MoodScore, &rec.SleepHours, &rec.StudyHours, &rec.TextFeedback, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan behavior record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate behavior records: %w", err)
	}
	return out, nil
}

// closeRows closes rows and surfaces the close error only when the caller is
// not already failing.
func closeRows(rows *sql.Rows, err *error) {
	if cerr := rows.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
