package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mindwell/portal-gateway/internal/models"
)

const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	attempt_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	test_slug TEXT NOT NULL,
	answers TEXT NOT NULL DEFAULT '{}',
	status TEXT NOT NULL,
	status_message TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_user_id ON submissions(user_id);
CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at);
`

// SQLiteRepository implements Repository on an embedded SQLite file
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens dsn, applies pragmas and creates the schema
func NewSQLiteRepository(ctx context.Context, dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Ping checks database connectivity
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// CreateSubmission appends a submission to the log
func (r *SQLiteRepository) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO submissions (id, attempt_id, user_id, test_slug, answers, status, status_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.AttemptID,
		sub.UserID,
		sub.TestSlug,
		string(answersJSON),
		string(sub.Status),
		nullString(sub.StatusMessage),
		sub.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// GetSubmission retrieves a submission by ID
func (r *SQLiteRepository) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, attempt_id, user_id, test_slug, answers, status, status_message, created_at
		FROM submissions WHERE id = ?`, id)

	sub, err := scanSQLiteSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// ListSubmissions returns submissions matching filters, newest first
func (r *SQLiteRepository) ListSubmissions(ctx context.Context, filters models.SubmissionFilters) ([]*models.Submission, error) {
	query := `
		SELECT id, attempt_id, user_id, test_slug, answers, status, status_message, created_at
		FROM submissions
		WHERE 1=1`
	var args []interface{}

	if filters.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filters.UserID)
	}
	if filters.TestSlug != "" {
		query += " AND test_slug = ?"
		args = append(args, filters.TestSlug)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filters.Status))
	}

	query += " ORDER BY created_at DESC"

	// SQLite only accepts OFFSET after a LIMIT
	if filters.Limit > 0 || filters.Offset > 0 {
		limit := filters.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Submission
	for rows.Next() {
		sub, err := scanSQLiteSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return subs, nil
}

func scanSQLiteSubmission(row rowScanner) (*models.Submission, error) {
	var sub models.Submission
	var statusStr, answersJSON, createdAt string
	var statusMsg sql.NullString

	err := row.Scan(
		&sub.ID,
		&sub.AttemptID,
		&sub.UserID,
		&sub.TestSlug,
		&answersJSON,
		&statusStr,
		&statusMsg,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Status = models.SubmissionStatus(statusStr)
	sub.StatusMessage = statusMsg.String

	if err := json.Unmarshal([]byte(answersJSON), &sub.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}

	t, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	sub.CreatedAt = t

	return &sub, nil
}
