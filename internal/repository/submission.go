// Package repository provides SQL persistence for submission records.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/GophSubmit/internal/models"
)

// PostgresSubmissionRepository stores submissions in PostgreSQL.
type PostgresSubmissionRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSubmissionRepository creates a repository on an open PostgreSQL handle.
func NewPostgresSubmissionRepository(db *sql.DB) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{DB: db}
}

// Create inserts a new submission record.
func (r *PostgresSubmissionRepository) Create(ctx context.Context, sub models.Submission) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO submissions (id, username, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sub.ID, sub.Username, sub.PasswordHash, string(sub.Status), sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetByID fetches one submission. It returns sql.ErrNoRows (wrapped) when absent.
func (r *PostgresSubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	var (
		sub    models.Submission
		status string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, status, created_at, updated_at
		FROM submissions WHERE id = $1
	`, id).Scan(&sub.ID, &sub.Username, &sub.PasswordHash, &status, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get submission %s: %w", id, err)
	}
	sub.Status = models.SubmissionStatus(status)
	return &sub, nil
}

// PurgeBefore deletes submissions created before cutoff and returns their ids.
func (r *PostgresSubmissionRepository) PurgeBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		DELETE FROM submissions WHERE created_at < $1 RETURNING id
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("purge submissions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("purge submissions: %w", err)
	}
	return ids, nil
}
