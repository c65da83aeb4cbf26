package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/GophSubmit/internal/models"
)

// MySQLSubmissionRepository stores submissions in MySQL.
type MySQLSubmissionRepository struct {
	DB *sql.DB
}

// NewMySQLSubmissionRepository creates a repository on an open MySQL handle.
// The handle must be opened with parseTime enabled.
func NewMySQLSubmissionRepository(db *sql.DB) *MySQLSubmissionRepository {
	return &MySQLSubmissionRepository{DB: db}
}

// Create inserts a new submission record.
func (r *MySQLSubmissionRepository) Create(ctx context.Context, sub models.Submission) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO submissions (id, username, password_hash, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sub.ID, sub.Username, sub.PasswordHash, string(sub.Status), sub.CreatedAt.UTC(), sub.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetByID fetches one submission. It returns sql.ErrNoRows (wrapped) when absent.
func (r *MySQLSubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	var (
		sub    models.Submission
		status string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, status, created_at, updated_at
		FROM submissions WHERE id = ?
	`, id).Scan(&sub.ID, &sub.Username, &sub.PasswordHash, &status, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get submission %s: %w", id, err)
	}
	sub.Status = models.SubmissionStatus(status)
	return &sub, nil
}

// PurgeBefore deletes submissions created before cutoff and returns their ids.
// MySQL has no DELETE ... RETURNING, so the ids are locked and read first
// inside one transaction.
func (r *MySQLSubmissionRepository) PurgeBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM submissions WHERE created_at < ? FOR UPDATE
	`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("select expired: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select expired: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return nil, fmt.Errorf("delete expired: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}
