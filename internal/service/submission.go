// Package service provides the submission business logic, delegating
// persistence to a repository and code storage to a code store.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/GophSubmit/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrMissingFields is returned when username, password or code is empty.
	ErrMissingFields = errors.New("missing required fields")
	// ErrNotFound is returned when a submission does not exist.
	ErrNotFound = errors.New("submission not found")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes).
	ErrPasswordTooLong = errors.New("password is longer than 72 bytes")
)

// SubmissionRepository defines the persistence operations needed by the service.
type SubmissionRepository interface {
	// Create inserts a new submission record.
	Create(ctx context.Context, sub models.Submission) error
	// GetByID fetches one submission. Absence is reported with sql.ErrNoRows.
	GetByID(ctx context.Context, id string) (*models.Submission, error)
}

// CodeStore persists the code body of a submission.
type CodeStore interface {
	Save(id, code string) error
	Remove(id string) error
}

// SubmissionService accepts submissions.
type SubmissionService struct {
	repo     SubmissionRepository
	codes    CodeStore
	validate *validator.Validate

	// cost is the bcrypt cost used for password hashes.
	cost int
	now  func() time.Time
}

// NewSubmissionService constructs a SubmissionService hashing passwords with bcrypt.DefaultCost.
func NewSubmissionService(repo SubmissionRepository, codes CodeStore) *SubmissionService {
	return &SubmissionService{
		repo:     repo,
		codes:    codes,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Create validates req, stores its code and records the submission.
// The returned id names both the record and the code file. If the record
// cannot be written the code file is removed again.
func (s *SubmissionService) Create(ctx context.Context, req models.SubmissionRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	sub := models.Submission{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		Status:       models.StatusSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.codes.Save(sub.ID, req.Code); err != nil {
		return "", fmt.Errorf("save code: %w", err)
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		if rmErr := s.codes.Remove(sub.ID); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
		return "", fmt.Errorf("create submission: %w", err)
	}

	return sub.ID, nil
}

// Get returns a stored submission or ErrNotFound.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	sub, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}
