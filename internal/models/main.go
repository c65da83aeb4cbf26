// Package models defines the wire payloads and the persisted submission record.
package models

import "time"

// SubmissionRequest is the JSON body sent to POST /submission.
// All three fields are required.
type SubmissionRequest struct {
	// Username is the operator-supplied identity.
	Username string `json:"username" validate:"required"`
	// Password is the operator-supplied secret, plaintext on the wire.
	Password string `json:"password" validate:"required"`
	// Code is the payload being submitted.
	Code string `json:"code" validate:"required"`
}

// SubmissionResponse is returned with HTTP 200 after a submission is accepted.
type SubmissionResponse struct {
	// ID identifies the stored submission.
	ID string `json:"id"`
}

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// SubmissionStatus describes the processing state of a stored submission.
type SubmissionStatus string

const (
	// StatusSubmitted is assigned to every newly accepted submission.
	StatusSubmitted SubmissionStatus = "SUBMITTED"
)

// Submission is the record kept by the server for an accepted submission.
// The code itself lives in the code store, keyed by ID.
type Submission struct {
	// ID is the unique identifier (UUID) of the submission.
	ID string
	// Username is the submitting user.
	Username string
	// PasswordHash is the bcrypt hash of the submitted password.
	PasswordHash []byte
	// Status is the processing state.
	Status SubmissionStatus
	// CreatedAt is when the submission was accepted.
	CreatedAt time.Time
	// UpdatedAt is when the record last changed.
	UpdatedAt time.Time
}
