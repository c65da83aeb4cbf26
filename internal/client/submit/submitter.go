// Package submit sends a username, password and code to the submission
// endpoint and maps the outcome to a Result.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/atinyakov/GophSubmit/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Path is the endpoint path appended to the configured base URL.
const Path = "submission"

// maxErrorBody bounds how much of a non-JSON error body is surfaced.
const maxErrorBody = 4 << 10

// HTTPClient is the subset of *http.Client used by Submitter.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Submitter performs submission attempts against one endpoint.
// It holds no per-attempt state, so concurrent calls are independent.
type Submitter struct {
	baseURL  string
	client   HTTPClient
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a Submitter posting to baseURL + "/submission".
// A nil client falls back to http.DefaultClient, a nil logger to zap.NewNop().
func New(baseURL string, client HTTPClient, log *zap.Logger) *Submitter {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{
		baseURL:  baseURL,
		client:   client,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Submit validates the three fields and, if all are present, issues exactly
// one POST with them as JSON. It never returns an error: every outcome,
// including local failures, is described by the Result.
func (s *Submitter) Submit(ctx context.Context, username, password, code string) Result {
	req := models.SubmissionRequest{Username: username, Password: password, Code: code}

	if missing := s.missingFields(req); len(missing) > 0 {
		return Result{Kind: KindValidationError, Missing: missing}
	}

	httpReq, err := s.newRequest(ctx, req)
	if err != nil {
		s.log.Error("failed to build submission request", zap.Error(err))
		return Result{Kind: KindTransportError, Reason: ReasonRequestFailed, Err: err}
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.log.Error("no response from submission endpoint",
			zap.String("method", httpReq.Method),
			zap.String("url", httpReq.URL.Redacted()),
			zap.Error(err),
		)
		return Result{Kind: KindTransportError, Reason: ReasonNoResponse, Err: err}
	}
	defer resp.Body.Close()

	return s.readResponse(resp)
}

// missingFields returns the JSON names of the empty fields, in declaration order.
func (s *Submitter) missingFields(req models.SubmissionRequest) []string {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, strings.ToLower(fe.Field()))
	}
	return missing
}

func (s *Submitter) newRequest(ctx context.Context, req models.SubmissionRequest) (*http.Request, error) {
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", s.baseURL)
	}
	endpoint := base.JoinPath(Path).String()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

func (s *Submitter) readResponse(resp *http.Response) Result {
	if resp.StatusCode == http.StatusOK {
		var out models.SubmissionResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.ID == "" {
			s.log.Warn("undecodable success response", zap.Int("status", resp.StatusCode), zap.Error(err))
			return Result{Kind: KindServerError, Status: resp.StatusCode, Message: msgMalformed}
		}
		return Result{Kind: KindSuccess, ID: out.ID}
	}

	return Result{
		Kind:    KindServerError,
		Status:  resp.StatusCode,
		Message: errorMessage(resp),
	}
}

// errorMessage extracts the "message" field of an error body. Bodies that are
// not JSON are surfaced as trimmed text, empty ones as the status text.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body models.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
