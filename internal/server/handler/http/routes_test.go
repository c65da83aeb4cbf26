package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/atinyakov/GophSubmit/internal/client/submit"
	"github.com/atinyakov/GophSubmit/internal/codestore"
	"github.com/atinyakov/GophSubmit/internal/models"
	handler "github.com/atinyakov/GophSubmit/internal/server/handler/http"
	"github.com/atinyakov/GophSubmit/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRepo is an in-memory SubmissionRepository.
type memoryRepo struct {
	mu   sync.Mutex
	subs map[string]models.Submission
}

func (m *memoryRepo) Create(_ context.Context, sub models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs == nil {
		m.subs = map[string]models.Submission{}
	}
	m.subs[sub.ID] = sub
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[id]
	if !ok {
		return nil, errors.New("sql: no rows in result set")
	}
	return &sub, nil
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func newRouter(t *testing.T, svc handler.SubmissionService, ping error) http.Handler {
	t.Helper()
	return handler.NewRouter(
		&handler.SubmissionHandler{SubmissionService: svc},
		&handler.HealthHandler{DB: fakePinger{err: ping}},
		zap.NewNop(),
	)
}

func TestRouter_Errors(t *testing.T) {
	r := newRouter(t, &fakeSubmissionService{}, nil)

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		wantCode    int
		wantBody    string
	}{
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantCode: http.StatusNotFound, wantBody: `"message":"Not Found"`},
		{name: "wrong method", method: http.MethodGet, path: "/submission", wantCode: http.StatusMethodNotAllowed, wantBody: `"message":"Method Not Allowed"`},
		{name: "not json", method: http.MethodPost, path: "/submission", contentType: "text/plain", body: "x", wantCode: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouter_Health(t *testing.T) {
	for _, tc := range []struct {
		name     string
		ping     error
		wantCode int
	}{
		{"ok", nil, http.StatusOK},
		{"db down", errors.New("refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(t, &fakeSubmissionService{}, tc.ping).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.wantCode, w.Code)
		})
	}
}

func TestRouter_LegacySubmitPath(t *testing.T) {
	fake := &fakeSubmissionService{id: "legacy"}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"username":"u","password":"p","code":"c"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	newRouter(t, fake, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"legacy"}`, w.Body.String())
}

// TestClientServerRoundTrip drives the real submission client against the real router.
func TestClientServerRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "codes")
	codes, err := codestore.NewFileStore(dir, "")
	require.NoError(t, err)
	repo := &memoryRepo{}
	svc := service.NewSubmissionService(repo, codes)

	srv := httptest.NewServer(newRouter(t, svc, nil))
	defer srv.Close()

	client := submit.New(srv.URL, srv.Client(), zap.NewNop())

	res := client.Submit(context.Background(), "alice", "secret", "print('hi')\n")
	require.Equal(t, submit.KindSuccess, res.Kind, "result: %+v", res)
	assert.Contains(t, res.Notification(), res.ID)

	path, err := codes.Path(res.ID)
	require.NoError(t, err)
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(stored))

	sub, err := repo.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub.Username)
	assert.NotEqual(t, "secret", string(sub.PasswordHash))

	long := client.Submit(context.Background(), "alice", strings.Repeat("p", 80), "x")
	assert.Equal(t, submit.KindServerError, long.Kind)
	assert.Equal(t, http.StatusBadRequest, long.Status)
	assert.Contains(t, long.Notification(), "72 bytes")
}
