package submit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/atinyakov/GophSubmit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingServer records every request it receives and answers with a fixed reply.
type recordingServer struct {
	mu       sync.Mutex
	requests []recordedRequest

	status int
	body   string
}

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        []byte
}

func (s *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.requests = append(s.requests, recordedRequest{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        b,
	})
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_, _ = io.WriteString(w, s.body)
}

func (s *recordingServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newTestServer(t *testing.T, status int, body string) (*recordingServer, *httptest.Server) {
	t.Helper()
	rs := &recordingServer{status: status, body: body}
	srv := httptest.NewServer(rs)
	t.Cleanup(srv.Close)
	return rs, srv
}

// fakeClient fails every request with err.
type fakeClient struct {
	calls int
	err   error
}

func (f *fakeClient) Do(*http.Request) (*http.Response, error) {
	f.calls++
	return nil, f.err
}

func TestSubmit_ValidationSkipsNetwork(t *testing.T) {
	tests := []struct {
		name        string
		username    string
		password    string
		code        string
		wantMissing []string
	}{
		{name: "empty username", password: "p", code: "c", wantMissing: []string{"username"}},
		{name: "empty password", username: "u", code: "c", wantMissing: []string{"password"}},
		{name: "empty code", username: "u", password: "p", wantMissing: []string{"code"}},
		{name: "username and code", password: "p", wantMissing: []string{"username", "code"}},
		{name: "all empty", wantMissing: []string{"username", "password", "code"}},
	}

	rs, srv := newTestServer(t, http.StatusOK, `{"id":"x"}`)
	s := New(srv.URL, srv.Client(), zap.NewNop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Submit(context.Background(), tt.username, tt.password, tt.code)

			assert.Equal(t, KindValidationError, res.Kind)
			assert.Equal(t, tt.wantMissing, res.Missing)
			assert.Equal(t, MsgValidation, res.Notification())
			assert.False(t, res.OK())
		})
	}
	assert.Zero(t, rs.count(), "validation failures must not reach the network")
}

func TestSubmit_SendsFieldsVerbatim(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		code     string
	}{
		{name: "plain", username: "alice", password: "secret", code: "print('hi')"},
		{name: "whitespace kept", username: " bob ", password: "p w", code: "def f():\n\treturn 1\n"},
		{name: "unicode and quotes", username: "사용자", password: `"q"\`, code: "<script>&</script>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, srv := newTestServer(t, http.StatusOK, `{"id":"abc123"}`)
			s := New(srv.URL, srv.Client(), zap.NewNop())

			res := s.Submit(context.Background(), tt.username, tt.password, tt.code)
			require.True(t, res.OK(), "result: %+v", res)
			require.Equal(t, 1, rs.count())

			got := rs.requests[0]
			assert.Equal(t, http.MethodPost, got.method)
			assert.Equal(t, "/submission", got.path)
			assert.Equal(t, "application/json", got.contentType)

			var body models.SubmissionRequest
			require.NoError(t, json.Unmarshal(got.body, &body))
			assert.Equal(t, models.SubmissionRequest{
				Username: tt.username,
				Password: tt.password,
				Code:     tt.code,
			}, body)
		})
	}
}

func TestSubmit_BaseURLWithPath(t *testing.T) {
	rs, srv := newTestServer(t, http.StatusOK, `{"id":"abc123"}`)
	s := New(srv.URL+"/api/", srv.Client(), zap.NewNop())

	res := s.Submit(context.Background(), "u", "p", "c")
	require.True(t, res.OK())
	require.Equal(t, 1, rs.count())
	assert.Equal(t, "/api/submission", rs.requests[0].path)
}

func TestSubmit_ResponseMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    Kind
		wantID      string
		wantMessage string
		wantNotice  string
	}{
		{
			name:       "ok with id",
			status:     http.StatusOK,
			body:       `{"id":"abc123"}`,
			wantKind:   KindSuccess,
			wantID:     "abc123",
			wantNotice: "abc123",
		},
		{
			name:        "bad request with message",
			status:      http.StatusBadRequest,
			body:        `{"message":"duplicate code"}`,
			wantKind:    KindServerError,
			wantMessage: "duplicate code",
			wantNotice:  "duplicate code",
		},
		{
			name:        "created is not ok",
			status:      http.StatusCreated,
			body:        `{"id":"abc123","message":"queued"}`,
			wantKind:    KindServerError,
			wantMessage: "queued",
			wantNotice:  "queued",
		},
		{
			name:        "plain text error body",
			status:      http.StatusInternalServerError,
			body:        "database is down\n",
			wantKind:    KindServerError,
			wantMessage: "database is down",
			wantNotice:  "database is down",
		},
		{
			name:        "empty error body",
			status:      http.StatusBadGateway,
			wantKind:    KindServerError,
			wantMessage: "Bad Gateway",
			wantNotice:  "Bad Gateway",
		},
		{
			name:        "ok without id",
			status:      http.StatusOK,
			body:        `{}`,
			wantKind:    KindServerError,
			wantMessage: msgMalformed,
			wantNotice:  msgMalformed,
		},
		{
			name:        "ok with garbage",
			status:      http.StatusOK,
			body:        `not json`,
			wantKind:    KindServerError,
			wantMessage: msgMalformed,
			wantNotice:  msgMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newTestServer(t, tt.status, tt.body)
			s := New(srv.URL, srv.Client(), zap.NewNop())

			res := s.Submit(context.Background(), "alice", "secret", "print(1)")

			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, tt.wantID, res.ID)
			assert.Equal(t, tt.wantMessage, res.Message)
			if tt.wantKind == KindServerError {
				assert.Equal(t, tt.status, res.Status)
			}
			assert.Contains(t, res.Notification(), tt.wantNotice)
		})
	}
}

func TestSubmit_NoResponse(t *testing.T) {
	inputs := [][3]string{
		{"alice", "secret", "print(1)"},
		{"bob", "hunter2", "SELECT 1;"},
	}

	for _, in := range inputs {
		core, logs := observer.New(zapcore.ErrorLevel)
		client := &fakeClient{err: errors.New("dial tcp: connection refused")}
		s := New("http://submissions.invalid", client, zap.New(core))

		res := s.Submit(context.Background(), in[0], in[1], in[2])

		assert.Equal(t, KindTransportError, res.Kind)
		assert.Equal(t, ReasonNoResponse, res.Reason)
		assert.Equal(t, MsgNoResponse, res.Notification())
		assert.Equal(t, 1, client.calls)
		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "no response from submission endpoint", entry.Message)
		assert.Equal(t, "dial tcp: connection refused", entry.ContextMap()["error"])
	}
}

func TestSubmit_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := New(url, nil, nil)
	res := s.Submit(context.Background(), "u", "p", "c")

	assert.Equal(t, KindTransportError, res.Kind)
	assert.Equal(t, ReasonNoResponse, res.Reason)
	assert.Error(t, res.Err)
}

func TestSubmit_CanceledContext(t *testing.T) {
	rs, srv := newTestServer(t, http.StatusOK, `{"id":"abc123"}`)
	s := New(srv.URL, srv.Client(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := s.Submit(ctx, "u", "p", "c")
	assert.Equal(t, KindTransportError, res.Kind)
	assert.Equal(t, ReasonNoResponse, res.Reason)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Zero(t, rs.count())
}

func TestSubmit_RequestFailed(t *testing.T) {
	for _, base := range []string{"://bad", "", "localhost:8080", "/relative"} {
		t.Run(base, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			client := &fakeClient{}
			s := New(base, client, zap.New(core))

			res := s.Submit(context.Background(), "u", "p", "c")

			assert.Equal(t, KindTransportError, res.Kind)
			assert.Equal(t, ReasonRequestFailed, res.Reason)
			assert.Equal(t, MsgRequestFailed, res.Notification())
			assert.Zero(t, client.calls)
			assert.Equal(t, 1, logs.FilterMessage("failed to build submission request").Len())
		})
	}
}

func TestSubmit_IdenticalSubmissionsAreIndependent(t *testing.T) {
	rs, srv := newTestServer(t, http.StatusOK, `{"id":"abc123"}`)
	s := New(srv.URL, srv.Client(), zap.NewNop())

	first := s.Submit(context.Background(), "alice", "secret", "print(1)")
	second := s.Submit(context.Background(), "alice", "secret", "print(1)")

	assert.True(t, first.OK())
	assert.True(t, second.OK())
	require.Equal(t, 2, rs.count())
	assert.Equal(t, rs.requests[0].body, rs.requests[1].body)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "success", KindSuccess.String())
	assert.Equal(t, "transport error", KindTransportError.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
