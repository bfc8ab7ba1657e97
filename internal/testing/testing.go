// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/lbx/internal/models"
)

// MockService is a test double for [services.Service].
//
// Calls records every batch submitted; Errs scripts per-call failures by
// submission index (nil entries and indexes past the slice succeed).
type MockService struct {
	Calls    [][]models.Listen
	Errs     []error
	Username string
}

func (m *MockService) ValidateToken(ctx context.Context) (string, error) {
	if m.Username == "" {
		return "listener", nil
	}
	return m.Username, nil
}

func (m *MockService) SubmitListens(ctx context.Context, listens []models.Listen) error {
	call := len(m.Calls)
	m.Calls = append(m.Calls, listens)
	if call < len(m.Errs) {
		return m.Errs[call]
	}
	return nil
}

func (m *MockService) Name() string { return "mock" }

// Submitted returns the total number of listens across all calls.
func (m *MockService) Submitted() int {
	total := 0
	for _, call := range m.Calls {
		total += len(call)
	}
	return total
}

// MockAuditLog is a test double for importer.AuditLog.
type MockAuditLog struct {
	Records []*models.Submission
	Err     error
}

func (m *MockAuditLog) Record(submission *models.Submission) error {
	if m.Err != nil {
		return m.Err
	}
	m.Records = append(m.Records, submission)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// ScriptedRoundTripper replays a sequence of responses, recording each request.
type ScriptedRoundTripper struct {
	Responses []*http.Response
	Requests  []*http.Request
	Bodies    []string
}

func (s *ScriptedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.Requests = append(s.Requests, req)

	body := ""
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(data)
	}
	s.Bodies = append(s.Bodies, body)

	if len(s.Requests) > len(s.Responses) {
		return nil, errors.New("no scripted response left")
	}
	return s.Responses[len(s.Requests)-1], nil
}

// JSONResponse builds an *http.Response with a JSON string body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
