package relay

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Catfish872/catfishAntigravity2API/internal/upstream"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing credential",
			err:        fmt.Errorf("completion: %w", upstream.ErrNoCredential),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
		{
			name:       "resource exhausted marker",
			err:        &upstream.StatusError{Code: 500, Message: "RESOURCE_EXHAUSTED: per-minute quota"},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "rate_limit_exceeded",
		},
		{
			name:       "quota marker in plain error",
			err:        errors.New("upstream said: Quota exceeded for model"),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "rate_limit_exceeded",
		},
		{
			name:       "no capacity marker",
			err:        errors.New("no capacity for model right now"),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "rate_limit_exceeded",
		},
		{
			name:       "upstream status passthrough",
			err:        &upstream.StatusError{Code: 503, Message: "backend unavailable"},
			wantStatus: 503,
			wantCode:   "upstream_error",
		},
		{
			name:       "generic failure",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			if got.Status != tc.wantStatus {
				t.Errorf("status = %d, want %d", got.Status, tc.wantStatus)
			}
			inner, ok := got.Body["error"].(map[string]any)
			if !ok {
				t.Fatalf("body = %v, want nested error object", got.Body)
			}
			if inner["code"] != tc.wantCode {
				t.Errorf("code = %v, want %q", inner["code"], tc.wantCode)
			}
			if inner["type"] != "server_error" {
				t.Errorf("type = %v", inner["type"])
			}
			if inner["param"] != nil {
				t.Errorf("param = %v, want null", inner["param"])
			}
			if inner["message"] == "" {
				t.Error("message must not be empty")
			}
		})
	}
}

func TestClassifyMissingCredentialKeepsHint(t *testing.T) {
	got := Classify(upstream.ErrNoCredential)
	inner := got.Body["error"].(map[string]any)
	msg := inner["message"].(string)
	if msg != upstream.ErrNoCredential.Error() {
		t.Errorf("message = %q, remediation hint lost", msg)
	}
}
