// Package relay re-emits upstream replies and event streams in the OpenAI
// wire format and classifies upstream failures.
package relay

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Catfish872/catfishAntigravity2API/internal/upstream"
)

// rateLimitMarkers are fragments of upstream failure text that indicate a
// capacity or quota problem, observed across v1internal error bodies.
var rateLimitMarkers = []string{
	"RESOURCE_EXHAUSTED",
	"rateLimitExceeded",
	"Quota exceeded",
	"429",
	"no capacity",
}

// ClassifiedError is an upstream failure mapped onto the OpenAI error shape.
type ClassifiedError struct {
	Status int
	Body   map[string]any
}

// Classify maps an upstream failure to a status code and an OpenAI-shaped
// error body. Rules apply in order: missing-credential failures become a
// server error carrying the remediation hint, rate-limit markers beat the
// upstream's own status code, and anything else falls back to 500.
func Classify(err error) ClassifiedError {
	msg := err.Error()

	if errors.Is(err, upstream.ErrNoCredential) {
		return classified(http.StatusInternalServerError, msg, "internal_error")
	}
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return classified(http.StatusTooManyRequests, msg, "rate_limit_exceeded")
		}
	}
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		return classified(statusErr.Code, statusErr.Message, "upstream_error")
	}
	return classified(http.StatusInternalServerError, msg, "internal_error")
}

func classified(status int, message, code string) ClassifiedError {
	return ClassifiedError{
		Status: status,
		Body: map[string]any{
			"error": map[string]any{
				"message": message,
				"type":    "server_error",
				"param":   nil,
				"code":    code,
			},
		},
	}
}
