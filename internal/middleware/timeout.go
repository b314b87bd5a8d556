package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go-blog-service/internal/model"
)

const fallbackTimeout = 30 * time.Second

// Timeout bounds handler execution. The timed-out response reuses the
// standard error envelope so clients parse it like any other failure.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = fallbackTimeout
	}

	body, err := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: "request timed out",
		},
	})
	if err != nil {
		body = []byte(`{"success":false}`)
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
