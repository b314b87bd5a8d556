package middleware

import (
	"encoding/json"
	"net/http"

	"go-blog-service/internal/model"
)

// writeJSONError is the terminal-response writer shared by every gate in
// this package: one body shape for all short-circuited requests.
func writeJSONError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
