package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// CORS builds the cross-origin policy from the configured origin list.
// Credentials are only allowed when the list is explicit: a wildcard
// origin combined with credentials is rejected by browsers anyway.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	wildcard := slices.Contains(origins, "*")

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:           3600,
		AllowCredentials: !wildcard,
	})

	return c.Handler
}
