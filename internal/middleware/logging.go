package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"go-blog-service/internal/model"
)

const requestIDHeader = "X-Request-ID"

// Error bodies are captured only up to this size for log enrichment.
const maxCapturedBody = 4 << 10

// Logging writes one structured line per request. A request id is taken
// from the inbound header when present, otherwise generated, and is always
// echoed back to the client.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		lw := &loggingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lw, r)

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", lw.status,
			"duration_ms", time.Since(started).Milliseconds(),
			"client_ip", extractClientIP(r),
		}
		if lw.status >= 400 {
			attrs = append(attrs, errorAttrs(r, lw)...)
		}

		switch {
		case lw.status >= 500:
			slog.Error("request", attrs...)
		case lw.status >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	})
}

// errorAttrs pulls the error code and message out of a failed response's
// JSON body so the log line carries the cause without a second lookup.
func errorAttrs(r *http.Request, lw *loggingWriter) []any {
	var attrs []any
	if r.URL.RawQuery != "" {
		attrs = append(attrs, "query", r.URL.RawQuery)
	}

	if lw.body.Len() == 0 {
		return attrs
	}
	var resp model.APIResponse
	if err := json.Unmarshal(lw.body.Bytes(), &resp); err != nil || resp.Error == nil {
		return attrs
	}

	attrs = append(attrs, "error_code", resp.Error.Code, "error_message", resp.Error.Message)
	if resp.Error.Details != "" {
		attrs = append(attrs, "error_details", resp.Error.Details)
	}
	return attrs
}

type loggingWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (lw *loggingWriter) WriteHeader(statusCode int) {
	if lw.wroteHeader {
		return
	}
	lw.status = statusCode
	lw.wroteHeader = true
	lw.ResponseWriter.WriteHeader(statusCode)
}

func (lw *loggingWriter) Write(b []byte) (int, error) {
	if lw.status >= 400 && lw.body.Len() < maxCapturedBody {
		lw.body.Write(b)
	}
	return lw.ResponseWriter.Write(b)
}
