// Package trace tags every request with an id and logs its outcome.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"expensetracker/internal/log"
)

// ContextKey type for context keys
type ContextKey string

// RequestIDKey is the context key for the request id.
const RequestIDKey ContextKey = "request_id"

// HeaderRequestID carries the request id back to the client.
const HeaderRequestID = "X-Request-ID"

// Middleware assigns a request id, places a request-scoped logger in the
// context and logs method, path, status and duration once the handler
// returns. 4xx responses log at warn, 5xx at error.
func Middleware(logger *log.Logger, extractIP func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := GenerateRequestID()

			reqLogger := logger.With(log.FieldRequestID, requestID)
			if extractIP != nil {
				reqLogger = reqLogger.With(log.FieldClientIP, extractIP(r))
			}

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			ctx = log.NewContext(ctx, reqLogger)
			r = r.WithContext(ctx)

			w.Header().Set(HeaderRequestID, requestID)
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			fields := log.NewFields().
				WithHTTP(r.Method, r.URL.Path, rw.statusCode, time.Since(start).Milliseconds()).
				ToSlice()
			switch {
			case rw.statusCode >= 500:
				reqLogger.ErrorContext(ctx, "Request completed", fields...)
			case rw.statusCode >= 400:
				reqLogger.WarnContext(ctx, "Request completed", fields...)
			default:
				reqLogger.InfoContext(ctx, "Request completed", fields...)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// RequestID extracts the request ID from context
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
