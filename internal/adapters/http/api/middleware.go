package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/okian/punchclock/pkg/logger"
	"github.com/okian/punchclock/pkg/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(wrapped.statusCode),
			float64(time.Since(start).Milliseconds()))
	}
}

// RateLimitMiddleware rejects requests over limiter's budget with 429.
// A nil limiter passes everything through.
func RateLimitMiddleware(limiter RequestRateLimiter, endpoint string, next http.HandlerFunc) http.HandlerFunc {
	if limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Consume(r) {
			metrics.RecordRateLimited(endpoint)
			w.Header().Set("Retry-After", "60")
			writeFailed(w, http.StatusTooManyRequests, ErrRateLimited)
			return
		}
		next(w, r)
	}
}

// Wrap adds panic recovery, response compression and, when origins is not
// empty, CORS headers around h.
func Wrap(h http.Handler, origins []string, l logger.Logger) http.Handler {
	if len(origins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		)(h)
	}
	h = handlers.CompressHandler(h)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{l}),
		handlers.PrintRecoveryStack(false),
	)(h)
}

// recoveryLogger adapts Logger to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	logger logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error(context.Background(), "panic while serving request", logger.Any("panic", v))
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
