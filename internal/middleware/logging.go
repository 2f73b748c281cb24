// file: internal/middleware/logging.go
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const slowRequestThreshold = time.Second

// statusWriter captures the status code and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// StructuredLogging logs every request on completion with its status,
// duration, and size, at a level matching the outcome.
func StructuredLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := GetRequestStart(r.Context())
			requestLogger := GetRequestLogger(r.Context())

			writer := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(writer, r)

			duration := time.Since(start)
			status := writer.status
			if status == 0 {
				status = http.StatusOK
			}

			level := zapcore.InfoLevel
			switch {
			case status >= 500:
				level = zapcore.ErrorLevel
			case status >= 400:
				level = zapcore.WarnLevel
			}

			requestLogger.Log(level, "Request completed",
				zap.Int("status", status),
				zap.Duration("duration", duration),
				zap.Int("response_bytes", writer.bytes),
			)

			if duration > slowRequestThreshold {
				requestLogger.Warn("Slow request",
					zap.Duration("duration", duration),
					zap.Duration("threshold", slowRequestThreshold),
				)
			}
		})
	}
}
