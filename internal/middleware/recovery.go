// file: internal/middleware/recovery.go
package middleware

import (
	"net/http"
	"runtime/debug"

	"meritboard/internal/services"

	"go.uber.org/zap"
)

// Recovery converts panics into 500 responses instead of killing the
// connection, logging the stack for diagnosis.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestLogger := GetRequestLogger(r.Context())
					requestLogger.Error("Panic recovered",
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)

					writeServiceError(w, requestLogger, services.NewInternalError("internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
