// file: internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"meritboard/internal/config"
	"meritboard/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	// AuthUserIDKey is the context key for the authenticated user ID
	AuthUserIDKey ContextKey = "auth_user_id"
	// AuthModeratorKey is the context key for the moderator flag
	AuthModeratorKey ContextKey = "auth_moderator"
)

// Claims are the JWT claims the service issues and accepts.
type Claims struct {
	UserID    int64 `json:"user_id"`
	Moderator bool  `json:"moderator"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies bearer tokens on write endpoints.
type AuthMiddleware struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

// NewAuthMiddleware creates the auth middleware from config.
func NewAuthMiddleware(cfg *config.AuthConfig, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		logger: logger,
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (am *AuthMiddleware) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := am.parseToken(r)
			if err != nil {
				GetRequestLogger(r.Context()).Warn("Authentication failed", zap.Error(err))
				writeServiceError(w, am.logger, services.NewUnauthorizedError("authentication required"))
				return
			}

			ctx := context.WithValue(r.Context(), AuthUserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, AuthModeratorKey, claims.Moderator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireModerator rejects authenticated requests whose token lacks the
// moderator flag. It must run after RequireAuth.
func (am *AuthMiddleware) RequireModerator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsModerator(r.Context()) {
				writeServiceError(w, am.logger, services.NewForbiddenError("moderator access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (am *AuthMiddleware) parseToken(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, fmt.Errorf("missing authorization header")
	}
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, fmt.Errorf("authorization header is not a bearer token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return am.secret, nil
	}, jwt.WithIssuer(am.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// writeServiceError writes a ServiceError in the API's standard error
// envelope. Middleware cannot use response.Builder without an import
// cycle, so the shape is mirrored here.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, svcErr *services.ServiceError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.GetStatusCode())
	envelope := map[string]interface{}{
		"success": false,
		"error":   svcErr,
	}
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// GetUserID returns the authenticated user ID, or 0 when unauthenticated.
func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(AuthUserIDKey).(int64); ok {
		return id
	}
	return 0
}

// IsModerator reports whether the authenticated user is a moderator.
func IsModerator(ctx context.Context) bool {
	if mod, ok := ctx.Value(AuthModeratorKey).(bool); ok {
		return mod
	}
	return false
}
