package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "lunchvote/pkg/errors"
	"lunchvote/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// AdminContextKey holds the subject of a verified admin token
	AdminContextKey ContextKey = "admin"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// AdminRole is the role claim required for poll teardown
const AdminRole = "admin"

// AdminClaims are the claims of an admin bearer token
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuth guards routes with an HS256 bearer token carrying role=admin
// and an exp claim. With an empty secret every request is refused.
func AdminAuth(secret string, logger *logger.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeErrorResponse(w, r, apperrors.NewAuthorizationError("Admin operations are disabled"), logger)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, r, apperrors.NewAuthenticationError("Authorization header is required"), logger)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, r, apperrors.NewAuthenticationError("Invalid authorization header format"), logger)
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if tokenString == "" {
				writeErrorResponse(w, r, apperrors.NewAuthenticationError("Token is required"), logger)
				return
			}

			claims := &AdminClaims{}
			_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil {
				logger.WithError(err).Warn("Admin token validation failed")
				writeErrorResponse(w, r, apperrors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			if claims.Role != AdminRole {
				writeErrorResponse(w, r, apperrors.NewAuthorizationError("Admin role required"), logger)
				return
			}

			ctx := context.WithValue(r.Context(), AdminContextKey, claims.Subject)
			logger.WithField("subject", claims.Subject).Debug("Admin authenticated")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SignAdminToken issues an admin token. Used by the migrate tool and tests.
func SignAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("admin secret is empty")
	}
	now := time.Now()
	claims := AdminClaims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequestID creates a middleware that adds a unique request ID to each
// request. An incoming X-Request-ID is kept.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" || len(requestID) > 128 {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID returns the request ID stored in ctx, or ""
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// WriteError writes appErr as the JSON error envelope
func WriteError(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError) {
	response := apperrors.ErrorResponse{
		Error: apperrors.ErrorBody{
			Type:      appErr.Type,
			Message:   appErr.Message,
			Details:   appErr.Details,
			RequestID: GetRequestID(r.Context()),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError, logger *logger.Logger) {
	logger.WithFields(map[string]interface{}{
		"type":       appErr.Type,
		"path":       r.URL.Path,
		"request_id": GetRequestID(r.Context()),
	}).Warn(appErr.Message)

	WriteError(w, r, appErr)
}
