package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lunchvote/pkg/errors"
	"lunchvote/pkg/logger"
)

const testSecret = "test-admin-secret"

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorBody {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestAdminAuth(t *testing.T) {
	valid, err := SignAdminToken(testSecret, "ops", time.Hour)
	require.NoError(t, err)

	expired, err := SignAdminToken(testSecret, "ops", -time.Minute)
	require.NoError(t, err)

	otherSecret, err := SignAdminToken("another-secret", "ops", time.Hour)
	require.NoError(t, err)

	voter, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role: "voter",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "someone",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role:             AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ops"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{Role: AdminRole}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name     string
		secret   string
		header   string
		wantCode int
		wantType apperrors.ErrorType
	}{
		{"valid admin token", testSecret, "Bearer " + valid, http.StatusOK, ""},
		{"missing header", testSecret, "", http.StatusUnauthorized, apperrors.ErrorTypeAuthentication},
		{"wrong scheme", testSecret, "Basic abc", http.StatusUnauthorized, apperrors.ErrorTypeAuthentication},
		{"empty token", testSecret, "Bearer ", http.StatusUnauthorized, apperrors.ErrorTypeAuthentication},
		{"expired", testSecret, "Bearer " + expired, http.StatusUnauthorized, apperrors.ErrorTypeAuthentication},
		{"signed with another secret", testSecret, "Bearer " + otherSecret, http.StatusUnauthorized, apperrors.ErrorTypeAuthentication},
		{"alg none rejected", testSecret, "Bearer " + unsigned, http.StatusUnauthorized, apperrors.ErrorTypeAuthentication},
		{"admin token without exp", testSecret, "Bearer " + noExpiry, http.StatusUnauthorized, apperrors.ErrorTypeAuthentication},
		{"non admin role", testSecret, "Bearer " + voter, http.StatusForbidden, apperrors.ErrorTypeAuthorization},
		{"disabled without secret", "", "Bearer " + valid, http.StatusForbidden, apperrors.ErrorTypeAuthorization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AdminAuth(tt.secret, logger.NewNop())(http.HandlerFunc(okHandler))

			req := httptest.NewRequest(http.MethodDelete, "/api/polls/p1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, decodeError(t, rec).Type)
			}
		})
	}
}

func TestAdminAuthStoresSubject(t *testing.T) {
	token, err := SignAdminToken(testSecret, "ops-bot", time.Hour)
	require.NoError(t, err)

	var subject string
	h := AdminAuth(testSecret, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = r.Context().Value(AdminContextKey).(string)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "ops-bot", subject)
}

func TestSignAdminTokenRequiresSecret(t *testing.T) {
	_, err := SignAdminToken("", "ops", time.Hour)
	assert.Error(t, err)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestWriteErrorIncludesRequestID(t *testing.T) {
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, apperrors.NewAlreadyVotedError(nil))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/votes", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeError(t, rec)
	assert.Equal(t, apperrors.ErrorTypeAlreadyVoted, body.Type)
	assert.Equal(t, "This device has already voted in this poll.", body.Message)
	assert.Equal(t, "req-1", body.RequestID)
	assert.NotEmpty(t, body.Timestamp)
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	h := CORS(cfg, logger.NewNop())(http.HandlerFunc(okHandler))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/votes", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("wildcard", func(t *testing.T) {
		wild := CORS(&CORSConfig{AllowedOrigins: []string{"*"}}, logger.NewNop())(http.HandlerFunc(okHandler))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://anywhere.example")
		rec := httptest.NewRecorder()
		wild.ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("warn", &buf)

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/votes", nil))
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/api/votes", entry["path"])
	assert.EqualValues(t, http.StatusConflict, entry["status"])
}
