package handler

import (
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"lunchvote/internal/middleware"
	apperrors "lunchvote/pkg/errors"
	"lunchvote/pkg/logger"
)

// maxBodyBytes bounds request bodies; a poll with ten 100-char options is far below it
const maxBodyBytes = 64 << 10

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError maps err onto the JSON error envelope. Server-side failures
// are logged with their cause, client errors only at debug.
func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := apperrors.As(err)

	entry := log.WithFields(map[string]interface{}{
		"type":       appErr.Type,
		"path":       r.URL.Path,
		"request_id": middleware.GetRequestID(r.Context()),
	})
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.WithError(err).Error("Request failed")
	} else {
		entry.Debug(appErr.Message)
	}

	middleware.WriteError(w, r, appErr)
}

// decodeJSON reads a single JSON object from the request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.NewInvalidInputError("Request body is too large.", nil)
		}
		return apperrors.NewInvalidInputError("Invalid request body.", map[string]interface{}{
			"body": err.Error(),
		})
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperrors.NewInvalidInputError("Request body must contain a single JSON object.", nil)
	}
	return nil
}

func generateETag(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf(`"%x"`, hash)
}
