package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/apex/log"
)

// AccessKeyAuth rejects requests that do not carry the bot's shared access
// key as a bearer credential.
type AccessKeyAuth struct {
	key []byte
}

func NewAccessKeyAuth(key string) *AccessKeyAuth {
	return &AccessKeyAuth{key: []byte(key)}
}

// Middleware validates the Authorization header before the webhook runs.
func (a *AccessKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Not authenticated", r)
			return
		}

		// Must be Bearer format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Not authenticated", r)
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), a.key) != 1 {
			log.WithField("path", r.URL.Path).Warn("unauthorized access attempt")
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Not authenticated", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects POST bodies whose Content-Type is not JSON.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(contentType), "application/json") {
			log.WithField("content_type", contentType).Error("unrecognized content type")
			writeError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Unrecognized/unhandled content type", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}
