package middleware

import (
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/AverniteDF/poe-bot-server-wsgi/internal/config"
)

// RequestID tags each request with an identifier that the error envelope
// echoes back to the caller.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs every request before it is processed. The access key
// inside the Authorization header is masked.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":        r.Method,
			"path":          r.URL.Path,
			"remote":        r.RemoteAddr,
			"request_id":    r.Header.Get("X-Request-ID"),
			"authorization": maskAuthorization(r.Header.Get("Authorization")),
		}).Info("request received")

		next.ServeHTTP(w, r)
	})
}

func maskAuthorization(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return config.MaskKey(header)
	}
	return parts[0] + " " + config.MaskKey(parts[1])
}
