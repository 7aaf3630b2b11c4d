package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"seoforge/internal/domain"
	"seoforge/internal/pkg/session"
)

// Auth validates the session on every request and stores the external
// principal id in the request context. Requests carry the session either in
// the cookie the API set or as a bearer token.
func Auth(signer *session.Signer, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := sessionToken(r)
			if tokenStr == "" {
				unauthorized(w)
				return
			}

			externalID, err := signer.Parse(tokenStr)
			if err != nil {
				logger.Debug().Err(err).Msg("Rejected session token")
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), externalID)))
		})
	}
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": domain.ErrAuthenticationRequired.Error()})
}
