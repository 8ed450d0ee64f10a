package server

import (
	"net/http"
	"strings"

	"github.com/Tomlord1122/taskapi/internal/auth"
	"github.com/Tomlord1122/taskapi/internal/metrics"
)

// requireAuth rejects the request with 401 unless it carries a valid bearer
// token, and otherwise stores the caller's identity in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="taskapi"`)
			respondWithError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		identity, err := s.tokens.Validate(token)
		if err != nil {
			s.metrics.AuthEvent(metrics.EventToken, metrics.OutcomeRejected)
			w.Header().Set("WWW-Authenticate", `Bearer realm="taskapi", error="invalid_token"`)
			respondWithError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// callerID returns the authenticated user's ID. Handlers behind requireAuth
// always have one; the false branch only fires if a route is mis-mounted.
func callerID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return identity.UserID, true
}
