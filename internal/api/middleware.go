package api

import (
	"context"
	"net/http"
	"strings"

	"tasktracker/internal/apperr"
)

type contextKey struct{ name string }

var callerKey = contextKey{"caller"}

// requireAuth resolves the bearer credential to a user id before the
// handler runs. Requests without a valid access token never reach the
// store.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, apperr.New(apperr.CodeUnauthorized, "authentication credentials were not provided"))
			return
		}

		userID, err := s.auth.VerifyAccess(token)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerID returns the authenticated user id stored by requireAuth.
func callerID(r *http.Request) uint {
	id, _ := r.Context().Value(callerKey).(uint)
	return id
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
