package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rxtech-lab/trade-journal/internal/types"
	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

type contextKey string

const sessionContextKey contextKey = "session"

// bearerToken extracts the token from the Authorization header, or "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// authMiddleware resolves the bearer token into a session and stores it on
// the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeError(w, errors.New(errors.ErrCodeInvalidToken, "missing bearer token"))

			return
		}

		session, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			s.writeError(w, err)

			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFromContext returns the session the middleware stored.
func sessionFromContext(ctx context.Context) types.Session {
	session, _ := ctx.Value(sessionContextKey).(types.Session)

	return session
}
