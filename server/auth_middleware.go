package server

import (
	"context"
	"net/http"

	"dashembed/internal/errors"
	"dashembed/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated directory user
	ContextKeyUser ContextKey = "user"
	// ContextKeySessionID stores the opaque session id
	ContextKeySessionID ContextKey = "session_id"
)

// RequireSession gates a handler on a valid authenticated session. The
// wrapped handler runs with the resolved directory user in the context;
// without a valid session it never runs at all, so no downstream side
// effects (in particular no upstream token calls) can happen.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := s.cookies.Read(r)
			if err != nil {
				writeJSONError(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			user, err := s.auth.CurrentUser(sessionID)
			if err != nil {
				if errors.Is(err, errors.ErrUserNotFound) {
					// Session referenced a user that left the directory; the
					// service already removed it, drop the cookie too.
					s.cookies.Clear(w)
					writeJSONError(w, "User not found", http.StatusUnauthorized)
					return
				}
				writeJSONError(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeySessionID, sessionID)
			next(w, r.WithContext(ctx))
		}
	}
}

// UserFromContext returns the user injected by RequireSession.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*users.User)
	return user, ok
}
