package middleware

import (
	"context"
	"net/http"

	"github.com/jwhitfield/atelier/internal/auth"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "atelier_session"

// Authorizer checks a session token and returns the operator it belongs to.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (string, error)
}

// SessionToken extracts the session token from the request cookie. Returns
// an empty string when no cookie is present.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireAuth validates the session cookie and puts the operator name on
// the request context. Requests without a live session get a 401.
func RequireAuth(authorizer Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator, err := authorizer.Authorize(r.Context(), SessionToken(r))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"not authenticated"}`))
				return
			}

			ctx := auth.WithOperator(r.Context(), operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
