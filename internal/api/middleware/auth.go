package middleware

import (
	"context"
	"net/http"

	"zxtrack/internal/api/util"
)

type contextKey string

// OperatorKey holds the authenticated operator's identity in the
// request context.
const OperatorKey contextKey = "operator"

type AuthMiddleware struct {
	secret string
}

// NewAuthMiddleware builds a JWT check around the shared secret. An
// empty secret disables authentication, for local development.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := util.BearerToken(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		operator, err := util.ParseSubject(token, m.secret)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), OperatorKey, operator)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
