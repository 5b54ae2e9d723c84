// internal/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

// Subject returns the authenticated principal set by Middleware, or "".
func Subject(ctx context.Context) string {
	subject, _ := ctx.Value(contextKey{}).(string)
	return subject
}

// Middleware gates a route behind the Authorization header. Both
// "Bearer <jwt>" and the raw worker token are accepted; the latter is how
// the orchestrator and email worker call back into the API.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		subject, err := s.VerifyToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
