package middleware

import (
	"net/http"
	"slices"

	"github.com/novaera/caprail/internal/domain/user"
)

// RequireRole returns middleware that admits only the listed roles. A request
// with no authenticated user reads as unauthenticated, not forbidden.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFromContext(r.Context())
			if u == nil {
				http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, u.Role) {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
