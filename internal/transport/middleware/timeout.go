package middleware

import (
	"net/http"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
)

// Timeout bounds the request context. Handlers observe it through the
// context passed down to the repositories.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := internal.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
