package middleware

import (
	"crypto/subtle"
	"net/http"

	"telecrm-backend/internal/config"
)

// RequireSiteToken guards the public website enquiry endpoint with a
// shared token in the x-site-token header. When no token is configured
// the endpoint is closed entirely.
func RequireSiteToken(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			expected := cfg.Website.EnquiryToken
			if expected == "" {
				http.Error(w, "Enquiry endpoint disabled", http.StatusForbidden)
				return
			}
			got := r.Header.Get("x-site-token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				http.Error(w, "Invalid site token", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
