package httpapi

import (
	"log/slog"
	"net/http"
)

// requireAdminKey wraps next so only requests carrying a matching
// X-API-Key header reach it. An empty configured adminKey disables the
// check entirely (local/dev use) but logs a warning on every pass so the
// gap is never silent.
func requireAdminKey(adminKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" {
				logger.Warn("admin key check bypassed: no api.admin_key configured", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}
			if !constantTimeEqual(r.Header.Get("X-API-Key"), adminKey) {
				writeError(w, http.StatusForbidden, "invalid or missing X-API-Key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sessionTokenOf extracts the bearer session token a negotiate request
// must present, comparing it in constant time against the session's
// stored token once the handler has loaded the session.
func sessionTokenOf(r *http.Request) string {
	return r.Header.Get("X-Session-Token")
}
