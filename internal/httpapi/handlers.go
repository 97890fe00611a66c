package httpapi

import (
	"log/slog"
	"net/http"
	"regexp"

	"negotiatord/internal/config"
	"negotiatord/internal/negotiation"
	"negotiatord/internal/orchestrator"
	"negotiatord/internal/store"
)

// Handlers holds every collaborator the HTTP surface needs.
type Handlers struct {
	cfg       *config.Config
	orch      *orchestrator.Orchestrator
	catalogue *store.CatalogueStore
	records   *store.RecordStore
	cache     *store.ActiveCache
	logger    *slog.Logger
}

// sidPattern matches the opaque 128-bit hex session id contract; any
// path value that doesn't match is rejected before it ever reaches a
// store lookup.
var sidPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

func validSID(sid string) bool {
	return sidPattern.MatchString(sid)
}

// loadSession fetches a session by id, checking the fast cache before
// falling back to the durable record store.
func (h *Handlers) loadSession(sid string) (*negotiation.Session, error) {
	if session, ok := h.cache.Get(sid); ok {
		return session, nil
	}
	return h.records.GetSession(sid)
}

// authorizeSession enforces the X-Session-Token header against the
// session's stored token in constant time, writing a 403 and returning
// false on mismatch.
func (h *Handlers) authorizeSession(w http.ResponseWriter, r *http.Request, session *negotiation.Session) bool {
	if !constantTimeEqual(sessionTokenOf(r), session.SessionToken) {
		writeError(w, http.StatusForbidden, "invalid or missing X-Session-Token")
		return false
	}
	return true
}
