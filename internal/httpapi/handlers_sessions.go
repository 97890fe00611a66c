package httpapi

import "net/http"

// HandleGetSession returns the full session record.
func (h *Handlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("sid")
	if !validSID(sid) {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := h.loadSession(sid)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if !h.authorizeSession(w, r, session) {
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// HandleSessionHistory returns the full offer history for a session.
func (h *Handlers) HandleSessionHistory(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("sid")
	if !validSID(sid) {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := h.loadSession(sid)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if !h.authorizeSession(w, r, session) {
		return
	}

	writeJSON(w, http.StatusOK, sessionHistoryResponse{
		SessionID: session.SessionID,
		Offers:    session.OfferHistory.Offers,
	})
}
