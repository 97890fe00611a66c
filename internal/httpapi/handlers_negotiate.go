package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"negotiatord/internal/money"
)

// HandleStart starts a new negotiation session for a product.
func (h *Handlers) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	resp, err := h.orch.Start(r.Context(), req.ProductID, req.BuyerName, clientIP(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleOffer processes one buyer turn for an existing session.
func (h *Handlers) HandleOffer(w http.ResponseWriter, r *http.Request) {
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
	if h.cache.OnCooldown(sid) {
		writeError(w, http.StatusTooManyRequests, "session is on cooldown, try again shortly")
		return
	}

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := money.New(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "price must be a finite number")
		return
	}

	resp, err := h.orch.Negotiate(r.Context(), sid, req.Message, price)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	h.cache.SetCooldown(sid, time.Duration(h.cfg.Defaults.MinResponseDelayMs)*time.Millisecond)

	writeJSON(w, http.StatusOK, resp)
}

// HandleStatus reports the current negotiation state for a session
// without submitting a new offer.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    session.SessionID,
		"state":         session.State,
		"round":         session.CurrentRound,
		"max_rounds":    session.MaxRounds,
		"current_price": session.CurrentSellerPrice,
		"agreed_price":  session.AgreedPrice,
	})
}
