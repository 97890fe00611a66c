package httpapi

import (
	"encoding/json"
	"net/http"

	"negotiatord/internal/protocol"
)

// HandleBecknSelect maps an incoming Beckn select request onto a fresh
// negotiation session and returns the opening offer as an on_select
// response.
func (h *Handlers) HandleBecknSelect(w http.ResponseWriter, r *http.Request) {
	var req becknSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Message.Order.Items) == 0 {
		writeError(w, http.StatusBadRequest, "order must include at least one item")
		return
	}
	productID := req.Message.Order.Items[0].ID

	started, err := h.orch.Start(r.Context(), productID, "", clientIP(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	turn := protocol.NegotiationTurn{
		SessionID:       started.SessionID,
		State:           started.State,
		Round:           started.Round,
		SellerMessage:   started.Message,
		CurrentPrice:    started.CurrentPrice,
		QuoteTTLSeconds: started.QuoteTTLSeconds,
	}
	original := protocol.Context{Domain: req.Context.Domain, TransactionID: req.Context.TransactionID}

	writeJSON(w, http.StatusOK, protocol.BuildOnSelectResponse(turn, original))
}
