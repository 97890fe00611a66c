package protocol

import (
	"time"

	"github.com/google/uuid"

	"negotiatord/internal/money"
)

// Context is the Beckn transaction envelope carried on every message.
type Context struct {
	Domain        string    `json:"domain"`
	Action        string    `json:"action"`
	TransactionID string    `json:"transaction_id"`
	MessageID     string    `json:"message_id"`
	Timestamp     time.Time `json:"timestamp"`
	TTL           string    `json:"ttl"`
}

// NegotiationSummary is the negotiation-specific payload embedded in an
// on_select response's order message.
type NegotiationSummary struct {
	SessionID     string `json:"session_id"`
	State         string `json:"state"`
	Round         int    `json:"round"`
	SellerMessage string `json:"seller_message"`
}

// OrderMessage is the order object inside a Beckn on_select response.
type OrderMessage struct {
	Quote       Quote               `json:"quote"`
	Negotiation NegotiationSummary  `json:"negotiation"`
}

// OnSelectResponse is a full Beckn on_select message.
type OnSelectResponse struct {
	Context Context      `json:"context"`
	Message struct {
		Order OrderMessage `json:"order"`
	} `json:"message"`
}

// NegotiationTurn is the subset of a completed negotiation turn the
// protocol layer needs to render an on_select response; the HTTP layer
// populates it from the orchestrator's response.
type NegotiationTurn struct {
	SessionID       string
	State           string
	Round           int
	SellerMessage   string
	CurrentPrice    money.Price
	QuoteTTLSeconds int
}

const onSelectTTL = "PT1M"

// BuildOnSelectResponse converts one negotiation turn into a Beckn
// on_select response, carrying the caller's transaction id forward and
// minting a fresh message id, as Beckn requires per message.
func BuildOnSelectResponse(turn NegotiationTurn, original Context) OnSelectResponse {
	quote := BuildQuote(turn.CurrentPrice, turn.QuoteTTLSeconds, money.Zero, money.Zero)

	resp := OnSelectResponse{
		Context: Context{
			Domain:        original.Domain,
			Action:        "on_select",
			TransactionID: original.TransactionID,
			MessageID:     uuid.NewString(),
			Timestamp:     time.Now().UTC(),
			TTL:           onSelectTTL,
		},
	}
	resp.Message.Order = OrderMessage{
		Quote: quote,
		Negotiation: NegotiationSummary{
			SessionID:     turn.SessionID,
			State:         turn.State,
			Round:         turn.Round,
			SellerMessage: turn.SellerMessage,
		},
	}
	return resp
}
