package protocol

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"negotiatord/internal/money"
)

// Signature is a stub bilateral signature over a completed negotiation.
// It proves nothing cryptographically beyond hash binding — it is not a
// substitute for an asymmetric signature over an agreed identity.
type Signature struct {
	SessionID   string    `json:"session_id"`
	ProductID   string    `json:"product_id"`
	AgreedPrice string    `json:"agreed_price"`
	Timestamp   time.Time `json:"timestamp"`
	Digest      string    `json:"signature"`
	Algorithm   string    `json:"algorithm"`
	Note        string    `json:"note"`
}

type signaturePayload struct {
	SessionID   string `json:"session_id"`
	ProductID   string `json:"product_id"`
	AgreedPrice string `json:"agreed_price"`
	Timestamp   string `json:"timestamp"`
}

var stubWarningOnce sync.Once

// SignAgreement stamps a completed negotiation with a Keccak256 digest
// binding session, product, price, and timestamp. This is a placeholder
// for a real asymmetric signature (Ed25519/ECDSA over the seller's key) and
// logs a warning once per process so it is never mistaken for one.
func SignAgreement(logger *slog.Logger, sessionID, productID string, agreedPrice money.Price, now time.Time) Signature {
	stubWarningOnce.Do(func() {
		logger.Warn("using stub Keccak256 digest as digital signature, not asymmetric crypto")
	})

	ts := now.UTC().Format(time.RFC3339Nano)
	payload := signaturePayload{
		SessionID:   sessionID,
		ProductID:   productID,
		AgreedPrice: agreedPrice.String(),
		Timestamp:   ts,
	}
	encoded, _ := json.Marshal(payload)
	digest := crypto.Keccak256Hash(encoded)

	return Signature{
		SessionID:   sessionID,
		ProductID:   productID,
		AgreedPrice: agreedPrice.String(),
		Timestamp:   now.UTC(),
		Digest:      digest.Hex(),
		Algorithm:   "keccak256-stub",
		Note:        "placeholder — replace with asymmetric signing before production use",
	}
}
