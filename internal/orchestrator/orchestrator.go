// Package orchestrator binds together bot detection, exit-intent
// detection, the SAO engine, invisible promotions, dialogue rendering, and
// persistence into the two operations a negotiation session exposes:
// start and negotiate.
package orchestrator

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"negotiatord/internal/apperr"
	"negotiatord/internal/config"
	"negotiatord/internal/dialogue"
	"negotiatord/internal/money"
	"negotiatord/internal/negotiation"
	"negotiatord/internal/store"
)

// exitIntentConfidenceThreshold is the minimum exit-intent confidence that
// triggers a walk-away save instead of a normal counter-offer round.
const exitIntentConfidenceThreshold = 0.5

// Response is the externally visible outcome of a start or negotiate call,
// shaped for direct JSON serialization at the HTTP boundary.
type Response struct {
	SessionID      string         `json:"session_id"`
	SessionToken   string         `json:"session_token,omitempty"`
	Message        string         `json:"message"`
	CurrentPrice   money.Price    `json:"current_price"`
	State          string         `json:"state"`
	Tactic         string         `json:"tactic"`
	Sentiment      string         `json:"sentiment"`
	Round          int            `json:"round"`
	MaxRounds      int            `json:"max_rounds"`
	QuoteTTLSeconds int           `json:"quote_ttl_seconds"`
	AgreedPrice    *money.Price   `json:"agreed_price,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Orchestrator wires the negotiation core to storage, bot/exit detection,
// and dialogue rendering for a single process.
type Orchestrator struct {
	cfg        *config.Config
	catalogue  *store.CatalogueStore
	records    *store.RecordStore
	cache      *store.ActiveCache
	detectors  *negotiation.DetectorRegistry
	dialogueGen *dialogue.Generator
	logger     *slog.Logger
}

// New builds an Orchestrator from its dependencies.
func New(cfg *config.Config, catalogue *store.CatalogueStore, records *store.RecordStore, cache *store.ActiveCache, gen *dialogue.Generator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		catalogue:   catalogue,
		records:     records,
		cache:       cache,
		detectors:   negotiation.NewDetectorRegistry(),
		dialogueGen: gen,
		logger:      logger,
	}
}

// Start opens a new negotiation session for productID.
func (o *Orchestrator) Start(ctx context.Context, productID, buyerName, buyerIP string) (Response, error) {
	products, err := o.catalogue.Load()
	if err != nil {
		return Response{}, fmt.Errorf("load catalogue: %w", err)
	}
	product, ok := products[productID]
	if !ok {
		return Response{}, apperr.New(apperr.NotFound, fmt.Sprintf("product %s not found", productID))
	}

	now := time.Now()
	sessionToken, err := newSessionToken()
	if err != nil {
		return Response{}, fmt.Errorf("generate session token: %w", err)
	}
	session := &negotiation.Session{
		SessionID:        newSessionID(),
		TransactionID:    uuid.NewString(),
		ProductID:        productID,
		ProductName:      product.Name,
		AnchorPrice:      product.AnchorPrice,
		ReservationPrice: product.ReservationPrice(),
		Beta:             o.cfg.Defaults.Beta,
		Alpha:            o.cfg.Defaults.Alpha,
		MaxRounds:        o.cfg.Defaults.MaxRounds,
		TTLSeconds:       o.cfg.Defaults.SessionTTLSeconds,
		BuyerIP:          buyerIP,
		SessionToken:     sessionToken,
		CreatedAt:        now,
		UpdatedAt:        now,
		ExpiresAt:        now.Add(time.Duration(o.cfg.Defaults.SessionTTLSeconds) * time.Second),
	}

	result, err := negotiation.StartNegotiation(session, now)
	if err != nil {
		return Response{}, err
	}

	if buyerName == "" {
		buyerName = "Customer"
	}
	reply, err := o.dialogueGen.Generate(ctx, session, result, buyerName)
	if err != nil {
		return Response{}, fmt.Errorf("generate opening dialogue: %w", err)
	}

	if err := o.persist(session); err != nil {
		return Response{}, err
	}

	return o.buildResponse(session, reply, result), nil
}

// Negotiate processes one buyer turn for sessionID under a per-session
// lock, so two concurrent requests for the same session never race.
func (o *Orchestrator) Negotiate(ctx context.Context, sessionID, buyerMessage string, buyerPrice money.Price) (Response, error) {
	if !o.cache.AcquireLock(sessionID) {
		return Response{}, apperr.New(apperr.Conflict, fmt.Sprintf("session %s is currently being processed, try again", sessionID))
	}
	defer o.cache.ReleaseLock(sessionID)

	return o.negotiateLocked(ctx, sessionID, buyerMessage, buyerPrice)
}

func (o *Orchestrator) negotiateLocked(ctx context.Context, sessionID, buyerMessage string, buyerPrice money.Price) (Response, error) {
	session, err := o.loadSession(sessionID)
	if err != nil {
		return Response{}, err
	}
	if session == nil {
		return Response{}, apperr.New(apperr.NotFound, fmt.Sprintf("session %s not found or expired", sessionID))
	}
	if session.IsTerminal() {
		return Response{}, apperr.New(apperr.Conflict, fmt.Sprintf("session %s is already %s", sessionID, session.State))
	}

	now := time.Now()

	detector := o.detectors.Get(sessionID)
	detector.Observe(now, buyerPrice.Float64())
	botScore := detector.Score()
	session.BotScore = botScore
	effectiveBeta := negotiation.RecommendedBeta(botScore, session.Beta)

	exitIntent := negotiation.DetectExitIntent(dialogue.SanitizeBuyerMessage(buyerMessage))

	var result negotiation.EngineResult
	if exitIntent.Leaving && exitIntent.Confidence >= exitIntentConfidenceThreshold {
		result, err = negotiation.HandleWalkAway(session, now)
	} else {
		result, err = negotiation.ProcessBuyerOffer(session, buyerPrice, effectiveBeta, now)
	}
	if err != nil {
		return Response{}, err
	}

	if result.State == negotiation.StateResponding {
		o.applyPromotion(session, &result, now)
	}

	reply, err := o.dialogueGen.Generate(ctx, session, result, buyerMessage)
	if err != nil {
		return Response{}, fmt.Errorf("generate dialogue: %w", err)
	}

	if err := o.persist(session); err != nil {
		return Response{}, err
	}

	if session.IsTerminal() {
		o.detectors.Evict(sessionID)
		o.cache.Invalidate(sessionID)
	}

	if err := o.records.AppendAudit(store.AuditEntry{
		SessionID:    sessionID,
		Round:        session.CurrentRound,
		BuyerMessage: truncate(buyerMessage, 500),
		BuyerPrice:   buyerPrice.Float64(),
		CounterPrice: result.CounterPrice.Float64(),
		Tactic:       string(result.Tactic),
		BotScore:     botScore,
		State:        string(result.State),
		Timestamp:    now,
	}); err != nil {
		o.logger.Warn("append audit failed", "error", err, "session_id", sessionID)
	}

	return o.buildResponse(session, reply, result), nil
}

// applyPromotion checks for an invisible coupon on the current counter
// price and folds it in as an additional concession, never revealing its
// existence to the buyer — the dialogue only ever sees the final price.
func (o *Orchestrator) applyPromotion(session *negotiation.Session, result *negotiation.EngineResult, now time.Time) {
	promo, err := o.records.FindBestPromotion(session.ProductID, result.CounterPrice.Float64(), now)
	if err != nil {
		o.logger.Warn("promotion lookup failed", "error", err, "session_id", session.SessionID)
		return
	}
	if promo == nil {
		return
	}

	discount := promo.DiscountValue
	if promo.DiscountType == "percentage" {
		discount = result.CounterPrice.Float64() * (promo.DiscountValue / 100)
	}
	candidate := result.CounterPrice.Sub(money.MustNew(discount))
	validated := negotiation.Validate(candidate, session.ReservationPrice, session.AnchorPrice)
	if validated.WasOverridden {
		return
	}

	result.CounterPrice = validated.Price
	session.CurrentSellerPrice = validated.Price
	if result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	result.Metadata["coupon_applied"] = true
	result.Metadata["coupon_discount"] = discount
}

func (o *Orchestrator) loadSession(sessionID string) (*negotiation.Session, error) {
	if session, ok := o.cache.Get(sessionID); ok {
		return session, nil
	}
	session, err := o.records.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session != nil && time.Now().Before(session.ExpiresAt) {
		o.cache.Put(session)
	}
	return session, nil
}

func (o *Orchestrator) persist(session *negotiation.Session) error {
	o.cache.Put(session)
	if err := o.records.UpsertSession(session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (o *Orchestrator) buildResponse(session *negotiation.Session, reply dialogue.Response, result negotiation.EngineResult) Response {
	return Response{
		SessionID:       session.SessionID,
		SessionToken:    session.SessionToken,
		Message:         reply.Message,
		CurrentPrice:    result.CounterPrice,
		State:           string(result.State),
		Tactic:          reply.Tactic,
		Sentiment:       reply.Sentiment,
		Round:           session.CurrentRound,
		MaxRounds:       session.MaxRounds,
		QuoteTTLSeconds: session.TTLSeconds,
		AgreedPrice:     session.AgreedPrice,
		Metadata:        result.Metadata,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// newSessionID generates an opaque 128-bit hex session id, matching the
// `^[a-f0-9]{32}$` contract the HTTP layer validates {sid} against.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// sessionTokenBytes is 256 bits of entropy, the minimum the session_token
// contract requires.
const sessionTokenBytes = 32

// newSessionToken generates a cryptographically random, URL-safe session
// token carrying at least 256 bits of entropy.
func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
