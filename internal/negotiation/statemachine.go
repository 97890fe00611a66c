package negotiation

import (
	"time"

	"negotiatord/internal/apperr"
	"negotiatord/internal/money"
)

// EngineResult is the outcome of one state-machine transition, everything
// the orchestrator and dialogue adapter need to render a turn.
type EngineResult struct {
	State                  State
	CounterPrice           money.Price
	Tactic                 Tactic
	AcceptanceThresholdMet bool
	Metadata               map[string]any
}

// walkAwayConcessionPct is the flat discount handle_walk_away offers off
// the current seller price.
const walkAwayConcessionPct = 0.05

// buildTracker reconstructs a reciprocity Tracker from a session's buyer
// offer history. The tracker itself holds no state the session doesn't
// already carry, so it is rebuilt per turn rather than persisted.
func buildTracker(s *Session) *Tracker {
	t := &Tracker{}
	for _, o := range s.OfferHistory.BuyerOffers() {
		t.RecordBuyerOffer(o.Price)
	}
	return t
}

// StartNegotiation transitions IDLE -> PROPOSING, seeds the opening seller
// offer at the anchor price, and starts the round counter at 0.
func StartNegotiation(s *Session, now time.Time) (EngineResult, error) {
	if s.State != StateIdle {
		return EngineResult{}, apperr.New(apperr.Conflict, "negotiation already started")
	}

	s.State = StateProposing
	s.CurrentRound = 0
	s.CurrentSellerPrice = s.AnchorPrice
	s.OfferHistory.Add(Offer{
		Round:     0,
		Actor:     ActorSeller,
		Price:     s.AnchorPrice,
		Timestamp: now,
		Message:   "Opening offer",
	})
	s.UpdatedAt = now

	return EngineResult{
		State:        StateProposing,
		CounterPrice: s.AnchorPrice,
		Tactic:       TacticOpening,
	}, nil
}

// ProcessBuyerOffer runs one SAO round: advance the round counter, check
// acceptance against the concession curve, check the round deadline, or
// compute a tit-for-tat-blended counter-offer.
func ProcessBuyerOffer(s *Session, buyerPrice money.Price, beta float64, now time.Time) (EngineResult, error) {
	if s.State.Terminal() {
		return EngineResult{}, apperr.New(apperr.Conflict, "negotiation already concluded")
	}
	if !buyerPrice.IsPositive() {
		return EngineResult{}, apperr.New(apperr.InvalidInput, "buyer price must be finite and strictly positive")
	}

	s.CurrentRound++
	s.State = StateResponding

	prevSellerPrice := s.CurrentSellerPrice
	base := ComputeOffer(s.AnchorPrice, s.ReservationPrice, s.CurrentRound, s.MaxRounds, beta, 0)

	var buyerConcessionDelta money.Price
	if prevBuyerOffer := s.OfferHistory.LastBuyerOffer(); prevBuyerOffer != nil {
		buyerConcessionDelta = buyerPrice.Sub(prevBuyerOffer.Price)
	}
	s.OfferHistory.Add(Offer{
		Round:           s.CurrentRound,
		Actor:           ActorBuyer,
		Price:           buyerPrice,
		Timestamp:       now,
		ConcessionDelta: buyerConcessionDelta,
	})

	if buyerPrice.GTE(base) {
		s.State = StateAgreed
		agreed := buyerPrice
		s.AgreedPrice = &agreed
		s.UpdatedAt = now
		return EngineResult{
			State:                  StateAgreed,
			CounterPrice:           buyerPrice,
			Tactic:                 TacticAccept,
			AcceptanceThresholdMet: true,
		}, nil
	}

	if s.CurrentRound >= s.MaxRounds {
		s.State = StateTimedOut
		s.UpdatedAt = now
		return EngineResult{
			State:        StateTimedOut,
			CounterPrice: s.ReservationPrice,
			Tactic:       TacticTimeoutFinal,
		}, nil
	}

	tracker := buildTracker(s)
	aiConcession := tracker.ComputeAIConcession(s.Alpha, s.AnchorPrice, s.ReservationPrice)
	tftPrice := prevSellerPrice.Sub(money.MustNew(aiConcession))

	counter := tftPrice
	if base.GreaterThan(counter) {
		counter = base
	}
	if counter.GreaterThan(prevSellerPrice) {
		counter = prevSellerPrice
	}

	validated := Validate(counter, s.ReservationPrice, s.AnchorPrice)
	counter = validated.Price

	concessionDelta := prevSellerPrice.Sub(counter)
	tactic := classifyTactic(prevSellerPrice, counter, s.AnchorPrice, s.ReservationPrice)

	s.OfferHistory.Add(Offer{
		Round:           s.CurrentRound,
		Actor:           ActorSeller,
		Price:           counter,
		Timestamp:       now,
		ConcessionDelta: concessionDelta,
	})
	s.CurrentSellerPrice = counter
	s.UpdatedAt = now

	return EngineResult{
		State:        StateResponding,
		CounterPrice: counter,
		Tactic:       tactic,
	}, nil
}

// classifyTactic labels a counter-offer by its relative drop from the
// previous seller price, normalised by the full anchor-reservation spread.
func classifyTactic(prev, counter, anchor, reservation money.Price) Tactic {
	spread := anchor.Sub(reservation).Float64()
	if spread <= 0 {
		return TacticHoldFirm
	}
	dropPct := prev.Sub(counter).Float64() / spread
	switch {
	case dropPct < 0.01:
		return TacticHoldFirm
	case dropPct < 0.05:
		return TacticMinorConcession
	case dropPct < 0.15:
		return TacticConcession
	default:
		return TacticMajorConcession
	}
}

// HandleWalkAway offers a flat 5% discount off the current seller price to
// save a deal the buyer is about to abandon. It never advances the round
// counter: a buyer can trigger indefinitely many walk-away saves without
// burning a round, matching the asymmetry in the component design.
func HandleWalkAway(s *Session, now time.Time) (EngineResult, error) {
	if s.State.Terminal() {
		return EngineResult{}, apperr.New(apperr.Conflict, "negotiation already concluded")
	}

	candidate := s.CurrentSellerPrice.Mul(1 - walkAwayConcessionPct)

	if candidate.LessThan(s.ReservationPrice) {
		s.State = StateBroken
		s.UpdatedAt = now
		return EngineResult{
			State:        StateBroken,
			CounterPrice: s.ReservationPrice,
			Tactic:       TacticWalkAwayFailed,
		}, nil
	}

	validated := Validate(candidate, s.ReservationPrice, s.AnchorPrice)
	s.OfferHistory.Add(Offer{
		Round:           s.CurrentRound,
		Actor:           ActorSeller,
		Price:           validated.Price,
		Timestamp:       now,
		ConcessionDelta: s.CurrentSellerPrice.Sub(validated.Price),
		Message:         "walk_away_save",
	})
	s.CurrentSellerPrice = validated.Price
	s.UpdatedAt = now

	return EngineResult{
		State:        StateResponding,
		CounterPrice: validated.Price,
		Tactic:       TacticWalkAwaySave,
	}, nil
}

// HandleQuantityPivot offers a bundle price for a larger quantity instead
// of a straight price concession. State is left unchanged.
func HandleQuantityPivot(s *Session, quantity int, discountPerUnit money.Price) (EngineResult, error) {
	if s.State.Terminal() {
		return EngineResult{}, apperr.New(apperr.Conflict, "negotiation already concluded")
	}
	if quantity < 2 {
		quantity = 2
	}

	totalDiscount := discountPerUnit.Mul(float64(quantity-1) / float64(quantity))
	bundleUnit := s.CurrentSellerPrice.Sub(totalDiscount)
	validated := Validate(bundleUnit, s.ReservationPrice, s.AnchorPrice)
	bundleTotal := validated.Price.Mul(float64(quantity))

	return EngineResult{
		State:        s.State,
		CounterPrice: validated.Price,
		Tactic:       TacticQuantityPivot,
		Metadata: map[string]any{
			"quantity":     quantity,
			"bundle_total": bundleTotal,
		},
	}, nil
}
