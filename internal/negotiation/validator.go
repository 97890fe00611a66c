package negotiation

import "negotiatord/internal/money"

// ValidatedPrice is the outcome of running a proposed price through the
// deterministic guardrail: either passed through unchanged, or clamped
// with a reason the caller can log or surface.
type ValidatedPrice struct {
	Price        money.Price
	WasOverridden bool
	Reason       string
}

// Validate clamps proposed into [reservation, anchor]. It is a pure clamp,
// not a finiteness filter — callers must reject non-finite input earlier,
// at the state-machine boundary.
func Validate(proposed, reservation, anchor money.Price) ValidatedPrice {
	switch {
	case proposed.LessThan(reservation):
		return ValidatedPrice{Price: reservation, WasOverridden: true, Reason: "below floor"}
	case proposed.GreaterThan(anchor):
		return ValidatedPrice{Price: anchor, WasOverridden: true, Reason: "exceeds anchor"}
	default:
		return ValidatedPrice{Price: proposed}
	}
}
