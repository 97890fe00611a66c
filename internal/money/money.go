// Package money provides a fixed-precision price type for the negotiation
// engine. Every price the engine touches — anchor, reservation, offers,
// counters, discounts — is rounded to 2 decimal places and is guaranteed
// finite, so rounding and NaN/Inf handling stop being the caller's problem
// at every call site.
package money

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Price is an immutable, always-finite, 2dp-rounded monetary amount.
type Price struct {
	d decimal.Decimal
}

// Zero is the zero price.
var Zero = Price{}

// New builds a Price from a float64, rejecting NaN and ±Inf.
func New(f float64) (Price, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Price{}, fmt.Errorf("money: non-finite value %v", f)
	}
	return Price{d: decimal.NewFromFloat(f).Round(2)}, nil
}

// MustNew is New but panics on a non-finite input. Only safe for literals
// known at compile time (tests, defaults).
func MustNew(f float64) Price {
	p, err := New(f)
	if err != nil {
		panic(err)
	}
	return p
}

// FromDecimal wraps an existing decimal.Decimal, rounding to 2dp.
func FromDecimal(d decimal.Decimal) Price {
	return Price{d: d.Round(2)}
}

// Float64 returns the price as a float64, for JSON output and display.
func (p Price) Float64() float64 {
	f, _ := p.d.Float64()
	return f
}

// Decimal exposes the underlying decimal value for arithmetic callers that
// need it (e.g. shopspring-based composition).
func (p Price) Decimal() decimal.Decimal { return p.d }

func (p Price) Add(other Price) Price { return Price{d: p.d.Add(other.d).Round(2)} }
func (p Price) Sub(other Price) Price { return Price{d: p.d.Sub(other.d).Round(2)} }
func (p Price) Mul(factor float64) Price {
	return Price{d: p.d.Mul(decimal.NewFromFloat(factor)).Round(2)}
}

// Cmp returns -1, 0, or 1 comparing p to other.
func (p Price) Cmp(other Price) int { return p.d.Cmp(other.d) }

func (p Price) LessThan(other Price) bool    { return p.d.LessThan(other.d) }
func (p Price) GreaterThan(other Price) bool { return p.d.GreaterThan(other.d) }
func (p Price) GTE(other Price) bool         { return p.d.GreaterThanOrEqual(other.d) }
func (p Price) LTE(other Price) bool         { return p.d.LessThanOrEqual(other.d) }
func (p Price) IsZero() bool                 { return p.d.IsZero() }
func (p Price) IsPositive() bool             { return p.d.IsPositive() }

// Clamp returns p bounded to [lo, hi]. If lo > hi the behaviour follows the
// order the caller supplied (clamp to lo first, then hi), matching the
// state machine's "clamp to [reservation, anchor]" usage.
func (p Price) Clamp(lo, hi Price) Price {
	out := p
	if out.LessThan(lo) {
		out = lo
	}
	if out.GreaterThan(hi) {
		out = hi
	}
	return out
}

func (p Price) String() string { return p.d.StringFixed(2) }

// MarshalJSON encodes the price as a plain JSON number (wire-compatible
// with the spec's float examples); internal storage stays exact decimal.
func (p Price) MarshalJSON() ([]byte, error) {
	f, _ := p.d.Float64()
	return json.Marshal(f)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	v, err := New(f)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
