package negotiation

import (
	"math"

	"negotiatord/internal/money"
)

// reciprocityWindow is the number of trailing buyer deltas averaged into
// avg_buyer_delta (W in the component design).
const reciprocityWindow = 3

// Trend classifies how the buyer's concession pace is moving across the
// tracked window.
type Trend string

const (
	TrendStalled      Trend = "stalled"
	TrendAccelerating Trend = "accelerating"
	TrendDecelerating Trend = "decelerating"
	TrendStable       Trend = "stable"
)

// Tracker mirrors the buyer's concession pace with a tit-for-tat damping
// factor. It holds the buyer's monotonic offer sequence for one session;
// callers own the Tracker's lifetime (one per session, discarded with it).
type Tracker struct {
	buyerOffers []money.Price
}

// RecordBuyerOffer appends the buyer's latest price to the tracked sequence.
func (t *Tracker) RecordBuyerOffer(price money.Price) {
	t.buyerOffers = append(t.buyerOffers, price)
}

// BuyerDeltas returns offers[i] - offers[i-1] for every consecutive pair.
func (t *Tracker) BuyerDeltas() []float64 {
	if len(t.buyerOffers) < 2 {
		return nil
	}
	deltas := make([]float64, 0, len(t.buyerOffers)-1)
	for i := 1; i < len(t.buyerOffers); i++ {
		deltas = append(deltas, t.buyerOffers[i].Float64()-t.buyerOffers[i-1].Float64())
	}
	return deltas
}

// windowDeltas returns the trailing reciprocityWindow deltas (fewer if not
// enough history exists yet).
func (t *Tracker) windowDeltas() []float64 {
	deltas := t.BuyerDeltas()
	if len(deltas) > reciprocityWindow {
		return deltas[len(deltas)-reciprocityWindow:]
	}
	return deltas
}

// AvgBuyerDelta is the mean of the trailing window of buyer deltas. Zero
// with no history.
func (t *Tracker) AvgBuyerDelta() float64 {
	window := t.windowDeltas()
	if len(window) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range window {
		sum += d
	}
	return sum / float64(len(window))
}

// ComputeAIConcession returns the round's mirrored concession:
// clamp(alpha * avg_buyer_delta, 0, maxConcession). A non-positive average
// (the buyer isn't moving) draws a zero concession — the stall penalty.
func (t *Tracker) ComputeAIConcession(alpha float64, anchor, reservation money.Price) float64 {
	avg := t.AvgBuyerDelta()
	if avg <= 0 {
		return 0
	}
	maxConcession := math.Abs(anchor.Float64()-reservation.Float64()) * 0.10
	concession := alpha * avg
	if concession < 0 {
		return 0
	}
	if concession > maxConcession {
		return maxConcession
	}
	return concession
}

// DetectTrend classifies the buyer's pace across the tracked window.
// stalled: every windowed delta is non-positive.
// accelerating/decelerating: last-minus-first delta crosses +/-5.
// stable: anything else, including fewer than two deltas.
func (t *Tracker) DetectTrend() Trend {
	window := t.windowDeltas()
	if len(window) == 0 {
		return TrendStable
	}
	allNonPositive := true
	for _, d := range window {
		if d > 0 {
			allNonPositive = false
			break
		}
	}
	if allNonPositive {
		return TrendStalled
	}
	if len(window) < 2 {
		return TrendStable
	}
	spread := window[len(window)-1] - window[0]
	switch {
	case spread > 5:
		return TrendAccelerating
	case spread < -5:
		return TrendDecelerating
	default:
		return TrendStable
	}
}

// AdaptiveAlpha linearly ramps alpha toward 1.0 as the relative round r
// moves from 0.5 to 1.0; below 0.5 it returns alpha unchanged.
func AdaptiveAlpha(alpha, r float64) float64 {
	if r <= 0.5 {
		return alpha
	}
	if r >= 1.0 {
		return 1.0
	}
	frac := (r - 0.5) / 0.5
	return alpha + (1.0-alpha)*frac
}
