package negotiation

import (
	"testing"

	"negotiatord/internal/money"
)

func TestTracker_AvgBuyerDeltaUsesTrailingWindow(t *testing.T) {
	tr := &Tracker{}
	for _, p := range []float64{400, 450, 480, 500} {
		tr.RecordBuyerOffer(money.MustNew(p))
	}
	// deltas: 50, 30, 20 -> window of 3 -> mean = 100/3
	got := tr.AvgBuyerDelta()
	want := (50.0 + 30.0 + 20.0) / 3
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestTracker_StalledBuyerConcedesNothing(t *testing.T) {
	tr := &Tracker{}
	tr.RecordBuyerOffer(money.MustNew(500))
	tr.RecordBuyerOffer(money.MustNew(490))

	got := tr.ComputeAIConcession(0.6, money.MustNew(1000), money.MustNew(700))
	if got != 0 {
		t.Fatalf("want 0 concession on non-positive avg delta, got %v", got)
	}
}

func TestTracker_ConcessionClampsToMaxConcession(t *testing.T) {
	tr := &Tracker{}
	tr.RecordBuyerOffer(money.MustNew(500))
	tr.RecordBuyerOffer(money.MustNew(700)) // delta = 200, way above the 10% cap

	got := tr.ComputeAIConcession(0.9, money.MustNew(1000), money.MustNew(700))
	want := 0.10 * 300 // 10% of |Pa-Rs|
	if got != want {
		t.Fatalf("want clamped to %v, got %v", want, got)
	}
}

func TestTracker_DetectTrendStalled(t *testing.T) {
	tr := &Tracker{}
	for _, p := range []float64{500, 495, 490} {
		tr.RecordBuyerOffer(money.MustNew(p))
	}
	if got := tr.DetectTrend(); got != TrendStalled {
		t.Fatalf("want stalled, got %v", got)
	}
}

func TestTracker_DetectTrendAccelerating(t *testing.T) {
	tr := &Tracker{}
	// deltas: 5, 20 -> spread = 15, needs > 5 to be accelerating
	for _, p := range []float64{500, 505, 525} {
		tr.RecordBuyerOffer(money.MustNew(p))
	}
	if got := tr.DetectTrend(); got != TrendAccelerating {
		t.Fatalf("want accelerating, got %v", got)
	}
}

func TestTracker_DetectTrendDecelerating(t *testing.T) {
	tr := &Tracker{}
	// deltas: 20, 5 -> spread = -15
	for _, p := range []float64{500, 520, 525} {
		tr.RecordBuyerOffer(money.MustNew(p))
	}
	if got := tr.DetectTrend(); got != TrendDecelerating {
		t.Fatalf("want decelerating, got %v", got)
	}
}

func TestAdaptiveAlpha_IdentityBelowHalf(t *testing.T) {
	if got := AdaptiveAlpha(0.6, 0.3); got != 0.6 {
		t.Fatalf("want identity below r=0.5, got %v", got)
	}
}

func TestAdaptiveAlpha_RampsToOneAtDeadline(t *testing.T) {
	if got := AdaptiveAlpha(0.6, 1.0); got != 1.0 {
		t.Fatalf("want 1.0 at r=1.0, got %v", got)
	}
	mid := AdaptiveAlpha(0.6, 0.75)
	if mid <= 0.6 || mid >= 1.0 {
		t.Fatalf("want intermediate value strictly between 0.6 and 1.0, got %v", mid)
	}
}
