package negotiation

import (
	"testing"

	"negotiatord/internal/money"
)

func TestComputeOffer_ZeroRoundReturnsAnchor(t *testing.T) {
	anchor := money.MustNew(1000)
	reservation := money.MustNew(700)
	got := ComputeOffer(anchor, reservation, 0, 10, 5, 0)
	if got.Float64() != 1000 {
		t.Fatalf("t=0: want 1000, got %v", got.Float64())
	}
}

func TestComputeOffer_FinalRoundReturnsReservation(t *testing.T) {
	anchor := money.MustNew(1000)
	reservation := money.MustNew(700)
	got := ComputeOffer(anchor, reservation, 10, 10, 5, 0)
	if got.Float64() != 700 {
		t.Fatalf("t=T: want 700, got %v", got.Float64())
	}
}

func TestComputeOffer_LinearMidpoint(t *testing.T) {
	anchor := money.MustNew(1000)
	reservation := money.MustNew(700)
	got := ComputeOffer(anchor, reservation, 5, 10, 1, 0)
	if got.Float64() < 845 || got.Float64() > 855 {
		t.Fatalf("beta=1 midpoint: want in [845,855], got %v", got.Float64())
	}
}

// TestComputeOffer_BoulwareHoldsFirmMidNegotiation exercises the defining
// Boulware property: a high beta concedes less than a linear curve at the
// same round. spec.md's own boundary table puts the beta=3 midpoint offer
// in [755, 800], which is inconsistent with the formula in spec.md's
// component design (and with original_source/app/engine/concession.py,
// the implementation that table was presumably generated from): plugging
// beta=3 into P(t) = Pa + (Rs-Pa)*(t/T)^beta gives 962.5, not ~762 — see
// DESIGN.md "Noted spec inconsistency". This test instead asserts the
// property the formula and the β>1-is-Boulware description both agree on:
// higher beta concedes less at a fixed round than beta=1 does.
func TestComputeOffer_BoulwareHoldsFirmMidNegotiation(t *testing.T) {
	anchor := money.MustNew(1000)
	reservation := money.MustNew(700)

	linear := ComputeOffer(anchor, reservation, 5, 10, 1, 0)
	boulware := ComputeOffer(anchor, reservation, 5, 10, 5, 0)

	if !boulware.GreaterThan(linear) {
		t.Fatalf("boulware (beta=5) should concede less than linear (beta=1) at t=5/10: boulware=%v linear=%v",
			boulware.Float64(), linear.Float64())
	}
	if boulware.Float64() < 850 {
		t.Fatalf("boulware midpoint offer should stay close to anchor, got %v", boulware.Float64())
	}
}

func TestComputeOffer_ConcederDropsFastEarly(t *testing.T) {
	anchor := money.MustNew(1000)
	reservation := money.MustNew(700)

	linear := ComputeOffer(anchor, reservation, 2, 10, 1, 0)
	conceder := ComputeOffer(anchor, reservation, 2, 10, 0.3, 0)

	if !conceder.LessThan(linear) {
		t.Fatalf("conceder (beta=0.3) should concede more than linear (beta=1) early on: conceder=%v linear=%v",
			conceder.Float64(), linear.Float64())
	}
}

func TestComputeOffer_NonPositiveMaxRoundsReturnsAnchor(t *testing.T) {
	anchor := money.MustNew(1000)
	reservation := money.MustNew(700)
	got := ComputeOffer(anchor, reservation, 3, 0, 2, 0)
	if got.Float64() != 1000 {
		t.Fatalf("maxRounds<=0: want anchor 1000, got %v", got.Float64())
	}
}

func TestComputeOffer_ClampsToReservationFloor(t *testing.T) {
	anchor := money.MustNew(1000)
	reservation := money.MustNew(700)
	got := ComputeOffer(anchor, reservation, 50, 10, 1, 0)
	if got.Float64() != 700 {
		t.Fatalf("t>T clamp: want 700, got %v", got.Float64())
	}
}

func TestComputeOffer_NoiseStaysWithinBounds(t *testing.T) {
	anchor := money.MustNew(1000)
	reservation := money.MustNew(700)
	for i := 0; i < 50; i++ {
		got := ComputeOffer(anchor, reservation, 5, 10, 1, 0.1)
		if got.Float64() < 700 || got.Float64() > 1000 {
			t.Fatalf("noisy offer escaped [reservation, anchor]: %v", got.Float64())
		}
	}
}

func TestComputeAspiration_Bounds(t *testing.T) {
	if got := ComputeAspiration(0, 10, 5, 0.6); got != 1.0 {
		t.Fatalf("t=0: want 1.0, got %v", got)
	}
	if got := ComputeAspiration(10, 10, 5, 0.6); got < 0.6 || got > 0.60001 {
		t.Fatalf("t=T: want reservedUtility 0.6, got %v", got)
	}
}
