package negotiation

import (
	"testing"

	"negotiatord/internal/money"
)

func TestValidate_BelowFloorOverridesToReservation(t *testing.T) {
	got := Validate(money.MustNew(600), money.MustNew(700), money.MustNew(1000))
	if !got.WasOverridden || got.Reason != "below floor" {
		t.Fatalf("want overridden below floor, got %+v", got)
	}
	if got.Price.Float64() != 700 {
		t.Fatalf("want clamped to 700, got %v", got.Price.Float64())
	}
}

func TestValidate_AboveAnchorOverridesToAnchor(t *testing.T) {
	got := Validate(money.MustNew(1200), money.MustNew(700), money.MustNew(1000))
	if !got.WasOverridden || got.Reason != "exceeds anchor" {
		t.Fatalf("want overridden exceeds anchor, got %+v", got)
	}
	if got.Price.Float64() != 1000 {
		t.Fatalf("want clamped to 1000, got %v", got.Price.Float64())
	}
}

func TestValidate_WithinRangePassesThrough(t *testing.T) {
	got := Validate(money.MustNew(850), money.MustNew(700), money.MustNew(1000))
	if got.WasOverridden {
		t.Fatalf("want not overridden, got %+v", got)
	}
	if got.Price.Float64() != 850 {
		t.Fatalf("want 850 unchanged, got %v", got.Price.Float64())
	}
}
