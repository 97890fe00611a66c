package protocol

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"negotiatord/internal/money"
)

func TestSignAgreement_DeterministicForSameInput(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	a := SignAgreement(logger, "sess-1", "sku-1", money.MustNew(950), now)
	b := SignAgreement(logger, "sess-1", "sku-1", money.MustNew(950), now)

	if a.Digest != b.Digest {
		t.Errorf("expected identical digest for identical input, got %q vs %q", a.Digest, b.Digest)
	}
	if a.Algorithm != "keccak256-stub" {
		t.Errorf("Algorithm = %q", a.Algorithm)
	}
}

func TestSignAgreement_DiffersOnPriceChange(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	a := SignAgreement(logger, "sess-1", "sku-1", money.MustNew(950), now)
	b := SignAgreement(logger, "sess-1", "sku-1", money.MustNew(951), now)

	if a.Digest == b.Digest {
		t.Errorf("expected different digests for different agreed prices")
	}
}
