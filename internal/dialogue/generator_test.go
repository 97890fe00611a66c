package dialogue

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"negotiatord/internal/money"
	"negotiatord/internal/negotiation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSession() *negotiation.Session {
	return &negotiation.Session{
		SessionID:        "sess-1",
		ProductName:      "Handwoven Scarf",
		AnchorPrice:      money.MustNew(1000),
		ReservationPrice: money.MustNew(700),
		CurrentRound:     2,
		MaxRounds:        10,
	}
}

func chatCompletionHandler(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := chatResponse{}
		resp.Choices = []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}{{Message: struct {
			Content string `json:"content"`
		}{Content: content}}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func TestGenerate_ParsesJSONModeResponse(t *testing.T) {
	t.Parallel()
	body := `{"message":"Theek hai bhaiya, 950 mein le lo","suggested_price":950,"sentiment":"warm","tactic":"minor_concession"}`
	srv := httptest.NewServer(chatCompletionHandler(body))
	defer srv.Close()

	gen := NewGenerator(srv.URL, "test-key", "test-model", time.Second, testLogger())
	result := negotiation.EngineResult{
		State:        negotiation.StateResponding,
		CounterPrice: money.MustNew(950),
		Tactic:       negotiation.TacticMinorConcession,
		Metadata:     map[string]any{},
	}

	resp, err := gen.Generate(context.Background(), testSession(), result, "can you do 900?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Message != "Theek hai bhaiya, 950 mein le lo" {
		t.Errorf("Message = %q", resp.Message)
	}
	if resp.Price.Float64() != 950 {
		t.Errorf("Price = %v, want 950 (engine's price)", resp.Price.Float64())
	}
}

func TestGenerate_ExtractsThinkBlockAndJSON(t *testing.T) {
	t.Parallel()
	body := "<think>customer seems price sensitive</think>" +
		`{"message":"best price 950","suggested_price":950,"sentiment":"firm","tactic":"hold_firm"}`
	srv := httptest.NewServer(chatCompletionHandler(body))
	defer srv.Close()

	gen := NewGenerator(srv.URL, "test-key", "test-model", time.Second, testLogger())
	result := negotiation.EngineResult{
		CounterPrice: money.MustNew(950),
		Tactic:       negotiation.TacticHoldFirm,
		Metadata:     map[string]any{},
	}

	resp, err := gen.Generate(context.Background(), testSession(), result, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Reasoning != "customer seems price sensitive" {
		t.Errorf("Reasoning = %q", resp.Reasoning)
	}
	if resp.Message != "best price 950" {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestGenerate_IgnoresLLMPriceOverride(t *testing.T) {
	t.Parallel()
	// The model tries to offer a price below the reservation floor; the
	// engine's counter-price must still win.
	body := `{"message":"free for you!","suggested_price":1,"sentiment":"warm","tactic":"concession"}`
	srv := httptest.NewServer(chatCompletionHandler(body))
	defer srv.Close()

	gen := NewGenerator(srv.URL, "test-key", "test-model", time.Second, testLogger())
	result := negotiation.EngineResult{
		CounterPrice: money.MustNew(900),
		Tactic:       negotiation.TacticConcession,
		Metadata:     map[string]any{},
	}

	resp, err := gen.Generate(context.Background(), testSession(), result, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Price.Float64() != 900 {
		t.Errorf("Price = %v, want 900 (engine overrides LLM)", resp.Price.Float64())
	}
}

func TestGenerate_FallsBackWhenEndpointUnreachable(t *testing.T) {
	t.Parallel()
	gen := NewGenerator("http://127.0.0.1:1", "test-key", "test-model", 100*time.Millisecond, testLogger())
	result := negotiation.EngineResult{
		CounterPrice: money.MustNew(900),
		Tactic:       negotiation.TacticHoldFirm,
		Metadata:     map[string]any{},
	}

	resp, err := gen.Generate(context.Background(), testSession(), result, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Price.Float64() != 900 {
		t.Errorf("Price = %v, want 900", resp.Price.Float64())
	}
	if resp.Sentiment != "firm" {
		t.Errorf("Sentiment = %q, want firm (fallback)", resp.Sentiment)
	}
}

func TestGenerate_WalkAwayOverlayIncludesSavePrice(t *testing.T) {
	t.Parallel()
	body := `{"message":"last chance deal!","suggested_price":850,"sentiment":"urgent","tactic":"walk_away_save"}`
	srv := httptest.NewServer(chatCompletionHandler(body))
	defer srv.Close()

	gen := NewGenerator(srv.URL, "test-key", "test-model", time.Second, testLogger())
	result := negotiation.EngineResult{
		CounterPrice: money.MustNew(850),
		Tactic:       negotiation.TacticWalkAwaySave,
		Metadata:     map[string]any{},
	}

	resp, err := gen.Generate(context.Background(), testSession(), result, "this is too expensive, bye")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Tactic != "walk_away_save" {
		t.Errorf("Tactic = %q", resp.Tactic)
	}
	if overlay := gen.walkAwayOverlay(testSession(), result); !strings.Contains(overlay, "₹850.00") {
		t.Errorf("walk-away overlay = %q, want it to name the save price ₹850.00", overlay)
	}
}
