// Package protocol maps the negotiation engine's internal results onto the
// Beckn/ONDC on_select message shape, and stamps agreed deals with a stub
// signature pending a real signing integration.
package protocol

import (
	"fmt"
	"strconv"

	"negotiatord/internal/money"
)

// BreakupItem is one line of a Beckn quote's price breakup.
type BreakupItem struct {
	Title string `json:"title"`
	Price Price  `json:"price"`
}

// Price is a Beckn price object: a string-encoded decimal value with a
// fixed currency code.
type Price struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

// Quote is a Beckn-compliant quote: total price, its breakup, and a
// validity window expressed as an ISO 8601 duration.
type Quote struct {
	Price   Price         `json:"price"`
	Breakup []BreakupItem `json:"breakup"`
	TTL     string        `json:"ttl"`
}

const currency = "INR"

func priceOf(p money.Price) Price {
	return Price{Currency: currency, Value: p.String()}
}

// BuildQuote assembles a quote around price, optionally itemizing a
// delivery charge and a discount, with ttlSeconds as the quote's validity
// window.
func BuildQuote(price money.Price, ttlSeconds int, deliveryCharge, discount money.Price) Quote {
	breakup := []BreakupItem{
		{Title: "Item Price", Price: priceOf(price)},
	}
	if deliveryCharge.IsPositive() {
		breakup = append(breakup, BreakupItem{Title: "Delivery Charge", Price: priceOf(deliveryCharge)})
	}
	if discount.IsPositive() {
		breakup = append(breakup, BreakupItem{Title: "Discount", Price: Price{Currency: currency, Value: "-" + discount.String()}})
	}

	total := price.Add(deliveryCharge).Sub(discount)

	return Quote{
		Price:   priceOf(total),
		Breakup: breakup,
		TTL:     SecondsToISODuration(ttlSeconds),
	}
}

// SecondsToISODuration renders a duration in whole seconds as an ISO 8601
// duration string, e.g. 300 -> "PT5M", 3600 -> "PT1H", 90 -> "PT1M30S".
func SecondsToISODuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	out := "PT"
	if hours > 0 {
		out += strconv.Itoa(hours) + "H"
	}
	if minutes > 0 {
		out += strconv.Itoa(minutes) + "M"
	}
	if secs > 0 || (hours == 0 && minutes == 0) {
		out += fmt.Sprintf("%dS", secs)
	}
	return out
}
