// Package pricing implements the price discovery rules: a scorer that
// requires an available, positively priced quote and a collapse rule that
// prefers the cheapest quote.
package pricing

import (
	"time"
)

// TaskTypePriceCheck is the task type served by these rules.
const TaskTypePriceCheck = "price_check"

// Query is the payload of a price check task.
type Query struct {
	Origin      string    `yaml:"origin"`
	Destination string    `yaml:"destination"`
	Date        time.Time `yaml:"date"`
	Passengers  int       `yaml:"passengers"`
}

// Quote is the result a price strategy returns.
type Quote struct {
	// Price is the total price in Currency units. Must be positive.
	Price float64

	// Currency is an ISO 4217 code.
	Currency string

	// Available reports whether the offer can be booked.
	Available bool

	// Provider names the upstream source (optional).
	Provider string
}

// QuoteFrom extracts a Quote from a strategy result. It accepts Quote,
// *Quote and map[string]any with "price" and "available" keys, which is
// the shape loosely typed sources produce.
func QuoteFrom(result any) (Quote, bool) {
	switch v := result.(type) {
	case Quote:
		return v, true
	case *Quote:
		if v == nil {
			return Quote{}, false
		}
		return *v, true
	case map[string]any:
		return quoteFromMap(v)
	}
	return Quote{}, false
}

// Valid reports whether q carries a positive price and is available.
func (q Quote) Valid() bool {
	return q.Available && q.Price > 0
}

func quoteFromMap(m map[string]any) (Quote, bool) {
	price, ok := toFloat(m["price"])
	if !ok {
		return Quote{}, false
	}
	available, ok := m["available"].(bool)
	if !ok {
		return Quote{}, false
	}
	q := Quote{Price: price, Available: available}
	q.Currency, _ = m["currency"].(string)
	q.Provider, _ = m["provider"].(string)
	return q, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
