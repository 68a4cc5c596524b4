package market

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/wealthvista/pkg/models"
)

// ErrRateUnavailable matches every *RateUnavailableError via errors.Is.
var ErrRateUnavailable = errors.New("rate unavailable")

// ErrInvalidAmount is returned for NaN or infinite amounts.
var ErrInvalidAmount = errors.New("amount must be a finite number")

// RateUnavailableError reports that neither the direct nor the reverse pair
// is in the rate table. It means "no data", not a rejected request.
type RateUnavailableError struct {
	Pair    string
	Reverse string
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("rate unavailable for %s or %s", e.Pair, e.Reverse)
}

func (e *RateUnavailableError) Is(target error) bool {
	return target == ErrRateUnavailable
}

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	From            string  `json:"from_currency"`
	To              string  `json:"to_currency"`
	Amount          float64 `json:"amount"`
	ConvertedAmount float64 `json:"converted_amount"`
	Rate            float64 `json:"rate"`
}

// Convert resolves from→to against rates. Codes are case-insensitive.
// Resolution order: the direct pair, then the inverse of the reverse pair
// (skipped when that rate is zero), then identity for equal codes.
// A nil rates table behaves as an empty one.
func Convert(rates models.CurrencyRates, from, to string, amount float64) (Conversion, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Conversion{}, ErrInvalidAmount
	}

	c := Conversion{From: from, To: to, Amount: amount}
	pair := models.PairKey(from, to)
	reverse := models.PairKey(to, from)

	if r, ok := rates[pair]; ok {
		c.Rate = r.Rate
		c.ConvertedAmount = amount * r.Rate
		return c, nil
	}
	if r, ok := rates[reverse]; ok && r.Rate != 0 {
		c.Rate = 1 / r.Rate
		c.ConvertedAmount = amount / r.Rate
		return c, nil
	}
	if from == to {
		c.Rate = 1.0
		c.ConvertedAmount = amount
		return c, nil
	}
	return Conversion{}, &RateUnavailableError{Pair: pair, Reverse: reverse}
}
