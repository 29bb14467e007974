// Package contract parses FX option contract identifiers into pricing terms.
package contract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultRiskFreeRates maps currency codes to annualized continuously
// compounded risk-free rates. Callers may supply their own table to Parse.
var DefaultRiskFreeRates = map[string]float64{
	"AUD": 0.0371,
	"CAD": 0.0225,
	"CHF": 0.0075,
	"EUR": 0.0256,
	"GBP": 0.0256,
	"JPY": 0.0057,
	"USD": 0.0252,
}

var ErrMalformedIdentifier = errors.New("malformed contract identifier")

// UnknownCurrencyError reports a currency code missing from the rate table.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q", e.Code)
}

// Terms holds the static leg of a currency option. Immutable once parsed.
type Terms struct {
	Strike        float64
	BaseCurrency  string
	QuoteCurrency string
	DomesticRate  float64
	ForeignRate   float64
}

// Parse extracts strike, currency pair and interest rates from a contract
// identifier. The identifier is whitespace-separated: the first token is the
// "BASE/QUOTE" pair and the second-to-last token is the strike, with any
// trailing '>' stripped (e.g. "EUR/USD 20. Dec 14:00 1.1000> (-0.0003)").
func Parse(identifier string, rates map[string]float64) (Terms, error) {
	fields := strings.Fields(identifier)
	if len(fields) < 3 {
		return Terms{}, fmt.Errorf("%w: want at least pair and strike tokens, got %d", ErrMalformedIdentifier, len(fields))
	}

	pair := strings.Split(fields[0], "/")
	if len(pair) != 2 {
		return Terms{}, fmt.Errorf("%w: pair token %q", ErrMalformedIdentifier, fields[0])
	}
	base, quote := pair[0], pair[1]
	if len(base) != 3 || len(quote) != 3 {
		return Terms{}, fmt.Errorf("%w: pair token %q", ErrMalformedIdentifier, fields[0])
	}

	raw := strings.TrimSuffix(fields[len(fields)-2], ">")
	strike, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Terms{}, fmt.Errorf("%w: strike token %q", ErrMalformedIdentifier, raw)
	}
	if strike <= 0 {
		return Terms{}, fmt.Errorf("%w: non-positive strike %v", ErrMalformedIdentifier, strike)
	}

	domestic, ok := rates[base]
	if !ok {
		return Terms{}, &UnknownCurrencyError{Code: base}
	}
	foreign, ok := rates[quote]
	if !ok {
		return Terms{}, &UnknownCurrencyError{Code: quote}
	}

	return Terms{
		Strike:        strike,
		BaseCurrency:  base,
		QuoteCurrency: quote,
		DomesticRate:  domestic,
		ForeignRate:   foreign,
	}, nil
}
