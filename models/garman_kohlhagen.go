// Package models implements the Garman-Kohlhagen currency option model:
// implied volatility calibration by bisection and the Greeks derived from
// the calibrated state.
package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fxquant/fxvol/contract"
)

const (
	volBracketLow  = 0.01
	volBracketHigh = 300.0

	// Escape hatches for quotes the model cannot match (stale or
	// arbitraged ticks). The loop exits here instead of hanging; the
	// result is flagged as not converged.
	lowEscape  = 299.9
	highEscape = 0.1
)

var stdNormal = distuv.UnitNormal

var (
	ErrInvalidExpiry      = errors.New("invalid time to expiry")
	ErrInvalidMarketInput = errors.New("invalid market input")
)

// PriceLeg selects which side of the quote calibration matches.
type PriceLeg int

const (
	BidLeg PriceLeg = iota
	AskLeg
)

func (l PriceLeg) String() string {
	if l == AskLeg {
		return "ask"
	}
	return "bid"
}

// Snapshot is one consistent view of the market for a single option.
// The external feed replaces it wholesale; there is no partial merge.
type Snapshot struct {
	Bid          float64
	Ask          float64
	TimeToExpiry float64 // years
	Underlying   float64
}

// ConversionFactor is the quote-to-base conversion, 1/underlying. Derived
// on demand so it can never lag a refreshed underlying.
func (s Snapshot) ConversionFactor() float64 {
	return 1 / s.Underlying
}

// Price returns the quoted price for the given leg.
func (s Snapshot) Price(leg PriceLeg) float64 {
	if leg == AskLeg {
		return s.Ask
	}
	return s.Bid
}

// State is the calibrated model state. D2 = D1 - Volatility*sqrt(T) holds
// on every return from Calibrate. Converged reports whether the precision
// target was met away from the bracket boundaries; a non-converged State
// is still populated and usable as a best-effort answer.
type State struct {
	Volatility float64
	D1         float64
	D2         float64
	Converged  bool
}

// ModelPrice evaluates the forward Garman-Kohlhagen price at the given
// volatility against the given reference price.
func ModelPrice(terms contract.Terms, snap Snapshot, vol, reference float64) float64 {
	d1 := calcD1(terms, snap, vol)
	return math.Exp(-terms.DomesticRate*snap.TimeToExpiry) * stdNormal.CDF(d1) * reference * snap.ConversionFactor()
}

func calcD1(terms contract.Terms, snap Snapshot, vol float64) float64 {
	t := snap.TimeToExpiry
	return (math.Log(snap.Underlying/terms.Strike) + (terms.DomesticRate-terms.ForeignRate+0.5*vol*vol)*t) / (vol * math.Sqrt(t))
}

// Calibrate solves for the implied volatility that matches the model price
// to the chosen quote leg, by bisection over [0.01, 300.0]. It always
// terminates: when the bracket degenerates before the precision target is
// met, the midpoint is returned with Converged set to false.
func Calibrate(terms contract.Terms, snap Snapshot, leg PriceLeg, precision float64) (State, error) {
	if snap.TimeToExpiry <= 0 {
		return State{}, fmt.Errorf("%w: T = %v", ErrInvalidExpiry, snap.TimeToExpiry)
	}
	if snap.Underlying <= 0 {
		return State{}, fmt.Errorf("%w: underlying = %v", ErrInvalidMarketInput, snap.Underlying)
	}
	if terms.Strike <= 0 {
		return State{}, fmt.Errorf("%w: strike = %v", ErrInvalidMarketInput, terms.Strike)
	}
	reference := snap.Price(leg)
	if reference <= 0 {
		return State{}, fmt.Errorf("%w: %s price = %v", ErrInvalidMarketInput, leg, reference)
	}

	low, high := volBracketLow, volBracketHigh

	var vol, d1, diff float64
	for {
		vol = (high + low) / 2
		d1 = calcD1(terms, snap, vol)

		price := math.Exp(-terms.DomesticRate*snap.TimeToExpiry) * stdNormal.CDF(d1) * reference * snap.ConversionFactor()

		diff = reference - price
		if math.Abs(diff) <= precision || high <= highEscape || low >= lowEscape {
			break
		}
		if price < reference {
			low = vol
		} else {
			high = vol
		}
	}

	return State{
		Volatility: vol,
		D1:         d1,
		D2:         d1 - vol*math.Sqrt(snap.TimeToExpiry),
		Converged:  math.Abs(diff) <= precision && vol > volBracketLow+0.001 && vol < lowEscape,
	}, nil
}
