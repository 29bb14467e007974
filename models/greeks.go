package models

import (
	"fmt"
	"math"

	"github.com/fxquant/fxvol/contract"
)

const twoPi = 2 * math.Pi

// Side selects the call-like (Long) or put-like (Short) branch of the
// side-dependent Greeks.
type Side int

const (
	Long Side = iota
	Short
)

func (s Side) String() string {
	if s == Short {
		return "short"
	}
	return "long"
}

// expTerm is the shared exp(-r_f*T - d1^2/2) factor of the density-bearing
// Greeks.
func expTerm(st State, terms contract.Terms, snap Snapshot) float64 {
	return math.Exp(-terms.ForeignRate*snap.TimeToExpiry - st.D1*st.D1/2)
}

// Delta is the derivative of the option value with respect to the
// underlying.
func Delta(st State, terms contract.Terms, snap Snapshot, side Side) float64 {
	if side == Short {
		return -math.Exp(-terms.ForeignRate*snap.TimeToExpiry) * stdNormal.CDF(-st.D1)
	}
	return math.Exp(-terms.ForeignRate*snap.TimeToExpiry) * stdNormal.CDF(st.D1)
}

// Leverage is delta scaled by underlying/strike.
func Leverage(st State, terms contract.Terms, snap Snapshot, side Side) float64 {
	return Delta(st, terms, snap, side) * snap.Underlying / terms.Strike
}

// Theta is minus one times the derivative of value with respect to time.
func Theta(st State, terms contract.Terms, snap Snapshot, side Side) float64 {
	t := snap.TimeToExpiry
	decay := -expTerm(st, terms, snap) * snap.Underlying * st.Volatility / (2 * math.Sqrt(twoPi*t))
	if side == Short {
		return decay -
			terms.ForeignRate*math.Exp(-terms.ForeignRate*t)*stdNormal.CDF(-st.D1) +
			terms.DomesticRate*math.Exp(terms.DomesticRate*t)*terms.Strike*stdNormal.CDF(-st.D2)
	}
	return decay +
		terms.ForeignRate*math.Exp(-terms.ForeignRate*t)*stdNormal.CDF(st.D1) -
		terms.DomesticRate*math.Exp(terms.DomesticRate*t)*terms.Strike*stdNormal.CDF(st.D2)
}

// Vega is the derivative of value with respect to volatility.
func Vega(st State, terms contract.Terms, snap Snapshot) float64 {
	return expTerm(st, terms, snap) * snap.Underlying * math.Sqrt(snap.TimeToExpiry/twoPi)
}

// Rho is the derivative of value with respect to the domestic rate.
func Rho(st State, terms contract.Terms, snap Snapshot, side Side) float64 {
	t := snap.TimeToExpiry
	if side == Short {
		return -t * math.Exp(-terms.DomesticRate*t) * terms.Strike * stdNormal.CDF(-st.D2)
	}
	return t * math.Exp(-terms.DomesticRate*t) * terms.Strike * stdNormal.CDF(st.D2)
}

// Gamma is the derivative of delta with respect to the underlying.
func Gamma(st State, terms contract.Terms, snap Snapshot) float64 {
	return expTerm(st, terms, snap) / (snap.Underlying * st.Volatility * math.Sqrt(twoPi*snap.TimeToExpiry))
}

// Vanna is the derivative of delta with respect to volatility, equivalently
// of vega with respect to the underlying.
func Vanna(st State, terms contract.Terms, snap Snapshot) float64 {
	return -expTerm(st, terms, snap) * st.D2 / (st.Volatility * math.Sqrt(twoPi))
}

// Vomma is the derivative of vega with respect to volatility.
func Vomma(st State, terms contract.Terms, snap Snapshot) float64 {
	return snap.Underlying * expTerm(st, terms, snap) * math.Sqrt(snap.TimeToExpiry) * st.D1 * st.D2 / st.Volatility
}

// Speed is the derivative of gamma with respect to the underlying.
func Speed(st State, terms contract.Terms, snap Snapshot) float64 {
	return -(Gamma(st, terms, snap) / snap.Underlying) * (1 + st.D1/(st.Volatility*math.Sqrt(snap.TimeToExpiry)))
}

// Zomma is the derivative of gamma with respect to volatility.
func Zomma(st State, terms contract.Terms, snap Snapshot) float64 {
	return Gamma(st, terms, snap) * (st.D1*st.D2 - 1) / st.Volatility
}

// Ultima is the third derivative of value with respect to volatility.
func Ultima(st State, terms contract.Terms, snap Snapshot) float64 {
	d1d2 := st.D1 * st.D2
	return (-expTerm(st, terms, snap) * snap.Underlying * math.Sqrt(snap.TimeToExpiry/twoPi) / (st.Volatility * st.Volatility)) *
		(d1d2*(1-d1d2) + st.D1*st.D1 + st.D2*st.D2)
}

// Greek computes a sensitivity by name. Side is ignored by the side-free
// Greeks (vega, gamma, vanna, vomma, speed, zomma, ultima).
func Greek(name string, st State, terms contract.Terms, snap Snapshot, side Side) (float64, error) {
	switch name {
	case "delta":
		return Delta(st, terms, snap, side), nil
	case "leverage":
		return Leverage(st, terms, snap, side), nil
	case "theta":
		return Theta(st, terms, snap, side), nil
	case "vega":
		return Vega(st, terms, snap), nil
	case "rho":
		return Rho(st, terms, snap, side), nil
	case "gamma":
		return Gamma(st, terms, snap), nil
	case "vanna":
		return Vanna(st, terms, snap), nil
	case "vomma":
		return Vomma(st, terms, snap), nil
	case "speed":
		return Speed(st, terms, snap), nil
	case "zomma":
		return Zomma(st, terms, snap), nil
	case "ultima":
		return Ultima(st, terms, snap), nil
	}
	return 0, fmt.Errorf("unknown greek %q", name)
}

// Report aggregates the calibrated state and every sensitivity for one side.
type Report struct {
	Volatility float64
	D1         float64
	D2         float64
	Delta      float64
	Leverage   float64
	Theta      float64
	Vega       float64
	Rho        float64
	Gamma      float64
	Vanna      float64
	Vomma      float64
	Speed      float64
	Zomma      float64
	Ultima     float64
}

// ComputeGreeks evaluates the full sensitivity set for one side.
func ComputeGreeks(st State, terms contract.Terms, snap Snapshot, side Side) Report {
	return Report{
		Volatility: st.Volatility,
		D1:         st.D1,
		D2:         st.D2,
		Delta:      sanitizeFloat(Delta(st, terms, snap, side)),
		Leverage:   sanitizeFloat(Leverage(st, terms, snap, side)),
		Theta:      sanitizeFloat(Theta(st, terms, snap, side)),
		Vega:       sanitizeFloat(Vega(st, terms, snap)),
		Rho:        sanitizeFloat(Rho(st, terms, snap, side)),
		Gamma:      sanitizeFloat(Gamma(st, terms, snap)),
		Vanna:      sanitizeFloat(Vanna(st, terms, snap)),
		Vomma:      sanitizeFloat(Vomma(st, terms, snap)),
		Speed:      sanitizeFloat(Speed(st, terms, snap)),
		Zomma:      sanitizeFloat(Zomma(st, terms, snap)),
		Ultima:     sanitizeFloat(Ultima(st, terms, snap)),
	}
}

func sanitizeFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
