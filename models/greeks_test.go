package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// calibratedState pins the interior-root calibration of usdChf/usdChfSnap
// so the spot-check values below are exact. TestCalibrate verifies that
// Calibrate reproduces this state.
var calibratedUsdChf = State{
	Volatility: 5.333106397176161,
	D1:         1.314659974170431,
	D2:         -1.3518932244176496,
	Converged:  true,
}

func TestGreeks(t *testing.T) {
	st := calibratedUsdChf

	t.Run("known values", func(t *testing.T) {
		cases := []struct {
			name string
			side Side
			want float64
		}{
			{"delta", Long, 0.9039913241},
			{"delta", Short, -0.0941354326},
			{"leverage", Long, 0.8564128334},
			{"leverage", Short, -0.0891809361},
			{"theta", Long, -0.8007536012},
			{"theta", Short, -0.7841482538},
			{"vega", Long, 0.0755102664},
			{"rho", Long, 0.0208170637},
			{"rho", Short, -0.2151913896},
			{"gamma", Long, 0.0699198885},
			{"vanna", Long, 0.0425359006},
			{"vomma", Long, -0.0630770713},
			{"speed", Long, -0.1159907609},
			{"zomma", Long, -0.0364116309},
			{"ultima", Long, 0.0036638926},
		}
		for _, tc := range cases {
			got, err := Greek(tc.name, st, usdChf, usdChfSnap, tc.side)
			assert.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9, "%s %s", tc.name, tc.side)
		}
	})

	t.Run("delta parity", func(t *testing.T) {
		long := Delta(st, usdChf, usdChfSnap, Long)
		short := Delta(st, usdChf, usdChfSnap, Short)
		// Phi(d1) + Phi(-d1) == 1, so the two sides differ by the
		// foreign discount factor.
		assert.InDelta(t, math.Exp(-usdChf.ForeignRate*usdChfSnap.TimeToExpiry), long-short, 1e-12)
	})

	t.Run("leverage scales delta", func(t *testing.T) {
		for _, side := range []Side{Long, Short} {
			want := Delta(st, usdChf, usdChfSnap, side) * usdChfSnap.Underlying / usdChf.Strike
			assert.InDelta(t, want, Leverage(st, usdChf, usdChfSnap, side), 1e-12)
		}
	})

	t.Run("speed and zomma relate to gamma", func(t *testing.T) {
		gamma := Gamma(st, usdChf, usdChfSnap)
		sqrtT := math.Sqrt(usdChfSnap.TimeToExpiry)

		wantSpeed := -(gamma / usdChfSnap.Underlying) * (1 + st.D1/(st.Volatility*sqrtT))
		assert.InDelta(t, wantSpeed, Speed(st, usdChf, usdChfSnap), 1e-12)

		wantZomma := gamma * (st.D1*st.D2 - 1) / st.Volatility
		assert.InDelta(t, wantZomma, Zomma(st, usdChf, usdChfSnap), 1e-12)
	})

	t.Run("dispatcher matches direct calls", func(t *testing.T) {
		direct := map[string]float64{
			"delta":    Delta(st, usdChf, usdChfSnap, Short),
			"leverage": Leverage(st, usdChf, usdChfSnap, Short),
			"theta":    Theta(st, usdChf, usdChfSnap, Short),
			"vega":     Vega(st, usdChf, usdChfSnap),
			"rho":      Rho(st, usdChf, usdChfSnap, Short),
			"gamma":    Gamma(st, usdChf, usdChfSnap),
			"vanna":    Vanna(st, usdChf, usdChfSnap),
			"vomma":    Vomma(st, usdChf, usdChfSnap),
			"speed":    Speed(st, usdChf, usdChfSnap),
			"zomma":    Zomma(st, usdChf, usdChfSnap),
			"ultima":   Ultima(st, usdChf, usdChfSnap),
		}
		for name, want := range direct {
			got, err := Greek(name, st, usdChf, usdChfSnap, Short)
			assert.NoError(t, err)
			assert.Equal(t, want, got, name)
		}

		_, err := Greek("charm", st, usdChf, usdChfSnap, Long)
		assert.Error(t, err)
	})

	t.Run("report matches direct calls", func(t *testing.T) {
		report := ComputeGreeks(st, usdChf, usdChfSnap, Long)
		assert.Equal(t, st.Volatility, report.Volatility)
		assert.Equal(t, st.D1, report.D1)
		assert.Equal(t, st.D2, report.D2)
		assert.Equal(t, Delta(st, usdChf, usdChfSnap, Long), report.Delta)
		assert.Equal(t, Theta(st, usdChf, usdChfSnap, Long), report.Theta)
		assert.Equal(t, Vega(st, usdChf, usdChfSnap), report.Vega)
		assert.Equal(t, Ultima(st, usdChf, usdChfSnap), report.Ultima)
	})

	t.Run("report sanitizes degenerate values", func(t *testing.T) {
		degenerate := State{Volatility: 0, D1: 0, D2: 0}
		report := ComputeGreeks(degenerate, usdChf, usdChfSnap, Long)
		assert.False(t, math.IsNaN(report.Gamma))
		assert.False(t, math.IsInf(report.Vomma, 0))
	})
}
