// Package feed is the surface an external price source drives. It holds the
// current market snapshot for one option behind a read-write lock so a
// calibration always sees one consistent snapshot, and keeps a bounded
// quote history for realized-volatility sanity checks.
package feed

import (
	"errors"
	"math"
	"sync"

	"github.com/montanaflynn/stats"

	"github.com/fxquant/fxvol/models"
)

var ErrInsufficientHistory = errors.New("insufficient underlying history")

// Tape holds the live market state for a single option.
type Tape struct {
	mu         sync.RWMutex
	current    models.Snapshot
	maxHistory int
	bids       []float64
	asks       []float64
	underlying []float64
}

// New creates a Tape seeded with an initial snapshot. maxHistory bounds the
// retained quote history; values below 2 fall back to 2.
func New(initial models.Snapshot, maxHistory int) *Tape {
	if maxHistory < 2 {
		maxHistory = 2
	}
	t := &Tape{maxHistory: maxHistory}
	t.Refresh(initial)
	return t
}

// Refresh replaces the snapshot wholesale and appends to the history. All
// four fields change together; readers never observe a partial update.
func (t *Tape) Refresh(snap models.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = snap
	t.bids = appendBounded(t.bids, snap.Bid, t.maxHistory)
	t.asks = appendBounded(t.asks, snap.Ask, t.maxHistory)
	t.underlying = appendBounded(t.underlying, snap.Underlying, t.maxHistory)
}

// Current returns a copy of the latest snapshot.
func (t *Tape) Current() models.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// History returns copies of the retained bid, ask and underlying series,
// oldest first.
func (t *Tape) History() (bids, asks, underlying []float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]float64(nil), t.bids...),
		append([]float64(nil), t.asks...),
		append([]float64(nil), t.underlying...)
}

// RealizedVolatility annualizes the sample standard deviation of log
// returns of the underlying history. periodsPerYear is the refresh cadence
// (e.g. 252 for daily ticks). Needs at least three observations.
func (t *Tape) RealizedVolatility(periodsPerYear float64) (float64, error) {
	t.mu.RLock()
	series := append([]float64(nil), t.underlying...)
	t.mu.RUnlock()

	if len(series) < 3 {
		return 0, ErrInsufficientHistory
	}

	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		returns = append(returns, math.Log(series[i]/series[i-1]))
	}

	sd, err := stats.StandardDeviationSample(stats.Float64Data(returns))
	if err != nil {
		return 0, err
	}
	return sd * math.Sqrt(periodsPerYear), nil
}

func appendBounded(s []float64, v float64, max int) []float64 {
	s = append(s, v)
	if len(s) > max {
		s = s[len(s)-max:]
	}
	return s
}
