package main

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/xhhuango/json"

	"github.com/fxquant/fxvol/contract"
	"github.com/fxquant/fxvol/models"
)

const defaultPrecision = 0.05

type quoteEntry struct {
	Identifier   string  `json:"identifier"`
	Bid          float64 `json:"bid"`
	Ask          float64 `json:"ask"`
	TimeToExpiry float64 `json:"time_to_expiry"`
	Underlying   float64 `json:"underlying"`
}

type quoteFile struct {
	Precision float64      `json:"precision"`
	Options   []quoteEntry `json:"options"`
}

type pricedRow struct {
	identifier string
	report     models.Report
	converged  bool
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file: %v", err)
	}

	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	path := os.Getenv("QUOTES_FILE")
	if path == "" {
		path = "quotes.json"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("reading quotes file: %v", err)
	}

	var quotes quoteFile
	if err := json.Unmarshal(raw, &quotes); err != nil {
		log.Fatalf("parsing quotes file %s: %v", path, err)
	}
	precision := quotes.Precision
	if precision <= 0 {
		precision = defaultPrecision
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var rows []pricedRow

	// Each option carries its own terms/snapshot/state triple, so the
	// whole book prices in parallel.
	for _, q := range quotes.Options {
		wg.Add(1)
		go func(q quoteEntry) {
			defer wg.Done()

			terms, err := contract.Parse(q.Identifier, contract.DefaultRiskFreeRates)
			if err != nil {
				log.Errorf("skipping %q: %v", q.Identifier, err)
				return
			}

			snap := models.Snapshot{
				Bid:          q.Bid,
				Ask:          q.Ask,
				TimeToExpiry: q.TimeToExpiry,
				Underlying:   q.Underlying,
			}

			// Calibrates to the bid: we value options we would be
			// selling, so the buyer's side of the quote is the one
			// the model has to explain.
			state, err := models.Calibrate(terms, snap, models.BidLeg, precision)
			if err != nil {
				log.Errorf("calibrating %q: %v", q.Identifier, err)
				return
			}
			if !state.Converged {
				log.Warnf("%q: calibration did not converge (vol %.4f)", q.Identifier, state.Volatility)
			}

			report := models.ComputeGreeks(state, terms, snap, models.Long)

			mu.Lock()
			rows = append(rows, pricedRow{identifier: q.Identifier, report: report, converged: state.Converged})
			mu.Unlock()

			log.WithFields(log.Fields{
				"pair":   terms.BaseCurrency + "/" + terms.QuoteCurrency,
				"strike": terms.Strike,
				"vol":    state.Volatility,
				"d1":     state.D1,
				"d2":     state.D2,
			}).Debug("calibrated")
		}(q)
	}
	wg.Wait()

	if len(rows) == 0 {
		log.Fatal("no options priced")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Option", "Vol", "Delta", "Gamma", "Vega", "Theta", "Rho", "Converged"})
	for _, r := range rows {
		table.Append([]string{
			r.identifier,
			fmt.Sprintf("%.4f", r.report.Volatility),
			fmt.Sprintf("%.4f", r.report.Delta),
			fmt.Sprintf("%.4f", r.report.Gamma),
			fmt.Sprintf("%.4f", r.report.Vega),
			fmt.Sprintf("%.4f", r.report.Theta),
			fmt.Sprintf("%.4f", r.report.Rho),
			strconv.FormatBool(r.converged),
		})
	}
	table.Render()
}
