package performance

import (
	"time"

	"hkstockanalyzer/internal/ledger"
	"hkstockanalyzer/internal/prices"
)

// Return trajectory bounds. Extreme values are capped to keep chart
// scaling usable.
const (
	maxReturnPct = 1000.0
	minReturnPct = -100.0
)

// Position is the holder's state at a point in the replay: units held and
// the total cost paid for them.
type Position struct {
	Units     float64
	TotalCost float64
}

// Apply folds one transaction into the position. Buys add cost at the
// transacted price; sells remove cost in proportion to the fraction of
// units sold, so the average cost of the remainder is unchanged.
func (p *Position) Apply(tx ledger.Transaction) {
	switch tx.Kind {
	case ledger.Buy:
		p.TotalCost += tx.Units * tx.UnitPrice
		p.Units += tx.Units
	case ledger.Sell:
		if p.Units > 0 {
			costPerUnit := p.TotalCost / p.Units
			p.TotalCost -= costPerUnit * tx.Units
			p.Units -= tx.Units
		}
	}
}

// AverageCost is cost per unit held, or 0 when no units are held.
func (p Position) AverageCost() float64 {
	if p.Units <= 0 {
		return 0
	}
	return p.TotalCost / p.Units
}

// ReturnPoint is one dated percentage return in a trajectory.
type ReturnPoint struct {
	Date time.Time `json:"date"`
	Pct  float64   `json:"pct"`
}

// Record is the reconstructed performance of one instrument. It is built
// once per analysis run and immutable afterwards.
type Record struct {
	Code             string        `json:"code"`
	EntryDate        time.Time     `json:"entry_date"`
	WeightedAvgCost  float64       `json:"weighted_avg_cost"`
	CurrentPrice     float64       `json:"current_price"`
	CurrentPctChange float64       `json:"current_pct_change"`
	Units            float64       `json:"units"`
	UnrealizedPnL    float64       `json:"unrealized_pnl"`
	Trajectory       []ReturnPoint `json:"trajectory"`
}

// SkipReason says why no record could be produced for an instrument.
type SkipReason string

const (
	SkipNone               SkipReason = ""
	SkipNoBuyTransactions  SkipReason = "no buy transactions"
	SkipNoPricesAfterEntry SkipReason = "no prices on or after entry date"
	SkipNoPriceSeries      SkipReason = "no price series"
)

// Result is the per-instrument outcome of a reconstruction: either a
// record or an explicit skip marker with a reason.
type Result struct {
	Code    string     `json:"code"`
	Record  *Record    `json:"record,omitempty"`
	Skipped bool       `json:"skipped"`
	Reason  SkipReason `json:"reason,omitempty"`
}

func skipped(code string, reason SkipReason) Result {
	return Result{Code: code, Skipped: true, Reason: reason}
}

// Reconstruct replays one instrument's chronological transactions against
// its price series and derives the full return trajectory from first entry
// to the latest price point.
//
// The replay is a single incremental pass: for each date in the restricted
// series, all transactions dated on or before it have been applied, in the
// order given. This matches a full per-date recomputation because the
// transaction list is sorted by date with input order as tie-break.
func Reconstruct(code string, txs []ledger.Transaction, series prices.Series) Result {
	entryDate, ok := firstBuyDate(txs)
	if !ok {
		return skipped(code, SkipNoBuyTransactions)
	}

	entrySeries := series.From(entryDate)
	if len(entrySeries) == 0 {
		return skipped(code, SkipNoPricesAfterEntry)
	}

	var (
		pos        Position
		next       int
		trajectory []ReturnPoint
	)
	for _, point := range entrySeries {
		for next < len(txs) && !txs[next].Date.After(point.Date) {
			pos.Apply(txs[next])
			next++
		}

		if pos.Units > 0 {
			avg := pos.AverageCost()
			pct := (point.Close - avg) / avg * 100
			trajectory = append(trajectory, ReturnPoint{Date: point.Date, Pct: clamp(pct)})
		} else if len(trajectory) > 0 {
			// Position closed; hold the line flat at 0.
			trajectory = append(trajectory, ReturnPoint{Date: point.Date, Pct: 0.0})
		}
	}

	if len(trajectory) > 0 {
		// First point is the entry itself; normalize away rounding and
		// same-day timing noise.
		trajectory[0].Pct = 0.0
	}

	// Final position from one full replay of the entire history.
	var final Position
	for _, tx := range txs {
		final.Apply(tx)
	}

	weightedAvgCost := final.AverageCost()

	last, _ := series.Last()
	currentPct := 0.0
	if weightedAvgCost > 0 {
		// The authoritative current return is not subject to the
		// trajectory clamp.
		currentPct = (last.Close - weightedAvgCost) / weightedAvgCost * 100
	}

	return Result{
		Code: code,
		Record: &Record{
			Code:             code,
			EntryDate:        entryDate,
			WeightedAvgCost:  weightedAvgCost,
			CurrentPrice:     last.Close,
			CurrentPctChange: currentPct,
			Units:            final.Units,
			UnrealizedPnL:    (last.Close - weightedAvgCost) * final.Units,
			Trajectory:       trajectory,
		},
	}
}

// ReconstructAll runs the reconstruction for every instrument in the
// ledger. Instruments without price data are skipped, never fatal; the
// output is a best-effort partial mapping plus the skip markers.
func ReconstructAll(txsByCode map[string][]ledger.Transaction, provider prices.Provider) (map[string]*Record, []Result) {
	records := make(map[string]*Record)
	var skips []Result

	for code, txs := range txsByCode {
		series, err := provider.PriceSeries(code)
		if err != nil {
			// ErrDataUnavailable and provider failures alike skip the
			// instrument; the run continues with the rest.
			skips = append(skips, skipped(code, SkipNoPriceSeries))
			continue
		}

		result := Reconstruct(code, txs, series)
		if result.Skipped {
			skips = append(skips, result)
			continue
		}
		records[code] = result.Record
	}

	return records, skips
}

func firstBuyDate(txs []ledger.Transaction) (time.Time, bool) {
	for _, tx := range txs {
		if tx.Kind == ledger.Buy {
			return tx.Date, true
		}
	}
	return time.Time{}, false
}

func clamp(pct float64) float64 {
	if pct > maxReturnPct {
		return maxReturnPct
	}
	if pct < minReturnPct {
		return minReturnPct
	}
	return pct
}
