package performance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hkstockanalyzer/internal/ledger"
	"hkstockanalyzer/internal/prices"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func buy(n int, units, price float64) ledger.Transaction {
	return ledger.Transaction{Code: "9988", Date: day(n), Kind: ledger.Buy, Units: units, UnitPrice: price}
}

func sell(n int, units, price float64) ledger.Transaction {
	return ledger.Transaction{Code: "9988", Date: day(n), Kind: ledger.Sell, Units: units, UnitPrice: price}
}

func series(startDay int, closes ...float64) prices.Series {
	s := make(prices.Series, 0, len(closes))
	for i, c := range closes {
		s = append(s, prices.Point{Date: day(startDay + i), Close: c})
	}
	return s
}

func TestReconstructSingleBuyTrajectory(t *testing.T) {
	// Buy 100@10 on day 1, prices 10,11,9,12 on days 1-4.
	txs := []ledger.Transaction{buy(1, 100, 10)}
	result := Reconstruct("9988", txs, series(1, 10, 11, 9, 12))

	require.False(t, result.Skipped)
	record := result.Record

	require.Len(t, record.Trajectory, 4)
	assert.Equal(t, 0.0, record.Trajectory[0].Pct)
	assert.InDelta(t, 10.0, record.Trajectory[1].Pct, 1e-9)
	assert.InDelta(t, -10.0, record.Trajectory[2].Pct, 1e-9)
	assert.InDelta(t, 20.0, record.Trajectory[3].Pct, 1e-9)

	assert.InDelta(t, 20.0, record.CurrentPctChange, 1e-9)
	assert.InDelta(t, 10.0, record.WeightedAvgCost, 1e-9)
	assert.InDelta(t, 12.0, record.CurrentPrice, 1e-9)
	assert.Equal(t, day(1), record.EntryDate)
	assert.InDelta(t, 100.0, record.Units, 1e-9)
	assert.InDelta(t, 200.0, record.UnrealizedPnL, 1e-9)
}

func TestProportionalSellPreservesAverageCost(t *testing.T) {
	// Selling 50% of a 100-unit position with cost basis 1000 halves the
	// cost to 500 and units to 50; average stays 10.
	pos := Position{}
	pos.Apply(buy(1, 100, 10))
	require.InDelta(t, 1000.0, pos.TotalCost, 1e-9)

	pos.Apply(sell(3, 50, 12))
	assert.InDelta(t, 50.0, pos.Units, 1e-9)
	assert.InDelta(t, 500.0, pos.TotalCost, 1e-9)
	assert.InDelta(t, 10.0, pos.AverageCost(), 1e-9)
}

func TestReconstructBuyThenSell(t *testing.T) {
	txs := []ledger.Transaction{buy(1, 100, 10), sell(3, 50, 12)}
	result := Reconstruct("9988", txs, series(1, 10, 11, 12, 13))

	require.False(t, result.Skipped)
	record := result.Record

	// Weighted average cost is unchanged by the proportional sell.
	assert.InDelta(t, 10.0, record.WeightedAvgCost, 1e-9)
	assert.InDelta(t, 50.0, record.Units, 1e-9)
	assert.InDelta(t, 30.0, record.CurrentPctChange, 1e-9)
	assert.InDelta(t, 150.0, record.UnrealizedPnL, 1e-9)

	// The trajectory after the sell still measures against avg cost 10.
	require.Len(t, record.Trajectory, 4)
	assert.InDelta(t, 20.0, record.Trajectory[2].Pct, 1e-9)
	assert.InDelta(t, 30.0, record.Trajectory[3].Pct, 1e-9)
}

func TestSellOnlyInstrumentIsSkipped(t *testing.T) {
	txs := []ledger.Transaction{sell(1, 100, 10)}
	result := Reconstruct("9988", txs, series(1, 10, 11))

	assert.True(t, result.Skipped)
	assert.Equal(t, SkipNoBuyTransactions, result.Reason)
	assert.Nil(t, result.Record)
}

func TestNoPricesAfterEntryIsSkipped(t *testing.T) {
	txs := []ledger.Transaction{buy(10, 100, 10)}
	result := Reconstruct("9988", txs, series(1, 10, 11, 12))

	assert.True(t, result.Skipped)
	assert.Equal(t, SkipNoPricesAfterEntry, result.Reason)
}

func TestClosedPositionHoldsFlatLine(t *testing.T) {
	// Full exit on day 3: later dates emit 0, not omitted.
	txs := []ledger.Transaction{buy(1, 100, 10), sell(3, 100, 12)}
	result := Reconstruct("9988", txs, series(1, 10, 11, 12, 13, 14))

	require.False(t, result.Skipped)
	record := result.Record

	require.Len(t, record.Trajectory, 5)
	assert.Equal(t, 0.0, record.Trajectory[2].Pct)
	assert.Equal(t, 0.0, record.Trajectory[3].Pct)
	assert.Equal(t, 0.0, record.Trajectory[4].Pct)

	// Degenerate current return falls back to 0, never divides by zero.
	assert.Equal(t, 0.0, record.WeightedAvgCost)
	assert.Equal(t, 0.0, record.CurrentPctChange)
}

func TestTrajectoryClampBounds(t *testing.T) {
	txs := []ledger.Transaction{buy(1, 100, 10)}
	result := Reconstruct("9988", txs, series(1, 10, 5000, 10, 0))

	require.False(t, result.Skipped)
	record := result.Record

	require.Len(t, record.Trajectory, 4)
	assert.Equal(t, 1000.0, record.Trajectory[1].Pct) // 49900% capped
	assert.Equal(t, -100.0, record.Trajectory[3].Pct)

	for _, p := range record.Trajectory {
		assert.GreaterOrEqual(t, p.Pct, -100.0)
		assert.LessOrEqual(t, p.Pct, 1000.0)
	}
}

func TestFirstPointForcedToZero(t *testing.T) {
	// Entry-day price differs from the transacted price; the first point
	// is normalized to exactly 0 anyway.
	txs := []ledger.Transaction{buy(1, 100, 10)}
	result := Reconstruct("9988", txs, series(1, 10.7, 11))

	require.False(t, result.Skipped)
	assert.Equal(t, 0.0, result.Record.Trajectory[0].Pct)
}

func TestOversellDoesNotPanic(t *testing.T) {
	txs := []ledger.Transaction{buy(1, 100, 10), sell(2, 150, 12)}

	var result Result
	require.NotPanics(t, func() {
		result = Reconstruct("9988", txs, series(1, 10, 11, 12))
	})
	require.False(t, result.Skipped)

	// Negative units are treated as a closed position.
	assert.Equal(t, 0.0, result.Record.WeightedAvgCost)
	assert.Equal(t, 0.0, result.Record.Trajectory[2].Pct)
}

func TestSameDayTransactionsKeepInputOrder(t *testing.T) {
	// Buy then sell on the same day: the sell sees the bought units.
	txs := []ledger.Transaction{buy(1, 100, 10), sell(1, 50, 11)}
	result := Reconstruct("9988", txs, series(1, 10, 11))

	require.False(t, result.Skipped)
	assert.InDelta(t, 50.0, result.Record.Units, 1e-9)
	assert.InDelta(t, 10.0, result.Record.WeightedAvgCost, 1e-9)
}

func TestInterleavedBuysAndSells(t *testing.T) {
	// Average cost shifts on the second buy, not on sells.
	txs := []ledger.Transaction{
		buy(1, 100, 10),  // units=100 cost=1000 avg=10
		sell(2, 50, 12),  // units=50  cost=500  avg=10
		buy(3, 100, 16),  // units=150 cost=2100 avg=14
		sell(4, 75, 20),  // units=75  cost=1050 avg=14
	}
	result := Reconstruct("9988", txs, series(1, 10, 12, 16, 20, 21))

	require.False(t, result.Skipped)
	record := result.Record

	assert.InDelta(t, 14.0, record.WeightedAvgCost, 1e-9)
	assert.InDelta(t, 75.0, record.Units, 1e-9)
	assert.InDelta(t, 50.0, record.CurrentPctChange, 1e-9)

	// Day 3 measures against the new average of 14.
	assert.InDelta(t, (16.0-14.0)/14.0*100, record.Trajectory[2].Pct, 1e-9)
}

func TestReconstructIsIdempotent(t *testing.T) {
	txs := []ledger.Transaction{buy(1, 100, 10), sell(3, 50, 12)}
	s := series(1, 10, 11, 12, 13)

	first := Reconstruct("9988", txs, s)
	second := Reconstruct("9988", txs, s)

	require.False(t, first.Skipped)
	assert.Equal(t, first.Record, second.Record)
}

func TestForwardFilledPointsAreRealPoints(t *testing.T) {
	// A forward-filled gap behaves like any other price point.
	s := prices.Series{
		{Date: day(1), Close: 10},
		{Date: day(2), Close: 11},
		{Date: day(3), Close: 11}, // forward-filled from day 2
		{Date: day(4), Close: 12},
	}
	txs := []ledger.Transaction{buy(1, 100, 10)}
	result := Reconstruct("9988", txs, s)

	require.False(t, result.Skipped)
	require.Len(t, result.Record.Trajectory, 4)
	assert.InDelta(t, 10.0, result.Record.Trajectory[2].Pct, 1e-9)
}

type mapProvider map[string]prices.Series

func (m mapProvider) PriceSeries(code string) (prices.Series, error) {
	s, ok := m[code]
	if !ok {
		return nil, prices.ErrDataUnavailable
	}
	return s, nil
}

func TestReconstructAllSkipsMissingSeries(t *testing.T) {
	txsByCode := map[string][]ledger.Transaction{
		"9988": {buy(1, 100, 10)},
		"0388": {{Code: "0388", Date: day(1), Kind: ledger.Buy, Units: 10, UnitPrice: 5}},
	}
	provider := mapProvider{"9988": series(1, 10, 11)}

	records, skips := ReconstructAll(txsByCode, provider)

	require.Len(t, records, 1)
	assert.Contains(t, records, "9988")

	require.Len(t, skips, 1)
	assert.Equal(t, "0388", skips[0].Code)
	assert.Equal(t, SkipNoPriceSeries, skips[0].Reason)
}

func TestReconstructAllEmptyLedger(t *testing.T) {
	records, skips := ReconstructAll(map[string][]ledger.Transaction{}, mapProvider{})
	assert.Empty(t, records)
	assert.Empty(t, skips)
}
