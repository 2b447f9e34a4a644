package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(date, kind, code, units, price string) Row {
	return Row{
		Date:      date,
		Kind:      kind,
		Code:      code,
		Category:  "HK Stock",
		Units:     units,
		UnitPrice: price,
	}
}

func TestCleanCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"123.45", 123.45},
		{"$1,234.50", 1234.5},
		{"HK$88.00", 88.0},
		{" 42 ", 42.0},
		{"", 0.0},
		{"n/a", 0.0},
		{"1,000,000", 1000000.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanCurrency(tt.in), "input %q", tt.in)
	}
}

func TestParseDateFormats(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2024-03-05", "2024/03/05", "05/03/2024"} {
		got, ok := ParseDate(in)
		require.True(t, ok, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, ok := ParseDate("not a date")
	assert.False(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
}

func TestLoadDropsUnparseableDates(t *testing.T) {
	rows := []Row{
		row("2024-01-01", "Buy", "9988", "100", "10"),
		row("garbage", "Buy", "9988", "100", "10"),
	}

	ledger := Load(rows, Filter{Category: "HK Stock"})
	require.Contains(t, ledger, "9988")
	assert.Len(t, ledger["9988"], 1)
}

func TestLoadFiltersCategoryAndCode(t *testing.T) {
	rows := []Row{
		row("2024-01-01", "Buy", "9988", "100", "10"),
		{Date: "2024-01-01", Kind: "Buy", Code: "0005", Category: "US Stock", Units: "100", UnitPrice: "10"},
		row("2024-01-01", "Buy", "AAPL", "100", "10"),  // not a 4-digit code
		row("2024-01-01", "Buy", "12345", "100", "10"), // wrong width
	}

	ledger := Load(rows, Filter{Category: "HK Stock"})
	assert.Len(t, ledger, 1)
	assert.Contains(t, ledger, "9988")
}

func TestLoadExcludesNonPositiveUnits(t *testing.T) {
	rows := []Row{
		row("2024-01-01", "Buy", "9988", "100", "10"),
		row("2024-01-02", "Buy", "9988", "0", "10"),
		row("2024-01-03", "Buy", "9988", "junk", "10"), // cleans to 0
	}

	ledger := Load(rows, Filter{Category: "HK Stock"})
	require.Contains(t, ledger, "9988")
	assert.Len(t, ledger["9988"], 1)
}

func TestLoadExcludesNetZeroInstruments(t *testing.T) {
	rows := []Row{
		row("2024-01-01", "Buy", "9988", "100", "10"),
		row("2024-01-05", "Sell", "9988", "100", "12"),
		row("2024-01-01", "Buy", "0388", "50", "300"),
	}

	ledger := Load(rows, Filter{Category: "HK Stock"})
	assert.NotContains(t, ledger, "9988")
	assert.Contains(t, ledger, "0388")
}

func TestLoadSortsChronologicallyWithStableTies(t *testing.T) {
	rows := []Row{
		row("2024-01-05", "Sell", "9988", "50", "12"),
		row("2024-01-01", "Buy", "9988", "100", "10"),
		row("2024-01-05", "Buy", "9988", "30", "13"),
	}

	ledger := Load(rows, Filter{Category: "HK Stock"})
	txs := ledger["9988"]
	require.Len(t, txs, 3)

	assert.Equal(t, Buy, txs[0].Kind)
	// Same-day entries keep input order: the sell came first.
	assert.Equal(t, Sell, txs[1].Kind)
	assert.Equal(t, Buy, txs[2].Kind)
}

func TestLoadCleansCurrencyValues(t *testing.T) {
	rows := []Row{
		row("2024-01-01", "Buy", "9988", "1,000", "HK$88.50"),
	}

	ledger := Load(rows, Filter{Category: "HK Stock"})
	txs := ledger["9988"]
	require.Len(t, txs, 1)
	assert.Equal(t, 1000.0, txs[0].Units)
	assert.Equal(t, 88.5, txs[0].UnitPrice)
}

func TestReadCSVMapsColumnsByHeader(t *testing.T) {
	csvData := `Stock,Date,Type,Investment Category,Transacted Units,Transacted Price (per unit)
9988,2024-01-01,Buy,HK Stock,100,"$85.50"
0388,2024-01-02,Buy,HK Stock,50,"HK$300.00"
`
	rows, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "9988", rows[0].Code)
	assert.Equal(t, "Buy", rows[0].Kind)
	assert.Equal(t, "$85.50", rows[0].UnitPrice)
}

func TestReadCSVMissingColumn(t *testing.T) {
	csvData := "Stock,Type\n9988,Buy\n"
	_, err := ReadCSV(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Date")
}
