package ledger

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// TxKind distinguishes buy and sell transactions.
type TxKind string

const (
	Buy  TxKind = "Buy"
	Sell TxKind = "Sell"
)

// Transaction is a single cleaned buy or sell of an instrument.
// It is immutable once created.
type Transaction struct {
	Code      string    `json:"code"`
	Date      time.Time `json:"date"`
	Kind      TxKind    `json:"kind"`
	Units     float64   `json:"units"`
	UnitPrice float64   `json:"unit_price"`
}

// Row is one raw record from the portfolio file, before cleaning.
type Row struct {
	Date      string
	Kind      string
	Code      string
	Category  string
	Units     string
	UnitPrice string
}

// Filter restricts which rows enter the ledger.
type Filter struct {
	Category string // substring match on the investment category
}

var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
}

// ParseDate tries the known portfolio date formats in order.
// The second return value is false when no format matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CleanCurrency strips currency symbols and separators before converting.
// Unconvertible values become 0.0 rather than failing the load.
func CleanCurrency(s string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", "HK", "").Replace(s)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0.0
	}
	return v
}

// validCode reports whether code is a fixed-width 4-digit instrument code.
func validCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Load cleans raw rows into per-instrument chronological transaction lists.
//
// Rows with unparseable dates are dropped silently. Quantities and prices
// are cleaned as currency values; rows whose cleaned units are not strictly
// positive are excluded. Instruments whose raw net units (buys minus sells)
// are not strictly positive over the full history are excluded entirely.
func Load(rows []Row, filter Filter) map[string][]Transaction {
	byCode := make(map[string][]Transaction)

	for _, row := range rows {
		if filter.Category != "" && !strings.Contains(row.Category, filter.Category) {
			continue
		}

		code := strings.TrimSpace(row.Code)
		if !validCode(code) {
			continue
		}

		date, ok := ParseDate(row.Date)
		if !ok {
			continue
		}

		kind := TxKind(strings.TrimSpace(row.Kind))
		if kind != Buy && kind != Sell {
			continue
		}

		units := CleanCurrency(row.Units)
		if units <= 0 {
			continue
		}
		price := CleanCurrency(row.UnitPrice)
		if price < 0 {
			continue
		}

		byCode[code] = append(byCode[code], Transaction{
			Code:      code,
			Date:      date,
			Kind:      kind,
			Units:     units,
			UnitPrice: price,
		})
	}

	for code, txs := range byCode {
		// Stable sort by date only; same-day order is input order.
		sort.SliceStable(txs, func(i, j int) bool {
			return txs[i].Date.Before(txs[j].Date)
		})

		net := 0.0
		for _, tx := range txs {
			if tx.Kind == Buy {
				net += tx.Units
			} else {
				net -= tx.Units
			}
		}
		if net <= 0 {
			delete(byCode, code)
			continue
		}
		byCode[code] = txs
	}

	return byCode
}
