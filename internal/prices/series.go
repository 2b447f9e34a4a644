package prices

import (
	"errors"
	"sort"
	"time"
)

// ErrDataUnavailable is returned when an instrument has no price series at
// all. Callers treat it as "skip instrument", not a fatal error.
var ErrDataUnavailable = errors.New("no price data available for instrument")

// Point is a single daily close.
type Point struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Series is an ordered sequence of daily closes, strictly increasing by
// date, with missing trading days already forward-filled.
type Series []Point

// Provider supplies a per-instrument price series.
type Provider interface {
	PriceSeries(code string) (Series, error)
}

// Normalize sorts points ascending by date and deduplicates by date,
// keeping the last value seen for a repeated date.
func Normalize(points []Point) Series {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := sorted[:0]
	for _, p := range sorted {
		if len(out) > 0 && out[len(out)-1].Date.Equal(p.Date) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return Series(out)
}

// From returns the sub-series of points dated on or after entry.
func (s Series) From(entry time.Time) Series {
	i := sort.Search(len(s), func(i int) bool {
		return !s[i].Date.Before(entry)
	})
	return s[i:]
}

// Last returns the most recent point. ok is false for an empty series.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}
