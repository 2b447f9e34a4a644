package prices

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hkstockanalyzer/internal/utils"
)

// sheetDateFormat is the date format used in the price sheet.
const sheetDateFormat = "2006/01/02"

// Export URL formats tried in order; public sheets answer at least one.
var sheetURLFormats = []string{
	"https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=0",
	"https://docs.google.com/spreadsheets/d/%s/export?format=csv",
	"https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv",
}

// SheetClient loads daily closing prices from a Google Sheets CSV export.
//
// The sheet layout has one column per instrument code holding dates, with
// the adjacent column holding that instrument's closing price. The first
// data row is a sub-header and is skipped.
type SheetClient struct {
	sheetID string
	client  *http.Client
	logger  utils.Logger

	mu     sync.Mutex
	series map[string]Series
}

func NewSheetClient(sheetID string, timeout time.Duration, logger utils.Logger) *SheetClient {
	return &SheetClient{
		sheetID: sheetID,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// PriceSeries returns the series for one instrument, fetching and caching
// the whole sheet on first use. Instruments absent from the sheet yield
// ErrDataUnavailable.
func (c *SheetClient) PriceSeries(code string) (Series, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.series == nil {
		series, err := c.fetchAll()
		if err != nil {
			return nil, err
		}
		c.series = series
	}

	s, ok := c.series[code]
	if !ok || len(s) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, code)
	}
	return s, nil
}

func (c *SheetClient) fetchAll() (map[string]Series, error) {
	var lastErr error
	for attempt, format := range sheetURLFormats {
		url := fmt.Sprintf(format, c.sheetID)
		c.logger.Debug("Fetching price sheet, attempt %d: %s", attempt+1, url)

		records, err := c.fetchCSV(url)
		if err != nil {
			c.logger.Error("Price sheet attempt %d failed: %v", attempt+1, err)
			lastErr = err
			continue
		}

		series := ParseSheet(records)
		c.logger.Info("Loaded price series for %d instruments", len(series))
		return series, nil
	}
	return nil, fmt.Errorf("all price sheet attempts failed: %w", lastErr)
}

func (c *SheetClient) fetchCSV(url string) ([][]string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ParseSheet extracts per-instrument series from the raw sheet records.
// Rows with unparseable dates are dropped; blank or unparseable closes are
// forward-filled from the last known price.
func ParseSheet(records [][]string) map[string]Series {
	if len(records) < 3 {
		return map[string]Series{}
	}

	header := records[0]
	data := records[2:] // records[1] is the sheet's sub-header row

	out := make(map[string]Series)
	for col, name := range header {
		code := strings.TrimSpace(name)
		if !isInstrumentCode(code) || col+1 >= len(header) {
			continue
		}

		var points []Point
		lastClose := 0.0
		haveClose := false

		for _, record := range data {
			if col >= len(record) {
				continue
			}
			date, err := time.Parse(sheetDateFormat, strings.TrimSpace(record[col]))
			if err != nil {
				continue
			}

			if col+1 < len(record) {
				raw := strings.ReplaceAll(strings.TrimSpace(record[col+1]), ",", "")
				if v, err := strconv.ParseFloat(raw, 64); err == nil {
					lastClose = v
					haveClose = true
				}
			}
			if !haveClose {
				continue // nothing to forward-fill from yet
			}

			points = append(points, Point{Date: date, Close: lastClose})
		}

		if len(points) > 0 {
			out[code] = Normalize(points)
		}
	}

	return out
}

func isInstrumentCode(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
