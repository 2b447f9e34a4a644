package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column headers in the exported portfolio file.
const (
	colDate     = "Date"
	colType     = "Type"
	colStock    = "Stock"
	colCategory = "Investment Category"
	colUnits    = "Transacted Units"
	colPrice    = "Transacted Price (per unit)"
)

// ReadCSV parses the portfolio export into raw rows, mapping columns by
// header name so column order does not matter.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colDate, colType, colStock} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rows = append(rows, Row{
			Date:      field(record, colDate),
			Kind:      field(record, colType),
			Code:      field(record, colStock),
			Category:  field(record, colCategory),
			Units:     field(record, colUnits),
			UnitPrice: field(record, colPrice),
		})
	}

	return rows, nil
}

// LoadFile reads and cleans the portfolio file in one step.
func LoadFile(path string, filter Filter) (map[string][]Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open portfolio file: %w", err)
	}
	defer file.Close()

	rows, err := ReadCSV(file)
	if err != nil {
		return nil, err
	}

	return Load(rows, filter), nil
}
