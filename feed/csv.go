// Package feed loads yield series from external sources.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/StudioSol/set"
	"github.com/cambi-labs/ccyoe/core"
	"github.com/samber/lo"
)

// ErrMalformedCSV is returned when the input does not look like a yield CSV.
var ErrMalformedCSV = errors.New("malformed yield csv")

// LoadCSV reads a yield series from a CSV file. The first column is the
// observation date (YYYY-MM-DD), every following column one asset's yield in
// basis points.
func LoadCSV(path string) (*core.YieldSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open yield csv: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses a yield series from CSV content.
func ReadCSV(r io.Reader) (*core.YieldSeries, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read yield csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need a header and at least one row", ErrMalformedCSV)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: need a date column and at least one asset", ErrMalformedCSV)
	}

	// Repeated asset columns are a data-preparation bug; catch them here
	// rather than silently keeping the last value.
	assetSet := set.NewLinkedHashSetString()
	assets := header[1:]
	for _, asset := range assets {
		if assetSet.InArray(asset) {
			return nil, fmt.Errorf("%w: duplicate asset column %q", ErrMalformedCSV, asset)
		}
		assetSet.Add(asset)
	}

	points := lo.Map(records[1:], func(row []string, _ int) core.YieldPoint {
		return core.YieldPoint{Yields: make(map[string]float64, len(assets))}
	})
	for i, row := range records[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d",
				ErrMalformedCSV, i+2, len(row), len(header))
		}
		date, err := time.Parse(time.DateOnly, row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedCSV, i+2, err)
		}
		points[i].Date = date

		for j, asset := range assets {
			value, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %v", ErrMalformedCSV, i+2, asset, err)
			}
			points[i].Yields[asset] = value
		}
	}

	return core.NewYieldSeries(points)
}
