// Package dataset loads historical OHLCV series for the simulator from the
// supported backends: CSV files, SQLite, and Redis. Loaders return validated,
// time-ordered bars; acquisition of the data itself (broker or market-data
// APIs) happens upstream.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"stocksim/internal/model"
)

// csv column layout: ts,open,high,low,close,volume
const csvColumns = 6

// LoadCSV reads a bar series from a CSV file. The first row is treated as a
// header when its ts column does not parse. Timestamps are Unix seconds or
// RFC 3339.
func LoadCSV(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = csvColumns

	var bars []model.Bar
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read csv: %w", err)
		}
		line++

		ts, err := parseTS(rec[0])
		if err != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("dataset: csv line %d: %w", line, err)
		}

		var vals [5]float64
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: csv line %d col %d: %w", line, i+1, err)
			}
			vals[i] = v
		}

		bars = append(bars, model.Bar{
			TS:     ts,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}

	if err := model.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("dataset: csv %s: %w", path, err)
	}
	return bars, nil
}

func parseTS(s string) (time.Time, error) {
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q", s)
	}
	return t.UTC(), nil
}
