// Package fundamentals loads ticker reference data (sector, industry, market
// cap, average volume) from CSV and seeds the ticker store with it.
package fundamentals

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"dipsnipe/internal/domain"
	"dipsnipe/internal/store"
)

// LoadCSV reads ticker descriptors from a CSV file with a header row. Expected
// columns: ticker, sector, industry, market_cap, avg_volume. Column order is
// taken from the header; unknown columns are ignored.
func LoadCSV(path string) ([]domain.TickerDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]domain.TickerDescriptor, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["ticker"]; !ok {
		return nil, fmt.Errorf("missing required ticker column")
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var descs []domain.TickerDescriptor
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ticker := strings.ToUpper(field(row, "ticker"))
		if ticker == "" {
			continue
		}

		d := domain.TickerDescriptor{
			Ticker:   ticker,
			Sector:   field(row, "sector"),
			Industry: field(row, "industry"),
		}
		if v := field(row, "market_cap"); v != "" {
			if d.MarketCap, err = strconv.ParseInt(v, 10, 64); err != nil {
				return nil, fmt.Errorf("line %d: bad market_cap %q", line, v)
			}
		}
		if v := field(row, "avg_volume"); v != "" {
			if d.AvgVolume, err = strconv.ParseInt(v, 10, 64); err != nil {
				return nil, fmt.Errorf("line %d: bad avg_volume %q", line, v)
			}
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// Populate upserts the descriptors into the ticker store and returns how many
// were written.
func Populate(ctx context.Context, ts store.TickerStore, descs []domain.TickerDescriptor) (int, error) {
	log := slog.Default().With("component", "fundamentals")
	for i, d := range descs {
		if err := ts.UpsertTicker(ctx, d); err != nil {
			return i, fmt.Errorf("upserting %s: %w", d.Ticker, err)
		}
	}
	log.Info("populated tickers", "count", len(descs))
	return len(descs), nil
}
