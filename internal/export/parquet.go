// Package export writes Parquet snapshots of a day's metrics and cached bars
// for downstream analysis tooling.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"dipsnipe/internal/store"
)

// Exporter writes daily Parquet snapshots under a data directory.
type Exporter struct {
	store   Store
	dataDir string
	log     *slog.Logger
}

// Store is the read surface the exporter snapshots from.
type Store interface {
	store.MetricStore
	store.BarStore
}

// NewExporter creates an Exporter rooted at dataDir.
func NewExporter(st Store, dataDir string) *Exporter {
	return &Exporter{
		store:   st,
		dataDir: dataDir,
		log:     slog.Default().With("component", "export"),
	}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// MetricRecord is the Parquet schema for one ticker's daily metrics.
type MetricRecord struct {
	Ticker           string  `parquet:"ticker"`
	Date             string  `parquet:"date"`
	Sector           string  `parquet:"sector"`
	Industry         string  `parquet:"industry"`
	MarketCap        int64   `parquet:"market_cap"`
	AvgVolume        int64   `parquet:"avg_volume"`
	DayReturnPct     float64 `parquet:"day_return_pct"`
	IntradayRangePct float64 `parquet:"intraday_range_pct"`
	ExtremumTime     string  `parquet:"extremum_time"`
	OpenPrice        float64 `parquet:"open_price"`
	ClosePrice       float64 `parquet:"close_price"`
	IntradayLow      float64 `parquet:"intraday_low"`
	IntradayHigh     float64 `parquet:"intraday_high"`
	DataSource       string  `parquet:"data_source"`
}

// BarRecord is the Parquet schema for one cached intraday bar.
type BarRecord struct {
	Ticker    string  `parquet:"ticker"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// ExportDay snapshots the metrics and cached bars for one trading day to
//
//	<dataDir>/export/metrics_<YYYY-MM-DD>.parquet
//	<dataDir>/export/bars_<YYYY-MM-DD>.parquet
//
// It returns the number of metric rows written.
func (e *Exporter) ExportDay(ctx context.Context, day time.Time) (int, error) {
	date := day.Format("2006-01-02")

	recs, err := e.store.MetricsForDay(ctx, day, store.TickerFilter{})
	if err != nil {
		return 0, fmt.Errorf("reading metrics for %s: %w", date, err)
	}

	metricRows := make([]MetricRecord, 0, len(recs))
	var barRows []BarRecord
	for _, r := range recs {
		metricRows = append(metricRows, MetricRecord{
			Ticker:           r.Ticker,
			Date:             r.Date,
			Sector:           r.Sector,
			Industry:         r.Industry,
			MarketCap:        r.MarketCap,
			AvgVolume:        r.AvgVolume,
			DayReturnPct:     r.DayReturnPct,
			IntradayRangePct: r.IntradayRangePct,
			ExtremumTime:     r.ExtremumTime,
			OpenPrice:        r.OpenPrice,
			ClosePrice:       r.ClosePrice,
			IntradayLow:      r.IntradayLow,
			IntradayHigh:     r.IntradayHigh,
			DataSource:       string(r.Source),
		})

		bars, err := e.store.BarsForDay(ctx, r.Ticker, day)
		if err != nil {
			return 0, fmt.Errorf("reading bars for %s: %w", r.Ticker, err)
		}
		for _, b := range bars {
			barRows = append(barRows, BarRecord{
				Ticker:    b.Ticker,
				Timestamp: b.Timestamp.UnixMilli(),
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
			})
		}
	}

	if err := writeParquetFile(e.metricsPath(date), metricRows); err != nil {
		return 0, fmt.Errorf("writing metrics snapshot for %s: %w", date, err)
	}
	if err := writeParquetFile(e.barsPath(date), barRows); err != nil {
		return 0, fmt.Errorf("writing bars snapshot for %s: %w", date, err)
	}

	e.log.Info("exported snapshot", "date", date,
		"metrics", len(metricRows), "bars", len(barRows))
	return len(metricRows), nil
}

// ---------------------------------------------------------------------------
// Path and file helpers
// ---------------------------------------------------------------------------

func (e *Exporter) metricsPath(date string) string {
	return filepath.Join(e.dataDir, "export", "metrics_"+date+".parquet")
}

func (e *Exporter) barsPath(date string) string {
	return filepath.Join(e.dataDir, "export", "bars_"+date+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}
