// Package store defines storage interfaces for ticker reference data, raw
// intraday bars, and derived daily metrics, plus the SQLite implementation
// backing all three.
package store

import (
	"context"
	"time"

	"dipsnipe/internal/domain"
)

// TickerFilter restricts ticker and metric queries. Zero values mean "no
// restriction" for the corresponding field.
type TickerFilter struct {
	MinMarketCap int64
	MaxMarketCap int64
	MinVolume    int64
	Sector       string
	Industry     string
}

// TickerStore persists and retrieves ticker reference data.
type TickerStore interface {
	// UpsertTicker inserts or replaces the descriptor for a ticker.
	UpsertTicker(ctx context.Context, t domain.TickerDescriptor) error

	// FilteredTickers returns descriptors matching the filter, ordered by
	// market cap descending.
	FilteredTickers(ctx context.Context, f TickerFilter) ([]domain.TickerDescriptor, error)

	// Sectors returns the distinct non-empty sectors, ordered ascending.
	Sectors(ctx context.Context) ([]string, error)

	// Industries returns the distinct non-empty industries, optionally scoped
	// to a sector, ordered ascending.
	Industries(ctx context.Context, sector string) ([]string, error)
}

// BarStore is the durable cache of raw intraday bars keyed by
// (ticker, timestamp).
type BarStore interface {
	// BarsForDay returns all stored bars for the ticker whose timestamp falls
	// on the given calendar day, ordered ascending. An empty result means
	// "not cached", not an error.
	BarsForDay(ctx context.Context, ticker string, day time.Time) ([]domain.Bar, error)

	// SaveBars inserts bars that are not already present for their exact
	// (ticker, timestamp) key and reports how many rows were inserted.
	// Existing bars are kept untouched, never overwritten.
	SaveBars(ctx context.Context, ticker string, bars []domain.Bar) (int, error)
}

// DBStats summarises the persisted state.
type DBStats struct {
	TotalTickers int
	TotalMetrics int
	UniqueDates  int
	MinDate      string
	MaxDate      string
}

// MetricStore persists one derived metric record per (ticker, date).
type MetricStore interface {
	// MetricsExist reports whether a metric record is already persisted for
	// the ticker/day.
	MetricsExist(ctx context.Context, ticker string, day time.Time) (bool, error)

	// SaveMetrics upserts the metric record for the ticker/day. A second call
	// for the same key fully replaces the prior record.
	SaveMetrics(ctx context.Context, ticker string, day time.Time, m domain.Metrics, source domain.DataSource) error

	// MetricsForDay returns metric records for the day joined with their
	// ticker descriptors, restricted by the filter, ordered by day return
	// ascending (most negative first).
	MetricsForDay(ctx context.Context, day time.Time, f TickerFilter) ([]domain.MetricRecord, error)

	// Stats returns aggregate counts over the persisted state.
	Stats(ctx context.Context) (DBStats, error)
}
