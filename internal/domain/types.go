// Package domain defines the core data types shared across the pipeline:
// intraday bars, derived daily metrics, ticker reference data, and
// data-source provenance.
package domain

import "time"

// DataSource identifies where a bar series came from.
type DataSource string

const (
	// SourceCache marks bars served from the local bar cache.
	SourceCache DataSource = "cache"
	// SourceLive marks bars fetched from the upstream market-data provider.
	SourceLive DataSource = "live"
	// SourceSynthetic marks deterministically generated fallback bars.
	SourceSynthetic DataSource = "synthetic"
)

// Bar is one intraday OHLC observation for a ticker. Timestamp is
// exchange-local. Invariant: Low <= min(Open, Close) <= max(Open, Close) <= High.
type Bar struct {
	Ticker    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// FetchResult is the tagged outcome of a bar fetch: live bars, synthetic
// bars, or nothing. Callers inspect Source to distinguish provenance instead
// of relying on a side-channel.
type FetchResult struct {
	Bars   []Bar
	Source DataSource
}

// Empty reports whether the fetch produced no bars at all.
func (r FetchResult) Empty() bool { return len(r.Bars) == 0 }

// Metrics is the derived end-of-day performance record for one ticker/date.
// All percentages are relative to the opening price of the window.
type Metrics struct {
	DayReturnPct     float64   // (last close - first open) / first open * 100
	IntradayRangePct float64   // (max high - min low) / first open * 100
	ExtremumTime     time.Time // when the intraday low occurred (first occurrence on ties)
	OpenPrice        float64
	ClosePrice       float64
	IntradayLow      float64
	IntradayHigh     float64
}

// TickerDescriptor is static reference data owned by the fundamentals feed.
// The pipeline reads it to build the processing universe and never mutates it.
type TickerDescriptor struct {
	Ticker    string
	Sector    string
	Industry  string
	MarketCap int64
	AvgVolume int64
}

// MetricRecord is a persisted metric row joined with its ticker descriptor,
// as returned by metric queries. Time fields carry the stored string
// representation (exchange-local for ExtremumTime, UTC for ComputedAt).
type MetricRecord struct {
	Ticker           string
	Date             string
	DayReturnPct     float64
	IntradayRangePct float64
	ExtremumTime     string
	OpenPrice        float64
	ClosePrice       float64
	IntradayLow      float64
	IntradayHigh     float64
	Source           DataSource
	ComputedAt       string

	Sector    string
	Industry  string
	MarketCap int64
	AvgVolume int64
}
