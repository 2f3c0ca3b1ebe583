// Package httpapi serves the read-only query surface over the persisted
// metrics, bars, and ticker reference data in JSON.
package httpapi

import "dipsnipe/internal/domain"

// HealthResponse reports server and store status.
type HealthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Database string `json:"database"`
}

// SectorsResponse lists distinct sectors.
type SectorsResponse struct {
	Sectors []string `json:"sectors"`
}

// IndustriesResponse lists distinct industries.
type IndustriesResponse struct {
	Industries []string `json:"industries"`
}

// MetricJSON is one metric record joined with its ticker descriptor.
type MetricJSON struct {
	Ticker           string  `json:"ticker"`
	Sector           string  `json:"sector"`
	Industry         string  `json:"industry"`
	MarketCap        int64   `json:"market_cap"`
	AvgVolume        int64   `json:"avg_volume"`
	DayReturnPct     float64 `json:"day_return_pct"`
	IntradayRangePct float64 `json:"intraday_range_pct"`
	ExtremumTime     string  `json:"extremum_time"`
	OpenPrice        float64 `json:"open_price"`
	ClosePrice       float64 `json:"close_price"`
	IntradayLow      float64 `json:"intraday_low"`
	IntradayHigh     float64 `json:"intraday_high"`
	DataSource       string  `json:"data_source"`
	ComputedAt       string  `json:"computed_at"`
}

// MetricsResponse holds the metric records for a date.
type MetricsResponse struct {
	Metrics []MetricJSON `json:"metrics"`
}

// BarJSON is one intraday bar.
type BarJSON struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

// BarsResponse holds the bars for a ticker/date.
type BarsResponse struct {
	Bars []BarJSON `json:"bars"`
}

// DateRangeJSON is the min/max metric date.
type DateRangeJSON struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// StatsResponse summarises the persisted state.
type StatsResponse struct {
	TotalTickers int           `json:"total_tickers"`
	TotalMetrics int           `json:"total_metrics"`
	UniqueDates  int           `json:"unique_dates"`
	DateRange    DateRangeJSON `json:"date_range"`
}

func convertMetric(r domain.MetricRecord) MetricJSON {
	return MetricJSON{
		Ticker:           r.Ticker,
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
		ComputedAt:       r.ComputedAt,
	}
}
