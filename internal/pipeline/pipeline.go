// Package pipeline drives the per-ticker fetch → cache → compute → persist
// state machine across a ticker universe for one trading day.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dipsnipe/internal/domain"
	"dipsnipe/internal/metrics"
	"dipsnipe/internal/source"
	"dipsnipe/internal/store"
)

// Stats aggregates per-ticker outcomes for one run.
type Stats struct {
	Processed int
	Skipped   int
	Failed    int
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Runner executes the daily metric pipeline over a ticker universe. All
// collaborators are injected; the Runner owns no connections.
type Runner struct {
	tickers store.TickerStore
	bars    store.BarStore
	metrics store.MetricStore
	source  source.BarSource

	minMarketCap   int64
	cacheSynthetic bool
	log            *slog.Logger
}

// NewRunner creates a Runner. minMarketCap bounds the default universe;
// cacheSynthetic controls whether synthetic fallback series are written to
// the bar cache.
func NewRunner(
	tickers store.TickerStore,
	bars store.BarStore,
	ms store.MetricStore,
	src source.BarSource,
	minMarketCap int64,
	cacheSynthetic bool,
) *Runner {
	return &Runner{
		tickers:        tickers,
		bars:           bars,
		metrics:        ms,
		source:         src,
		minMarketCap:   minMarketCap,
		cacheSynthetic: cacheSynthetic,
		log:            slog.Default().With("component", "pipeline"),
	}
}

// Run processes the universe for one trading day, sequentially. When explicit
// is empty, the universe is every ticker at or above the configured
// market-cap floor. Per-ticker failures are counted and skipped; store errors
// abort the run immediately. Already-persisted tickers are skipped, which
// makes an interrupted run safely resumable.
func (r *Runner) Run(ctx context.Context, day time.Time, explicit []string) (Stats, error) {
	universe := explicit
	if len(universe) == 0 {
		descs, err := r.tickers.FilteredTickers(ctx, store.TickerFilter{MinMarketCap: r.minMarketCap})
		if err != nil {
			return Stats{}, fmt.Errorf("resolving universe: %w", err)
		}
		for _, d := range descs {
			universe = append(universe, d.Ticker)
		}
	}

	date := day.Format("2006-01-02")
	r.log.Info("processing universe", "tickers", len(universe), "date", date)

	var stats Stats
	for _, ticker := range universe {
		res, err := r.processTicker(ctx, ticker, day)
		if err != nil {
			return stats, err
		}
		switch res {
		case outcomeProcessed:
			stats.Processed++
		case outcomeSkipped:
			stats.Skipped++
		case outcomeFailed:
			stats.Failed++
		}
	}

	r.log.Info("run complete", "date", date,
		"processed", stats.Processed, "skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}

// processTicker walks one ticker through the state machine:
// AlreadyComputed → ResolveBars → Compute → Persist, or Failed. A returned
// error is an infrastructure failure and aborts the whole run.
func (r *Runner) processTicker(ctx context.Context, ticker string, day time.Time) (outcome, error) {
	exists, err := r.metrics.MetricsExist(ctx, ticker, day)
	if err != nil {
		return 0, fmt.Errorf("checking existing metrics for %s: %w", ticker, err)
	}
	if exists {
		return outcomeSkipped, nil
	}

	bars, err := r.bars.BarsForDay(ctx, ticker, day)
	if err != nil {
		return 0, fmt.Errorf("reading cached bars for %s: %w", ticker, err)
	}

	src := domain.SourceCache
	fetched := false
	if len(bars) == 0 {
		res := r.source.Fetch(ctx, ticker, day)
		if res.Empty() {
			r.log.Warn("no data", "ticker", ticker)
			return outcomeFailed, nil
		}
		bars, src, fetched = res.Bars, res.Source, true
	}

	m, err := metrics.Compute(bars)
	if err != nil {
		r.log.Warn("metric computation failed", "ticker", ticker, "err", err)
		return outcomeFailed, nil
	}

	if err := r.metrics.SaveMetrics(ctx, ticker, day, m, src); err != nil {
		return 0, fmt.Errorf("saving metrics for %s: %w", ticker, err)
	}

	// Cache freshly fetched bars so the next run is served locally. By
	// default synthetic series are cached too, which makes them sticky: once
	// persisted, later runs see them as cached data and never re-attempt a
	// live fetch for that date.
	if fetched && (r.cacheSynthetic || src != domain.SourceSynthetic) {
		if _, err := r.bars.SaveBars(ctx, ticker, bars); err != nil {
			return 0, fmt.Errorf("caching bars for %s: %w", ticker, err)
		}
	}

	r.log.Info("computed", "ticker", ticker,
		"dayReturnPct", fmt.Sprintf("%.2f", m.DayReturnPct), "source", string(src))
	return outcomeProcessed, nil
}
