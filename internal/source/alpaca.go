package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"dipsnipe/internal/domain"
	"dipsnipe/internal/util"
)

// Compile-time interface check.
var _ BarSource = (*AlpacaSource)(nil)

// AlpacaSource fetches hourly intraday bars from the Alpaca market-data API.
// A courtesy rate-limit pause precedes each attempt; a single failed or empty
// attempt falls through to synthetic generation, with no retry.
type AlpacaSource struct {
	client  *marketdata.Client
	limiter *util.RateLimiter
	feed    string
	loc     *time.Location
	log     *slog.Logger
}

// NewAlpacaSource creates an AlpacaSource with the given credentials, data
// feed, and per-minute rate limit. Bar timestamps are reported in loc.
func NewAlpacaSource(apiKey, apiSecret, dataURL, feed string, ratePerMin int, loc *time.Location) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	return &AlpacaSource{
		client:  marketdata.NewClient(opts),
		limiter: util.NewRateLimiter(ratePerMin),
		feed:    feed,
		loc:     loc,
		log:     slog.Default().With("component", "source"),
	}
}

// Fetch returns the ticker's bars for the day. When the real fetch yields
// nothing (empty result, network error, throttling), the call degrades to the
// deterministic synthetic series instead of failing.
func (s *AlpacaSource) Fetch(ctx context.Context, ticker string, day time.Time) domain.FetchResult {
	bars, err := s.fetchReal(ctx, ticker, day)
	if err != nil {
		s.log.Warn("real fetch failed, switching to synthetic",
			"ticker", ticker, "date", day.Format("2006-01-02"), "err", err)
	}

	if len(bars) == 0 {
		return domain.FetchResult{
			Bars:   Synthetic(ticker, day, s.loc),
			Source: domain.SourceSynthetic,
		}
	}
	return domain.FetchResult{Bars: bars, Source: domain.SourceLive}
}

// fetchReal makes a single attempt against the provider for the closed window
// [day 00:00, day+1 00:00) at one-hour granularity. Bars whose local calendar
// date differs from the requested day are discarded.
func (s *AlpacaSource) fetchReal(ctx context.Context, ticker string, day time.Time) ([]domain.Bar, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)

	raw, err := s.client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneHour,
		Start:     start,
		End:       end,
		Feed:      marketdata.Feed(s.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", ticker, err)
	}

	date := day.Format("2006-01-02")
	var bars []domain.Bar
	for _, b := range raw {
		ts := b.Timestamp.In(s.loc)
		if ts.Format("2006-01-02") != date {
			continue
		}
		bars = append(bars, domain.Bar{
			Ticker:    ticker,
			Timestamp: ts,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
		})
	}
	return bars, nil
}
