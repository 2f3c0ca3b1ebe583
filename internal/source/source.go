// Package source resolves one day of intraday bars for a ticker, fetching
// from the upstream market-data provider and degrading to deterministic
// synthetic bars when the provider has nothing usable.
package source

import (
	"context"
	"time"

	"dipsnipe/internal/domain"
)

// BarSource produces one day of intraday bars for a ticker. Implementations
// never fail: when no real data is obtainable they fall back to synthetic
// generation and tag the result with its provenance.
type BarSource interface {
	Fetch(ctx context.Context, ticker string, day time.Time) domain.FetchResult
}
