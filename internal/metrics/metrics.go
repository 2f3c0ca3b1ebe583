// Package metrics derives the end-of-day performance record from a day's
// intraday bars. Computation is pure: no I/O, no hidden state.
package metrics

import (
	"errors"
	"sort"

	"dipsnipe/internal/domain"
)

// ErrNoBars is returned when Compute is called with an empty bar sequence.
// Computing metrics over zero bars is undefined; callers must treat the empty
// case separately.
var ErrNoBars = errors.New("metrics: no bars")

// Compute derives the day return, intraday range, and extremum timing from a
// non-empty bar sequence. Caller-supplied order does not matter: bars are
// re-sorted by timestamp before anything is derived. The extremum time is the
// first occurrence of the minimum low in timestamp order.
func Compute(bars []domain.Bar) (domain.Metrics, error) {
	if len(bars) == 0 {
		return domain.Metrics{}, ErrNoBars
	}

	sorted := make([]domain.Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	open := sorted[0].Open
	clos := sorted[len(sorted)-1].Close

	low, high := sorted[0].Low, sorted[0].High
	lowTime := sorted[0].Timestamp
	for _, b := range sorted[1:] {
		if b.High > high {
			high = b.High
		}
		// Strict comparison keeps the first occurrence on ties.
		if b.Low < low {
			low = b.Low
			lowTime = b.Timestamp
		}
	}

	return domain.Metrics{
		DayReturnPct:     (clos - open) / open * 100,
		IntradayRangePct: (high - low) / open * 100,
		ExtremumTime:     lowTime,
		OpenPrice:        open,
		ClosePrice:       clos,
		IntradayLow:      low,
		IntradayHigh:     high,
	}, nil
}
