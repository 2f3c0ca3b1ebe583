package source

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"dipsnipe/internal/domain"
)

// Seven hourly bars covering 09:30 through 15:30 exchange time.
const syntheticBarCount = 7

// Synthetic generates a deterministic intraday series for a ticker. The
// generator is seeded from the symbol alone, so the same ticker yields the
// same price path on every run regardless of date — repeated demos stay
// reproducible.
func Synthetic(ticker string, day time.Time, loc *time.Location) []domain.Bar {
	rng := rand.New(rand.NewSource(seed(ticker)))

	// Base price varies by symbol but is stable across runs.
	price := 100.0 + float64(len(ticker))*20 + float64(rng.Intn(21)-10)

	start := time.Date(day.Year(), day.Month(), day.Day(), 9, 30, 0, 0, loc)

	bars := make([]domain.Bar, 0, syntheticBarCount)
	for i := 0; i < syntheticBarCount; i++ {
		change := rng.Float64()*0.04 - 0.02 // multiplicative walk, ±2% per bar
		open := price
		clos := price * (1 + change)
		high := math.Max(open, clos) * (1 + rng.Float64()*0.005)
		low := math.Min(open, clos) * (1 - rng.Float64()*0.005)

		bars = append(bars, domain.Bar{
			Ticker:    ticker,
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      round2(open),
			High:      round2(high),
			Low:       round2(low),
			Close:     round2(clos),
		})

		price = clos
	}
	return bars
}

// seed derives a stable RNG seed from the ticker symbol.
func seed(ticker string) int64 {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	return int64(h.Sum64())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
