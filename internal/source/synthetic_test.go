package source

import (
	"testing"
	"time"
)

var testLoc = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}()

func TestSyntheticDeterministic(t *testing.T) {
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, testLoc)

	a := Synthetic("AAPL", day, testLoc)
	b := Synthetic("AAPL", day, testLoc)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("bar %d differs between generations:\n  %+v\n  %+v", i, a[i], b[i])
		}
	}
}

func TestSyntheticPricesIndependentOfDate(t *testing.T) {
	d1 := time.Date(2024, 6, 14, 0, 0, 0, 0, testLoc)
	d2 := time.Date(2024, 6, 17, 0, 0, 0, 0, testLoc)

	a := Synthetic("TSLA", d1, testLoc)
	b := Synthetic("TSLA", d2, testLoc)

	for i := range a {
		if a[i].Open != b[i].Open || a[i].Close != b[i].Close {
			t.Errorf("bar %d prices differ across dates: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSyntheticDiffersByTicker(t *testing.T) {
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, testLoc)

	a := Synthetic("AAPL", day, testLoc)
	b := Synthetic("MSFT", day, testLoc)

	same := true
	for i := range a {
		if a[i].Open != b[i].Open || a[i].Close != b[i].Close {
			same = false
			break
		}
	}
	if same {
		t.Error("different tickers produced identical series")
	}
}

func TestSyntheticShape(t *testing.T) {
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, testLoc)
	bars := Synthetic("XOM", day, testLoc)

	if len(bars) != 7 {
		t.Fatalf("got %d bars, want 7", len(bars))
	}

	first := time.Date(2024, 6, 14, 9, 30, 0, 0, testLoc)
	for i, b := range bars {
		want := first.Add(time.Duration(i) * time.Hour)
		if !b.Timestamp.Equal(want) {
			t.Errorf("bar %d timestamp = %v, want %v", i, b.Timestamp, want)
		}
		if b.Ticker != "XOM" {
			t.Errorf("bar %d ticker = %q", i, b.Ticker)
		}
	}
	last := bars[len(bars)-1].Timestamp
	if last.Hour() != 15 || last.Minute() != 30 {
		t.Errorf("last bar at %02d:%02d, want 15:30", last.Hour(), last.Minute())
	}
}

func TestSyntheticOHLCInvariant(t *testing.T) {
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, testLoc)

	for _, ticker := range []string{"A", "AAPL", "GOOGL", "BRK.B", "ZZZZZZ"} {
		for _, b := range Synthetic(ticker, day, testLoc) {
			lo, hi := b.Open, b.Close
			if lo > hi {
				lo, hi = hi, lo
			}
			if b.Low > lo {
				t.Errorf("%s: Low %v > min(Open, Close) %v", ticker, b.Low, lo)
			}
			if b.High < hi {
				t.Errorf("%s: High %v < max(Open, Close) %v", ticker, b.High, hi)
			}
			if b.Open <= 0 || b.Close <= 0 {
				t.Errorf("%s: non-positive price in %+v", ticker, b)
			}
		}
	}
}
