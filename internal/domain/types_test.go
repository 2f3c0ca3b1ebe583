package domain

import (
	"testing"
	"time"
)

func TestFetchResultEmpty(t *testing.T) {
	var zero FetchResult
	if !zero.Empty() {
		t.Error("zero FetchResult should be empty")
	}

	res := FetchResult{
		Bars:   []Bar{{Ticker: "AAPL", Timestamp: time.Now(), Open: 1, High: 1, Low: 1, Close: 1}},
		Source: SourceLive,
	}
	if res.Empty() {
		t.Error("FetchResult with bars should not be empty")
	}
}

func TestDataSourceValues(t *testing.T) {
	cases := map[DataSource]string{
		SourceCache:     "cache",
		SourceLive:      "live",
		SourceSynthetic: "synthetic",
	}
	for src, want := range cases {
		if string(src) != want {
			t.Errorf("DataSource %v = %q, want %q", src, string(src), want)
		}
	}
}
