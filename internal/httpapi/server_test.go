package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"dipsnipe/internal/domain"
	"dipsnipe/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), loc)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewServer(s, slog.Default()), s
}

func seedData(t *testing.T, s *store.SQLiteStore) time.Time {
	t.Helper()
	ctx := context.Background()
	loc, _ := time.LoadLocation("America/New_York")
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, loc)

	descs := []domain.TickerDescriptor{
		{Ticker: "AAPL", Sector: "Technology", Industry: "Consumer Electronics", MarketCap: 3_000_000_000_000, AvgVolume: 50_000_000},
		{Ticker: "XOM", Sector: "Energy", Industry: "Oil & Gas Integrated", MarketCap: 400_000_000_000, AvgVolume: 20_000_000},
	}
	for _, d := range descs {
		if err := s.UpsertTicker(ctx, d); err != nil {
			t.Fatalf("UpsertTicker(%s): %v", d.Ticker, err)
		}
	}

	if err := s.SaveMetrics(ctx, "AAPL", day, domain.Metrics{
		DayReturnPct:     -1.2,
		IntradayRangePct: 2.4,
		ExtremumTime:     time.Date(2024, 6, 14, 11, 30, 0, 0, loc),
		OpenPrice:        210,
		ClosePrice:       207.48,
		IntradayLow:      206.1,
		IntradayHigh:     211.05,
	}, domain.SourceLive); err != nil {
		t.Fatalf("SaveMetrics: %v", err)
	}
	if err := s.SaveMetrics(ctx, "XOM", day, domain.Metrics{
		DayReturnPct:     0.8,
		IntradayRangePct: 1.5,
		OpenPrice:        110,
		ClosePrice:       110.88,
		IntradayLow:      109.5,
		IntradayHigh:     111.15,
	}, domain.SourceSynthetic); err != nil {
		t.Fatalf("SaveMetrics: %v", err)
	}

	start := time.Date(2024, 6, 14, 9, 30, 0, 0, loc)
	bars := []domain.Bar{
		{Ticker: "AAPL", Timestamp: start, Open: 210, High: 211.05, Low: 208, Close: 209},
		{Ticker: "AAPL", Timestamp: start.Add(time.Hour), Open: 209, High: 209.5, Low: 206.1, Close: 207.48},
	}
	if _, err := s.SaveBars(ctx, "AAPL", bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}
	return day
}

func doGet(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", url, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rr.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := doGet(t, srv.Handler(), "/api/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp HealthResponse
	decode(t, rr, &resp)
	if resp.Status != "ok" || resp.Database != "connected" {
		t.Errorf("unexpected health payload: %+v", resp)
	}
}

func TestSectorsAndIndustries(t *testing.T) {
	srv, s := newTestServer(t)
	seedData(t, s)
	h := srv.Handler()

	rr := doGet(t, h, "/api/sectors")
	if rr.Code != http.StatusOK {
		t.Fatalf("sectors status = %d", rr.Code)
	}
	var sec SectorsResponse
	decode(t, rr, &sec)
	if len(sec.Sectors) != 2 || sec.Sectors[0] != "Energy" {
		t.Errorf("sectors = %v, want [Energy Technology]", sec.Sectors)
	}

	rr = doGet(t, h, "/api/industries?sector=Technology")
	var ind IndustriesResponse
	decode(t, rr, &ind)
	if len(ind.Industries) != 1 || ind.Industries[0] != "Consumer Electronics" {
		t.Errorf("industries = %v, want [Consumer Electronics]", ind.Industries)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, s := newTestServer(t)
	seedData(t, s)
	h := srv.Handler()

	rr := doGet(t, h, "/api/metrics?date=2024-06-14")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp MetricsResponse
	decode(t, rr, &resp)
	if len(resp.Metrics) != 2 {
		t.Fatalf("got %d metrics, want 2", len(resp.Metrics))
	}
	// Sorted by day return ascending: the decliner first.
	if resp.Metrics[0].Ticker != "AAPL" || resp.Metrics[1].Ticker != "XOM" {
		t.Errorf("order = %s, %s; want AAPL, XOM", resp.Metrics[0].Ticker, resp.Metrics[1].Ticker)
	}
	first := resp.Metrics[0]
	if first.DayReturnPct != -1.2 || first.DataSource != "live" {
		t.Errorf("unexpected AAPL record: %+v", first)
	}
	if first.ExtremumTime != "2024-06-14T11:30:00" {
		t.Errorf("ExtremumTime = %q", first.ExtremumTime)
	}

	// Filtering by sector.
	rr = doGet(t, h, "/api/metrics?date=2024-06-14&sector=Energy")
	decode(t, rr, &resp)
	if len(resp.Metrics) != 1 || resp.Metrics[0].Ticker != "XOM" {
		t.Errorf("sector filter: got %+v", resp.Metrics)
	}

	// Filtering by market-cap floor.
	rr = doGet(t, h, "/api/metrics?date=2024-06-14&min_market_cap=1000000000000")
	decode(t, rr, &resp)
	if len(resp.Metrics) != 1 || resp.Metrics[0].Ticker != "AAPL" {
		t.Errorf("cap filter: got %+v", resp.Metrics)
	}
}

func TestMetricsValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for _, url := range []string{
		"/api/metrics",
		"/api/metrics?date=junk",
		"/api/metrics?date=2024-06-14&min_market_cap=abc",
		"/api/metrics?date=2024-06-14&min_volume=-5",
	} {
		rr := doGet(t, h, url)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, rr.Code)
		}
	}
}

func TestBarsEndpoint(t *testing.T) {
	srv, s := newTestServer(t)
	seedData(t, s)
	h := srv.Handler()

	rr := doGet(t, h, "/api/intraday_bars?ticker=aapl&date=2024-06-14")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp BarsResponse
	decode(t, rr, &resp)
	if len(resp.Bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(resp.Bars))
	}
	if resp.Bars[0].Timestamp != "2024-06-14T09:30:00" {
		t.Errorf("first timestamp = %q", resp.Bars[0].Timestamp)
	}

	// Unknown ticker yields an empty list, not an error.
	rr = doGet(t, h, "/api/intraday_bars?ticker=NONE&date=2024-06-14")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d for unknown ticker", rr.Code)
	}
	decode(t, rr, &resp)
	if len(resp.Bars) != 0 {
		t.Errorf("got %d bars for unknown ticker, want 0", len(resp.Bars))
	}

	// Missing params.
	rr = doGet(t, h, "/api/intraday_bars?ticker=AAPL")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing date: status = %d, want 400", rr.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, s := newTestServer(t)
	seedData(t, s)

	rr := doGet(t, srv.Handler(), "/api/stats")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp StatsResponse
	decode(t, rr, &resp)
	if resp.TotalTickers != 2 || resp.TotalMetrics != 2 || resp.UniqueDates != 1 {
		t.Errorf("stats = %+v", resp)
	}
	if resp.DateRange.Min != "2024-06-14" || resp.DateRange.Max != "2024-06-14" {
		t.Errorf("date range = %+v", resp.DateRange)
	}
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := doGet(t, srv.Handler(), "/api/health")
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}
