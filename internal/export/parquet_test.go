package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"dipsnipe/internal/domain"
	"dipsnipe/internal/store"
)

func TestExportDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}
	dataDir := t.TempDir()
	s, err := store.NewSQLiteStore(filepath.Join(dataDir, "test.db"), loc)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, loc)

	if err := s.UpsertTicker(ctx, domain.TickerDescriptor{
		Ticker: "AAPL", Sector: "Technology", Industry: "Consumer Electronics",
		MarketCap: 3_000_000_000_000, AvgVolume: 50_000_000,
	}); err != nil {
		t.Fatalf("UpsertTicker: %v", err)
	}
	if err := s.SaveMetrics(ctx, "AAPL", day, domain.Metrics{
		DayReturnPct:     -1.2,
		IntradayRangePct: 2.4,
		OpenPrice:        210,
		ClosePrice:       207.48,
		IntradayLow:      206.1,
		IntradayHigh:     211.05,
	}, domain.SourceLive); err != nil {
		t.Fatalf("SaveMetrics: %v", err)
	}
	start := time.Date(2024, 6, 14, 9, 30, 0, 0, loc)
	if _, err := s.SaveBars(ctx, "AAPL", []domain.Bar{
		{Ticker: "AAPL", Timestamp: start, Open: 210, High: 211.05, Low: 208, Close: 209},
		{Ticker: "AAPL", Timestamp: start.Add(time.Hour), Open: 209, High: 209.5, Low: 206.1, Close: 207.48},
	}); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	e := NewExporter(s, dataDir)
	n, err := e.ExportDay(ctx, day)
	if err != nil {
		t.Fatalf("ExportDay: %v", err)
	}
	if n != 1 {
		t.Errorf("exported %d metric rows, want 1", n)
	}

	metrics, err := parquet.ReadFile[MetricRecord](filepath.Join(dataDir, "export", "metrics_2024-06-14.parquet"))
	if err != nil {
		t.Fatalf("reading metrics snapshot: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("snapshot has %d metric rows, want 1", len(metrics))
	}
	m := metrics[0]
	if m.Ticker != "AAPL" || m.Date != "2024-06-14" || m.DayReturnPct != -1.2 || m.DataSource != "live" {
		t.Errorf("unexpected metric row: %+v", m)
	}

	bars, err := parquet.ReadFile[BarRecord](filepath.Join(dataDir, "export", "bars_2024-06-14.parquet"))
	if err != nil {
		t.Fatalf("reading bars snapshot: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("snapshot has %d bar rows, want 2", len(bars))
	}
	if got := time.UnixMilli(bars[0].Timestamp).In(loc); !got.Equal(start) {
		t.Errorf("first bar timestamp = %v, want %v", got, start)
	}
}
