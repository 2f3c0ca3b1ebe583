package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dipsnipe/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ TickerStore = (*SQLiteStore)(nil)
var _ BarStore = (*SQLiteStore)(nil)
var _ MetricStore = (*SQLiteStore)(nil)

const (
	dateFmt = "2006-01-02"
	// Timestamps are stored as exchange-local strings without an offset;
	// lexical order equals chronological order within a day.
	tsFmt = "2006-01-02T15:04:05"
)

const schema = `
CREATE TABLE IF NOT EXISTS tickers (
	ticker TEXT PRIMARY KEY,
	sector TEXT,
	industry TEXT,
	market_cap INTEGER,
	avg_volume INTEGER,
	last_updated TEXT
);

CREATE INDEX IF NOT EXISTS idx_tickers_cap ON tickers(market_cap);
CREATE INDEX IF NOT EXISTS idx_tickers_sector ON tickers(sector);
CREATE INDEX IF NOT EXISTS idx_tickers_industry ON tickers(industry);

CREATE TABLE IF NOT EXISTS intraday_metrics (
	ticker TEXT NOT NULL,
	date TEXT NOT NULL,
	max_drawdown_pct REAL,
	drawdown_time TEXT,
	recovery_pct REAL,
	day_return_pct REAL,
	open_price REAL,
	close_price REAL,
	intraday_low REAL,
	intraday_high REAL,
	data_source TEXT,
	computed_at TEXT,
	PRIMARY KEY (ticker, date)
);

CREATE TABLE IF NOT EXISTS intraday_bars (
	ticker TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	open REAL,
	high REAL,
	low REAL,
	close REAL,
	PRIMARY KEY (ticker, timestamp)
);
`

// SQLiteStore implements TickerStore, BarStore, and MetricStore backed by a
// single SQLite database. The handle is injected into every consumer; there
// is no shared global connection.
type SQLiteStore struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, enables WAL
// mode, and ensures the schema exists. Bar timestamps are interpreted in loc.
func NewSQLiteStore(dbPath string, loc *time.Location) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, loc: loc}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// TickerStore implementation
// ---------------------------------------------------------------------------

// UpsertTicker inserts or replaces the descriptor for a ticker.
func (s *SQLiteStore) UpsertTicker(ctx context.Context, t domain.TickerDescriptor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tickers (ticker, sector, industry, market_cap, avg_volume, last_updated)
		 VALUES (?, ?, ?, ?, ?, datetime('now'))`,
		t.Ticker, t.Sector, t.Industry, t.MarketCap, t.AvgVolume,
	)
	if err != nil {
		return fmt.Errorf("upserting ticker %s: %w", t.Ticker, err)
	}
	return nil
}

// FilteredTickers returns descriptors matching the filter, ordered by market
// cap descending.
func (s *SQLiteStore) FilteredTickers(ctx context.Context, f TickerFilter) ([]domain.TickerDescriptor, error) {
	query := `SELECT ticker, sector, industry, market_cap, avg_volume
		FROM tickers
		WHERE market_cap >= ?`
	args := []any{f.MinMarketCap}

	if f.MaxMarketCap > 0 {
		query += " AND market_cap <= ?"
		args = append(args, f.MaxMarketCap)
	}
	if f.MinVolume > 0 {
		query += " AND COALESCE(avg_volume, 0) >= ?"
		args = append(args, f.MinVolume)
	}
	if f.Sector != "" {
		query += " AND sector = ?"
		args = append(args, f.Sector)
	}
	if f.Industry != "" {
		query += " AND industry = ?"
		args = append(args, f.Industry)
	}
	query += " ORDER BY market_cap DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tickers: %w", err)
	}
	defer rows.Close()

	var out []domain.TickerDescriptor
	for rows.Next() {
		var (
			d                    domain.TickerDescriptor
			sector, industry     sql.NullString
			marketCap, avgVolume sql.NullInt64
		)
		if err := rows.Scan(&d.Ticker, &sector, &industry, &marketCap, &avgVolume); err != nil {
			return nil, fmt.Errorf("scanning ticker row: %w", err)
		}
		d.Sector = sector.String
		d.Industry = industry.String
		d.MarketCap = marketCap.Int64
		d.AvgVolume = avgVolume.Int64
		out = append(out, d)
	}
	return out, rows.Err()
}

// Sectors returns the distinct non-empty sectors, ordered ascending.
func (s *SQLiteStore) Sectors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT sector FROM tickers
		 WHERE sector IS NOT NULL AND sector != ''
		 ORDER BY sector`)
	if err != nil {
		return nil, fmt.Errorf("querying sectors: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// Industries returns the distinct non-empty industries, optionally scoped to
// a sector.
func (s *SQLiteStore) Industries(ctx context.Context, sector string) ([]string, error) {
	query := `SELECT DISTINCT industry FROM tickers
		WHERE industry IS NOT NULL AND industry != ''`
	var args []any
	if sector != "" {
		query += " AND sector = ?"
		args = append(args, sector)
	}
	query += " ORDER BY industry"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying industries: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// BarStore implementation
// ---------------------------------------------------------------------------

// BarsForDay returns all stored bars for the ticker on the given calendar
// day, ordered ascending by timestamp.
func (s *SQLiteStore) BarsForDay(ctx context.Context, ticker string, day time.Time) ([]domain.Bar, error) {
	date := day.Format(dateFmt)
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, open, high, low, close
		 FROM intraday_bars
		 WHERE ticker = ? AND timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp`,
		ticker, date+"T00:00:00", date+"T23:59:59")
	if err != nil {
		return nil, fmt.Errorf("querying bars for %s on %s: %w", ticker, date, err)
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var (
			b  domain.Bar
			ts string
		)
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("scanning bar row: %w", err)
		}
		t, err := time.ParseInLocation(tsFmt, ts, s.loc)
		if err != nil {
			return nil, fmt.Errorf("parsing bar timestamp %q: %w", ts, err)
		}
		b.Ticker = ticker
		b.Timestamp = t
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// SaveBars inserts bars that are not already present for their exact
// (ticker, timestamp) key. Existing rows are kept as-is, which makes repeated
// caching of overlapping fetch windows idempotent.
func (s *SQLiteStore) SaveBars(ctx context.Context, ticker string, bars []domain.Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning bar insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO intraday_bars (ticker, timestamp, open, high, low, close)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing bar insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, b := range bars {
		res, err := stmt.ExecContext(ctx,
			ticker, b.Timestamp.In(s.loc).Format(tsFmt), b.Open, b.High, b.Low, b.Close)
		if err != nil {
			return 0, fmt.Errorf("inserting bar %s/%s: %w", ticker, b.Timestamp.Format(tsFmt), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing bar insert: %w", err)
	}
	return inserted, nil
}

// ---------------------------------------------------------------------------
// MetricStore implementation
// ---------------------------------------------------------------------------

// MetricsExist reports whether a metric record exists for the ticker/day.
func (s *SQLiteStore) MetricsExist(ctx context.Context, ticker string, day time.Time) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM intraday_metrics WHERE ticker = ? AND date = ?",
		ticker, day.Format(dateFmt)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking metrics for %s: %w", ticker, err)
	}
	return true, nil
}

// SaveMetrics upserts the metric record for the ticker/day. The legacy
// column names (max_drawdown_pct, drawdown_time, recovery_pct) are kept for
// existing readers and carry the day return, extremum time, and intraday
// range respectively.
func (s *SQLiteStore) SaveMetrics(ctx context.Context, ticker string, day time.Time, m domain.Metrics, source domain.DataSource) error {
	var extremum any
	if !m.ExtremumTime.IsZero() {
		extremum = m.ExtremumTime.In(s.loc).Format(tsFmt)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO intraday_metrics
		 (ticker, date, max_drawdown_pct, drawdown_time, recovery_pct,
		  day_return_pct, open_price, close_price, intraday_low, intraday_high,
		  data_source, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))`,
		ticker, day.Format(dateFmt),
		m.DayReturnPct, extremum, m.IntradayRangePct,
		m.DayReturnPct, m.OpenPrice, m.ClosePrice, m.IntradayLow, m.IntradayHigh,
		string(source),
	)
	if err != nil {
		return fmt.Errorf("saving metrics for %s on %s: %w", ticker, day.Format(dateFmt), err)
	}
	return nil
}

// MetricsForDay returns the day's metric records joined with ticker
// descriptors, filtered, ordered by day return ascending.
func (s *SQLiteStore) MetricsForDay(ctx context.Context, day time.Time, f TickerFilter) ([]domain.MetricRecord, error) {
	query := `SELECT
			m.ticker, m.date,
			m.day_return_pct, m.recovery_pct, m.drawdown_time,
			m.open_price, m.close_price, m.intraday_low, m.intraday_high,
			m.data_source, m.computed_at,
			t.sector, t.industry, t.market_cap, t.avg_volume
		FROM intraday_metrics m
		JOIN tickers t ON m.ticker = t.ticker
		WHERE m.date = ?
		AND t.market_cap >= ?`
	args := []any{day.Format(dateFmt), f.MinMarketCap}

	if f.MaxMarketCap > 0 {
		query += " AND t.market_cap <= ?"
		args = append(args, f.MaxMarketCap)
	}
	if f.MinVolume > 0 {
		query += " AND COALESCE(t.avg_volume, 0) >= ?"
		args = append(args, f.MinVolume)
	}
	if f.Sector != "" {
		query += " AND t.sector = ?"
		args = append(args, f.Sector)
	}
	if f.Industry != "" {
		query += " AND t.industry = ?"
		args = append(args, f.Industry)
	}
	query += " ORDER BY m.day_return_pct ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying metrics: %w", err)
	}
	defer rows.Close()

	var out []domain.MetricRecord
	for rows.Next() {
		var (
			r                      domain.MetricRecord
			extremum, computedAt   sql.NullString
			sector, industry       sql.NullString
			marketCap, avgVolume   sql.NullInt64
			source                 string
		)
		if err := rows.Scan(
			&r.Ticker, &r.Date,
			&r.DayReturnPct, &r.IntradayRangePct, &extremum,
			&r.OpenPrice, &r.ClosePrice, &r.IntradayLow, &r.IntradayHigh,
			&source, &computedAt,
			&sector, &industry, &marketCap, &avgVolume,
		); err != nil {
			return nil, fmt.Errorf("scanning metric row: %w", err)
		}
		r.ExtremumTime = extremum.String
		r.ComputedAt = computedAt.String
		r.Source = domain.DataSource(source)
		r.Sector = sector.String
		r.Industry = industry.String
		r.MarketCap = marketCap.Int64
		r.AvgVolume = avgVolume.Int64
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats returns aggregate counts over the persisted state.
func (s *SQLiteStore) Stats(ctx context.Context) (DBStats, error) {
	var st DBStats

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickers").Scan(&st.TotalTickers); err != nil {
		return st, fmt.Errorf("counting tickers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM intraday_metrics").Scan(&st.TotalMetrics); err != nil {
		return st, fmt.Errorf("counting metrics: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT date) FROM intraday_metrics").Scan(&st.UniqueDates); err != nil {
		return st, fmt.Errorf("counting dates: %w", err)
	}

	var minDate, maxDate sql.NullString
	if err := s.db.QueryRowContext(ctx,
		"SELECT MIN(date), MAX(date) FROM intraday_metrics").Scan(&minDate, &maxDate); err != nil {
		return st, fmt.Errorf("querying date range: %w", err)
	}
	st.MinDate = minDate.String
	st.MaxDate = maxDate.String

	return st, nil
}
