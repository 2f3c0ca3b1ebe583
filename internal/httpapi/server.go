package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dipsnipe/internal/store"
)

// Store is the read-only persistence surface the API serves from.
type Store interface {
	store.TickerStore
	store.BarStore
	store.MetricStore
}

// Server serves the dipsnipe query API.
type Server struct {
	store Store
	log   *slog.Logger
}

// NewServer creates a Server over the given store.
func NewServer(st Store, log *slog.Logger) *Server {
	return &Server{store: st, log: log}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/sectors", s.handleSectors)
	mux.HandleFunc("GET /api/industries", s.handleIndustries)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/intraday_bars", s.handleBars)
	mux.HandleFunc("GET /api/stats", s.handleStats)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// parseDate parses a required YYYY-MM-DD query parameter.
func parseDate(r *http.Request) (time.Time, bool) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// parseInt64 parses an optional integer query parameter. The second result is
// false only when a value is present but malformed.
func parseInt64(r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Stats(r.Context()); err != nil {
		s.log.Error("health check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "database unavailable")
		return
	}
	writeJSON(w, HealthResponse{
		Status:   "ok",
		Message:  "API server is running",
		Database: "connected",
	})
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := s.store.Sectors(r.Context())
	if err != nil {
		s.log.Error("fetching sectors", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch sectors")
		return
	}
	if sectors == nil {
		sectors = []string{}
	}
	writeJSON(w, SectorsResponse{Sectors: sectors})
}

func (s *Server) handleIndustries(w http.ResponseWriter, r *http.Request) {
	sector := r.URL.Query().Get("sector")
	industries, err := s.store.Industries(r.Context(), sector)
	if err != nil {
		s.log.Error("fetching industries", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch industries")
		return
	}
	if industries == nil {
		industries = []string{}
	}
	writeJSON(w, IndustriesResponse{Industries: industries})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	day, ok := parseDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "date parameter required (YYYY-MM-DD)")
		return
	}

	var f store.TickerFilter
	if f.MinMarketCap, ok = parseInt64(r, "min_market_cap"); !ok {
		writeError(w, http.StatusBadRequest, "invalid min_market_cap")
		return
	}
	if f.MaxMarketCap, ok = parseInt64(r, "max_market_cap"); !ok {
		writeError(w, http.StatusBadRequest, "invalid max_market_cap")
		return
	}
	if f.MinVolume, ok = parseInt64(r, "min_volume"); !ok {
		writeError(w, http.StatusBadRequest, "invalid min_volume")
		return
	}
	f.Sector = r.URL.Query().Get("sector")
	f.Industry = r.URL.Query().Get("industry")

	recs, err := s.store.MetricsForDay(r.Context(), day, f)
	if err != nil {
		s.log.Error("fetching metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch metrics")
		return
	}

	out := make([]MetricJSON, 0, len(recs))
	for _, rec := range recs {
		out = append(out, convertMetric(rec))
	}
	writeJSON(w, MetricsResponse{Metrics: out})
}

func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.URL.Query().Get("ticker"))
	day, ok := parseDate(r)
	if ticker == "" || !ok {
		writeError(w, http.StatusBadRequest, "ticker and date parameters required")
		return
	}

	bars, err := s.store.BarsForDay(r.Context(), ticker, day)
	if err != nil {
		s.log.Error("fetching bars", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch bars")
		return
	}

	out := make([]BarJSON, 0, len(bars))
	for _, b := range bars {
		out = append(out, BarJSON{
			Timestamp: b.Timestamp.Format("2006-01-02T15:04:05"),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
		})
	}
	writeJSON(w, BarsResponse{Bars: out})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Stats(r.Context())
	if err != nil {
		s.log.Error("fetching stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}
	writeJSON(w, StatsResponse{
		TotalTickers: st.TotalTickers,
		TotalMetrics: st.TotalMetrics,
		UniqueDates:  st.UniqueDates,
		DateRange:    DateRangeJSON{Min: st.MinDate, Max: st.MaxDate},
	})
}
