// One-shot tool: run the daily metric pipeline for a trading day.
//
// Usage:
//
//	go run cmd/dipsnipe-compute/main.go 2024-06-14 [TICKER ...]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"dipsnipe/internal/config"
	"dipsnipe/internal/pipeline"
	"dipsnipe/internal/source"
	"dipsnipe/internal/store"
	"dipsnipe/internal/util"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s DATE [TICKER ...]\n", os.Args[0])
		os.Exit(2)
	}

	// Validate all inputs before touching the store or the network.
	day, err := time.Parse("2006-01-02", os.Args[1])
	if err != nil {
		log.Fatalf("invalid date %q: want YYYY-MM-DD", os.Args[1])
	}
	var tickers []string
	for _, arg := range os.Args[2:] {
		t := strings.ToUpper(strings.TrimSpace(arg))
		if t == "" || strings.ContainsAny(t, " \t/\\") {
			log.Fatalf("invalid ticker %q", arg)
		}
		tickers = append(tickers, t)
	}

	cfgPath := "config/dipsnipe.yaml"
	if p := os.Getenv("DIPSNIPE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))

	loc, err := time.LoadLocation(cfg.Fetch.Timezone)
	if err != nil {
		log.Fatalf("invalid timezone %q: %v", cfg.Fetch.Timezone, err)
	}

	st, err := store.NewSQLiteStore(cfg.Storage.SQLitePath, loc)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	src := source.NewAlpacaSource(
		cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
		cfg.Fetch.Feed, cfg.Fetch.RateLimitPerMin, loc)

	r := pipeline.NewRunner(st, st, st, src,
		cfg.Universe.MinMarketCap, cfg.Fetch.CacheSynthetic)
	stats, err := r.Run(context.Background(), day, tickers)
	if err != nil {
		log.Fatalf("run aborted: %v", err)
	}

	fmt.Printf("processed=%d skipped=%d failed=%d\n",
		stats.Processed, stats.Skipped, stats.Failed)
}
