// One-shot tool: load ticker fundamentals from a CSV file into the database.
//
// Usage:
//
//	go run cmd/dipsnipe-fundamentals/main.go tickers.csv
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"dipsnipe/internal/config"
	"dipsnipe/internal/fundamentals"
	"dipsnipe/internal/store"
	"dipsnipe/internal/util"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s TICKERS_CSV\n", os.Args[0])
		os.Exit(2)
	}
	csvPath := os.Args[1]

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

	descs, err := fundamentals.LoadCSV(csvPath)
	if err != nil {
		log.Fatalf("loading %s: %v", csvPath, err)
	}
	n, err := fundamentals.Populate(context.Background(), st, descs)
	if err != nil {
		log.Fatalf("populating tickers: %v", err)
	}
	fmt.Printf("loaded %d tickers\n", n)
}
