// One-shot tool: export a day's metrics and cached bars to Parquet snapshots.
//
// Usage:
//
//	go run cmd/dipsnipe-export/main.go 2024-06-14
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"dipsnipe/internal/config"
	"dipsnipe/internal/export"
	"dipsnipe/internal/store"
	"dipsnipe/internal/util"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s DATE\n", os.Args[0])
		os.Exit(2)
	}
	day, err := time.Parse("2006-01-02", os.Args[1])
	if err != nil {
		log.Fatalf("invalid date %q: want YYYY-MM-DD", os.Args[1])
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

	e := export.NewExporter(st, cfg.Storage.DataDir)
	n, err := e.ExportDay(context.Background(), day)
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}
	fmt.Printf("exported %d metric rows for %s\n", n, os.Args[1])
}
