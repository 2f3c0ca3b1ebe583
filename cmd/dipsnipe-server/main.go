// dipsnipe-server serves the query API and optionally runs the daily metric
// pipeline on a schedule.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-co-op/gocron"

	"dipsnipe/internal/config"
	"dipsnipe/internal/httpapi"
	"dipsnipe/internal/pipeline"
	"dipsnipe/internal/source"
	"dipsnipe/internal/store"
	"dipsnipe/internal/util"
)

func main() {
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

	if cfg.Schedule.Enabled {
		src := source.NewAlpacaSource(
			cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
			cfg.Fetch.Feed, cfg.Fetch.RateLimitPerMin, loc)
		runner := pipeline.NewRunner(st, st, st, src,
			cfg.Universe.MinMarketCap, cfg.Fetch.CacheSynthetic)

		sched := gocron.NewScheduler(loc)
		_, err := sched.Every(1).Day().At(cfg.Schedule.RunAt).Do(func() {
			day := time.Now().In(loc)
			stats, err := runner.Run(context.Background(), day, nil)
			if err != nil {
				slog.Error("scheduled run failed", "error", err)
				return
			}
			slog.Info("scheduled run finished",
				"processed", stats.Processed, "skipped", stats.Skipped, "failed", stats.Failed)
		})
		if err != nil {
			log.Fatalf("scheduling daily run: %v", err)
		}
		sched.StartAsync()
		slog.Info("daily pipeline scheduled", "at", cfg.Schedule.RunAt, "tz", cfg.Fetch.Timezone)
	}

	srv := httpapi.NewServer(st, slog.Default())
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("dipsnipe-server listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
