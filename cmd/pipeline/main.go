package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/config"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/ingest"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/pipeline"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/services"
	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	st, err := store.New(ctx, cfg.Database.GetDSN())
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}
	log.Printf("db connected")

	cache, err := services.NewCacheService(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("redis connect failed: %v", err)
	}
	defer cache.Close()
	if cache.Available() {
		log.Printf("redis connected: %s", cfg.Redis.URL)
	}

	go serveHTTP(cfg.Server.MetricsAddr)

	run := func() {
		if err := runOnce(ctx, cfg, st, cache); err != nil {
			log.Printf("pipeline run failed: %v", err)
		}
	}

	if cfg.Pipeline.Schedule == "" {
		run()
		return
	}

	// Scheduled mode: rerun the batch on the configured cron expression.
	c := cron.New()
	if _, err := c.AddFunc(cfg.Pipeline.Schedule, run); err != nil {
		log.Fatalf("invalid RUN_SCHEDULE %q: %v", cfg.Pipeline.Schedule, err)
	}
	log.Printf("pipeline scheduled: %q", cfg.Pipeline.Schedule)
	run()
	c.Start()

	<-ctx.Done()
	log.Printf("pipeline shutting down")
	cronCtx := c.Stop()
	<-cronCtx.Done()
}

func runOnce(ctx context.Context, cfg *config.Config, st *store.Store, cache *services.CacheService) error {
	records, skipped, err := ingest.LoadDir(cfg.Pipeline.DataDir)
	if err != nil {
		return fmt.Errorf("load trips: %w", err)
	}
	log.Printf("loaded %d trip records from %s (%d rows skipped)", len(records), cfg.Pipeline.DataDir, skipped)

	result, err := pipeline.Run(ctx, pipeline.Options{
		WindowStart:   cfg.Pipeline.WindowStart,
		WindowEnd:     cfg.Pipeline.WindowEnd,
		SplitFraction: cfg.Pipeline.SplitFraction,
		Workers:       cfg.Pipeline.Workers,
		ModelVersion:  cfg.Pipeline.ModelVersion,
	}, records)
	if err != nil {
		return err
	}
	for station, stErr := range result.Failures {
		log.Printf("station %d not modeled: %v", station, stErr)
	}

	if err := st.UpsertPanel(ctx, result.Panel); err != nil {
		return fmt.Errorf("store panel: %w", err)
	}
	if err := st.UpsertPredictions(ctx, result.Predictions); err != nil {
		return fmt.Errorf("store predictions: %w", err)
	}
	if err := st.UpsertFits(ctx, result.Fits); err != nil {
		return fmt.Errorf("store fits: %w", err)
	}

	published := 0
	if cache.Available() {
		for _, p := range result.Predictions {
			if err := cache.Publish(ctx, cfg.Redis.Channel, p); err != nil {
				log.Printf("redis publish failed for station=%d: %v", p.Station, err)
				continue
			}
			published++
		}
	}

	log.Printf("run stored: %d panel rows, %d predictions, %d fits, %d published",
		len(result.Panel), len(result.Predictions), len(result.Fits), published)
	return nil
}

func serveHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("metrics server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("metrics server failed: %v", err)
	}
}
