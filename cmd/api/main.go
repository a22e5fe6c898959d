package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/livingdw67/ira-analysis/internal/api"
	"github.com/livingdw67/ira-analysis/internal/api/middleware"
	"github.com/livingdw67/ira-analysis/internal/config"
	"github.com/livingdw67/ira-analysis/internal/ingest"
	"github.com/livingdw67/ira-analysis/internal/store"
)

func main() {
	// IRA_CONFIG is optional; defaults and env overrides apply either way.
	cfg, err := config.LoadFromEnv(os.Getenv("IRA_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Log working directory and important paths for debugging
	if wd, err := os.Getwd(); err == nil {
		log.Printf("Working directory: %s", wd)
	}
	log.Printf("Metadata: %s, archetype profile: %s", cfg.Files.MetadataCSV, cfg.Files.ArchetypeCSV)

	settings, err := cfg.Scenario.Settings()
	if err != nil {
		log.Fatalf("Invalid scenario settings: %v", err)
	}
	runner, err := ingest.LoadRunner(cfg.Files.MetadataCSV, cfg.Files.ArchetypeCSV, settings)
	if err != nil {
		log.Fatalf("Failed to load inputs (run pull-metadata and cli analyze first): %v", err)
	}

	var results store.Store
	if cfg.Cache.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		results, err = store.NewRedisStore(ctx, cfg.Cache.RedisAddr, cfg.Cache.TTL)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Cache.RedisAddr, err)
		}
		log.Printf("Storing scenarios in Redis at %s (ttl %s)", cfg.Cache.RedisAddr, cfg.Cache.TTL)
	} else {
		results = store.NewMemoryStore(cfg.Cache.TTL, time.Minute)
		log.Printf("Storing scenarios in memory (ttl %s)", cfg.Cache.TTL)
	}
	defer results.Close()

	// Set up Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Options{
		Runner:      runner,
		Store:       results,
		Metrics:     middleware.NewMetrics(),
		State:       cfg.Dataset.State,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	// Start server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Starting API server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Printf("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}
