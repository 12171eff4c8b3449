package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldside/rdysl/internal/api/rest"
	"github.com/fieldside/rdysl/internal/api/websocket"
	"github.com/fieldside/rdysl/internal/cache"
	"github.com/fieldside/rdysl/internal/summary"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the callup service with REST and WebSocket APIs",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := LoadConfig()
	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("RDYSL_USERNAME and RDYSL_PASSWORD must be set")
	}

	log.Println("Starting rdysl callup service")

	runner := cfg.NewRunner()

	// Redis is an optional mirror; the service runs without it.
	var redisCache *cache.RedisCache
	if cfg.RedisURL != "" {
		var err error
		redisCache, err = cache.NewRedisCache(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, continuing without mirror: %v", err)
		} else {
			defer redisCache.Close()
			log.Println("✓ Connected to Redis")
		}
	}

	wsServer := websocket.NewServer()

	opts := []summary.Option{
		summary.WithRefreshHook(wsServer.BroadcastSnapshot),
	}
	if redisCache != nil {
		opts = append(opts, summary.WithMirror(redisCache))
	}
	engine := summary.NewEngine(runner.ScrapeCallups, cfg.CacheTTL, opts...)

	restServer := rest.NewServer(cfg.RESTPort, engine, redisCache)
	go func() {
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()
	log.Printf("✓ REST API listening on :%s", cfg.RESTPort)

	go func() {
		if err := wsServer.Start(cfg.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()
	log.Printf("✓ WebSocket server listening on :%s", cfg.WSPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Println("Stopped")
	return nil
}
