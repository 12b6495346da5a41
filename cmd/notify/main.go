package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-notify/auth"
	"chat-notify/feed"
	"chat-notify/observability"
	"chat-notify/runtime"
	"chat-notify/runtime/workers"
	"chat-notify/sse"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Returning the error (instead of os.Exit in place) ensures deferred cleanup executes and keeps
// the wiring testable.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Shared hub state
	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry(config.SubscriberBufferSize)
	verifier := auth.NewVerifier(config.JwtSecret)

	// 3. Supervised change-feed pipeline
	pgFeed := feed.NewPG(log, config.DBUrl,
		config.FeedMinReconnectInterval, config.FeedMaxReconnectInterval)
	notifier := workers.NewNotifyWorker(log, pgFeed, registry, monitoring)
	sup := workers.NewSupervisor(log, monitoring, config.RestartInterval)
	sup.Add(notifier)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 5. HTTP gateway
	gateway := sse.NewServer(log, registry, verifier, monitoring, config.SSEKeepAliveInterval)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    address,
		Handler: gateway.Router(),
		// Tie every request context to the hub lifetime so open event
		// streams end when the hub shuts down.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting notification gateway", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Forced server shutdown", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
