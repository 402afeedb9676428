package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"drawboard/infrastructure/ws"
	"drawboard/internal"
	"drawboard/observability"
	"drawboard/runtime"
	"drawboard/runtime/workers"
	"drawboard/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Keeping it separate from main means every defer fires before the
// process exit code is decided.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Engine assembly
	monitor := observability.NewMonitor()
	sessions := runtime.NewSessionRegistry()
	registry := runtime.NewRegistry()
	sup := workers.NewSupervisor(logger, config.RestartInterval)

	engine := runtime.NewEngine(
		logger, monitor, sessions, registry, sup,
		config.BufferSize, config.HistoryCapacity,
		config.CursorMinInterval, config.SinkTimeout, config.MetricInterval,
	)
	boardService := services.NewBoardService(engine)

	// 3. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Error (HTTP & engine)
	errChan := make(chan error, 2)

	// 4. Start the Engine (Workers and Fanout)
	go func() {
		logger.Info("Starting engine...")
		if err := engine.Start(ctx); err != nil {
			errChan <- fmt.Errorf("engine error: %w", err)
		}
	}()

	// 5. HTTP Server Setup
	server := ws.NewServer(config, boardService, logger, monitor)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	// The execution blocks here until either a signal is received or a component crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 7. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	engine.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}
