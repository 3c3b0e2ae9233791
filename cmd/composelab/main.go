package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mescon/Composelab/internal/api"
	"github.com/mescon/Composelab/internal/clock"
	"github.com/mescon/Composelab/internal/config"
	"github.com/mescon/Composelab/internal/eventbus"
	"github.com/mescon/Composelab/internal/logger"
	"github.com/mescon/Composelab/internal/metrics"
	"github.com/mescon/Composelab/internal/services"
	"github.com/mescon/Composelab/internal/widgets"
)

func main() {
	// Define command line flags (these override environment variables)
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(showVersion, "v", false, "Print version and exit (shorthand)")

	// Configuration flags - all can also be set via environment variables (COMPOSELAB_*)
	flagPort := flag.String("port", "", "HTTP server port (env: COMPOSELAB_PORT, default: 8080)")
	flagLogLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (env: COMPOSELAB_LOG_LEVEL, default: info)")
	flagLogDir := flag.String("log-dir", "", "Directory for rotated log files (env: COMPOSELAB_LOG_DIR, default: stdout only)")
	flagTickInterval := flag.Duration("tick-interval", 0, "Stopwatch tick interval (env: COMPOSELAB_TICK_INTERVAL, default: 1s)")
	flagSeed := flag.Int("stopwatch-seed", -1, "Initial stopwatch seconds (env: COMPOSELAB_STOPWATCH_SEED, default: 922)")
	flagResetSchedule := flag.String("reset-schedule", "", "Cron expression for board resets (env: COMPOSELAB_RESET_SCHEDULE)")
	flagRateLimitRPS := flag.Int("rate-limit", 0, "Widget actions per second per client (env: COMPOSELAB_RATE_LIMIT_RPS, default: 20)")
	flagRateLimitBurst := flag.Int("rate-burst", 0, "Burst size for widget actions (env: COMPOSELAB_RATE_LIMIT_BURST, default: 40)")

	flag.Parse()

	if *showVersion {
		fmt.Printf("Composelab %s\n", config.Version)
		os.Exit(0)
	}

	config.Load()

	flagOverrides := config.FlagOverrides{
		Port:           flagPort,
		LogLevel:       flagLogLevel,
		LogDir:         flagLogDir,
		TickInterval:   flagTickInterval,
		ResetSchedule:  flagResetSchedule,
		RateLimitRPS:   flagRateLimitRPS,
		RateLimitBurst: flagRateLimitBurst,
	}
	// -1 means not set; 0 is a valid seed
	if *flagSeed >= 0 {
		flagOverrides.StopwatchSeed = flagSeed
	}
	config.ApplyFlags(flagOverrides)

	cfg := config.Get()

	if err := logger.Init(cfg.LogDir); err != nil {
		logger.Errorf("Failed to open log directory %s: %v", cfg.LogDir, err)
	}
	logger.SetLevel(cfg.LogLevel)

	logger.Infof("========================================")
	logger.Infof("Starting Composelab %s...", config.Version)
	logger.Infof("========================================")

	logger.Infof("Configuration:")
	logger.Infof("  Port: %s", cfg.Port)
	logger.Infof("  Log Level: %s", cfg.LogLevel)
	if cfg.LogDir != "" {
		logger.Infof("  Log Directory: %s", cfg.LogDir)
	}
	logger.Infof("  Tick Interval: %s", cfg.TickInterval)
	logger.Infof("  Stopwatch Seed: %d (%s)", cfg.StopwatchSeed, widgets.FormatElapsed(cfg.StopwatchSeed))
	logger.Infof("  Action Rate Limit: %d req/s (burst: %d)", cfg.RateLimitRPS, cfg.RateLimitBurst)

	logger.Infof("Initializing Event Bus...")
	eb := eventbus.NewEventBus()
	logger.Infof("✓ Event Bus initialized")

	clk := clock.NewRealClock()
	board := widgets.NewBoard(widgets.BoardConfig{
		StopwatchSeed: cfg.StopwatchSeed,
		TickInterval:  cfg.TickInterval,
		Clock:         clk,
		Publisher:     eb,
	})
	logger.Infof("✓ Board mounted (counter, stopwatch, color toggle)")

	logger.Infof("Initializing Metrics Service...")
	metricsService := metrics.NewMetricsService(eb, board)
	metricsService.Start()
	logger.Infof("✓ Metrics Service (Prometheus endpoint at /metrics)")

	schedulerService := services.NewSchedulerService(board, eb)
	if err := schedulerService.SetSchedule(cfg.ResetSchedule); err != nil {
		logger.Errorf("Ignoring reset schedule: %v", err)
	}
	schedulerService.Start()
	logger.Infof("✓ Scheduler Service (cron-based board resets)")

	logger.Infof("Initializing REST API and WebSocket server...")
	apiServer := api.NewRESTServer(api.ServerDeps{
		Board:     board,
		EventBus:  eb,
		Scheduler: schedulerService,
		Metrics:   metricsService,
		Clock:     clk,
	})
	go func() {
		addr := ":" + cfg.Port
		if err := apiServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Failed to start API server: %v", err)
			os.Exit(1)
		}
	}()

	logger.Infof("========================================")
	logger.Infof("✓ Composelab %s started successfully", config.Version)
	logger.Infof("✓ Server listening on port %s", cfg.Port)
	logger.Infof("========================================")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Infof("Received signal %v, initiating graceful shutdown...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown in reverse order of startup
	logger.Infof("Stopping API Server...")
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API Server shutdown error: %v", err)
	} else {
		logger.Infof("✓ API Server stopped")
	}

	logger.Infof("Stopping Scheduler Service...")
	schedulerService.Stop()
	logger.Infof("✓ Scheduler Service stopped")

	board.Close()
	logger.Infof("✓ Board unmounted")

	logger.Infof("Stopping Event Bus...")
	eb.Shutdown()
	logger.Infof("✓ Event Bus stopped")

	logger.Infof("✓ Composelab shutdown complete")
	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}
