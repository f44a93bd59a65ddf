package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/stretchops/insight/internal/adapters/gateway"
	"github.com/stretchops/insight/internal/adapters/http/api"
	service "github.com/stretchops/insight/internal/app"
	"github.com/stretchops/insight/internal/config"
	"github.com/stretchops/insight/internal/domain/stage"
	"github.com/stretchops/insight/pkg/logger"
	"github.com/stretchops/insight/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the service collects its own system metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	gw := gateway.NewHTTPClient(cfg.BackendBaseURL,
		gateway.WithToken(cfg.BackendToken),
		gateway.WithTimeout(time.Duration(cfg.GatewayTimeoutMS)*time.Millisecond),
	)

	opts := []service.Option{
		service.WithLogger(loggerInstance),
		service.WithGateway(gw),
		service.WithWorkerCount(cfg.FetchWorkerCount),
		service.WithQueueSize(cfg.FetchQueueSize),
		service.WithPageSize(cfg.DrilldownPageSize),
		service.WithSweepInterval(time.Duration(cfg.CacheSweepIntervalSeconds)*time.Second),
		service.WithCacheMaxAge(time.Duration(cfg.CacheMaxAgeSeconds)*time.Second),
	}
	for name, secs := range cfg.StageFreshnessSeconds {
		opts = append(opts, service.WithFreshness(stage.Stage(name), time.Duration(secs)*time.Second))
	}

	pipeline := service.New(opts...)
	if err := pipeline.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start pipeline: " + err.Error() + "\n")
		return
	}
	defer pipeline.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, pipeline)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(pipeline, pipeline)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater updates system metrics on a fixed cadence.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater mirrors pipeline stats into metrics.
func startServiceMetricsUpdater(ctx context.Context, pipeline *service.Pipeline) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(pipeline)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates pipeline-level metrics.
func updateServiceMetrics(pipeline *service.Pipeline) {
	stats := pipeline.GetStats()
	metrics.UpdateQueueSize(stats.QueueLength)
	metrics.UpdateCacheEntries(stats.CacheEntries)
	metrics.UpdateWorkerCount(stats.Workers)
}
