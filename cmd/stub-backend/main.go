package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stretchops/insight/internal/stubserver"
)

// Default configuration constants.
const (
	defaultListenAddr = ":8000"
	defaultSeed       = 42
	defaultNotes      = 2000
	defaultTimeout    = 30 * time.Second
	defaultSmokeLimit = 10 * time.Minute
)

func main() {
	var (
		listenAddr = flag.String("listen", defaultListenAddr, "Address to serve the stub backend on")
		seed       = flag.Int64("seed", defaultSeed, "Generator seed")
		notes      = flag.Int("notes", defaultNotes, "Number of booking notes to generate")
		smoke      = flag.Bool("smoke", false, "Run the smoke suite instead of serving")
		serviceURL = flag.String("url", "http://localhost:9080", "Base URL of the Insight service")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile    = flag.String("log", "", "Log file for smoke output")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		stubserver.ShowHelp()
		return
	}

	if err := stubserver.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	config := &stubserver.Config{
		ListenAddr: *listenAddr,
		ServiceURL: *serviceURL,
		Seed:       *seed,
		Notes:      *notes,
		Timeout:    *timeout,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if *smoke {
		ctx, cancel := context.WithTimeout(context.Background(), defaultSmokeLimit)
		defer cancel()
		if err := stubserver.Run(ctx, config); err != nil {
			os.Stderr.WriteString("Smoke run failed: " + err.Error() + "\n")
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := stubserver.NewServer(config)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(ctx); err != nil {
		os.Stderr.WriteString("Stub backend failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
