package stubserver

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/stretchops/insight/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "smoke_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the stub backend tool.
func ShowHelp() {
	os.Stdout.WriteString(`Insight Stub Backend
====================

A deterministic stub of the studio-booking backend, plus a smoke runner
that drives an Insight service end to end.

Usage:
  go run cmd/stub-backend/main.go [options]

Options:
  -listen string
        Address to serve the stub backend on (default ":8000")
  -seed int
        Generator seed; the same seed always yields the same dataset (default 42)
  -notes int
        Number of booking notes to generate (default 2000)
  -smoke
        Run the smoke suite against a running Insight service instead of serving
  -url string
        Base URL of the Insight service for smoke runs (default "http://localhost:9080")
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for smoke output (default: smoke_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help

Examples:
  # Serve the stub backend for a locally running Insight service
  go run cmd/stub-backend/main.go -listen :8000

  # Smoke-test a running service
  go run cmd/stub-backend/main.go -smoke -url http://localhost:9080
`)
}
