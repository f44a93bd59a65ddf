package stubserver

import "time"

// Config holds configuration for the stub backend and the smoke run.
type Config struct {
	ListenAddr string        // Address the stub backend serves on
	ServiceURL string        // Base URL of the analytics service under test
	Seed       int64         // Generator seed; same seed, same dataset
	Notes      int           // Number of booking notes to generate
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // Log file for smoke output
	Verbose    bool          // Enable verbose logging
}

// Stats holds smoke run statistics.
type Stats struct {
	IntentsApplied int
	PanelsVerified int
	PagesTraversed int
	RowsSeen       int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
