// Package logger provides the structured logging interface used across the
// harvester.
//
// It wraps zerolog and writes coloured, human-readable lines to stderr so
// that stdout stays free for command output. When a log file is configured
// every event is also appended to it as a JSON line.
//
// Basic Usage:
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "info"})
//
//	logger.GetLogger().WithFields(map[string]interface{}{
//	    "url":                listingURL,
//	    "status_code":        503,
//	    "attempts_remaining": 3,
//	}).Warn("Failed to fetch listing page")
//
// Components receive a Logger through their constructors; tests pass
// NewTestLogger to capture and assert on messages, or NewNopLogger to
// discard them.
package logger
