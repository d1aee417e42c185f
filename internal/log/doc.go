// Package log provides logging functionality with automatic truncation of
// oversized values, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic truncation of long attribute values (document content,
//     section bodies, heading text)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// Scans routinely pass document and section content through log attributes
// for debugging. A single oversized section can make log output unreadable
// and blow up log storage, so the TruncateHandler caps every string
// attribute at a fixed length before it reaches the underlying handler.
//
// # Usage
//
//	// Create a truncating logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("segmented document",
//	    "path", "guide/install.md",
//	    "body", sectionBody, // Truncated if oversized
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
