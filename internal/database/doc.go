// Package database provides SQLite-based persistence for scan results.
// Saved scans allow comparing duplicate-content findings across runs of
// the same documentation tree.
package database
