// Package report provides output formatting for scan results.
// It supports human-readable text, JSON for tool integration, and
// Markdown for documentation and sharing.
package report
