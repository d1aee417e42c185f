package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsweep/docsweep/internal/config"
	"github.com/docsweep/docsweep/internal/database"
	"github.com/docsweep/docsweep/internal/model"
)

// Constants for duplication trend direction and summary messages.
const (
	trendWorsened     = "worsened"
	trendImproved     = "improved"
	trendUnchanged    = "unchanged"
	noGroupsMessage   = "No duplicates"
	compareDateFormat = "2006-01-02"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [root]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- New duplicate groups that appeared since the last scan
- Resolved groups that are no longer present
- Changes in duplication severity levels

The comparison requires at least two scans in the database for the specified
root. Use 'docsweep scan' to perform scans and save results.

Examples:
  # Compare latest two scans for a root
  docsweep compare docs/

  # List all scan history for a root
  docsweep compare --list docs/

  # Compare with a specific historical scan by ID
  docsweep compare --with-scan-id 5 docs/

  # Compare with the first scan since a specific date
  docsweep compare --since "2025-01-01" docs/

  # Output comparison in JSON format
  docsweep compare --json docs/

  # List all scanned roots in the database
  docsweep compare --list-roots`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified root")
	cmd.Flags().BoolP("list-roots", "L", false,
		"List all scanned roots in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-roots flag first (requires database but no root)
	listRoots, err := cmd.Flags().GetBool("list-roots")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-roots)
	// This prevents database lock issues when validation fails
	var root string
	if !listRoots {
		if len(args) == 0 {
			return errors.New("root is required (use --list-roots to see available roots)")
		}
		root = args[0]
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-roots flag
	if listRoots {
		return listScannedRoots(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, root)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, root, withScanID, sinceDate, jsonOutput, markdownOutput)
}

// listScannedRoots lists all roots that have scan records in the database.
func listScannedRoots(ctx context.Context, db *database.ScanDB) error {
	roots, err := db.ListRoots(ctx)
	if err != nil {
		return fmt.Errorf("failed to list roots: %w", err)
	}

	if len(roots) == 0 {
		fmt.Println("No scanned roots found in the database.")
		fmt.Println("\nUse 'docsweep scan <root>' to scan a documentation tree.")
		return nil
	}

	fmt.Printf("Scanned roots (%d):\n\n", len(roots))
	for _, root := range roots {
		fmt.Printf("  • %s\n", root)
	}
	fmt.Println("\nUse 'docsweep compare --list <root>' to see scan history for a root.")

	return nil
}

// listScanHistory lists all scan records for a specific root.
func listScanHistory(ctx context.Context, db *database.ScanDB, root string) error {
	scans, err := db.ListScans(ctx, root, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(scans) == 0 {
		fmt.Printf("No scan history found for %s\n", root)
		fmt.Println("\nUse 'docsweep scan' to scan this root.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", root, len(scans))
	fmt.Printf("  %-6s  %-20s  %s\n", "ID", "Date", "Duplication Summary")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range scans {
		fmt.Printf("  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			formatScanSummary(meta),
		)
	}

	fmt.Println("\nUse 'docsweep compare <root>' to compare the latest two scans.")
	fmt.Println("Use 'docsweep compare --with-scan-id <id> <root>' to compare with a specific scan.")

	return nil
}

// formatScanSummary formats scan metadata into a human-readable string.
func formatScanSummary(meta database.ScanMetadata) string {
	if meta.GroupCount == 0 {
		return noGroupsMessage
	}
	return fmt.Sprintf("%d groups, %d redundant sections, %d wasted bytes",
		meta.GroupCount, meta.RedundantCount, meta.WastedBytes)
}

// runComparison performs the actual comparison between scan reports.
func runComparison(ctx context.Context, db *database.ScanDB, root string, withScanID int64, sinceDate string, jsonOutput, markdownOutput bool) error {
	scans, err := db.ListScans(ctx, root, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(scans) == 0 {
		return fmt.Errorf("no scan history found for %s", root)
	}

	if len(scans) < 2 && withScanID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(scans))
	}

	// Latest scan is always the current one
	currentReport, err := db.GetScanReportByID(ctx, scans[0].ID)
	if err != nil {
		return fmt.Errorf("failed to get latest scan: %w", err)
	}
	if currentReport == nil {
		return fmt.Errorf("latest scan %d not found", scans[0].ID)
	}

	var previousReport *model.ScanReport

	switch {
	case withScanID > 0:
		previousReport, err = db.GetScanReportByID(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("scan with ID %d not found", withScanID)
		}
		// Validate that the scan ID belongs to the same root
		if previousReport.Root != root {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, previousReport.Root, root)
		}
	case sinceDate != "":
		parsedDate, err := time.Parse(compareDateFormat, sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Scans are sorted newest first, so iterate in reverse to find
		// the oldest scan at or after the date.
		var previousID int64
		for i := len(scans) - 1; i >= 0; i-- {
			s := scans[i]
			if s.Timestamp.After(parsedDate) || s.Timestamp.Equal(parsedDate) {
				previousID = s.ID
				break
			}
		}
		if previousID == 0 {
			return fmt.Errorf("no scans found since %s", sinceDate)
		}
		if previousID == scans[0].ID {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}

		previousReport, err = db.GetScanReportByID(ctx, previousID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", previousID, err)
		}
	default:
		// Default: compare with the previous scan
		previousReport, err = db.GetScanReportByID(ctx, scans[1].ID)
		if err != nil {
			return fmt.Errorf("failed to get previous scan: %w", err)
		}
	}
	if previousReport == nil {
		return errors.New("previous scan not found")
	}

	comparison := compareReports(previousReport, currentReport)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two scan reports.
type ComparisonResult struct {
	// Root is the scanned directory or file.
	Root string `json:"root"`

	// PreviousScan contains metadata about the previous scan.
	PreviousScan CompareScanSummary `json:"previous_scan"`

	// CurrentScan contains metadata about the current scan.
	CurrentScan CompareScanSummary `json:"current_scan"`

	// NewGroups contains duplicate groups that are new in the current scan.
	NewGroups []model.GroupSummary `json:"new_groups,omitempty"`

	// ResolvedGroups contains groups from the previous scan no longer present.
	ResolvedGroups []model.GroupSummary `json:"resolved_groups,omitempty"`

	// UnchangedCount is the number of groups present in both scans.
	UnchangedCount int `json:"unchanged_count"`

	// Trend describes the overall change in duplication level.
	Trend DuplicationTrend `json:"trend"`
}

// CompareScanSummary contains metadata about one scan for comparison display.
type CompareScanSummary struct {
	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// TotalGroups is the total number of duplicate groups in this scan.
	TotalGroups int `json:"total_groups"`

	// WastedBytes is the total duplicated byte volume.
	WastedBytes int `json:"wasted_bytes"`

	// CriticalCount is the number of critical groups.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity groups.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity groups.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity groups.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational groups.
	InfoCount int `json:"info_count"`
}

// DuplicationTrend describes the change in duplication between scans.
type DuplicationTrend struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical group count.
	CriticalDelta int `json:"critical_delta"`

	// HighDelta is the change in high severity group count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity group count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity group count.
	LowDelta int `json:"low_delta"`

	// InfoDelta is the change in informational group count.
	InfoDelta int `json:"info_delta"`

	// WastedBytesDelta is the change in duplicated byte volume.
	WastedBytesDelta int `json:"wasted_bytes_delta"`
}

// compareReports compares two scan reports and generates a comparison result.
func compareReports(previous, current *model.ScanReport) *ComparisonResult {
	result := &ComparisonResult{
		Root: current.Root,
	}

	prevSimple := previous.SimpleReport
	if prevSimple == nil {
		prevSimple = model.NewSimpleReport(previous)
	}
	currSimple := current.SimpleReport
	if currSimple == nil {
		currSimple = model.NewSimpleReport(current)
	}

	result.PreviousScan = summarizeScan(previous.DateScanned, prevSimple)
	result.CurrentScan = summarizeScan(current.DateScanned, currSimple)

	// Build fingerprint maps for comparison. The fingerprint is stable
	// across scans because it derives from normalized content.
	previousGroups := make(map[string]model.GroupSummary)
	for _, g := range prevSimple.Groups {
		previousGroups[g.Fingerprint] = g
	}
	currentGroups := make(map[string]model.GroupSummary)
	for _, g := range currSimple.Groups {
		currentGroups[g.Fingerprint] = g
	}

	// New groups appear in first-appearance order of the current scan.
	for _, g := range currSimple.Groups {
		if _, exists := previousGroups[g.Fingerprint]; !exists {
			result.NewGroups = append(result.NewGroups, g)
		}
	}

	// Resolved groups keep the previous scan's order.
	for _, g := range prevSimple.Groups {
		if _, exists := currentGroups[g.Fingerprint]; !exists {
			result.ResolvedGroups = append(result.ResolvedGroups, g)
		} else {
			result.UnchangedCount++
		}
	}

	result.Trend = calculateTrend(result.PreviousScan, result.CurrentScan)

	return result
}

// summarizeScan extracts the comparison metadata from a simple report.
func summarizeScan(dateScanned time.Time, simple *model.SimpleReport) CompareScanSummary {
	return CompareScanSummary{
		DateScanned:   dateScanned,
		TotalGroups:   simple.TotalGroups(),
		WastedBytes:   simple.WastedBytes,
		CriticalCount: simple.CriticalCount,
		HighCount:     simple.HighCount,
		MediumCount:   simple.MediumCount,
		LowCount:      simple.LowCount,
		InfoCount:     simple.InfoCount,
	}
}

// calculateTrend calculates the change in duplication between two scans.
func calculateTrend(previous, current CompareScanSummary) DuplicationTrend {
	trend := DuplicationTrend{
		CriticalDelta:    current.CriticalCount - previous.CriticalCount,
		HighDelta:        current.HighCount - previous.HighCount,
		MediumDelta:      current.MediumCount - previous.MediumCount,
		LowDelta:         current.LowCount - previous.LowCount,
		InfoDelta:        current.InfoCount - previous.InfoCount,
		WastedBytesDelta: current.WastedBytes - previous.WastedBytes,
	}

	// Determine overall direction based on weighted score
	// Critical and High severity changes have more weight
	previousScore := previous.CriticalCount*100 + previous.HighCount*50 + previous.MediumCount*10 + previous.LowCount*5 + previous.InfoCount
	currentScore := current.CriticalCount*100 + current.HighCount*50 + current.MediumCount*10 + current.LowCount*5 + current.InfoCount

	switch {
	case currentScore < previousScore:
		trend.Direction = trendImproved
	case currentScore > previousScore:
		trend.Direction = trendWorsened
	case current.WastedBytes < previous.WastedBytes:
		trend.Direction = trendImproved
	case current.WastedBytes > previous.WastedBytes:
		trend.Direction = trendWorsened
	default:
		trend.Direction = trendUnchanged
	}

	return trend
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Scan Comparison: %s\n\n", result.Root)

	fmt.Println("## Summary")
	fmt.Printf("\n**Duplication Trend:** %s\n\n", formatTrendDirection(result.Trend.Direction))

	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04"),
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04"))
	fmt.Printf("| Critical | %d | %d | %s |\n",
		result.PreviousScan.CriticalCount,
		result.CurrentScan.CriticalCount,
		formatDelta(result.Trend.CriticalDelta))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousScan.HighCount,
		result.CurrentScan.HighCount,
		formatDelta(result.Trend.HighDelta))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousScan.MediumCount,
		result.CurrentScan.MediumCount,
		formatDelta(result.Trend.MediumDelta))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousScan.LowCount,
		result.CurrentScan.LowCount,
		formatDelta(result.Trend.LowDelta))
	fmt.Printf("| Info | %d | %d | %s |\n",
		result.PreviousScan.InfoCount,
		result.CurrentScan.InfoCount,
		formatDelta(result.Trend.InfoDelta))
	fmt.Printf("| Wasted Bytes | %d | %d | %s |\n",
		result.PreviousScan.WastedBytes,
		result.CurrentScan.WastedBytes,
		formatDelta(result.Trend.WastedBytesDelta))
	fmt.Printf("| **Total Groups** | **%d** | **%d** | **%s** |\n",
		result.PreviousScan.TotalGroups,
		result.CurrentScan.TotalGroups,
		formatDelta(result.CurrentScan.TotalGroups-result.PreviousScan.TotalGroups))

	if len(result.NewGroups) > 0 {
		fmt.Printf("\n## New Groups (%d)\n\n", len(result.NewGroups))
		for _, g := range result.NewGroups {
			fmt.Printf("- **[%s]** %s (%d copies, %d wasted bytes)\n",
				g.SeverityText, groupTitle(g), g.Copies, g.WastedBytes)
			fmt.Printf("  - Canonical: `%s`\n", g.Canonical)
		}
	}

	if len(result.ResolvedGroups) > 0 {
		fmt.Printf("\n## Resolved Groups (%d)\n\n", len(result.ResolvedGroups))
		for _, g := range result.ResolvedGroups {
			fmt.Printf("- ~~**[%s]** %s (%d copies)~~\n", g.SeverityText, groupTitle(g), g.Copies)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d groups unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.Root)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nDuplication Trend: %s\n", formatTrendDirection(result.Trend.Direction))

	fmt.Printf("\nPrevious scan: %s\n", result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current scan:  %s\n", result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"))

	fmt.Println("\nGroup Summary:")
	fmt.Printf("  %-12s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 47))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousScan.CriticalCount, result.CurrentScan.CriticalCount,
		formatDelta(result.Trend.CriticalDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousScan.HighCount, result.CurrentScan.HighCount,
		formatDelta(result.Trend.HighDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousScan.MediumCount, result.CurrentScan.MediumCount,
		formatDelta(result.Trend.MediumDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousScan.LowCount, result.CurrentScan.LowCount,
		formatDelta(result.Trend.LowDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousScan.InfoCount, result.CurrentScan.InfoCount,
		formatDelta(result.Trend.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 47))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousScan.TotalGroups, result.CurrentScan.TotalGroups,
		formatDelta(result.CurrentScan.TotalGroups-result.PreviousScan.TotalGroups))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Wasted Bytes",
		result.PreviousScan.WastedBytes, result.CurrentScan.WastedBytes,
		formatDelta(result.Trend.WastedBytesDelta))

	if len(result.NewGroups) > 0 {
		fmt.Printf("\nNew Groups (%d):\n", len(result.NewGroups))
		for _, g := range result.NewGroups {
			fmt.Printf("  [+] [%s] %s (%d copies)\n", g.SeverityText, groupTitle(g), g.Copies)
			fmt.Printf("      Canonical: %s\n", g.Canonical)
		}
	}

	if len(result.ResolvedGroups) > 0 {
		fmt.Printf("\nResolved Groups (%d):\n", len(result.ResolvedGroups))
		for _, g := range result.ResolvedGroups {
			fmt.Printf("  [-] [%s] %s (%d copies)\n", g.SeverityText, groupTitle(g), g.Copies)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d groups\n", result.UnchangedCount)
	}

	return nil
}

// groupTitle returns a display name for a group summary.
func groupTitle(g model.GroupSummary) string {
	if g.Heading != "" {
		return g.Heading
	}
	return g.Fingerprint
}

// formatTrendDirection formats the trend direction for display.
func formatTrendDirection(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (duplication decreased)"
	case trendWorsened:
		return "WORSENED (duplication increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
