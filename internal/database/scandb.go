package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docsweep/docsweep/internal/model"
)

// ScanDB provides SQLite-based storage for scan reports.
// It manages connection pooling and provides methods for saving and
// querying scan history.
//
// Design decision: We use a single database file for all roots rather
// than one file per root. This simplifies cross-root queries and
// backup/restore operations.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "docsweep.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string. mode=rw prevents creating new
	// files; mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, so a single connection avoids
	// SQLITE_BUSY errors under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Scans store complete scan results as JSON plus summary columns
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		group_count INTEGER DEFAULT 0,
		redundant_count INTEGER DEFAULT 0,
		wasted_bytes INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_scans_root ON scans(root);
	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);

	-- Groups store one row per duplicate group for fingerprint queries
	CREATE TABLE IF NOT EXISTS groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		fingerprint TEXT NOT NULL,
		heading TEXT,
		severity TEXT,
		copies INTEGER,
		wasted_bytes INTEGER,
		canonical TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_groups_scan ON groups(scan_id);
	CREATE INDEX IF NOT EXISTS idx_groups_fingerprint ON groups(fingerprint);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScanReport saves a complete scan report and its duplicate groups.
// Returns the ID of the saved scan.
func (sdb *ScanDB) SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	dups := report.DuplicateGroups()

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO scans (root, report_json, group_count, redundant_count, wasted_bytes)
	VALUES (?, ?, ?, ?, ?)
	`,
		report.Root,
		string(reportJSON),
		len(dups),
		report.RedundantSections(),
		report.WastedBytes(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan: %w", err)
	}

	scanID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan id: %w", err)
	}

	for _, g := range dups {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO groups (scan_id, fingerprint, heading, severity, copies, wasted_bytes, canonical)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			scanID,
			g.Fingerprint,
			g.Canonical.Heading,
			g.Severity.String(),
			g.Copies(),
			g.WastedBytes,
			g.Canonical.Location().String(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save group: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan: %w", err)
	}

	return scanID, nil
}

// GetLatestScanReport retrieves the most recent scan report for a root.
// Returns nil without error when the root has never been scanned.
func (sdb *ScanDB) GetLatestScanReport(ctx context.Context, root string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scans
	WHERE root = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, root).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetScanReportByID retrieves a scan report by its database ID.
// Returns nil without error when no scan has that ID.
func (sdb *ScanDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scans
	WHERE id = ?
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListRoots returns all roots that have at least one saved scan.
func (sdb *ScanDB) ListRoots(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT root FROM scans
	ORDER BY root
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list roots: %w", err)
	}
	defer rows.Close()

	var roots []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("failed to scan root: %w", err)
		}
		roots = append(roots, root)
	}

	return roots, rows.Err()
}

// ScanMetadata contains summary information about a saved scan.
// This is used for displaying scan history without loading the full report.
type ScanMetadata struct {
	// ID is the unique identifier of the scan in the database.
	ID int64

	// Root is the scanned directory or file.
	Root string

	// Timestamp is when the scan was performed.
	Timestamp time.Time

	// GroupCount is the number of duplicate groups found.
	GroupCount int

	// RedundantCount is the number of redundant section copies found.
	RedundantCount int

	// WastedBytes is the total duplicated byte volume.
	WastedBytes int
}

// ListScans retrieves scan metadata for a root, newest first.
// If since is non-zero, only scans at or after that time are returned.
func (sdb *ScanDB) ListScans(ctx context.Context, root string, since time.Time) ([]ScanMetadata, error) {
	query := `
	SELECT id, root, timestamp, group_count, redundant_count, wasted_bytes
	FROM scans
	WHERE root = ?
	`
	args := []any{root}

	if !since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, since.UTC().Format("2006-01-02 15:04:05"))
	}

	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var results []ScanMetadata
	for rows.Next() {
		var meta ScanMetadata
		var timestamp string

		if err := rows.Scan(
			&meta.ID,
			&meta.Root,
			&timestamp,
			&meta.GroupCount,
			&meta.RedundantCount,
			&meta.WastedBytes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GroupRecord is one duplicate group row from a saved scan.
type GroupRecord struct {
	// Fingerprint identifies the group across scans.
	Fingerprint string

	// Heading is the canonical member's heading text.
	Heading string

	// Severity is the human-readable severity level.
	Severity string

	// Copies is the total member count, canonical included.
	Copies int

	// WastedBytes is the duplicated byte volume of the group.
	WastedBytes int

	// Canonical is the representative location in "path:line" form.
	Canonical string
}

// GroupRecords retrieves the duplicate groups of a saved scan in insertion
// order.
func (sdb *ScanDB) GroupRecords(ctx context.Context, scanID int64) ([]GroupRecord, error) {
	query := `
	SELECT fingerprint, heading, severity, copies, wasted_bytes, canonical
	FROM groups
	WHERE scan_id = ?
	ORDER BY id
	`

	rows, err := sdb.db.QueryContext(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	defer rows.Close()

	var results []GroupRecord
	for rows.Next() {
		var rec GroupRecord
		if err := rows.Scan(
			&rec.Fingerprint,
			&rec.Heading,
			&rec.Severity,
			&rec.Copies,
			&rec.WastedBytes,
			&rec.Canonical,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
