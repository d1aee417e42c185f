package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBatchSize of 4 concurrent root scans balances throughput with
	// resource usage; each root already fans out its own file workers.
	DefaultBatchSize = 4

	// DefaultWorkers is the number of goroutines used per root for reading
	// and segmenting files. File reads are I/O bound, so a moderate number
	// above GOMAXPROCS tends to help without thrashing the disk.
	DefaultWorkers = 8

	// DefaultMinSectionBytes of 0 disables the section size filter:
	// every duplicate group is reported regardless of how small it is.
	// Raising this hides noise like repeated one-line disclaimers.
	DefaultMinSectionBytes = 0

	// DefaultSimilarity of 0 disables near-duplicate merging; only
	// sections with identical normalized keys are grouped. Values around
	// 0.8-0.9 catch lightly edited copies.
	DefaultSimilarity = 0.0

	// DefaultMaxFileSize limits the files read during a scan. 10MB is far
	// beyond any hand-written document and guards against generated files
	// blowing up memory.
	DefaultMaxFileSize = 10 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "docsweep"
)

// DefaultExtensions returns the file extensions scanned by default.
// A fresh slice is returned so callers can append without aliasing.
func DefaultExtensions() []string {
	return []string{".md", ".markdown", ".txt", ".html", ".htm"}
}

// Config holds all configuration options for docsweep.
// This struct is populated from CLI flags and passed through the application
// via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs for
// simplicity. The number of options is manageable, and nesting would add
// complexity without significant benefit.
type Config struct {
	// Roots is the list of directories or files to scan.
	// Must contain at least one entry.
	Roots []string

	// Extensions is the set of file extensions included in a scan.
	Extensions []string

	// IgnorePatterns are path patterns to skip while walking a root.
	// Patterns are matched against the root-relative slash path and
	// against individual path segments using glob syntax.
	IgnorePatterns []string

	// Workers is the number of concurrent file loaders and segmenters per
	// root.
	Workers int

	// BatchSize is the number of roots scanned concurrently when multiple
	// roots are given.
	BatchSize int

	// MinSectionBytes hides duplicate groups whose canonical section is
	// smaller than this many bytes. Zero disables the filter.
	MinSectionBytes int

	// Similarity is the Jaccard threshold for near-duplicate merging.
	// Zero disables the merge pass; valid values are in [0, 1].
	Similarity float64

	// IncludeSingletons reports sections without duplicates as well.
	IncludeSingletons bool

	// MaxFileSize is the largest file read during a scan, in bytes.
	// Larger files are skipped with a warning.
	MaxFileSize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .docsweep in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// RootConfigs holds per-root configurations loaded from the config
	// file. Populated by LoadConfigFile and consulted during scanning.
	RootConfigs *File

	// JSONReport enables JSON report output instead of human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for the SQLite scan history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to save scan results to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults; users override specific
// values after creation.
//
// Design decision: We use a constructor instead of relying on zero values
// because many defaults are non-zero. This also documents the defaults.
func NewConfig() *Config {
	return &Config{
		Extensions:  DefaultExtensions(),
		Workers:     DefaultWorkers,
		BatchSize:   DefaultBatchSize,
		Similarity:  DefaultSimilarity,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// XDGDataDir returns the XDG data directory for docsweep.
// On Linux: ~/.local/share/docsweep
// On macOS: ~/Library/Application Support/docsweep
// On Windows: %LOCALAPPDATA%\docsweep
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docsweep.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We return the first error found rather than collecting all errors because
// fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Roots) == 0 {
		return ErrNoRoot
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Similarity < 0 || c.Similarity > 1 {
		return ErrInvalidSimilarity
	}

	if c.MinSectionBytes < 0 {
		return ErrInvalidMinSectionBytes
	}

	if c.MaxFileSize <= 0 {
		return ErrInvalidMaxFileSize
	}

	return nil
}
