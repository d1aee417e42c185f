package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsweep/docsweep/internal/config"
	"github.com/docsweep/docsweep/internal/database"
	"github.com/docsweep/docsweep/internal/log"
	"github.com/docsweep/docsweep/internal/model"
	"github.com/docsweep/docsweep/internal/pipeline"
	"github.com/docsweep/docsweep/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [roots...]",
		Short: "Scan documentation trees for duplicated sections",
		Long: `Scan walks one or more documentation roots, splits each document into
heading-delimited sections, and groups sections whose normalized content
matches. Copies that differ only in case, whitespace, or punctuation are
treated as duplicates.

Examples:
  # Scan a single documentation tree
  docsweep scan docs/

  # Scan multiple roots concurrently
  docsweep scan docs/ wiki/ runbooks/

  # Only markdown, skipping generated directories
  docsweep scan --ext .md --ignore node_modules --ignore "*.gen.md" docs/

  # Merge near-duplicates that share 85% of their content
  docsweep scan --similarity 0.85 docs/

  # Output JSON report to a file
  docsweep scan --json --output report.json docs/

Configuration file (.docsweep) example:
  defaults:
    ignorePatterns:
      - node_modules
  roots:
    docs:
      minSectionBytes: 64
    wiki:
      similarity: 0.9`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Corpus selection flags
	cmd.Flags().StringSliceP("ext", "e", config.DefaultExtensions(),
		"File extensions to scan")
	cmd.Flags().StringSliceP("ignore", "i", nil,
		"Path patterns to skip (matched against relative paths and path segments)")

	// Grouping flags
	cmd.Flags().IntP("min-section", "s", config.DefaultMinSectionBytes,
		"Hide duplicate groups whose canonical section is smaller than this many bytes")
	cmd.Flags().Float64P("similarity", "S", config.DefaultSimilarity,
		"Jaccard threshold in (0,1] for merging near-duplicate groups (0 disables)")
	cmd.Flags().BoolP("all", "a", false,
		"Report singleton sections as well as duplicates")

	// Concurrency flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent file loaders and segmenters per root")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of roots scanned concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .docsweep in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not save this scan to the local history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Extensions, err = cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return nil, err
	}

	cfg.IgnorePatterns, err = cmd.Flags().GetStringSlice("ignore")
	if err != nil {
		return nil, err
	}

	cfg.MinSectionBytes, err = cmd.Flags().GetInt("min-section")
	if err != nil {
		return nil, err
	}

	cfg.Similarity, err = cmd.Flags().GetFloat64("similarity")
	if err != nil {
		return nil, err
	}

	cfg.IncludeSingletons, err = cmd.Flags().GetBool("all")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-root configurations from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.RootConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.RootConfigs = &config.File{
			Roots: make(map[string]config.RootConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the scan roots
	cfg.Roots = args

	return cfg, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"roots", cfg.Roots,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Use batch processor for parallel scanning if multiple roots
	if len(cfg.Roots) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, db, logger)
	}

	return runSequentialScan(ctx, cfg, db, logger)
}

// runSequentialScan scans roots one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, logger *slog.Logger) error {
	for _, root := range cfg.Roots {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := createPipelineForRoot(logger, cfg, root)
		scanReport := model.NewScanReport(root)

		fmt.Printf("Scanning %s...\n", root)
		startTime := time.Now()

		if err := p.Execute(ctx, scanReport); err != nil {
			logger.Error("scan failed", "root", root, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", root, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "root", root, "error", err)
		}

		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "root", root, "error", err)
		}
	}

	return nil
}

// runBatchScan scans multiple roots concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d roots (concurrency: %d)...\n\n",
		len(cfg.Roots), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(root string) *pipeline.Pipeline {
			return createPipelineForRoot(logger, cfg, root)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Roots, func(scanReport *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Scan completed: %s\n", index+1, len(cfg.Roots), scanReport.Root)

		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "root", scanReport.Root, "error", err)
		}

		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "root", scanReport.Root, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// rootSettings is the per-root view of the configuration after merging the
// config file entry for the root over the global flags.
type rootSettings struct {
	extensions      []string
	ignorePatterns  []string
	minSectionBytes int
	similarity      float64
}

// settingsForRoot merges the config-file entry for a root over the global
// configuration. File entries win over flag defaults.
func settingsForRoot(cfg *config.Config, root string) rootSettings {
	s := rootSettings{
		extensions:      cfg.Extensions,
		ignorePatterns:  cfg.IgnorePatterns,
		minSectionBytes: cfg.MinSectionBytes,
		similarity:      cfg.Similarity,
	}

	if cfg.RootConfigs == nil {
		return s
	}

	rc := cfg.RootConfigs.GetRootConfig(root)
	if len(rc.Extensions) > 0 {
		s.extensions = rc.Extensions
	}
	if len(rc.IgnorePatterns) > 0 {
		s.ignorePatterns = rc.IgnorePatterns
	}
	if rc.MinSectionBytes > 0 {
		s.minSectionBytes = rc.MinSectionBytes
	}
	if rc.Similarity > 0 {
		s.similarity = rc.Similarity
	}

	return s
}

// createPipelineForRoot creates a pipeline with the merged configuration
// for a root.
func createPipelineForRoot(logger *slog.Logger, cfg *config.Config, root string) *pipeline.Pipeline {
	s := settingsForRoot(cfg, root)

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineExtensions(s.extensions),
		pipeline.WithPipelineWorkers(cfg.Workers),
		pipeline.WithPipelineMaxFileSize(cfg.MaxFileSize),
		pipeline.WithPipelineSimilarity(s.similarity),
	}
	if len(s.ignorePatterns) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineIgnorePatterns(s.ignorePatterns))
	}

	return pipeline.DefaultPipeline(pipelineOpts, configOpts...)
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Build the summary with the display options for this root
	s := settingsForRoot(cfg, scanReport.Root)
	scanReport.SimpleReport = model.NewSimpleReportWithOptions(scanReport, model.SummaryOptions{
		IncludeSingletons: cfg.IncludeSingletons,
		MinSectionBytes:   s.minSectionBytes,
	})

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (detailed report with all data)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(scanReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(scanReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output)
	_, err := writer.Write(scanReport)
	return err
}

// saveScanReport saves the scan report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.ScanDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Ensure SimpleReport is generated before saving
	if scanReport.SimpleReport == nil {
		scanReport.SimpleReport = model.NewSimpleReport(scanReport)
	}

	id, err := db.SaveScanReport(ctx, scanReport)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to database", "root", scanReport.Root, "scan_id", id)
	return nil
}
