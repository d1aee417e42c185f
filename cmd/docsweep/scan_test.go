package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docsweep/docsweep/internal/config"
	"github.com/docsweep/docsweep/internal/database"
	"github.com/docsweep/docsweep/internal/log"
	"github.com/docsweep/docsweep/internal/model"
)

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scan [roots...]" {
			t.Errorf("expected use 'scan [roots...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has ext flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("ext")
		if flag == nil {
			t.Fatal("expected ext flag")
		}
		if flag.Shorthand != "e" {
			t.Errorf("expected shorthand 'e', got %q", flag.Shorthand)
		}
	})

	t.Run("has ignore flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("ignore")
		if flag == nil {
			t.Fatal("expected ignore flag")
		}
		if flag.Shorthand != "i" {
			t.Errorf("expected shorthand 'i', got %q", flag.Shorthand)
		}
	})

	t.Run("has min-section flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("min-section")
		if flag == nil {
			t.Fatal("expected min-section flag")
		}
		if flag.Shorthand != "s" {
			t.Errorf("expected shorthand 's', got %q", flag.Shorthand)
		}
	})

	t.Run("has similarity flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("similarity")
		if flag == nil {
			t.Fatal("expected similarity flag")
		}
		if flag.Shorthand != "S" {
			t.Errorf("expected shorthand 'S', got %q", flag.Shorthand)
		}
	})

	t.Run("has all flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("all")
		if flag == nil {
			t.Fatal("expected all flag")
		}
		if flag.Shorthand != "a" {
			t.Errorf("expected shorthand 'a', got %q", flag.Shorthand)
		}
	})

	t.Run("has workers flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("workers")
		if flag == nil {
			t.Fatal("expected workers flag")
		}
		if flag.Shorthand != "w" {
			t.Errorf("expected shorthand 'w', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has markdown flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("markdown")
		if flag == nil {
			t.Fatal("expected markdown flag")
		}
		if flag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has no-save flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("no-save")
		if flag == nil {
			t.Fatal("expected no-save flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("db-dir")
		if flag != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewScanCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		// Set verbose flag to true
		_ = root.PersistentFlags().Set("verbose", "true")

		// Get scan subcommand
		scanCmd, _, err := root.Find([]string{"scan"})
		if err != nil {
			t.Fatalf("failed to find scan command: %v", err)
		}

		result := getVerboseFlag(scanCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, []string{"docs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Roots) != 1 || cfg.Roots[0] != "docs" {
			t.Errorf("expected roots [docs], got %v", cfg.Roots)
		}
		if cfg.Workers != config.DefaultWorkers {
			t.Errorf("expected workers %d, got %d", config.DefaultWorkers, cfg.Workers)
		}
		if cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("expected batch size %d, got %d", config.DefaultBatchSize, cfg.BatchSize)
		}
		if len(cfg.Extensions) == 0 {
			t.Error("expected default extensions")
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true by default")
		}
	})

	t.Run("builds config with custom extensions", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("ext", ".md,.rst")
		cfg, err := buildConfig(cmd, []string{"docs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Extensions) != 2 {
			t.Fatalf("expected 2 extensions, got %v", cfg.Extensions)
		}
		if cfg.Extensions[0] != ".md" || cfg.Extensions[1] != ".rst" {
			t.Errorf("expected extensions [.md .rst], got %v", cfg.Extensions)
		}
	})

	t.Run("builds config with ignore patterns", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("ignore", "node_modules,draft-*")
		cfg, err := buildConfig(cmd, []string{"docs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.IgnorePatterns) != 2 {
			t.Errorf("expected 2 ignore patterns, got %v", cfg.IgnorePatterns)
		}
	})

	t.Run("builds config with custom similarity", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("similarity", "0.85")
		cfg, err := buildConfig(cmd, []string{"docs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Similarity != 0.85 {
			t.Errorf("expected similarity 0.85, got %f", cfg.Similarity)
		}
	})

	t.Run("builds config with min-section filter", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("min-section", "64")
		cfg, err := buildConfig(cmd, []string{"docs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MinSectionBytes != 64 {
			t.Errorf("expected MinSectionBytes 64, got %d", cfg.MinSectionBytes)
		}
	})

	t.Run("builds config with all flag", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("all", "true")
		cfg, err := buildConfig(cmd, []string{"docs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.IncludeSingletons {
			t.Error("expected IncludeSingletons to be true")
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, []string{"docs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("builds config with no-save flag", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("no-save", "true")
		cfg, err := buildConfig(cmd, []string{"docs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-save")
		}
	})

	t.Run("builds config with multiple roots", func(t *testing.T) {
		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, []string{"docs", "wiki", "runbooks"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Roots) != 3 {
			t.Errorf("expected 3 roots, got %d", len(cfg.Roots))
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "docsweep.yaml")

		// Create a valid config file
		content := []byte(`
defaults:
  minSectionBytes: 32
roots:
  docs:
    similarity: 0.9
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{"docs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.RootConfigs == nil {
			t.Fatal("expected RootConfigs to be loaded")
		}
		if cfg.RootConfigs.Defaults.MinSectionBytes != 32 {
			t.Errorf("expected default minSectionBytes 32, got %d", cfg.RootConfigs.Defaults.MinSectionBytes)
		}
		if cfg.RootConfigs.Roots["docs"].Similarity != 0.9 {
			t.Errorf("expected docs similarity 0.9, got %f", cfg.RootConfigs.Roots["docs"].Similarity)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		// Create an invalid config file
		content := []byte(`{invalid yaml`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd, []string{"docs"})
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := buildConfig(cmd, []string{"docs"})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got %v", err)
		}
	})

	t.Run("builds config with output file", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("output", "/tmp/report.json")
		cfg, err := buildConfig(cmd, []string{"docs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ReportFile != "/tmp/report.json" {
			t.Errorf("expected ReportFile '/tmp/report.json', got %q", cfg.ReportFile)
		}
	})
}

// TestSettingsForRoot tests per-root settings merging.
func TestSettingsForRoot(t *testing.T) {
	t.Parallel()

	t.Run("returns flag values for nil RootConfigs", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			Extensions:      []string{".md"},
			IgnorePatterns:  []string{"vendor"},
			MinSectionBytes: 10,
			Similarity:      0.5,
			RootConfigs:     nil,
		}
		s := settingsForRoot(cfg, "docs")
		if len(s.extensions) != 1 || s.extensions[0] != ".md" {
			t.Errorf("expected extensions [.md], got %v", s.extensions)
		}
		if s.minSectionBytes != 10 {
			t.Errorf("expected minSectionBytes 10, got %d", s.minSectionBytes)
		}
		if s.similarity != 0.5 {
			t.Errorf("expected similarity 0.5, got %f", s.similarity)
		}
	})

	t.Run("file defaults win over flags", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			Extensions: []string{".md"},
			RootConfigs: &config.File{
				Defaults: config.RootConfig{
					Extensions: []string{".rst"},
					Similarity: 0.7,
				},
			},
		}
		s := settingsForRoot(cfg, "docs")
		if len(s.extensions) != 1 || s.extensions[0] != ".rst" {
			t.Errorf("expected extensions [.rst], got %v", s.extensions)
		}
		if s.similarity != 0.7 {
			t.Errorf("expected similarity 0.7, got %f", s.similarity)
		}
	})

	t.Run("root entry wins over defaults", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			RootConfigs: &config.File{
				Defaults: config.RootConfig{
					MinSectionBytes: 32,
				},
				Roots: map[string]config.RootConfig{
					"docs": {
						MinSectionBytes: 128,
						IgnorePatterns:  []string{"archive"},
					},
				},
			},
		}
		s := settingsForRoot(cfg, "docs")
		if s.minSectionBytes != 128 {
			t.Errorf("expected minSectionBytes 128, got %d", s.minSectionBytes)
		}
		if len(s.ignorePatterns) != 1 || s.ignorePatterns[0] != "archive" {
			t.Errorf("expected ignorePatterns [archive], got %v", s.ignorePatterns)
		}
	})

	t.Run("flags kept when root has no entry", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			MinSectionBytes: 16,
			RootConfigs: &config.File{
				Roots: map[string]config.RootConfig{
					"wiki": {MinSectionBytes: 64},
				},
			},
		}
		s := settingsForRoot(cfg, "docs")
		if s.minSectionBytes != 16 {
			t.Errorf("expected minSectionBytes 16, got %d", s.minSectionBytes)
		}
	})
}

// TestCreatePipelineForRoot tests pipeline creation with merged settings.
func TestCreatePipelineForRoot(t *testing.T) {
	t.Parallel()

	logger := log.NewLogger(os.Stderr, false)
	cfg := config.NewConfig()
	cfg.Extensions = config.DefaultExtensions()

	p := createPipelineForRoot(logger, cfg, "docs")
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}

	names := p.StepNames()
	want := []string{"load", "segment", "group", "analyze"}
	if len(names) != len(want) {
		t.Fatalf("expected %d steps, got %d: %v", len(want), len(names), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("step %d: expected %q, got %q", i, name, names[i])
		}
	}
}

// TestOutputReport tests the report output functionality.
func TestOutputReport(t *testing.T) {
	t.Run("outputs JSON report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.json")

		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outputPath,
		}

		scanReport := model.NewScanReport("docs")

		err := outputReport(cfg, scanReport)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify file exists
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file to be created")
		}

		// Verify JSON content
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		var result map[string]any
		if err := json.Unmarshal(content, &result); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}
		if _, ok := result["version"]; !ok {
			t.Error("expected JSON to contain 'version' field")
		}
		if _, ok := result["report"]; !ok {
			t.Error("expected JSON to contain 'report' field")
		}
	})

	t.Run("outputs markdown report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.md")

		cfg := &config.Config{
			MarkdownReport: true,
			ReportFile:     outputPath,
		}

		scanReport := model.NewScanReport("docs")

		err := outputReport(cfg, scanReport)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.Contains(string(content), "Docsweep Report") {
			t.Error("expected markdown report title")
		}
	})

	t.Run("outputs simple report to file by default", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.txt")

		cfg := &config.Config{
			ReportFile: outputPath,
		}

		scanReport := model.NewScanReport("docs")

		err := outputReport(cfg, scanReport)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.Contains(string(content), "DOCSWEEP REPORT") {
			t.Error("expected simple report header")
		}
	})

	t.Run("creates parent directories for output file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "nested", "dir", "report.json")

		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outputPath,
		}

		scanReport := model.NewScanReport("docs")

		err := outputReport(cfg, scanReport)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file in nested directory")
		}
	})
}

// TestSaveScanReport tests saving scan reports to the database.
func TestSaveScanReport(t *testing.T) {
	t.Parallel()

	logger := log.NewLogger(os.Stderr, false)

	t.Run("no-op when database is nil", func(t *testing.T) {
		t.Parallel()

		scanReport := model.NewScanReport("docs")
		if err := saveScanReport(context.Background(), nil, scanReport, logger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("saves report to database", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() {
			if err := db.Close(); err != nil {
				t.Errorf("failed to close database: %v", err)
			}
		})

		scanReport := model.NewScanReport("docs")
		if err := saveScanReport(context.Background(), db, scanReport, logger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// SimpleReport should have been generated before saving
		if scanReport.SimpleReport == nil {
			t.Error("expected SimpleReport to be generated")
		}

		saved, err := db.GetLatestScanReport(context.Background(), "docs")
		if err != nil {
			t.Fatalf("failed to load saved report: %v", err)
		}
		if saved == nil {
			t.Fatal("expected saved report")
		}
		if saved.Root != "docs" {
			t.Errorf("expected root 'docs', got %q", saved.Root)
		}
	})
}
