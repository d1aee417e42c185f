package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/docsweep/docsweep/internal/config"
	"github.com/docsweep/docsweep/internal/dedup"
	"github.com/docsweep/docsweep/internal/model"
	"github.com/docsweep/docsweep/internal/segment"
)

// LoadStep walks the scan root and reads matching files into documents.
//
// Design decision: Loading is a separate step because:
// 1. It's the only step touching the filesystem
// 2. Its output (the stable document order) drives every later tie-break
// 3. Tests can skip it by pre-populating the report
type LoadStep struct {
	// extensions is the set of file extensions to include.
	extensions []string

	// ignorePatterns are path patterns to skip during the walk.
	ignorePatterns []string

	// workers bounds the number of concurrent file reads.
	workers int

	// maxFileSize is the largest file read, in bytes.
	maxFileSize int64

	// logger for structured logging.
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadExtensions sets the file extensions to include.
func WithLoadExtensions(exts []string) LoadStepOption {
	return func(s *LoadStep) {
		if len(exts) > 0 {
			s.extensions = exts
		}
	}
}

// WithLoadIgnorePatterns sets path patterns to skip during the walk.
func WithLoadIgnorePatterns(patterns []string) LoadStepOption {
	return func(s *LoadStep) {
		s.ignorePatterns = patterns
	}
}

// WithLoadWorkers sets the number of concurrent file reads.
func WithLoadWorkers(n int) LoadStepOption {
	return func(s *LoadStep) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLoadMaxFileSize sets the largest file read, in bytes.
func WithLoadMaxFileSize(size int64) LoadStepOption {
	return func(s *LoadStep) {
		if size > 0 {
			s.maxFileSize = size
		}
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a new document loading step.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		extensions:  config.DefaultExtensions(),
		workers:     config.DefaultWorkers,
		maxFileSize: config.DefaultMaxFileSize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
// Files are discovered in lexical walk order, which fixes the corpus
// traversal order, then read concurrently. Unreadable or oversized files
// are recorded as document errors; the scan continues without them.
func (s *LoadStep) Do(ctx context.Context, report *model.ScanReport) error {
	paths, err := s.collectPaths(report.Root)
	if err != nil {
		return fmt.Errorf("walk %s: %w", report.Root, err)
	}

	s.logger.Debug("collected files",
		"root", report.Root,
		"count", len(paths),
	)

	docs := make([]*model.Document, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, p := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			info, err := os.Stat(p.abs)
			if err != nil {
				report.AddDocumentError(p.rel, err)
				return nil
			}
			if info.Size() > s.maxFileSize {
				s.logger.Warn("skipping oversized file",
					"path", p.rel,
					"size", info.Size(),
				)
				report.AddDocumentError(p.rel,
					fmt.Errorf("file exceeds size limit (%d bytes)", s.maxFileSize))
				return nil
			}

			data, err := os.ReadFile(p.abs) //nolint:gosec // Paths come from walking the user-chosen root
			if err != nil {
				report.AddDocumentError(p.rel, err)
				return nil
			}

			docs[i] = &model.Document{
				Path: p.rel,
				Size: int64(len(data)),
				Raw:  data,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Compact out failed reads while preserving order, then fix indices:
	// the document index is the corpus traversal order used by grouping.
	kept := docs[:0]
	for _, d := range docs {
		if d != nil {
			kept = append(kept, d)
		}
	}
	for i, d := range kept {
		d.Index = i
	}
	report.Documents = kept

	return nil
}

// walkEntry pairs the absolute path used for I/O with the root-relative
// path used in reports.
type walkEntry struct {
	abs string
	rel string
}

// collectPaths discovers the files to scan under root in lexical order.
// A root that is itself a file yields exactly that file.
func (s *LoadStep) collectPaths(root string) ([]walkEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []walkEntry{{abs: root, rel: filepath.ToSlash(filepath.Base(root))}}, nil
	}

	var entries []walkEntry
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && s.ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.hasExtension(p) || s.ignored(rel) {
			return nil
		}

		entries = append(entries, walkEntry{abs: p, rel: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// hasExtension reports whether the file's extension is in the include list.
func (s *LoadStep) hasExtension(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, want := range s.extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// ignored reports whether the root-relative slash path matches any ignore
// pattern. Patterns match the whole relative path or any single segment,
// so "node_modules" skips the directory anywhere in the tree.
func (s *LoadStep) ignored(rel string) bool {
	for _, pat := range s.ignorePatterns {
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		for _, seg := range strings.Split(rel, "/") {
			if ok, _ := path.Match(pat, seg); ok {
				return true
			}
		}
	}
	return false
}

// SegmentStep splits loaded documents into heading-delimited sections.
//
// Documents are independent, so segmentation fans out across workers with
// no shared mutable state. Malformed documents are dropped from the corpus
// with a recorded error; the remaining documents are reindexed to keep the
// traversal order dense.
type SegmentStep struct {
	// workers bounds the number of concurrent segmentations.
	workers int

	// logger for structured logging.
	logger *slog.Logger
}

// SegmentStepOption configures a SegmentStep.
type SegmentStepOption func(*SegmentStep)

// WithSegmentWorkers sets the number of concurrent segmentations.
func WithSegmentWorkers(n int) SegmentStepOption {
	return func(s *SegmentStep) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSegmentLogger sets a custom logger for the segment step.
func WithSegmentLogger(logger *slog.Logger) SegmentStepOption {
	return func(s *SegmentStep) {
		s.logger = logger
	}
}

// NewSegmentStep creates a new segmentation step.
func NewSegmentStep(opts ...SegmentStepOption) *SegmentStep {
	s := &SegmentStep{
		workers: config.DefaultWorkers,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SegmentStep) Name() string {
	return "segment"
}

// Do executes the segmentation step.
func (s *SegmentStep) Do(ctx context.Context, report *model.ScanReport) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, doc := range report.Documents {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			sections, err := segment.Segment(doc.Path, doc.Raw)
			doc.Raw = nil
			if err != nil {
				s.logger.Warn("document skipped",
					"path", doc.Path,
					"error", err,
				)
				report.AddDocumentError(doc.Path, err)
				return nil
			}

			doc.Sections = sections
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Drop failed documents and reindex so the traversal order stays
	// dense. Section ownership indices follow the final document index.
	kept := report.Documents[:0]
	for _, d := range report.Documents {
		if len(d.Sections) > 0 {
			kept = append(kept, d)
		}
	}
	for i, d := range kept {
		d.Index = i
		for _, sec := range d.Sections {
			sec.DocIndex = i
		}
	}
	report.Documents = kept

	s.logger.Debug("segmentation complete",
		"documents", len(report.Documents),
		"sections", report.TotalSections(),
	)

	return nil
}

// GroupStep builds duplicate groups from the segmented corpus.
//
// Grouping is sequential: the key map is the only shared mutable structure
// in the pipeline, so this stage is serialized rather than locked.
type GroupStep struct {
	// similarity is the near-duplicate merge threshold, zero to disable.
	similarity float64

	// logger for structured logging.
	logger *slog.Logger
}

// GroupStepOption configures a GroupStep.
type GroupStepOption func(*GroupStep)

// WithGroupSimilarity sets the near-duplicate merge threshold.
func WithGroupSimilarity(threshold float64) GroupStepOption {
	return func(s *GroupStep) {
		s.similarity = threshold
	}
}

// WithGroupLogger sets a custom logger for the group step.
func WithGroupLogger(logger *slog.Logger) GroupStepOption {
	return func(s *GroupStep) {
		s.logger = logger
	}
}

// NewGroupStep creates a new grouping step.
func NewGroupStep(opts ...GroupStepOption) *GroupStep {
	s := &GroupStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *GroupStep) Name() string {
	return "group"
}

// Do executes the grouping step.
func (s *GroupStep) Do(_ context.Context, report *model.ScanReport) error {
	builder := dedup.NewBuilder(
		dedup.WithSimilarityThreshold(s.similarity),
		dedup.WithLogger(s.logger),
	)

	report.Groups = builder.Build(report.Documents)
	return nil
}

// AnalyzeStep computes per-group severity and corpus statistics.
//
// Severity assignment lives here rather than in the builder so grouping
// stays a pure function of the input order and normalized keys.
type AnalyzeStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates a new analysis step.
func NewAnalyzeStep(opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analysis step.
func (s *AnalyzeStep) Do(_ context.Context, report *model.ScanReport) error {
	for _, g := range report.Groups {
		g.WastedBytes = g.Canonical.Bytes() * len(g.Redundant)
		g.Severity = model.ClassifySeverity(g.Copies(), g.WastedBytes)
		g.SeverityText = g.Severity.String()
	}

	s.logger.Info("analysis complete",
		"groups", len(report.Groups),
		"duplicates", len(report.DuplicateGroups()),
		"wasted_bytes", report.WastedBytes(),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Extensions is the set of file extensions to scan.
	Extensions []string

	// IgnorePatterns are path patterns to skip during the walk.
	IgnorePatterns []string

	// Workers bounds file loading and segmentation concurrency.
	Workers int

	// MaxFileSize is the largest file read, in bytes.
	MaxFileSize int64

	// Similarity is the near-duplicate merge threshold.
	Similarity float64
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineExtensions sets the file extensions to scan.
func WithPipelineExtensions(exts []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Extensions = exts
	}
}

// WithPipelineIgnorePatterns sets path patterns to skip.
func WithPipelineIgnorePatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IgnorePatterns = patterns
	}
}

// WithPipelineWorkers sets the per-root worker count.
func WithPipelineWorkers(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Workers = n
	}
}

// WithPipelineMaxFileSize sets the largest file read, in bytes.
func WithPipelineMaxFileSize(size int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxFileSize = size
	}
}

// WithPipelineSimilarity sets the near-duplicate merge threshold.
func WithPipelineSimilarity(threshold float64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Similarity = threshold
	}
}

// DefaultPipeline creates a pipeline with all default steps configured.
// This is the standard load → segment → group → analyze pipeline used by
// the CLI.
//
// The first parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineWorkers, etc).
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Extensions:  config.DefaultExtensions(),
		Workers:     config.DefaultWorkers,
		MaxFileSize: config.DefaultMaxFileSize,
		Similarity:  config.DefaultSimilarity,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewLoadStep(
			WithLoadExtensions(cfg.Extensions),
			WithLoadIgnorePatterns(cfg.IgnorePatterns),
			WithLoadWorkers(cfg.Workers),
			WithLoadMaxFileSize(cfg.MaxFileSize),
			WithLoadLogger(p.logger),
		),
		NewSegmentStep(
			WithSegmentWorkers(cfg.Workers),
			WithSegmentLogger(p.logger),
		),
		NewGroupStep(
			WithGroupSimilarity(cfg.Similarity),
			WithGroupLogger(p.logger),
		),
		NewAnalyzeStep(
			WithAnalyzeLogger(p.logger),
		),
	)

	return p
}
