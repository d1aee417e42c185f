package dedup

import (
	"log/slog"

	"github.com/docsweep/docsweep/internal/model"
	"github.com/docsweep/docsweep/internal/normalize"
)

// Builder groups sections by normalized key.
//
// A Builder is not safe for concurrent use: the key map is shared mutable
// state, so grouping is serialized even when segmentation ran in parallel.
type Builder struct {
	// normalizer derives comparison keys from sections.
	normalizer *normalize.Normalizer

	// similarity is the Jaccard threshold for the near-duplicate merge
	// pass. Zero disables the pass; groups then match on exact keys only.
	similarity float64

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithSimilarityThreshold enables near-duplicate merging of groups whose
// keys have at least the given Jaccard similarity. Values outside (0, 1]
// disable the pass.
func WithSimilarityThreshold(threshold float64) Option {
	return func(b *Builder) {
		b.similarity = threshold
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		normalizer: normalize.New(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Build groups the sections of the given documents.
//
// Documents must already be in the stable traversal order; the builder
// visits them and their sections in order, so the canonical member of every
// group is the one whose (document order, section order) is smallest.
// Every section belongs to exactly one group. Groups are returned in order
// of first appearance.
func (b *Builder) Build(docs []*model.Document) []*model.DuplicateGroup {
	var groups []*model.DuplicateGroup
	byKey := make(map[string]*model.DuplicateGroup)

	for _, doc := range docs {
		for _, sec := range doc.Sections {
			key := b.normalizer.Key(sec.Heading, sec.Lines)

			if g, ok := byKey[key]; ok {
				g.Redundant = append(g.Redundant, sec)
				continue
			}

			g := &model.DuplicateGroup{
				Fingerprint: normalize.Fingerprint(key),
				Key:         key,
				Canonical:   sec,
			}
			byKey[key] = g
			groups = append(groups, g)
		}
	}

	if b.similarity > 0 && b.similarity <= 1 {
		groups = b.mergeSimilar(groups)
	}

	b.logger.Debug("grouping complete",
		"documents", len(docs),
		"groups", len(groups),
	)

	return groups
}

// mergeSimilar folds near-duplicate groups into the earliest similar group.
//
// Groups are compared in first-appearance order against earlier surviving
// groups, so the merge is deterministic: a group always joins the earliest
// group it resembles, and the earlier group's canonical member is kept.
// Quadratic in the number of groups, which is acceptable for documentation
// corpora; exact matching already collapsed identical sections.
func (b *Builder) mergeSimilar(groups []*model.DuplicateGroup) []*model.DuplicateGroup {
	shingleSets := make([]map[string]struct{}, len(groups))
	for i, g := range groups {
		shingleSets[i] = shingles(g.Key, shingleSize)
	}

	merged := make([]*model.DuplicateGroup, 0, len(groups))
	mergedSets := make([]map[string]struct{}, 0, len(groups))

	for i, g := range groups {
		target := -1
		for j := range merged {
			if jaccard(shingleSets[i], mergedSets[j]) >= b.similarity {
				target = j
				break
			}
		}

		if target < 0 {
			merged = append(merged, g)
			mergedSets = append(mergedSets, shingleSets[i])
			continue
		}

		dst := merged[target]
		dst.Redundant = append(dst.Redundant, g.Canonical)
		dst.Redundant = append(dst.Redundant, g.Redundant...)
		b.logger.Debug("merged near-duplicate group",
			"into", dst.Fingerprint,
			"from", g.Fingerprint,
		)
	}

	return merged
}
