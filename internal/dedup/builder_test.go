package dedup

import (
	"testing"

	"github.com/docsweep/docsweep/internal/model"
)

// makeDoc is a test helper building a document whose sections are given as
// heading/body pairs.
func makeDoc(path string, index int, pairs ...[2]string) *model.Document {
	doc := &model.Document{Path: path, Index: index}
	for i, p := range pairs {
		doc.Sections = append(doc.Sections, &model.Section{
			DocPath:  path,
			Heading:  p[0],
			Lines:    []string{p[1]},
			Start:    i * 100,
			End:      (i + 1) * 100,
			Line:     i*4 + 1,
			DocIndex: index,
			Index:    i,
		})
	}
	return doc
}

// TestBuildGroupsExactDuplicates tests that sections with identical
// normalized keys land in the same group.
func TestBuildGroupsExactDuplicates(t *testing.T) {
	t.Parallel()

	docs := []*model.Document{
		makeDoc("a.md", 0,
			[2]string{"What is X?", "X is a thing."},
			[2]string{"Unique A", "only here"},
		),
		makeDoc("b.md", 1,
			[2]string{"What is X?", "X is a thing."},
		),
	}

	groups := NewBuilder().Build(docs)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	dup := groups[0]
	if dup.Copies() != 2 {
		t.Fatalf("expected 2 copies in first group, got %d", dup.Copies())
	}
	if dup.Canonical.DocPath != "a.md" {
		t.Errorf("canonical in %q, want a.md", dup.Canonical.DocPath)
	}
	if dup.Redundant[0].DocPath != "b.md" {
		t.Errorf("redundant in %q, want b.md", dup.Redundant[0].DocPath)
	}
	if !dup.IsDuplicate() {
		t.Error("expected IsDuplicate() to be true")
	}

	if groups[1].IsDuplicate() {
		t.Error("expected second group to be a singleton")
	}
}

// TestBuildCaseAndWhitespaceInsensitive tests that normalization drives
// grouping.
func TestBuildCaseAndWhitespaceInsensitive(t *testing.T) {
	t.Parallel()

	docs := []*model.Document{
		makeDoc("a.md", 0, [2]string{"What is X?", "X  is a thing."}),
		makeDoc("b.md", 1, [2]string{"WHAT IS X", "x is a **thing**"}),
	}

	groups := NewBuilder().Build(docs)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Copies() != 2 {
		t.Errorf("expected 2 copies, got %d", groups[0].Copies())
	}
}

// TestBuildCanonicalIsFirstInTraversalOrder tests the canonical selection
// invariant: smallest (document order, section order) wins.
func TestBuildCanonicalIsFirstInTraversalOrder(t *testing.T) {
	t.Parallel()

	docs := []*model.Document{
		makeDoc("z-named-but-first.md", 0, [2]string{"Dup", "same text"}),
		makeDoc("a-named-but-second.md", 1, [2]string{"Dup", "same text"}),
		makeDoc("third.md", 2, [2]string{"Dup", "same text"}),
	}

	groups := NewBuilder().Build(docs)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.Canonical.DocPath != "z-named-but-first.md" {
		t.Errorf("canonical = %q, want the first document in traversal order", g.Canonical.DocPath)
	}
	for _, r := range g.Redundant {
		if r.Before(g.Canonical) {
			t.Errorf("redundant member %s precedes canonical in traversal order", r.Location())
		}
	}
}

// TestBuildGroupOrderIsFirstAppearance tests output ordering.
func TestBuildGroupOrderIsFirstAppearance(t *testing.T) {
	t.Parallel()

	docs := []*model.Document{
		makeDoc("a.md", 0,
			[2]string{"First", "alpha"},
			[2]string{"Second", "beta"},
		),
		makeDoc("b.md", 1,
			[2]string{"Second", "beta"},
			[2]string{"Third", "gamma"},
		),
	}

	groups := NewBuilder().Build(docs)

	want := []string{"First", "Second", "Third"}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, heading := range want {
		if groups[i].Canonical.Heading != heading {
			t.Errorf("group %d canonical heading = %q, want %q",
				i, groups[i].Canonical.Heading, heading)
		}
	}
}

// TestBuildSingletonsOnly tests a corpus without duplicates.
func TestBuildSingletonsOnly(t *testing.T) {
	t.Parallel()

	docs := []*model.Document{
		makeDoc("a.md", 0,
			[2]string{"One", "alpha"},
			[2]string{"Two", "beta"},
			[2]string{"Three", "gamma"},
		),
	}

	groups := NewBuilder().Build(docs)

	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	for i, g := range groups {
		if g.IsDuplicate() {
			t.Errorf("group %d should be a singleton", i)
		}
	}
}

// TestBuildEverySectionInExactlyOneGroup tests the membership invariant.
func TestBuildEverySectionInExactlyOneGroup(t *testing.T) {
	t.Parallel()

	docs := []*model.Document{
		makeDoc("a.md", 0,
			[2]string{"A", "one"},
			[2]string{"B", "two"},
			[2]string{"A", "one"},
		),
		makeDoc("b.md", 1,
			[2]string{"B", "two"},
			[2]string{"C", "three"},
		),
	}

	groups := NewBuilder().Build(docs)

	seen := make(map[*model.Section]int)
	var total int
	for _, doc := range docs {
		total += len(doc.Sections)
	}
	for _, g := range groups {
		for _, s := range g.Members() {
			seen[s]++
		}
	}

	if len(seen) != total {
		t.Errorf("%d sections grouped, want %d", len(seen), total)
	}
	for s, count := range seen {
		if count != 1 {
			t.Errorf("section %s appears in %d groups", s.Location(), count)
		}
	}
}

// TestBuildIdempotent tests that repeated runs over the same input yield
// identical groupings.
func TestBuildIdempotent(t *testing.T) {
	t.Parallel()

	docs := []*model.Document{
		makeDoc("a.md", 0,
			[2]string{"What is X?", "X is a thing."},
			[2]string{"Other", "content"},
		),
		makeDoc("b.md", 1,
			[2]string{"What is X?", "X is a thing."},
		),
	}

	first := NewBuilder().Build(docs)
	second := NewBuilder().Build(docs)

	if len(first) != len(second) {
		t.Fatalf("group counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Fingerprint != second[i].Fingerprint {
			t.Errorf("group %d fingerprint differs between runs", i)
		}
		if first[i].Canonical != second[i].Canonical {
			t.Errorf("group %d canonical differs between runs", i)
		}
		if len(first[i].Redundant) != len(second[i].Redundant) {
			t.Errorf("group %d member count differs between runs", i)
		}
	}
}

// TestBuildSimilarityMerge tests the near-duplicate merge pass.
func TestBuildSimilarityMerge(t *testing.T) {
	t.Parallel()

	// Two long sections differing in a single word, plus one unrelated.
	base := "the quick brown fox jumps over the lazy dog near the river bank today"
	nearDup := "the quick brown fox jumps over the lazy cat near the river bank today"

	docs := []*model.Document{
		makeDoc("a.md", 0, [2]string{"Fable", base}),
		makeDoc("b.md", 1, [2]string{"Fable", nearDup}),
		makeDoc("c.md", 2, [2]string{"Other", "completely different content about nothing"}),
	}

	exact := NewBuilder().Build(docs)
	if len(exact) != 3 {
		t.Fatalf("without similarity, expected 3 groups, got %d", len(exact))
	}

	merged := NewBuilder(WithSimilarityThreshold(0.5)).Build(docs)
	if len(merged) != 2 {
		t.Fatalf("with similarity, expected 2 groups, got %d", len(merged))
	}
	if merged[0].Copies() != 2 {
		t.Errorf("merged group has %d copies, want 2", merged[0].Copies())
	}
	if merged[0].Canonical.DocPath != "a.md" {
		t.Errorf("canonical = %q, want the earlier document", merged[0].Canonical.DocPath)
	}
}

// TestJaccard tests the similarity measure.
func TestJaccard(t *testing.T) {
	t.Parallel()

	a := shingles("one two three four", 3)
	if got := jaccard(a, a); got != 1.0 {
		t.Errorf("jaccard(a, a) = %f, want 1.0", got)
	}

	b := shingles("five six seven eight", 3)
	if got := jaccard(a, b); got != 0.0 {
		t.Errorf("jaccard(disjoint) = %f, want 0.0", got)
	}

	if got := jaccard(map[string]struct{}{}, a); got != 0.0 {
		t.Errorf("jaccard(empty, a) = %f, want 0.0", got)
	}
}

// TestShinglesShortKey tests that keys shorter than the shingle size still
// produce a comparable set.
func TestShinglesShortKey(t *testing.T) {
	t.Parallel()

	set := shingles("two words", 3)
	if len(set) != 1 {
		t.Fatalf("expected 1 shingle, got %d", len(set))
	}
	if _, ok := set["two words"]; !ok {
		t.Errorf("expected whole-key shingle, got %v", set)
	}
}
