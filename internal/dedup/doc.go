// Package dedup groups equivalent sections across documents.
//
// The builder traverses documents in a stable, caller-specified order,
// computes each section's normalized key, and groups sections that share a
// key. The first section encountered with a given key becomes the group's
// canonical member; every later section with the same key is recorded as a
// redundant copy. Output order is order of first appearance, and ties are
// broken purely by traversal order.
//
// Grouping runs in O(total section count) expected time using a hash map
// from key to group. An optional similarity pass merges near-duplicate
// groups using Jaccard similarity over word shingles.
package dedup
