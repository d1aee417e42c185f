// Package normalize derives comparison keys from document sections.
//
// A normalized key is a whitespace/case/punctuation-insensitive fingerprint
// of a section's text. Two sections with the same key are considered
// duplicates. The transform is pure: the same section always yields the same
// key, regardless of platform or run.
//
// The transform applies, in order: Unicode NFKC normalization, case folding,
// removal of punctuation and markdown emphasis markers, and collapsing of
// whitespace runs to single spaces.
package normalize
