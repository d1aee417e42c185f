// Package segment splits documents into heading-delimited sections.
//
// A segmenter receives the raw bytes of one document and produces its
// ordered sections, preserving source order and byte offsets. Content before
// the first heading becomes an implicit section with an empty heading.
//
// Format support is selected by file extension: markdown via a goldmark AST
// walk, HTML via the x/net/html tokenizer, and a plain-text fallback that
// recognizes ATX and setext heading styles. All segmenters are deterministic
// and side-effect free.
package segment
