package model

import (
	"fmt"
	"strings"
)

// Document is a single scanned file: its path, corpus-order index, and the
// ordered sections produced by segmentation.
type Document struct {
	// Path is the path of the source file, relative to the scan root when
	// possible.
	Path string `json:"path"`

	// Index is the position of this document in the corpus traversal order.
	// Grouping tie-breaks depend on this order being stable.
	Index int `json:"index"`

	// Size is the raw size of the source file in bytes.
	Size int64 `json:"size"`

	// Sections holds the heading-delimited sections in source order.
	// It is empty for documents that failed segmentation.
	Sections []*Section `json:"sections,omitempty"`

	// Raw holds the file content between loading and segmentation.
	// It is released after segmentation to bound memory usage.
	Raw []byte `json:"-"`
}

// SectionCount returns the number of sections in the document.
func (d *Document) SectionCount() int {
	return len(d.Sections)
}

// Section is a heading-delimited block of text within a document.
// A section is owned exclusively by its document; the implicit leading
// section before the first heading has an empty Heading.
type Section struct {
	// DocPath is the path of the owning document.
	DocPath string `json:"doc_path"`

	// Heading is the heading text that opens the section.
	// Empty for the implicit leading section.
	Heading string `json:"heading"`

	// Lines are the body lines of the section, excluding the heading line.
	Lines []string `json:"lines,omitempty"`

	// Start and End delimit the section's byte range within the source
	// document. End is exclusive.
	Start int `json:"start"`
	End   int `json:"end"`

	// Line is the 1-based line number where the section begins.
	Line int `json:"line"`

	// DocIndex and Index locate the section in the corpus traversal order:
	// document position, then section position within the document.
	DocIndex int `json:"doc_index"`
	Index    int `json:"section_index"`
}

// Body returns the section body as a single string.
func (s *Section) Body() string {
	return strings.Join(s.Lines, "\n")
}

// Bytes returns the size of the section's byte range in the source document.
func (s *Section) Bytes() int {
	return s.End - s.Start
}

// Location returns the section's position in "path:line" form.
func (s *Section) Location() Location {
	return Location{Path: s.DocPath, Line: s.Line}
}

// Before reports whether s comes before other in the corpus traversal order.
// The order is (document index, section index), lexicographically.
func (s *Section) Before(other *Section) bool {
	if s.DocIndex != other.DocIndex {
		return s.DocIndex < other.DocIndex
	}
	return s.Index < other.Index
}

// Location identifies a position within the scanned corpus.
type Location struct {
	// Path is the document path.
	Path string `json:"path"`

	// Line is the 1-based line number.
	Line int `json:"line"`
}

// String returns the location in "path:line" form.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.Path, l.Line)
}
