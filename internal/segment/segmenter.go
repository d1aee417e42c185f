package segment

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docsweep/docsweep/internal/model"
)

// Segmenter splits one document into ordered sections.
// Implementations must preserve source order and byte offsets and must be
// safe for concurrent use: documents are segmented in parallel.
type Segmenter interface {
	// Segment splits the raw document content into sections.
	// The returned sections carry the document path, their byte offset
	// range, and their position within the document.
	Segment(path string, src []byte) ([]*model.Section, error)
}

// ForPath returns the segmenter for a file path based on its extension.
// Unknown extensions fall back to the plain-text segmenter.
func ForPath(path string) Segmenter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return MarkdownSegmenter{}
	case ".html", ".htm":
		return HTMLSegmenter{}
	default:
		return TextSegmenter{}
	}
}

// Segment validates and splits a document using the segmenter matching its
// extension. A document that is empty after whitespace trimming fails with
// ErrMalformedInput wrapped with the document path.
func Segment(path string, src []byte) ([]*model.Section, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrMalformedInput)
	}
	return ForPath(path).Segment(path, src)
}

// lineNumber returns the 1-based line number of the byte offset in src.
func lineNumber(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return 1 + bytes.Count(src[:offset], []byte{'\n'})
}

// lineStart returns the offset of the start of the line containing offset.
func lineStart(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return bytes.LastIndexByte(src[:offset], '\n') + 1
}

// trimBlankLines removes leading and trailing blank lines from body lines.
func trimBlankLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

// boundary marks the start of a section within a document.
type boundary struct {
	// start is the byte offset of the section start (the heading line).
	start int

	// heading is the heading text, empty for the implicit leading section.
	heading string

	// headingLines is the number of source lines consumed by the heading
	// itself (1 for ATX, 2 for setext, 0 for the implicit section).
	headingLines int
}

// sectionsFromBoundaries slices src into sections delimited by boundaries.
// Boundaries must be in ascending start order. An implicit leading section
// is prepended when non-whitespace content precedes the first boundary.
func sectionsFromBoundaries(path string, src []byte, boundaries []boundary) []*model.Section {
	if len(boundaries) == 0 || boundaries[0].start > 0 {
		limit := len(src)
		if len(boundaries) > 0 {
			limit = boundaries[0].start
		}
		if len(bytes.TrimSpace(src[:limit])) > 0 {
			boundaries = append([]boundary{{start: 0}}, boundaries...)
		}
	}

	sections := make([]*model.Section, 0, len(boundaries))
	for i, b := range boundaries {
		end := len(src)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].start
		}

		chunk := strings.TrimRight(string(src[b.start:end]), "\n")
		lines := strings.Split(chunk, "\n")
		if b.headingLines > 0 && b.headingLines <= len(lines) {
			lines = lines[b.headingLines:]
		}

		sections = append(sections, &model.Section{
			DocPath: path,
			Heading: b.heading,
			Lines:   trimBlankLines(lines),
			Start:   b.start,
			End:     end,
			Line:    lineNumber(src, b.start),
			Index:   i,
		})
	}
	return sections
}
