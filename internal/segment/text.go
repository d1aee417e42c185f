package segment

import (
	"strings"

	"github.com/docsweep/docsweep/internal/model"
)

// TextSegmenter splits plain-text documents on heading boundaries.
// It recognizes ATX headings (`# Title`) and setext headings (a non-blank
// line followed by a `===` or `---` underline). It is also the fallback for
// unknown file extensions.
type TextSegmenter struct{}

// Segment implements Segmenter.
func (TextSegmenter) Segment(path string, src []byte) ([]*model.Section, error) {
	lines, offsets := splitLines(src)

	var boundaries []boundary
	skipNext := false
	for i, line := range lines {
		if skipNext {
			skipNext = false
			continue
		}

		if h, ok := atxHeading(line); ok {
			boundaries = append(boundaries, boundary{
				start:        offsets[i],
				heading:      h,
				headingLines: 1,
			})
			continue
		}

		if i+1 < len(lines) && strings.TrimSpace(line) != "" && isSetextUnderline(lines[i+1]) {
			boundaries = append(boundaries, boundary{
				start:        offsets[i],
				heading:      strings.TrimSpace(line),
				headingLines: 2,
			})
			skipNext = true
		}
	}

	return sectionsFromBoundaries(path, src, boundaries), nil
}

// splitLines splits src into lines and their byte offsets. The trailing
// newline, if any, does not produce an extra empty line.
func splitLines(src []byte) ([]string, []int) {
	text := strings.TrimRight(string(src), "\n")
	lines := strings.Split(text, "\n")
	offsets := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		offsets[i] = offset
		offset += len(line) + 1
	}
	return lines, offsets
}

// atxHeading reports whether the line is an ATX heading and returns its
// text. Up to six leading '#' characters followed by a space or end of line.
func atxHeading(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	hashes := 0
	for hashes < len(trimmed) && trimmed[hashes] == '#' {
		hashes++
	}
	if hashes == 0 || hashes > 6 {
		return "", false
	}
	rest := trimmed[hashes:]
	if rest != "" && !strings.HasPrefix(rest, " ") {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// isSetextUnderline reports whether the line is a setext heading underline:
// at least three '=' or '-' characters and nothing else. Three characters
// keeps list bullets and frontmatter fences from being mistaken for
// underlines.
func isSetextUnderline(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	ch := trimmed[0]
	if ch != '=' && ch != '-' {
		return false
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i] != ch {
			return false
		}
	}
	return true
}
