package segment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/docsweep/docsweep/internal/model"
)

// HTMLSegmenter splits HTML documents on h1-h6 boundaries.
//
// It uses the x/net/html tokenizer rather than the DOM parser so that byte
// offsets can be tracked: the tokenizer consumes the input sequentially and
// the raw length of each token gives the exact position of every heading
// tag in the source. Section bodies hold the extracted text content, not
// raw markup; script, style, and title content is ignored.
type HTMLSegmenter struct{}

// Segment implements Segmenter.
func (HTMLSegmenter) Segment(path string, src []byte) ([]*model.Section, error) {
	z := html.NewTokenizer(bytes.NewReader(src))

	type accum struct {
		start     int
		heading   string
		lines     []string
		isHeading bool
	}

	var sections []*model.Section
	current := &accum{start: 0}

	flush := func(end int) {
		// The implicit leading accumulator is only emitted when it
		// collected actual text content.
		if !current.isHeading && len(current.lines) == 0 {
			return
		}
		sections = append(sections, &model.Section{
			DocPath: path,
			Heading: current.heading,
			Lines:   current.lines,
			Start:   current.start,
			End:     end,
			Line:    lineNumber(src, current.start),
			Index:   len(sections),
		})
	}

	var headingBuf strings.Builder
	inHeading := false
	headingTag := ""
	skipTag := ""
	offset := 0

	for {
		tt := z.Next()
		tokStart := offset
		offset += len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				if inHeading {
					current.heading = strings.TrimSpace(headingBuf.String())
				}
				flush(len(src))
				return sections, nil
			}
			return nil, fmt.Errorf("%s: tokenize html: %w", path, z.Err())

		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTag != "" {
				continue
			}
			if headingLevel(tag) > 0 {
				flush(tokStart)
				current = &accum{start: tokStart, isHeading: true}
				inHeading = true
				headingTag = tag
				headingBuf.Reset()
				continue
			}
			switch tag {
			case "script", "style", "title":
				skipTag = tag
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTag != "" {
				if tag == skipTag {
					skipTag = ""
				}
				continue
			}
			if inHeading && tag == headingTag {
				inHeading = false
				current.heading = strings.TrimSpace(headingBuf.String())
			}

		case html.TextToken:
			if skipTag != "" {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			if inHeading {
				if headingBuf.Len() > 0 {
					headingBuf.WriteByte(' ')
				}
				headingBuf.WriteString(text)
			} else {
				current.lines = append(current.lines, text)
			}
		}
	}
}

// headingLevel returns the level of an HTML heading tag, or zero.
func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}
