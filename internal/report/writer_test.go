package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/docsweep/docsweep/internal/model"
)

// testReport builds a scan report with one duplicate group and one error.
func testReport() *model.ScanReport {
	canonical := &model.Section{
		DocPath: "guide/install.md",
		Heading: "Install",
		Lines:   []string{"Run the installer."},
		Start:   0,
		End:     100,
		Line:    1,
	}
	redundant := &model.Section{
		DocPath:  "guide/setup.md",
		Heading:  "Install",
		Lines:    []string{"Run the installer."},
		Start:    0,
		End:      98,
		Line:     5,
		DocIndex: 1,
	}

	report := model.NewScanReport("docs")
	report.DateScanned = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	report.Documents = []*model.Document{
		{Path: "guide/install.md", Index: 0, Sections: []*model.Section{canonical}},
		{Path: "guide/setup.md", Index: 1, Sections: []*model.Section{redundant}},
	}
	report.Groups = []*model.DuplicateGroup{
		{
			Fingerprint:  "a1b2c3d4e5f60718",
			Canonical:    canonical,
			Redundant:    []*model.Section{redundant},
			Severity:     model.SeverityLow,
			SeverityText: model.SeverityLow.String(),
			WastedBytes:  100,
		},
	}
	report.AddDocumentError("broken.md", errors.New("document is empty after whitespace trimming"))
	return report
}

// TestSimpleWriter tests the human-readable text output.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes full report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		n, err := w.Write(testReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"DOCSWEEP REPORT",
			"Root:           docs",
			"SEVERITY SUMMARY",
			"DUPLICATE GROUPS",
			"Install (2 copies, 100 wasted bytes)",
			"Canonical: guide/install.md:1",
			"Redundant: guide/setup.md:5",
			"SKIPPED DOCUMENTS",
			"broken.md",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("verbose output includes fingerprints", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(testReport()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "a1b2c3d4e5f60718") {
			t.Error("verbose output should include the group fingerprint")
		}
	})

	t.Run("clean report omits group section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		report := model.NewScanReport("docs")
		if _, err := w.Write(report); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "DUPLICATE GROUPS") {
			t.Error("empty report should omit the groups section")
		}
	})
}

// TestJSONWriter tests the JSON output format.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["root"] != "docs" {
			t.Errorf("root = %v, want docs", decoded["root"])
		}
		if decoded["summary"] == nil {
			t.Error("expected summary to be generated")
		}
	})

	t.Run("pretty print adds indentation", func(t *testing.T) {
		t.Parallel()

		var compact, pretty bytes.Buffer
		if _, err := NewJSONWriter(&compact).WriteSimple(model.NewSimpleReport(testReport())); err != nil {
			t.Fatal(err)
		}
		if _, err := NewJSONWriter(&pretty, WithPrettyPrint()).WriteSimple(model.NewSimpleReport(testReport())); err != nil {
			t.Fatal(err)
		}

		if pretty.Len() <= compact.Len() {
			t.Error("pretty output should be longer than compact output")
		}
		if !strings.Contains(pretty.String(), "\n  ") {
			t.Error("pretty output should contain indentation")
		}
	})

	t.Run("full writer wraps report with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")

		if _, err := w.Write(testReport()); err != nil {
			t.Fatal(err)
		}

		var wrapped struct {
			Version string          `json:"version"`
			Report  json.RawMessage `json:"report"`
		}
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if wrapped.Version != "1.2.3" {
			t.Errorf("version = %q, want 1.2.3", wrapped.Version)
		}
		if len(wrapped.Report) == 0 {
			t.Error("expected embedded report")
		}
	})
}

// TestMarkdownWriter tests the Markdown output format.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes markdown sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Docsweep Report",
			"## Severity Summary",
			"## Duplicate Groups",
			"`docs`",
			"Install",
			"guide/install.md:1",
			"## Skipped Documents",
			"mermaid",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("clean report gets a tip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(model.NewScanReport("docs")); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No duplicated sections detected.") {
			t.Error("expected the no-duplicates message")
		}
	})
}

// TestMultiWriter tests writing to multiple destinations.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(
		NewSimpleWriter(&text),
		NewJSONWriter(&js),
	)

	n, err := mw.Write(testReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("total = %d, want %d", n, text.Len()+js.Len())
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("both writers should receive output")
	}
}

// TestTruncateString tests the table cell truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "short", maxLen: 10, want: "short"},
		{name: "exact length unchanged", input: "exact", maxLen: 5, want: "exact"},
		{name: "long string truncated", input: "a very long heading", maxLen: 10, want: "a very ..."},
		{name: "tiny max keeps prefix", input: "abcdef", maxLen: 2, want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
