package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/docsweep/docsweep/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, and renders
// naturally in the trees docsweep scans.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	simple := report.SimpleReport
	if simple == nil {
		simple = model.NewSimpleReport(report)
	}

	return w.WriteSimple(simple)
}

// WriteSimple outputs the simple report in Markdown format.
func (w *MarkdownWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeGroups(md, report)
	w.writeErrors(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SimpleReport) {
	md.H1("Docsweep Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root", "`" + report.Root + "`"},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Documents", strconv.Itoa(report.DocumentsScanned)},
			{"Sections", strconv.Itoa(report.SectionsTotal)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.SimpleReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(report.CriticalCount)},
			{"🟠 High", strconv.Itoa(report.HighCount)},
			{"🟡 Medium", strconv.Itoa(report.MediumCount)},
			{"🔵 Low", strconv.Itoa(report.LowCount)},
			{"⚪ Info", strconv.Itoa(report.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalGroups()) + "**"},
		},
	})
	md.PlainText("")

	if report.TotalGroups() > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.SimpleReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Duplicate Group Severity Distribution"),
		piechart.WithShowData(true),
	)

	if report.CriticalCount > 0 {
		chart.LabelAndIntValue("Critical", uint64(report.CriticalCount))
	}
	if report.HighCount > 0 {
		chart.LabelAndIntValue("High", uint64(report.HighCount))
	}
	if report.MediumCount > 0 {
		chart.LabelAndIntValue("Medium", uint64(report.MediumCount))
	}
	if report.LowCount > 0 {
		chart.LabelAndIntValue("Low", uint64(report.LowCount))
	}
	if report.InfoCount > 0 {
		chart.LabelAndIntValue("Info", uint64(report.InfoCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SimpleReport) {
	switch {
	case report.CriticalCount > 0:
		md.Cautionf(
			"Heavy duplication detected! %d critical group(s) waste significant space and risk drifting out of sync.",
			report.CriticalCount,
		)
	case report.HighCount > 0:
		md.Warningf(
			"High duplication detected. %d high severity group(s) should be consolidated.",
			report.HighCount,
		)
	case report.MediumCount > 0:
		md.Importantf(
			"Moderate duplication found. %d group(s) may be worth consolidating.",
			report.MediumCount,
		)
	case report.HasDuplicates():
		md.Note("Only minor duplication detected.")
	default:
		md.Tip("No duplicated sections detected.")
	}
	md.PlainText("")
}

// writeGroups writes all duplicate groups ordered by severity.
func (w *MarkdownWriter) writeGroups(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Duplicate Groups")
	md.PlainText("")

	if report.TotalGroups() == 0 {
		md.PlainText("No duplicated sections detected.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		groups := report.GroupsBySeverity(sev.level)
		if len(groups) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeGroupsTable(md, groups)
	}
}

// writeGroupsTable writes a table of groups with details.
func (w *MarkdownWriter) writeGroupsTable(md *markdown.Markdown, groups []model.GroupSummary) {
	headers := []string{"Heading", "Copies", "Wasted Bytes", "Canonical"}

	rows := make([][]string, len(groups))
	for i, g := range groups {
		heading := g.Heading
		if heading == "" {
			heading = "(no heading)"
		}

		rows[i] = []string{
			truncateString(heading, 50),
			strconv.Itoa(g.Copies),
			strconv.Itoa(g.WastedBytes),
			"`" + truncateString(g.Canonical, 60) + "`",
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")

	// Add redundant locations for groups with more than one copy
	for _, g := range groups {
		if len(g.Redundant) == 0 {
			continue
		}
		title := g.Heading
		if title == "" {
			title = g.Fingerprint
		}
		md.Details("Redundant copies of "+title, strings.Join(g.Redundant, "<br>"))
	}
	md.PlainText("")
}

// writeErrors writes documents that could not be processed.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.SimpleReport) {
	if len(report.DocumentErrors) == 0 {
		return
	}

	md.H2("Skipped Documents")
	md.PlainText("")
	md.BulletList(report.DocumentErrors...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [docsweep](https://github.com/docsweep/docsweep)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
