package model

import "time"

// SimpleReport is a summarized, human-readable view of a scan.
// It extracts the duplicate groups worth showing from the full report.
//
// Design decision: We create a separate summary type rather than printing
// parts of ScanReport directly because:
// 1. It provides a consistent, curated view across all output formats
// 2. It can be serialized to JSON for tools that want structured output
// 3. It separates presentation concerns from pipeline data
type SimpleReport struct {
	// Root is the scanned directory or file.
	Root string `json:"root"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// === Severity Summary ===

	// CriticalCount is the number of critical duplicate groups.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity duplicate groups.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity duplicate groups.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity duplicate groups.
	LowCount int `json:"low_count"`

	// InfoCount is the number of singleton groups.
	InfoCount int `json:"info_count"`

	// === Corpus Statistics ===

	// DocumentsScanned is the number of documents successfully segmented.
	DocumentsScanned int `json:"documents_scanned"`

	// SectionsTotal is the number of sections across all documents.
	SectionsTotal int `json:"sections_total"`

	// RedundantSections is the number of redundant copies found.
	RedundantSections int `json:"redundant_sections"`

	// WastedBytes is the total duplicated byte volume.
	WastedBytes int `json:"wasted_bytes"`

	// === Groups ===

	// Groups lists the duplicate groups selected for display.
	Groups []GroupSummary `json:"groups,omitempty"`

	// === Errors ===

	// DocumentErrors lists documents that could not be processed.
	DocumentErrors []string `json:"document_errors,omitempty"`

	// TimedOut indicates the scan was cancelled before completion.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error contains the scan-level error message, if any.
	Error string `json:"error,omitempty"`
}

// GroupSummary is the display form of a duplicate group.
type GroupSummary struct {
	// Fingerprint identifies the group across scans.
	Fingerprint string `json:"fingerprint"`

	// Heading is the canonical member's heading text.
	Heading string `json:"heading"`

	// Severity is the redundancy level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Copies is the total member count, canonical included.
	Copies int `json:"copies"`

	// WastedBytes is the duplicated byte volume of this group.
	WastedBytes int `json:"wasted_bytes"`

	// Canonical is the representative location in "path:line" form.
	Canonical string `json:"canonical"`

	// Redundant lists the redundant locations in "path:line" form.
	Redundant []string `json:"redundant,omitempty"`
}

// SummaryOptions controls which groups appear in a SimpleReport.
type SummaryOptions struct {
	// IncludeSingletons includes groups with a single member.
	IncludeSingletons bool

	// MinSectionBytes hides groups whose canonical section is smaller than
	// this many bytes. Zero disables the filter.
	MinSectionBytes int
}

// NewSimpleReport builds a summary from a full scan report using default
// options: duplicates only, no size filter.
func NewSimpleReport(report *ScanReport) *SimpleReport {
	return NewSimpleReportWithOptions(report, SummaryOptions{})
}

// NewSimpleReportWithOptions builds a summary from a full scan report.
func NewSimpleReportWithOptions(report *ScanReport, opts SummaryOptions) *SimpleReport {
	simple := &SimpleReport{
		Root:              report.Root,
		DateScanned:       report.DateScanned,
		DocumentsScanned:  len(report.Documents),
		SectionsTotal:     report.TotalSections(),
		RedundantSections: report.RedundantSections(),
		WastedBytes:       report.WastedBytes(),
		TimedOut:          report.TimedOut,
	}

	if report.Error != nil {
		simple.Error = report.Error.Error()
	}

	for _, de := range report.DocumentErrors {
		simple.DocumentErrors = append(simple.DocumentErrors, de.Path+": "+de.Message)
	}

	simple.collectGroups(report, opts)
	simple.countBySeverity()

	return simple
}

// collectGroups selects and converts groups for display.
func (s *SimpleReport) collectGroups(report *ScanReport, opts SummaryOptions) {
	for _, g := range report.Groups {
		if !g.IsDuplicate() && !opts.IncludeSingletons {
			continue
		}
		if opts.MinSectionBytes > 0 && g.Canonical.Bytes() < opts.MinSectionBytes {
			continue
		}

		summary := GroupSummary{
			Fingerprint:  g.Fingerprint,
			Heading:      g.Canonical.Heading,
			Severity:     g.Severity,
			SeverityText: g.Severity.String(),
			Copies:       g.Copies(),
			WastedBytes:  g.WastedBytes,
			Canonical:    g.Canonical.Location().String(),
		}
		for _, loc := range g.RedundantLocations() {
			summary.Redundant = append(summary.Redundant, loc.String())
		}
		s.Groups = append(s.Groups, summary)
	}
}

// countBySeverity tallies displayed groups by severity level.
func (s *SimpleReport) countBySeverity() {
	for _, g := range s.Groups {
		switch g.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
}

// TotalGroups returns the number of displayed groups.
func (s *SimpleReport) TotalGroups() int {
	return len(s.Groups)
}

// HasDuplicates reports whether any displayed group has more than one member.
func (s *SimpleReport) HasDuplicates() bool {
	for _, g := range s.Groups {
		if g.Copies > 1 {
			return true
		}
	}
	return false
}

// GroupsBySeverity returns the displayed groups with the given severity,
// preserving order.
func (s *SimpleReport) GroupsBySeverity(severity Severity) []GroupSummary {
	var out []GroupSummary
	for _, g := range s.Groups {
		if g.Severity == severity {
			out = append(out, g)
		}
	}
	return out
}
