package model

import (
	"sync"
	"time"
)

// ScanReport accumulates the result of scanning one corpus root.
// Pipeline steps populate it in sequence: documents, then groups, then
// analysis results. Report writers consume it read-only.
type ScanReport struct {
	// Root is the scanned directory or file.
	Root string `json:"root"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// Documents holds the scanned documents in stable traversal order.
	Documents []*Document `json:"documents,omitempty"`

	// Groups holds all duplicate groups in order of first appearance,
	// singleton groups included.
	Groups []*DuplicateGroup `json:"groups,omitempty"`

	// DocumentErrors records documents that could not be processed.
	// A malformed document aborts only itself; the scan continues.
	DocumentErrors []DocumentError `json:"document_errors,omitempty"`

	// PerformedSteps lists the names of the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut indicates the scan was cancelled before completion.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error is the first critical error encountered, if any.
	Error error `json:"-"`

	// ErrorMessage mirrors Error for serialization.
	ErrorMessage string `json:"error,omitempty"`

	// SimpleReport is the curated summary used by all report writers.
	SimpleReport *SimpleReport `json:"summary,omitempty"`

	// mu guards DocumentErrors, which is appended to from segmentation
	// workers running concurrently.
	mu sync.Mutex
}

// NewScanReport creates an empty report for the given root.
func NewScanReport(root string) *ScanReport {
	return &ScanReport{
		Root:        root,
		DateScanned: time.Now(),
	}
}

// AddDocumentError records a per-document failure. Safe for concurrent use.
func (r *ScanReport) AddDocumentError(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DocumentErrors = append(r.DocumentErrors, DocumentError{
		Path:    path,
		Err:     err,
		Message: err.Error(),
	})
}

// TotalSections returns the number of sections across all documents.
func (r *ScanReport) TotalSections() int {
	var n int
	for _, d := range r.Documents {
		n += d.SectionCount()
	}
	return n
}

// DuplicateGroups returns only the groups with more than one member,
// preserving first-appearance order.
func (r *ScanReport) DuplicateGroups() []*DuplicateGroup {
	var dups []*DuplicateGroup
	for _, g := range r.Groups {
		if g.IsDuplicate() {
			dups = append(dups, g)
		}
	}
	return dups
}

// RedundantSections returns the total number of redundant copies across all
// groups.
func (r *ScanReport) RedundantSections() int {
	var n int
	for _, g := range r.Groups {
		n += len(g.Redundant)
	}
	return n
}

// WastedBytes returns the total duplicated byte volume across all groups.
func (r *ScanReport) WastedBytes() int {
	var n int
	for _, g := range r.Groups {
		n += g.WastedBytes
	}
	return n
}

// DocumentError records a document that failed to load or segment.
type DocumentError struct {
	// Path is the document that failed.
	Path string `json:"path"`

	// Err is the underlying error. Excluded from JSON output.
	Err error `json:"-"`

	// Message mirrors Err for serialization.
	Message string `json:"message"`
}
