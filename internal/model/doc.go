// Package model defines the core data structures shared across docsweep.
//
// This package contains the document and section types produced by
// segmentation, the duplicate group structure produced by grouping, and the
// report types consumed by the report writers and the history database.
// It has no dependencies on other internal packages to avoid import cycles.
package model
