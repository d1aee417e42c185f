package model

// Severity classifies how much redundancy a duplicate group represents.
// It drives report ordering and the summary counts shown to users.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates a singleton group: a section with no duplicates.
	// These are only shown when the user asks for a full listing.
	SeverityInfo Severity = iota

	// SeverityLow indicates a small section duplicated once.
	// Usually harmless boilerplate such as a repeated disclaimer.
	SeverityLow

	// SeverityMedium indicates a section with a few copies, or a pair of
	// copies large enough that drift between them is likely.
	SeverityMedium

	// SeverityHigh indicates many copies or a large amount of duplicated
	// text. Edits to one copy almost certainly miss the others.
	SeverityHigh

	// SeverityCritical indicates both many copies and a large duplicated
	// volume. The corpus effectively maintains the same content in parallel.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Thresholds for severity classification.
// Byte thresholds count the duplicated volume: section size multiplied by
// the number of redundant copies.
const (
	// lowWastedBytes is the duplicated volume below which a single extra
	// copy is considered low severity.
	lowWastedBytes = 2 * 1024

	// highWastedBytes is the duplicated volume above which a group is
	// considered high severity regardless of copy count.
	highWastedBytes = 8 * 1024

	// criticalWastedBytes marks groups that duplicate a large volume of
	// text across many copies.
	criticalWastedBytes = 32 * 1024

	// manyCopies is the copy count at which a group is considered high
	// severity regardless of section size.
	manyCopies = 5
)

// ClassifySeverity returns the severity for a duplicate group with the given
// total copy count and duplicated byte volume.
//
// The classification is monotone: more copies or more duplicated bytes never
// lower the severity.
func ClassifySeverity(copies, wastedBytes int) Severity {
	switch {
	case copies <= 1:
		return SeverityInfo
	case copies >= manyCopies && wastedBytes >= criticalWastedBytes:
		return SeverityCritical
	case copies >= manyCopies || wastedBytes >= highWastedBytes:
		return SeverityHigh
	case copies >= 3 || wastedBytes >= lowWastedBytes:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
