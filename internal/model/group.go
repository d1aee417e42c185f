package model

// DuplicateGroup is a set of sections judged equivalent under normalization.
// Exactly one member is canonical: the first encountered in the stable corpus
// traversal order. All later members are redundant.
//
// Groups are recomputed fully on each scan; they are never mutated
// incrementally across runs.
type DuplicateGroup struct {
	// Fingerprint is a short, stable identifier derived from the normalized
	// key. It is used in reports and in the history database.
	Fingerprint string `json:"fingerprint"`

	// Key is the full normalized key the group was built from.
	// It is kept for the optional similarity merge pass and excluded from
	// JSON output because it can be large.
	Key string `json:"-"`

	// Canonical is the representative copy: the member whose
	// (document order, section order) is smallest.
	Canonical *Section `json:"canonical"`

	// Redundant holds the remaining members in traversal order.
	Redundant []*Section `json:"redundant,omitempty"`

	// Severity classifies the redundancy represented by this group.
	// Computed by the analyze step after grouping.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity, for JSON consumers.
	SeverityText string `json:"severity_text"`

	// WastedBytes is the duplicated volume: the canonical section's size
	// multiplied by the number of redundant copies.
	WastedBytes int `json:"wasted_bytes"`
}

// Copies returns the total number of members, canonical included.
func (g *DuplicateGroup) Copies() int {
	return 1 + len(g.Redundant)
}

// IsDuplicate reports whether the group has more than one member.
func (g *DuplicateGroup) IsDuplicate() bool {
	return len(g.Redundant) > 0
}

// Members returns all members in traversal order, canonical first.
func (g *DuplicateGroup) Members() []*Section {
	members := make([]*Section, 0, g.Copies())
	members = append(members, g.Canonical)
	members = append(members, g.Redundant...)
	return members
}

// RedundantLocations returns the locations of all redundant members.
func (g *DuplicateGroup) RedundantLocations() []Location {
	locs := make([]Location, len(g.Redundant))
	for i, s := range g.Redundant {
		locs[i] = s.Location()
	}
	return locs
}
