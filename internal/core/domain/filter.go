package domain

import "strings"

// NodeMappingFilter selects mappings in listings.
// Zero-valued fields do not filter.
type NodeMappingFilter struct {
	ParentID   int
	SourceType SourceType

	// Name matches any mapping whose name contains it.
	Name string

	Facet string
	Group string

	// Flags matches mappings having all these flag bits set.
	// Mappings without a flags filter are not excluded.
	Flags int

	// Title matches any mapping whose title filter contains it.
	Title string

	PartType string
	PartRole string
}

// IsEmpty returns true if the filter selects everything.
func (f NodeMappingFilter) IsEmpty() bool {
	return f == NodeMappingFilter{}
}

// Matches reports whether the mapping passes the filter.
func (f NodeMappingFilter) Matches(m *NodeMapping) bool {
	if m == nil {
		return false
	}
	if f.ParentID != 0 && m.ParentID != f.ParentID {
		return false
	}
	if f.SourceType != SourceTypeAny && m.SourceType != f.SourceType {
		return false
	}
	if f.Name != "" && !strings.Contains(m.Name, f.Name) {
		return false
	}
	if f.Facet != "" && m.FacetFilter != f.Facet {
		return false
	}
	if f.Group != "" && m.GroupFilter != f.Group {
		return false
	}
	if f.Flags != 0 && m.FlagsFilter != 0 && m.FlagsFilter&f.Flags != f.Flags {
		return false
	}
	if f.Title != "" && !strings.Contains(m.TitleFilter, f.Title) {
		return false
	}
	if f.PartType != "" && m.PartTypeFilter != f.PartType {
		return false
	}
	if f.PartRole != "" && m.PartRoleFilter != f.PartRole {
		return false
	}
	return true
}
