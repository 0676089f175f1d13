package document

import (
	"github.com/custodia-labs/mapping-builder/internal/codec/output"
	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

// SerializedMappedNode is the document form of a mapping. Ids are
// optional so that hand written documents can leave them out.
type SerializedMappedNode struct {
	ID             int                      `json:"id,omitempty" yaml:"id,omitempty"`
	ParentID       int                      `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Ordinal        int                      `json:"ordinal,omitempty" yaml:"ordinal,omitempty"`
	Name           string                   `json:"name" yaml:"name"`
	SourceType     domain.SourceType        `json:"sourceType" yaml:"sourceType"`
	FacetFilter    string                   `json:"facetFilter,omitempty" yaml:"facetFilter,omitempty"`
	GroupFilter    string                   `json:"groupFilter,omitempty" yaml:"groupFilter,omitempty"`
	FlagsFilter    int                      `json:"flagsFilter,omitempty" yaml:"flagsFilter,omitempty"`
	TitleFilter    string                   `json:"titleFilter,omitempty" yaml:"titleFilter,omitempty"`
	PartTypeFilter string                   `json:"partTypeFilter,omitempty" yaml:"partTypeFilter,omitempty"`
	PartRoleFilter string                   `json:"partRoleFilter,omitempty" yaml:"partRoleFilter,omitempty"`
	Description    string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Source         string                   `json:"source" yaml:"source"`
	SID            string                   `json:"sid" yaml:"sid"`
	ScalarPattern  string                   `json:"scalarPattern,omitempty" yaml:"scalarPattern,omitempty"`
	Output         *output.SerializedOutput `json:"output,omitempty" yaml:"output,omitempty"`
	Children       []*SerializedMappedNode  `json:"children,omitempty" yaml:"children,omitempty"`
}

// NodeMappingDocument is a whole mappings document.
type NodeMappingDocument struct {
	NamedMappings    map[string]*SerializedMappedNode `json:"namedMappings,omitempty" yaml:"namedMappings,omitempty"`
	DocumentMappings []*SerializedMappedNode          `json:"documentMappings" yaml:"documentMappings"`
}

// ToSerializedNode converts m and its descendants to document form.
// With dropID set, ids and parent ids are left out.
func ToSerializedNode(m *domain.NodeMapping, dropID bool) *SerializedMappedNode {
	if m == nil {
		return nil
	}
	s := &SerializedMappedNode{
		Ordinal:        m.Ordinal,
		Name:           m.Name,
		SourceType:     m.SourceType,
		FacetFilter:    m.FacetFilter,
		GroupFilter:    m.GroupFilter,
		FlagsFilter:    m.FlagsFilter,
		TitleFilter:    m.TitleFilter,
		PartTypeFilter: m.PartTypeFilter,
		PartRoleFilter: m.PartRoleFilter,
		Description:    m.Description,
		Source:         m.Source,
		SID:            m.SID,
		ScalarPattern:  m.ScalarPattern,
		Output:         output.ToSerialized(m.Output),
	}
	if !dropID {
		s.ID = m.ID
		s.ParentID = m.ParentID
	}
	if len(m.Children) > 0 {
		s.Children = make([]*SerializedMappedNode, 0, len(m.Children))
		for _, c := range m.Children {
			s.Children = append(s.Children, ToSerializedNode(c, dropID))
		}
	}
	return s
}

// FromSerializedNode converts a document mapping and its descendants.
// The result is not hydrated: missing ids stay zero.
func FromSerializedNode(s *SerializedMappedNode, strict bool) (*domain.NodeMapping, error) {
	if s == nil {
		return nil, nil
	}
	out, err := output.FromSerialized(s.Output, strict)
	if err != nil {
		return nil, err
	}
	m := &domain.NodeMapping{
		ID:             s.ID,
		ParentID:       s.ParentID,
		Ordinal:        s.Ordinal,
		Name:           s.Name,
		SourceType:     s.SourceType,
		FacetFilter:    s.FacetFilter,
		GroupFilter:    s.GroupFilter,
		FlagsFilter:    s.FlagsFilter,
		TitleFilter:    s.TitleFilter,
		PartTypeFilter: s.PartTypeFilter,
		PartRoleFilter: s.PartRoleFilter,
		Description:    s.Description,
		Source:         s.Source,
		SID:            s.SID,
		ScalarPattern:  s.ScalarPattern,
		Output:         out,
	}
	for _, sc := range s.Children {
		if sc == nil {
			continue
		}
		c, err := FromSerializedNode(sc, strict)
		if err != nil {
			return nil, err
		}
		m.Children = append(m.Children, c)
	}
	return m, nil
}
