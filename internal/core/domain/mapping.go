package domain

import "fmt"

// SourceType identifies the kind of source a mapping applies to.
type SourceType int

// Available source types.
const (
	// SourceTypeAny matches any source.
	SourceTypeAny SourceType = 0

	// SourceTypeItem matches items.
	SourceTypeItem SourceType = 1

	// SourceTypePart matches parts.
	SourceTypePart SourceType = 2
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	return t >= SourceTypeAny && t <= SourceTypePart
}

// String returns the string representation.
func (t SourceType) String() string {
	switch t {
	case SourceTypeAny:
		return "any"
	case SourceTypeItem:
		return "item"
	case SourceTypePart:
		return "part"
	default:
		return fmt.Sprintf("SourceType(%d)", int(t))
	}
}

// MappedNode is a graph node produced by a mapping.
type MappedNode struct {
	// UID is the node identifier template. Required.
	UID string `json:"uid" yaml:"uid"`

	// Label is the optional human-readable label.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Tag is an optional classification tag.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// NodeMappingOutput holds what a mapping emits.
// A nil field means "no data", as opposed to an explicitly empty collection.
type NodeMappingOutput struct {
	// Nodes are keyed by mapping-local identifiers, which triples
	// use to refer to a node from their subject, predicate or object.
	Nodes map[string]MappedNode `json:"nodes,omitempty"`

	// Triples keep their order.
	Triples []MappedTriple `json:"triples,omitempty"`

	// Metadata holds free key/value pairs.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IsEmpty returns true if the output carries no nodes, triples or metadata.
func (o *NodeMappingOutput) IsEmpty() bool {
	return o == nil || (o.Nodes == nil && o.Triples == nil && o.Metadata == nil)
}

// NodeMapping is a rule that, given its filters and source expression,
// emits nodes, triples and metadata. Mappings form a tree: a mapping
// exclusively owns its Children, and each child's ParentID points back
// to its container. There is no stored parent pointer; the parent of a
// mapping is looked up from ParentID by the tree that holds it.
type NodeMapping struct {
	// ID is unique within a document. Zero means "not yet allocated".
	ID int `json:"id,omitempty"`

	// ParentID is the id of the containing mapping, zero for roots.
	ParentID int `json:"parentId,omitempty"`

	// Ordinal orders sibling mappings when they are executed.
	Ordinal int `json:"ordinal,omitempty"`

	// Name identifies the mapping; it is also the key used to
	// reference a named mapping.
	Name string `json:"name"`

	// SourceType restricts the kind of source.
	SourceType SourceType `json:"sourceType"`

	FacetFilter    string `json:"facetFilter,omitempty"`
	GroupFilter    string `json:"groupFilter,omitempty"`
	FlagsFilter    int    `json:"flagsFilter,omitempty"`
	TitleFilter    string `json:"titleFilter,omitempty"`
	PartTypeFilter string `json:"partTypeFilter,omitempty"`
	PartRoleFilter string `json:"partRoleFilter,omitempty"`

	// Description is a free human-readable note.
	Description string `json:"description,omitempty"`

	// Source is the transform expression applied to the source document.
	Source string `json:"source"`

	// SID is the source identifier. Required for roots; descendants
	// inherit their context and may leave it empty.
	SID string `json:"sid"`

	// ScalarPattern optionally constrains scalar source values.
	ScalarPattern string `json:"scalarPattern,omitempty"`

	Output *NodeMappingOutput `json:"output,omitempty"`

	Children []*NodeMapping `json:"children,omitempty"`
}

// IsRoot returns true if the mapping has no parent.
func (m *NodeMapping) IsRoot() bool {
	return m.ParentID == 0
}

// HasChildren returns true if the mapping owns at least one child.
func (m *NodeMapping) HasChildren() bool {
	return len(m.Children) > 0
}

// Label returns a short description of the mapping for listings.
func (m *NodeMapping) Label() string {
	if m.Name == "" {
		return fmt.Sprintf("#%d", m.ID)
	}
	return fmt.Sprintf("#%d %s", m.ID, m.Name)
}

// Validate checks the mapping's own fields, not its descendants.
func (m *NodeMapping) Validate() error {
	if m.IsRoot() && m.SID == "" {
		return fmt.Errorf("mapping %q: %w", m.Name, ErrMissingSID)
	}
	if !m.SourceType.IsValid() {
		return fmt.Errorf("mapping %q: source type %d: %w", m.Name, int(m.SourceType), ErrInvalidInput)
	}
	if m.Output == nil {
		return nil
	}
	for key, node := range m.Output.Nodes {
		if node.UID == "" {
			return fmt.Errorf("mapping %q: node %q has no uid: %w", m.Name, key, ErrInvalidInput)
		}
	}
	for i := range m.Output.Triples {
		if err := m.Output.Triples[i].Validate(); err != nil {
			return fmt.Errorf("mapping %q: triple %d: %w", m.Name, i, err)
		}
	}
	return nil
}
