package output

import (
	"encoding/json"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

// Block is the three-text-area form of an output, one entry per line.
type Block struct {
	Nodes    string
	Triples  string
	Metadata string
}

// Format renders out as a Block. A nil output renders as an empty Block.
func Format(out *domain.NodeMappingOutput) Block {
	if out == nil {
		return Block{}
	}
	return Block{
		Nodes:    FormatNodes(out.Nodes),
		Triples:  FormatTriples(out.Triples),
		Metadata: FormatMetadata(out.Metadata),
	}
}

// Parse reads a Block back. It returns nil when every part is blank.
// When strict is set, the first part with malformed lines fails the parse.
func Parse(b Block, strict bool) (*domain.NodeMappingOutput, error) {
	nodes, err := parseNodes(b.Nodes, strict)
	if err != nil {
		return nil, err
	}
	triples, err := parseTriples(b.Triples, strict)
	if err != nil {
		return nil, err
	}
	metadata, err := parseMetadata(b.Metadata, strict)
	if err != nil {
		return nil, err
	}
	if nodes == nil && triples == nil && metadata == nil {
		return nil, nil
	}
	return &domain.NodeMappingOutput{Nodes: nodes, Triples: triples, Metadata: metadata}, nil
}

// SerializedOutput is the document form of an output. A nil collection
// is left out of the document while an empty one is written as [] or {},
// so reading a document back keeps the difference.
type SerializedOutput struct {
	Nodes    map[string]string `json:"nodes" yaml:"nodes"`
	Triples  []string          `json:"triples" yaml:"triples"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
}

// presentOutput omits only nil collections: omitempty on a pointer
// drops a nil pointer and keeps a pointer to an empty value.
type presentOutput struct {
	Nodes    *map[string]string `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Triples  *[]string          `json:"triples,omitempty" yaml:"triples,omitempty"`
	Metadata *map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

func (s SerializedOutput) present() presentOutput {
	var p presentOutput
	if s.Nodes != nil {
		p.Nodes = &s.Nodes
	}
	if s.Triples != nil {
		p.Triples = &s.Triples
	}
	if s.Metadata != nil {
		p.Metadata = &s.Metadata
	}
	return p
}

// MarshalJSON writes the collections that are not nil.
func (s SerializedOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.present())
}

// MarshalYAML writes the collections that are not nil.
func (s SerializedOutput) MarshalYAML() (any, error) {
	return s.present(), nil
}

// ToSerialized converts out to its document form. Nil stays nil.
func ToSerialized(out *domain.NodeMappingOutput) *SerializedOutput {
	if out == nil {
		return nil
	}
	s := &SerializedOutput{}
	if out.Nodes != nil {
		s.Nodes = make(map[string]string, len(out.Nodes))
		for k, n := range out.Nodes {
			s.Nodes[k] = FormatNodeValue(n)
		}
	}
	if out.Triples != nil {
		s.Triples = make([]string, 0, len(out.Triples))
		for _, t := range out.Triples {
			s.Triples = append(s.Triples, FormatTriple(t))
		}
	}
	if out.Metadata != nil {
		s.Metadata = make(map[string]string, len(out.Metadata))
		for k, v := range out.Metadata {
			s.Metadata[k] = v
		}
	}
	return s
}

// FromSerialized converts a document output back. Entries that cannot
// be parsed are dropped, or reported when strict is set.
func FromSerialized(s *SerializedOutput, strict bool) (*domain.NodeMappingOutput, error) {
	if s == nil {
		return nil, nil
	}
	out := &domain.NodeMappingOutput{}

	if s.Nodes != nil {
		out.Nodes = make(map[string]domain.MappedNode, len(s.Nodes))
		var issues []domain.LineIssue
		for i, k := range sortedKeys(s.Nodes) {
			n, ok := ParseNodeValue(s.Nodes[k])
			if !ok {
				issues = append(issues, domain.LineIssue{Number: i + 1, Text: k + ": " + s.Nodes[k]})
				continue
			}
			out.Nodes[k] = n
		}
		if strict && len(issues) > 0 {
			return nil, &domain.MalformedLineError{Kind: kindNode, Lines: issues}
		}
	}

	if s.Triples != nil {
		out.Triples = make([]domain.MappedTriple, 0, len(s.Triples))
		var issues []domain.LineIssue
		for i, line := range s.Triples {
			t, ok := ParseTriple(line)
			if !ok {
				issues = append(issues, domain.LineIssue{Number: i + 1, Text: line})
				continue
			}
			out.Triples = append(out.Triples, t)
		}
		if strict && len(issues) > 0 {
			return nil, &domain.MalformedLineError{Kind: kindTriple, Lines: issues}
		}
	}

	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	return out, nil
}
