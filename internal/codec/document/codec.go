package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/tree"
	"github.com/custodia-labs/mapping-builder/internal/logger"
)

// Codec converts mappings to and from their document form. It owns the
// id allocator used to hydrate the mappings it reads, so ids handed out
// by one codec never collide across reads unless it is asked to reset.
type Codec struct {
	visitor *tree.Visitor
	strict  bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithStrict makes malformed output entries fail the read instead of
// being dropped.
func WithStrict() Option {
	return func(c *Codec) {
		c.strict = true
	}
}

// WithAllocator shares an existing allocator with the codec.
func WithAllocator(alloc *domain.IDAllocator) Option {
	return func(c *Codec) {
		c.visitor = tree.NewVisitor(alloc)
	}
}

// New creates a codec with its own allocator.
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	if c.visitor == nil {
		c.visitor = tree.NewVisitor(nil)
	}
	return c
}

// Allocator returns the codec's id allocator.
func (c *Codec) Allocator() *domain.IDAllocator {
	return c.visitor.Allocator()
}

// Visitor returns the visitor bound to the codec's allocator.
func (c *Codec) Visitor() *tree.Visitor {
	return c.visitor
}

// Serialize encodes a single mapping tree as compact JSON.
func (c *Codec) Serialize(m *domain.NodeMapping, dropID bool) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("serialize: %w", domain.ErrInvalidInput)
	}
	return json.Marshal(ToSerializedNode(m, dropID))
}

// Deserialize decodes a single mapping tree. The result is not
// hydrated; mappings without an id keep id zero.
func (c *Codec) Deserialize(data []byte) (*domain.NodeMapping, error) {
	var s SerializedMappedNode
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, jsonParseError(data, err)
	}
	return FromSerializedNode(&s, c.strict)
}

// ReadDocument decodes a JSON mappings document. Every document mapping
// is hydrated and any references to named mappings are expanded. When
// resetIDs is set the allocator restarts from 1, so reading the same
// document twice yields the same ids.
func (c *Codec) ReadDocument(data []byte, resetIDs bool) ([]*domain.NodeMapping, error) {
	var doc NodeMappingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, jsonParseError(data, err)
	}
	return c.read(&doc, resetIDs)
}

// ReadDocumentYAML is ReadDocument for YAML input.
func (c *Codec) ReadDocumentYAML(data []byte, resetIDs bool) ([]*domain.NodeMapping, error) {
	var doc NodeMappingDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, yamlParseError(err)
	}
	return c.read(&doc, resetIDs)
}

// Read decodes a document in the given format.
func (c *Codec) Read(data []byte, format domain.DocumentFormat, resetIDs bool) ([]*domain.NodeMapping, error) {
	switch format {
	case domain.DocumentFormatYAML:
		return c.ReadDocumentYAML(data, resetIDs)
	case domain.DocumentFormatJSON, "":
		return c.ReadDocument(data, resetIDs)
	default:
		return nil, fmt.Errorf("document format %q: %w", format, domain.ErrInvalidInput)
	}
}

// WriteDocument encodes mappings, plus optional named mappings, as an
// indented JSON document.
func (c *Codec) WriteDocument(mappings []*domain.NodeMapping, named map[string]*domain.NodeMapping, dropID bool) ([]byte, error) {
	return encode(domain.DocumentFormatJSON, toDocument(mappings, named, dropID))
}

// WriteDocumentYAML is WriteDocument for YAML output.
func (c *Codec) WriteDocumentYAML(mappings []*domain.NodeMapping, named map[string]*domain.NodeMapping, dropID bool) ([]byte, error) {
	return encode(domain.DocumentFormatYAML, toDocument(mappings, named, dropID))
}

// Write encodes a document in the given format.
func (c *Codec) Write(format domain.DocumentFormat, mappings []*domain.NodeMapping, named map[string]*domain.NodeMapping, dropID bool) ([]byte, error) {
	switch format {
	case domain.DocumentFormatYAML:
		return c.WriteDocumentYAML(mappings, named, dropID)
	case domain.DocumentFormatJSON, "":
		return c.WriteDocument(mappings, named, dropID)
	default:
		return nil, fmt.Errorf("document format %q: %w", format, domain.ErrInvalidInput)
	}
}

// Convert re-encodes a document from one format to another. Named
// mappings are kept as references and no ids are assigned.
func Convert(data []byte, from, to domain.DocumentFormat) ([]byte, error) {
	var doc NodeMappingDocument
	switch from {
	case domain.DocumentFormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, yamlParseError(err)
		}
	case domain.DocumentFormatJSON, "":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, jsonParseError(data, err)
		}
	default:
		return nil, fmt.Errorf("document format %q: %w", from, domain.ErrInvalidInput)
	}
	if doc.DocumentMappings == nil {
		doc.DocumentMappings = []*SerializedMappedNode{}
	}
	return encode(to, &doc)
}

// DetectFormat picks a document format from a file name or URL.
func DetectFormat(name string) domain.DocumentFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return domain.DocumentFormatYAML
	default:
		return domain.DocumentFormatJSON
	}
}

func encode(format domain.DocumentFormat, doc *NodeMappingDocument) ([]byte, error) {
	switch format {
	case domain.DocumentFormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode document: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode document: %w", err)
		}
		return buf.Bytes(), nil
	case domain.DocumentFormatJSON, "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode document: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("document format %q: %w", format, domain.ErrInvalidInput)
	}
}

func toDocument(mappings []*domain.NodeMapping, named map[string]*domain.NodeMapping, dropID bool) *NodeMappingDocument {
	doc := &NodeMappingDocument{
		DocumentMappings: make([]*SerializedMappedNode, 0, len(mappings)),
	}
	for _, m := range mappings {
		doc.DocumentMappings = append(doc.DocumentMappings, ToSerializedNode(m, dropID))
	}
	if len(named) > 0 {
		doc.NamedMappings = make(map[string]*SerializedMappedNode, len(named))
		for k, m := range named {
			doc.NamedMappings[k] = ToSerializedNode(m, dropID)
		}
	}
	return doc
}

func (c *Codec) read(doc *NodeMappingDocument, resetIDs bool) ([]*domain.NodeMapping, error) {
	alloc := c.visitor.Allocator()
	if resetIDs {
		alloc.Reset(1)
	}

	named := make(map[string]*domain.NodeMapping, len(doc.NamedMappings))
	for k, s := range doc.NamedMappings {
		if s == nil {
			continue
		}
		m, err := FromSerializedNode(s, c.strict)
		if err != nil {
			return nil, fmt.Errorf("named mapping %q: %w", k, err)
		}
		named[k] = m
	}

	mappings := make([]*domain.NodeMapping, 0, len(doc.DocumentMappings))
	for i, s := range doc.DocumentMappings {
		if s == nil {
			continue
		}
		m, err := FromSerializedNode(s, c.strict)
		if err != nil {
			return nil, fmt.Errorf("document mapping %d: %w", i+1, err)
		}
		mappings = append(mappings, m)
	}

	// explicit ids anywhere in the document are reserved before any
	// missing one is assigned
	for _, m := range mappings {
		alloc.Advance(tree.MaxID(m))
	}

	for i := range mappings {
		if err := c.visitor.Hydrate(mappings[i]); err != nil {
			return nil, fmt.Errorf("document mapping %d: %w", i+1, err)
		}
		if err := c.expand(mappings, i, named); err != nil {
			return nil, fmt.Errorf("document mapping %d: %w", i+1, err)
		}
	}

	if err := tree.CheckUniqueAll(mappings); err != nil {
		return nil, err
	}

	logger.Debug("Read %d document mappings (%d named)", len(mappings), len(named))
	return mappings, nil
}

// expand replaces references to named mappings in mappings[i]. The
// copies are not scanned again, so named mappings cannot recurse.
func (c *Codec) expand(mappings []*domain.NodeMapping, i int, named map[string]*domain.NodeMapping) error {
	if len(named) == 0 {
		return nil
	}
	root := mappings[i]
	if src, ok := lookup(named, root.Name); ok {
		cp, err := instantiate(src, root)
		if err != nil {
			return err
		}
		mappings[i] = cp
		return c.visitor.Hydrate(cp)
	}
	changed, err := expandChildren(root, named)
	if err != nil || !changed {
		return err
	}
	return c.visitor.Hydrate(root)
}

func expandChildren(m *domain.NodeMapping, named map[string]*domain.NodeMapping) (bool, error) {
	changed := false
	for j, child := range m.Children {
		if child == nil {
			continue
		}
		if src, ok := lookup(named, child.Name); ok {
			cp, err := instantiate(src, child)
			if err != nil {
				return false, err
			}
			m.Children[j] = cp
			changed = true
			continue
		}
		sub, err := expandChildren(child, named)
		if err != nil {
			return false, err
		}
		changed = changed || sub
	}
	return changed, nil
}

func lookup(named map[string]*domain.NodeMapping, name string) (*domain.NodeMapping, bool) {
	if name == "" {
		return nil, false
	}
	m, ok := named[name]
	return m, ok
}

// instantiate copies a named mapping into the place of ref. The copy
// keeps ref's id and parent; its descendants are cleared for hydration.
func instantiate(src, ref *domain.NodeMapping) (*domain.NodeMapping, error) {
	var cp domain.NodeMapping
	if err := deepcopy.Copy(&cp, src); err != nil {
		return nil, fmt.Errorf("failed to copy named mapping %q: %w", src.Name, err)
	}
	cp.ID = ref.ID
	cp.ParentID = ref.ParentID
	for _, c := range cp.Children {
		tree.Walk(c, func(d *domain.NodeMapping) bool {
			d.ID = 0
			d.ParentID = 0
			return true
		})
	}
	logger.Debug("Expanded named mapping %q into #%d", src.Name, ref.ID)
	return &cp, nil
}

func jsonParseError(data []byte, err error) error {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return &domain.DocumentParseError{Cause: err}
	}
	line, col := position(data, offset)
	return &domain.DocumentParseError{Offset: offset, Line: line, Column: col, Cause: err}
}

// position converts a decoder offset into the 1-based line and column
// of the byte at which decoding stopped.
func position(data []byte, offset int64) (int, int) {
	idx := int(offset) - 1
	if idx > len(data) {
		idx = len(data)
	}
	if idx < 0 {
		idx = 0
	}
	head := data[:idx]
	line := bytes.Count(head, []byte{'\n'}) + 1
	col := idx - bytes.LastIndexByte(head, '\n')
	return line, col
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func yamlParseError(err error) error {
	pe := &domain.DocumentParseError{Cause: err}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}
