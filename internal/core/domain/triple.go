package domain

import (
	"encoding/json"
	"fmt"
)

// ObjectKind tells whether a triple's object is a URI or a literal.
type ObjectKind int

const (
	// ObjectURI is a reference to another node.
	ObjectURI ObjectKind = iota

	// ObjectLiteral is a literal value.
	ObjectLiteral
)

// String returns the string representation.
func (k ObjectKind) String() string {
	if k == ObjectLiteral {
		return "literal"
	}
	return "uri"
}

// TripleObject is the object of a triple: either a URI or a literal.
type TripleObject struct {
	Kind  ObjectKind
	Value string
}

// URI returns a URI object.
func URI(value string) TripleObject {
	return TripleObject{Kind: ObjectURI, Value: value}
}

// Literal returns a literal object.
func Literal(value string) TripleObject {
	return TripleObject{Kind: ObjectLiteral, Value: value}
}

// IsLiteral returns true for literal objects.
func (o TripleObject) IsLiteral() bool {
	return o.Kind == ObjectLiteral
}

// MappedTriple is a subject-predicate-object fact emitted by a mapping.
type MappedTriple struct {
	S      string
	P      string
	Object TripleObject
}

// NewURITriple builds a triple whose object is a URI.
func NewURITriple(s, p, o string) MappedTriple {
	return MappedTriple{S: s, P: p, Object: URI(o)}
}

// NewLiteralTriple builds a triple whose object is a literal.
func NewLiteralTriple(s, p, ol string) MappedTriple {
	return MappedTriple{S: s, P: p, Object: Literal(ol)}
}

// Validate checks that subject, predicate and a URI object are present.
// Literal objects may be empty strings.
func (t MappedTriple) Validate() error {
	if t.S == "" || t.P == "" {
		return fmt.Errorf("triple needs subject and predicate: %w", ErrInvalidTriple)
	}
	if t.Object.Kind == ObjectURI && t.Object.Value == "" {
		return fmt.Errorf("triple %s %s has no object: %w", t.S, t.P, ErrInvalidTriple)
	}
	return nil
}

// tripleJSON is the structured wire form: exactly one of O and OL is set.
type tripleJSON struct {
	S  string  `json:"s"`
	P  string  `json:"p"`
	O  *string `json:"o,omitempty"`
	OL *string `json:"ol,omitempty"`
}

// MarshalJSON writes {"s","p","o"} or {"s","p","ol"}.
func (t MappedTriple) MarshalJSON() ([]byte, error) {
	v := t.Object.Value
	w := tripleJSON{S: t.S, P: t.P}
	if t.Object.IsLiteral() {
		w.OL = &v
	} else {
		w.O = &v
	}
	return json.Marshal(w)
}

// UnmarshalJSON rejects triples with both or neither object fields.
func (t *MappedTriple) UnmarshalJSON(data []byte) error {
	var w tripleJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.O != nil && w.OL != nil:
		return fmt.Errorf("triple %s %s has both o and ol: %w", w.S, w.P, ErrInvalidTriple)
	case w.O != nil:
		*t = NewURITriple(w.S, w.P, *w.O)
	case w.OL != nil:
		*t = NewLiteralTriple(w.S, w.P, *w.OL)
	default:
		return fmt.Errorf("triple %s %s has no object: %w", w.S, w.P, ErrInvalidTriple)
	}
	return nil
}
