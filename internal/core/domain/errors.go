package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Mapping tree errors.

	// ErrTreeIntegrity indicates an edit referenced a mapping that is not in the tree.
	ErrTreeIntegrity = errors.New("tree integrity violated")

	// ErrDuplicateID indicates two mappings share an id after hydration.
	ErrDuplicateID = errors.New("duplicate mapping id")

	// ErrMissingSID indicates a root mapping without a source identifier.
	ErrMissingSID = errors.New("root mapping requires a sid")

	// Codec errors.

	// ErrDocumentParse indicates a mapping document could not be decoded.
	ErrDocumentParse = errors.New("document parse failed")

	// ErrMalformedLine indicates an output text line does not match its grammar.
	ErrMalformedLine = errors.New("malformed line")

	// ErrInvalidTriple indicates a triple with both or neither object fields.
	ErrInvalidTriple = errors.New("invalid triple")
)

// TreeIntegrityError reports a structural edit that could not find
// the mapping it refers to.
type TreeIntegrityError struct {
	// Op is the edit that failed (e.g. "replace", "insert", "delete").
	Op string

	// ID is the id of the mapping being edited.
	ID int

	// ParentID is the id of the expected parent, 0 if not relevant.
	ParentID int
}

func (e *TreeIntegrityError) Error() string {
	if e.ParentID != 0 {
		return fmt.Sprintf("%s mapping %d: parent %d not found in tree", e.Op, e.ID, e.ParentID)
	}
	return fmt.Sprintf("%s mapping %d: not found in tree", e.Op, e.ID)
}

// Is reports whether target is ErrTreeIntegrity.
func (e *TreeIntegrityError) Is(target error) bool {
	return target == ErrTreeIntegrity
}

// DuplicateIDError reports an id shared by more than one mapping.
type DuplicateIDError struct {
	ID int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate mapping id %d", e.ID)
}

// Is reports whether target is ErrDuplicateID.
func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// DocumentParseError reports a mapping document that failed to decode.
// Line and Column are 1-based and zero when unknown.
type DocumentParseError struct {
	Offset int64
	Line   int
	Column int
	Cause  error
}

func (e *DocumentParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("document parse failed at line %d, column %d: %v", e.Line, e.Column, e.Cause)
	}
	return fmt.Sprintf("document parse failed: %v", e.Cause)
}

// Is reports whether target is ErrDocumentParse.
func (e *DocumentParseError) Is(target error) bool {
	return target == ErrDocumentParse
}

// Unwrap returns the underlying decoder error.
func (e *DocumentParseError) Unwrap() error {
	return e.Cause
}

// LineIssue is a single rejected line in a text block.
type LineIssue struct {
	// Number is the 1-based line number within the block.
	Number int

	// Text is the rejected line.
	Text string
}

// MalformedLineError lists lines rejected by a strict output parser.
type MalformedLineError struct {
	// Kind is the block kind: "node", "triple" or "metadata".
	Kind string

	Lines []LineIssue
}

func (e *MalformedLineError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, fmt.Sprintf("%d: %q", l.Number, l.Text))
	}
	return fmt.Sprintf("malformed %s lines: %s", e.Kind, strings.Join(parts, ", "))
}

// Is reports whether target is ErrMalformedLine.
func (e *MalformedLineError) Is(target error) bool {
	return target == ErrMalformedLine
}
