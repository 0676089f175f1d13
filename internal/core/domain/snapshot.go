package domain

import "time"

// Snapshot is a stored copy of an exported mapping document.
type Snapshot struct {
	// ID is a generated unique identifier.
	ID string

	// Name is an optional user label.
	Name string

	// Checksum identifies the content; identical exports share it.
	Checksum uint64

	// MappingCount is the number of root mappings in the document.
	MappingCount int

	// Content is the serialized NodeMappingDocument.
	Content []byte

	CreatedAt time.Time
}
