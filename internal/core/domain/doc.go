// Package domain defines the core entities of the mapping builder.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - NodeMapping: A declarative rule producing graph nodes, triples and metadata
//   - NodeMappingOutput: The nodes, triples and metadata emitted by a mapping
//   - MappedNode / MappedTriple: Single output records
//   - IDAllocator: The per-document source of fresh mapping ids
//   - Snapshot: A stored copy of an exported mapping document
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
