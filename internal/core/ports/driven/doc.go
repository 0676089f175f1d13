// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - MappingStore: document mapping tree persistence (memory, SQLite)
//   - SnapshotStore: exported document snapshots (memory, SQLite)
//   - ConfigStore: application configuration (TOML)
//   - DocumentSource: reading and writing documents by URL or path
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
