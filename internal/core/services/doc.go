// Package services implements the driving port interfaces.
// Services hold the mapping builder's business rules: global id
// uniqueness across stored trees, document import and export, and
// content-addressed snapshots. They orchestrate calls to driven ports
// (adapters) and never talk to storage directly.
package services
