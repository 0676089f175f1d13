// Package document reads and writes mapping documents.
//
// A document holds a list of document mappings plus an optional set of
// named mappings. Any mapping in a document tree whose name matches a
// named mapping is replaced, on read, by an independent copy of it. The
// copy takes over the position and id of the mapping it replaces.
//
// Documents are JSON by default; YAML is accepted as an equivalent
// encoding with the same field names.
package document
