// Package source provides a driven.DocumentSource backed by viant/afs,
// so mapping documents can be read from and written to local files or
// any URL scheme afs has a storage manager for.
package source
