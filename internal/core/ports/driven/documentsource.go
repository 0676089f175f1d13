package driven

import "context"

// DocumentSource reads and writes mapping documents by location.
// Locations are URLs (file://, mem://, ...) or plain file paths.
type DocumentSource interface {
	// Read returns the content at location.
	Read(ctx context.Context, location string) ([]byte, error)

	// Write replaces the content at location.
	Write(ctx context.Context, location string, data []byte) error

	// Exists reports whether location holds a document.
	Exists(ctx context.Context, location string) (bool, error)
}
