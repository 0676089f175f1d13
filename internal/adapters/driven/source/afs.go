package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driven"
	"github.com/custodia-labs/mapping-builder/internal/logger"
)

// Verify interface implementation at compile time.
var _ driven.DocumentSource = (*AFSSource)(nil)

// DocumentFileMode is the mode of documents written to local files.
const DocumentFileMode os.FileMode = 0644

// AFSSource reads and writes mapping documents through an afs.Service.
type AFSSource struct {
	fs afs.Service
}

// NewAFSSource creates a document source over the default afs service.
func NewAFSSource() *AFSSource {
	return &AFSSource{fs: afs.New()}
}

// Read returns the document at location.
func (s *AFSSource) Read(ctx context.Context, location string) ([]byte, error) {
	URL, err := ToURL(location)
	if err != nil {
		return nil, err
	}
	ok, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", location, err)
	}
	if !ok {
		return nil, fmt.Errorf("document %s: %w", location, domain.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	logger.Debug("read %d bytes from %s", len(data), URL)
	return data, nil
}

// Write replaces the document at location, creating parent folders.
func (s *AFSSource) Write(ctx context.Context, location string, data []byte) error {
	URL, err := ToURL(location)
	if err != nil {
		return err
	}
	if err := s.fs.Upload(ctx, URL, DocumentFileMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", location, err)
	}
	logger.Debug("wrote %d bytes to %s", len(data), URL)
	return nil
}

// Exists reports whether location holds a document.
func (s *AFSSource) Exists(ctx context.Context, location string) (bool, error) {
	URL, err := ToURL(location)
	if err != nil {
		return false, err
	}
	return s.fs.Exists(ctx, URL)
}

// ToURL turns a plain file path into an absolute file:// URL.
// Locations that already carry a scheme are returned unchanged.
func ToURL(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("empty document location: %w", domain.ErrInvalidInput)
	}
	if strings.Contains(location, "://") {
		return location, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", location, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
