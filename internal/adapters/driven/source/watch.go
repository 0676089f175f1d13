package source

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/mapping-builder/internal/logger"
)

// ChangeType describes what happened to a watched document.
type ChangeType int

const (
	// ChangeUpdated means the document was created or rewritten.
	ChangeUpdated ChangeType = iota

	// ChangeRemoved means the document was deleted or renamed away.
	ChangeRemoved
)

// Change is a change to a watched document file.
type Change struct {
	Path string
	Type ChangeType
}

// Watch reports changes to the local document file at path until ctx
// is done. The parent folder is watched so that editors replacing the
// file through a rename are noticed too. The channel is closed when
// watching stops.
func Watch(ctx context.Context, path string) (<-chan Change, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	changes := make(chan Change)
	go func() {
		defer close(changes)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change := handleFsEvent(abs, event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", abs, err)
			}
		}
	}()
	return changes, nil
}

// handleFsEvent maps an event on the watched folder to a change of the
// document at path, or nil when the event concerns another file.
func handleFsEvent(path string, event fsnotify.Event) *Change {
	if filepath.Clean(event.Name) != path {
		return nil
	}
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return &Change{Path: path, Type: ChangeUpdated}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Path: path, Type: ChangeRemoved}
	default:
		return nil
	}
}
