// Command mapbuilder edits node mapping trees and their documents.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/mapping-builder/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mapping-builder/internal/adapters/driven/source"
	"github.com/custodia-labs/mapping-builder/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mapping-builder/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mapping-builder/internal/adapters/driving/cli"
	"github.com/custodia-labs/mapping-builder/internal/codec/document"
	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driven"
	"github.com/custodia-labs/mapping-builder/internal/core/services"
	"github.com/custodia-labs/mapping-builder/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(bootstrap); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires configuration, storage and services.
func bootstrap(configDir string) (*cli.Services, func() error, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var (
		mappingStore  driven.MappingStore
		snapshotStore driven.SnapshotStore
		release       = func() error { return nil }
	)
	switch settings.Storage.Backend {
	case domain.StorageBackendMemory:
		logger.Debug("Using in-memory storage")
		mappingStore = memory.NewMappingStore()
		snapshotStore = memory.NewSnapshotStore()
	default:
		dataDir := settings.Storage.DataDir
		if dataDir == "" && configDir != "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open storage: %w", err)
		}
		logger.Debug("Using SQLite storage at %s", store.Path())
		mappingStore = store.MappingStore()
		snapshotStore = store.SnapshotStore()
		release = store.Close
	}

	var opts []document.Option
	if settings.Codec.Strict {
		opts = append(opts, document.WithStrict())
	}
	mappingService := services.NewMappingService(mappingStore, document.New(opts...))

	return &cli.Services{
		Mappings:  mappingService,
		Snapshots: services.NewSnapshotService(snapshotStore, mappingService),
		Settings:  settingsService,
		Documents: source.NewAFSSource(),
	}, release, nil
}
