package services

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driven"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyStorageBackend = "storage.backend"
	KeyStorageDataDir = "storage.data_dir"
	KeyCodecStrict    = "codec.strict"
	KeyExportDropIDs  = "export.drop_ids"
	KeyExportFormat   = "export.format"
	KeyImportResetIDs = "import.reset_ids"
)

// SettingKeys returns every key accepted by SettingsService.Set.
func SettingKeys() []string {
	keys := []string{
		KeyStorageBackend,
		KeyStorageDataDir,
		KeyCodecStrict,
		KeyExportDropIDs,
		KeyExportFormat,
		KeyImportResetIDs,
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	if s.configStore == nil {
		return &defaults, nil
	}

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			DataDir: s.configStore.GetString(KeyStorageDataDir), // No default - empty means the config directory
		},
		Codec: domain.CodecSettings{
			Strict: s.getBool(KeyCodecStrict, defaults.Codec.Strict),
		},
		Export: domain.ExportSettings{
			DropIDs: s.getBool(KeyExportDropIDs, defaults.Export.DropIDs),
			Format:  s.getFormat(defaults.Export.Format),
		},
		Import: domain.ImportSettings{
			ResetIDs: s.getBool(KeyImportResetIDs, defaults.Import.ResetIDs),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	if settings == nil {
		return domain.ErrInvalidInput
	}
	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("invalid storage backend: %s", settings.Storage.Backend)
	}
	if !settings.Export.Format.IsValid() {
		return fmt.Errorf("invalid export format: %s", settings.Export.Format)
	}

	if err := s.configStore.Set(KeyStorageBackend, settings.Storage.Backend.String()); err != nil {
		return fmt.Errorf("save storage backend: %w", err)
	}
	if err := s.configStore.Set(KeyStorageDataDir, settings.Storage.DataDir); err != nil {
		return fmt.Errorf("save storage data_dir: %w", err)
	}
	if err := s.configStore.Set(KeyCodecStrict, settings.Codec.Strict); err != nil {
		return fmt.Errorf("save codec strict: %w", err)
	}
	if err := s.configStore.Set(KeyExportDropIDs, settings.Export.DropIDs); err != nil {
		return fmt.Errorf("save export drop_ids: %w", err)
	}
	if err := s.configStore.Set(KeyExportFormat, settings.Export.Format.String()); err != nil {
		return fmt.Errorf("save export format: %w", err)
	}
	if err := s.configStore.Set(KeyImportResetIDs, settings.Import.ResetIDs); err != nil {
		return fmt.Errorf("save import reset_ids: %w", err)
	}

	return nil
}

// Set updates a single setting from its textual value.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch key {
	case KeyStorageBackend:
		backend := domain.StorageBackend(value)
		if !backend.IsValid() {
			return fmt.Errorf("invalid storage backend: %s", value)
		}
		settings.Storage.Backend = backend
	case KeyStorageDataDir:
		settings.Storage.DataDir = value
	case KeyExportFormat:
		format := domain.DocumentFormat(value)
		if !format.IsValid() {
			return fmt.Errorf("invalid export format: %s", value)
		}
		settings.Export.Format = format
	case KeyCodecStrict, KeyExportDropIDs, KeyImportResetIDs:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q is not a boolean", key, value)
		}
		switch key {
		case KeyCodecStrict:
			settings.Codec.Strict = b
		case KeyExportDropIDs:
			settings.Export.DropIDs = b
		default:
			settings.Import.ResetIDs = b
		}
	default:
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(KeyStorageBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StorageBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getFormat(defaultVal domain.DocumentFormat) domain.DocumentFormat {
	val := s.configStore.GetString(KeyExportFormat)
	if val == "" {
		return defaultVal
	}
	format := domain.DocumentFormat(val)
	if !format.IsValid() {
		return defaultVal
	}
	return format
}
