package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapping-builder/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_NilStore(t *testing.T) {
	service := NewSettingsService(nil)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)

	assert.ErrorIs(t, service.Save(settings), domain.ErrNotImplemented)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("storage.backend", "memory")
	_ = store.Set("storage.data_dir", "/data")
	_ = store.Set("codec.strict", true)
	_ = store.Set("export.format", "yaml")
	_ = store.Set("import.reset_ids", false)

	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.StorageBackendMemory, settings.Storage.Backend)
	assert.Equal(t, "/data", settings.Storage.DataDir)
	assert.True(t, settings.Codec.Strict)
	assert.Equal(t, domain.DocumentFormatYAML, settings.Export.Format)
	assert.False(t, settings.Import.ResetIDs)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("storage.backend", "postgres")
	_ = store.Set("export.format", "xml")

	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
	assert.Equal(t, defaults.Export.Format, settings.Export.Format)
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.Storage.Backend = domain.StorageBackendMemory
	settings.Export.DropIDs = true

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "memory", store.GetString("storage.backend"))
	assert.True(t, store.GetBool("export.drop_ids"))
	assert.True(t, store.GetBool("import.reset_ids"))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Save_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings := domain.DefaultAppSettings()
	settings.Storage.Backend = "postgres"
	assert.Error(t, service.Save(&settings))

	settings = domain.DefaultAppSettings()
	settings.Export.Format = "xml"
	assert.Error(t, service.Save(&settings))

	assert.ErrorIs(t, service.Save(nil), domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, s *domain.AppSettings)
	}{
		{KeyStorageBackend, "memory", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.StorageBackendMemory, s.Storage.Backend)
		}},
		{KeyStorageDataDir, "/tmp/maps", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, "/tmp/maps", s.Storage.DataDir)
		}},
		{KeyCodecStrict, "true", func(t *testing.T, s *domain.AppSettings) {
			assert.True(t, s.Codec.Strict)
		}},
		{KeyExportDropIDs, "1", func(t *testing.T, s *domain.AppSettings) {
			assert.True(t, s.Export.DropIDs)
		}},
		{KeyExportFormat, "yaml", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.DocumentFormatYAML, s.Export.Format)
		}},
		{KeyImportResetIDs, "false", func(t *testing.T, s *domain.AppSettings) {
			assert.False(t, s.Import.ResetIDs)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore())

			require.NoError(t, service.Set(tt.key, tt.value))

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Set_Errors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.Error(t, service.Set(KeyStorageBackend, "postgres"))
	assert.Error(t, service.Set(KeyExportFormat, "xml"))
	assert.Error(t, service.Set(KeyCodecStrict, "maybe"))
	assert.ErrorIs(t, service.Set("search.mode", "hybrid"), domain.ErrInvalidInput)
}

func TestSettingKeys(t *testing.T) {
	keys := SettingKeys()
	assert.Len(t, keys, 6)
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
