package domain

const unknownDescription = "Unknown"

// StorageBackend selects where mappings and snapshots are persisted.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendMemory keeps everything in RAM for the process lifetime.
	StorageBackendMemory StorageBackend = "memory"

	// StorageBackendSQLite persists to a SQLite database file.
	StorageBackendSQLite StorageBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageBackendMemory || b == StorageBackendSQLite
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageBackendMemory:
		return "Memory (not persisted)"
	case StorageBackendSQLite:
		return "SQLite (persisted under the data directory)"
	default:
		return unknownDescription
	}
}

// DocumentFormat is the encoding of a mapping document on disk.
type DocumentFormat string

// Available document formats.
const (
	DocumentFormatJSON DocumentFormat = "json"
	DocumentFormatYAML DocumentFormat = "yaml"
)

// IsValid returns true if the format is recognised.
func (f DocumentFormat) IsValid() bool {
	return f == DocumentFormatJSON || f == DocumentFormatYAML
}

// String returns the string representation.
func (f DocumentFormat) String() string {
	return string(f)
}

// StorageSettings configures persistence.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir holds the SQLite database. Empty uses the default location.
	DataDir string
}

// CodecSettings configures output text parsing.
type CodecSettings struct {
	// Strict rejects malformed output lines instead of dropping them.
	Strict bool
}

// ExportSettings configures document export.
type ExportSettings struct {
	// DropIDs omits id and parentId for portable exports.
	DropIDs bool

	Format DocumentFormat
}

// ImportSettings configures document import.
type ImportSettings struct {
	// ResetIDs restarts id allocation at 1 so reloads are reproducible.
	ResetIDs bool
}

// AppSettings holds all application configuration.
type AppSettings struct {
	Storage StorageSettings
	Codec   CodecSettings
	Export  ExportSettings
	Import  ImportSettings
}

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend: StorageBackendSQLite,
		},
		Codec: CodecSettings{
			Strict: false,
		},
		Export: ExportSettings{
			DropIDs: false,
			Format:  DocumentFormatJSON,
		},
		Import: ImportSettings{
			ResetIDs: true,
		},
	}
}

// AllStorageBackends returns all recognised backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageBackendMemory, StorageBackendSQLite}
}
