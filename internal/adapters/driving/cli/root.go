// Package cli provides the mapbuilder command line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mapping-builder/internal/core/ports/driven"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driving"
	"github.com/custodia-labs/mapping-builder/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services groups the ports the commands drive.
type Services struct {
	Mappings  driving.MappingService
	Snapshots driving.SnapshotService
	Settings  driving.SettingsService
	Documents driven.DocumentSource
}

// Bootstrap builds the services once flags are parsed. configDir is
// empty unless --config-dir was given. The returned func releases
// whatever the services hold open.
type Bootstrap func(configDir string) (*Services, func() error, error)

var (
	mappingService  driving.MappingService
	snapshotService driving.SnapshotService
	settingsService driving.SettingsService
	documentSource  driven.DocumentSource

	bootstrap Bootstrap
	release   func() error
)

// Global flags.
var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "mapbuilder",
	Short: "Build and maintain node mapping documents",
	Long: `mapbuilder edits trees of node mappings, the rules that turn source
documents into graph nodes, triples and metadata.

Mappings are stored locally and exchanged as JSON or YAML mapping
documents, where named mappings can be shared by reference.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.mapbuilder)")
}

// SetServices injects the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	mappingService = s.Mappings
	snapshotService = s.Snapshots
	settingsService = s.Settings
	documentSource = s.Documents
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. Services are built by b after flags
// are parsed, unless SetServices already provided them.
func Execute(b Bootstrap) error {
	bootstrap = b
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || mappingService != nil || cmd == versionCmd {
		return nil
	}
	services, cleanup, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	SetServices(services)
	release = cleanup
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if release == nil {
		return nil
	}
	err := release()
	release = nil
	return err
}

var (
	errMappingServiceMissing  = errors.New("mapping service not configured")
	errSnapshotServiceMissing = errors.New("snapshot service not configured")
	errSettingsServiceMissing = errors.New("settings service not configured")
	errDocumentSourceMissing  = errors.New("document source not configured")
)
