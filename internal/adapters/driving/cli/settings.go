package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mapping-builder/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in the configuration file.

Settings take effect the next time mapbuilder runs.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a setting. Available keys:

  ` + strings.Join(services.SettingKeys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsServiceMissing
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title.Render("Current Settings"))
	cmd.Println("================")
	cmd.Println()

	cmd.Println(st.Title.Render("[Storage]"))
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	cmd.Printf("  Data directory: %s\n", dataDir)
	cmd.Println()

	cmd.Println(st.Title.Render("[Codec]"))
	cmd.Printf("  Strict output parsing: %s\n", yesNo(settings.Codec.Strict))
	cmd.Println()

	cmd.Println(st.Title.Render("[Export]"))
	cmd.Printf("  Format: %s\n", settings.Export.Format)
	cmd.Printf("  Drop ids: %s\n", yesNo(settings.Export.DropIDs))
	cmd.Println()

	cmd.Println(st.Title.Render("[Import]"))
	cmd.Printf("  Reset ids: %s\n", yesNo(settings.Import.ResetIDs))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsServiceMissing
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
