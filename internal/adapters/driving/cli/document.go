package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mapping-builder/internal/adapters/driven/source"
	"github.com/custodia-labs/mapping-builder/internal/codec/document"
	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/tree"
)

var documentCmd = &cobra.Command{
	Use:     "doc",
	Aliases: []string{"document"},
	Short:   "Import, export, and check mapping documents",
	Long: `Mapping documents hold root mappings plus named mappings that can be
referenced by name. Locations are file paths or URLs; the format is
taken from the extension unless --format is given.`,
}

var documentImportCmd = &cobra.Command{
	Use:   "import [location]",
	Short: "Replace the stored mappings with a document's",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentImport,
}

var documentExportCmd = &cobra.Command{
	Use:   "export [location]",
	Short: "Write the stored mappings as a document",
	Long:  `Write the stored mappings as a document. Use - to print to stdout.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentExport,
}

var documentConvertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "Convert a document between JSON and YAML",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentConvert,
}

var documentValidateCmd = &cobra.Command{
	Use:   "validate [location]",
	Short: "Read a document and report problems",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentValidate,
}

var documentWatchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Validate a local document whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentWatch,
}

var (
	docFormat   string
	docResetIDs bool
	docDropIDs  bool
)

func init() {
	for _, cmd := range []*cobra.Command{documentImportCmd, documentExportCmd, documentValidateCmd, documentWatchCmd} {
		cmd.Flags().StringVar(&docFormat, "format", "", "Document format (json or yaml)")
	}
	documentConvertCmd.Flags().StringVar(&docFormat, "format", "", "Output format (json or yaml)")
	documentImportCmd.Flags().BoolVar(&docResetIDs, "reset-ids", true, "Restart id allocation at 1")
	documentExportCmd.Flags().BoolVar(&docDropIDs, "drop-ids", false, "Leave ids out of the document")

	documentCmd.AddCommand(documentImportCmd)
	documentCmd.AddCommand(documentExportCmd)
	documentCmd.AddCommand(documentConvertCmd)
	documentCmd.AddCommand(documentValidateCmd)
	documentCmd.AddCommand(documentWatchCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentImport(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errMappingServiceMissing
	}
	if documentSource == nil {
		return errDocumentSourceMissing
	}
	settings, err := currentSettings()
	if err != nil {
		return err
	}
	resetIDs := settings.Import.ResetIDs
	if cmd.Flags().Changed("reset-ids") {
		resetIDs = docResetIDs
	}
	format, err := formatFor(args[0], "")
	if err != nil {
		return err
	}

	ctx := context.Background()
	data, err := documentSource.Read(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	n, err := mappingService.Import(ctx, data, format, resetIDs)
	if err != nil {
		return fmt.Errorf("failed to import document: %w", err)
	}
	cmd.Printf("Imported %d root mappings from %s\n", n, args[0])
	return nil
}

func runDocumentExport(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errMappingServiceMissing
	}
	settings, err := currentSettings()
	if err != nil {
		return err
	}
	dropIDs := settings.Export.DropIDs
	if cmd.Flags().Changed("drop-ids") {
		dropIDs = docDropIDs
	}
	location := args[0]
	format, err := formatFor(location, settings.Export.Format)
	if err != nil {
		return err
	}

	ctx := context.Background()
	data, err := mappingService.Export(ctx, format, dropIDs)
	if err != nil {
		return fmt.Errorf("failed to export mappings: %w", err)
	}
	if location == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if documentSource == nil {
		return errDocumentSourceMissing
	}
	if err := documentSource.Write(ctx, location, data); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	cmd.Printf("Exported mappings to %s\n", location)
	return nil
}

func runDocumentConvert(cmd *cobra.Command, args []string) error {
	if documentSource == nil {
		return errDocumentSourceMissing
	}
	in, out := args[0], args[1]
	from := document.DetectFormat(in)
	to, err := formatFor(out, "")
	if err != nil {
		return err
	}

	ctx := context.Background()
	data, err := documentSource.Read(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	converted, err := document.Convert(data, from, to)
	if err != nil {
		return fmt.Errorf("failed to convert document: %w", err)
	}
	if err := documentSource.Write(ctx, out, converted); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	cmd.Printf("Converted %s (%s) to %s (%s)\n", in, from, out, to)
	return nil
}

func runDocumentValidate(cmd *cobra.Command, args []string) error {
	if documentSource == nil {
		return errDocumentSourceMissing
	}
	data, err := documentSource.Read(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	return validateDocument(cmd.OutOrStdout(), args[0], data)
}

func runDocumentWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	changes, err := source.Watch(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to watch document: %w", err)
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", path)
	return watchLoop(cmd.OutOrStdout(), path, changes)
}

// watchLoop validates the document on every change until changes closes.
func watchLoop(w io.Writer, path string, changes <-chan source.Change) error {
	st := stylesFor(w)
	for change := range changes {
		if change.Type == source.ChangeRemoved {
			fmt.Fprintln(w, st.Warning.Render(path+" was removed"))
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(w, st.Error.Render(fmt.Sprintf("cannot read %s: %v", path, err)))
			continue
		}
		if err := validateDocument(w, path, data); err != nil {
			fmt.Fprintln(w, st.Error.Render(err.Error()))
		}
	}
	return nil
}

// validateDocument reads data with a fresh codec configured from the
// settings and prints a summary of what it holds.
func validateDocument(w io.Writer, location string, data []byte) error {
	settings, err := currentSettings()
	if err != nil {
		return err
	}
	format, err := formatFor(location, "")
	if err != nil {
		return err
	}
	var opts []document.Option
	if settings.Codec.Strict {
		opts = append(opts, document.WithStrict())
	}

	mappings, err := document.New(opts...).Read(data, format, true)
	if err != nil {
		return fmt.Errorf("invalid document %s: %w", location, err)
	}
	total := 0
	for _, m := range mappings {
		invalid := error(nil)
		tree.Walk(m, func(node *domain.NodeMapping) bool {
			if invalid != nil {
				return false
			}
			invalid = node.Validate()
			return invalid == nil
		})
		if invalid != nil {
			return fmt.Errorf("invalid document %s: %w", location, invalid)
		}
		total += tree.Count(m)
	}

	st := stylesFor(w)
	fmt.Fprintln(w, st.Success.Render(fmt.Sprintf("%s: %d root mappings, %d mappings in all", location, len(mappings), total)))
	return nil
}

// formatFor resolves the document format from the --format flag, then
// the location's extension, then fallback.
func formatFor(location string, fallback domain.DocumentFormat) (domain.DocumentFormat, error) {
	if docFormat != "" {
		format := domain.DocumentFormat(docFormat)
		if !format.IsValid() {
			return "", fmt.Errorf("document format %q: %w", docFormat, domain.ErrInvalidInput)
		}
		return format, nil
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".json", ".yaml", ".yml":
		return document.DetectFormat(location), nil
	}
	if fallback.IsValid() {
		return fallback, nil
	}
	return document.DetectFormat(location), nil
}

// currentSettings returns the configured settings, or the defaults
// when no settings service is wired.
func currentSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		defaults := domain.DefaultAppSettings()
		return &defaults, nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}
