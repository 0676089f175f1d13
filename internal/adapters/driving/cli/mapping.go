package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mapping-builder/internal/codec/document"
	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/tree"
)

var mappingCmd = &cobra.Command{
	Use:     "mapping",
	Aliases: []string{"m"},
	Short:   "Manage stored mappings",
	Long:    `List, show, add, and delete the stored node mappings.`,
}

var mappingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List root mappings, or the children of --parent",
	Args:  cobra.NoArgs,
	RunE:  runMappingList,
}

var mappingShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the tree containing a mapping",
	Args:  cobra.ExactArgs(1),
	RunE:  runMappingShow,
}

var mappingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a root mapping",
	Long: `Add a root mapping from flags, or any mapping from a JSON file
in document form (--file). A mapping whose id is already stored
replaces it.`,
	Args: cobra.NoArgs,
	RunE: runMappingAdd,
}

var mappingAddChildCmd = &cobra.Command{
	Use:   "add-child [parent-id]",
	Short: "Add a child mapping",
	Args:  cobra.ExactArgs(1),
	RunE:  runMappingAddChild,
}

var mappingDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a mapping and its descendants",
	Args:  cobra.ExactArgs(1),
	RunE:  runMappingDelete,
}

// mappingFlags holds the mapping fields settable from the command line.
type mappingFlags struct {
	name           string
	sourceType     int
	source         string
	sid            string
	description    string
	facetFilter    string
	groupFilter    string
	flagsFilter    int
	titleFilter    string
	partTypeFilter string
	partRoleFilter string
	scalarPattern  string
}

func bindMappingFlags(cmd *cobra.Command, f *mappingFlags) {
	cmd.Flags().StringVar(&f.name, "name", "", "Mapping name")
	cmd.Flags().IntVar(&f.sourceType, "source-type", int(domain.SourceTypePart), "Source type (0=any, 1=item, 2=part)")
	cmd.Flags().StringVar(&f.source, "source", "", "Source expression")
	cmd.Flags().StringVar(&f.sid, "sid", "", "Source identifier")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringVar(&f.facetFilter, "facet", "", "Item facet filter")
	cmd.Flags().StringVar(&f.groupFilter, "group", "", "Item group filter")
	cmd.Flags().IntVar(&f.flagsFilter, "flags", 0, "Item flags filter")
	cmd.Flags().StringVar(&f.titleFilter, "title", "", "Item title filter")
	cmd.Flags().StringVar(&f.partTypeFilter, "part-type", "", "Part type filter")
	cmd.Flags().StringVar(&f.partRoleFilter, "part-role", "", "Part role filter")
	cmd.Flags().StringVar(&f.scalarPattern, "scalar-pattern", "", "Scalar value pattern")
}

func (f *mappingFlags) apply(m *domain.NodeMapping) {
	m.Name = f.name
	m.SourceType = domain.SourceType(f.sourceType)
	m.Source = f.source
	m.SID = f.sid
	m.Description = f.description
	m.FacetFilter = f.facetFilter
	m.GroupFilter = f.groupFilter
	m.FlagsFilter = f.flagsFilter
	m.TitleFilter = f.titleFilter
	m.PartTypeFilter = f.partTypeFilter
	m.PartRoleFilter = f.partRoleFilter
	m.ScalarPattern = f.scalarPattern
}

var (
	listFilter   domain.NodeMappingFilter
	listSource   int
	listPage     int
	listPageSize int

	showJSON bool

	addFlags      mappingFlags
	addFile       string
	addChildFlags mappingFlags
)

func init() {
	mappingListCmd.Flags().IntVar(&listFilter.ParentID, "parent", 0, "List the children of this mapping")
	mappingListCmd.Flags().IntVar(&listSource, "source-type", int(domain.SourceTypeAny), "Source type (0 matches any)")
	mappingListCmd.Flags().StringVar(&listFilter.Name, "name", "", "Name contains")
	mappingListCmd.Flags().StringVar(&listFilter.Facet, "facet", "", "Facet filter")
	mappingListCmd.Flags().StringVar(&listFilter.Group, "group", "", "Group filter")
	mappingListCmd.Flags().IntVar(&listFilter.Flags, "flags", 0, "Flags that must be set")
	mappingListCmd.Flags().StringVar(&listFilter.Title, "title", "", "Title filter contains")
	mappingListCmd.Flags().StringVar(&listFilter.PartType, "part-type", "", "Part type filter")
	mappingListCmd.Flags().StringVar(&listFilter.PartRole, "part-role", "", "Part role filter")
	mappingListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	mappingListCmd.Flags().IntVar(&listPageSize, "page-size", 20, "Page size (0 for all)")

	mappingShowCmd.Flags().BoolVar(&showJSON, "json", false, "Print the mapping subtree as JSON")

	bindMappingFlags(mappingAddCmd, &addFlags)
	mappingAddCmd.Flags().StringVarP(&addFile, "file", "f", "", "Read the mapping from a JSON file")

	bindMappingFlags(mappingAddChildCmd, &addChildFlags)

	mappingCmd.AddCommand(mappingListCmd)
	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingAddCmd)
	mappingCmd.AddCommand(mappingAddChildCmd)
	mappingCmd.AddCommand(mappingDeleteCmd)
	rootCmd.AddCommand(mappingCmd)
}

func runMappingList(cmd *cobra.Command, _ []string) error {
	if mappingService == nil {
		return errMappingServiceMissing
	}

	filter := listFilter
	filter.SourceType = domain.SourceType(listSource)
	page, err := mappingService.List(context.Background(), filter, listPage, listPageSize)
	if err != nil {
		return fmt.Errorf("failed to list mappings: %w", err)
	}

	if page.Total == 0 {
		cmd.Println("No mappings found.")
		return nil
	}

	st := stylesFor(cmd.OutOrStdout())
	for _, m := range page.Items {
		cmd.Printf("  %s %s [%s]", st.ID.Render(fmt.Sprintf("#%d", m.ID)), m.Name, m.SourceType)
		if m.SID != "" {
			cmd.Printf(" %s", st.Muted.Render(m.SID))
		}
		if n := len(m.Children); n > 0 {
			cmd.Printf(" (%d children)", n)
		}
		cmd.Println()
	}
	cmd.Println()
	cmd.Printf("Page %d of %d, %d mappings\n", page.PageNumber, page.PageCount, page.Total)
	return nil
}

func runMappingShow(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errMappingServiceMissing
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx := context.Background()

	if showJSON {
		m, err := mappingService.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get mapping: %w", err)
		}
		data, err := document.New().Serialize(m, false)
		if err != nil {
			return fmt.Errorf("failed to encode mapping: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), data)
	}

	root, err := mappingService.Tree(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get mapping: %w", err)
	}
	cmd.Println(renderTree(root, id, stylesFor(cmd.OutOrStdout())))
	return nil
}

func runMappingAdd(cmd *cobra.Command, _ []string) error {
	if mappingService == nil {
		return errMappingServiceMissing
	}

	var m *domain.NodeMapping
	if addFile != "" {
		data, err := os.ReadFile(addFile)
		if err != nil {
			return fmt.Errorf("failed to read mapping: %w", err)
		}
		m, err = document.New().Deserialize(data)
		if err != nil {
			return fmt.Errorf("failed to decode mapping: %w", err)
		}
	} else {
		m = &domain.NodeMapping{}
		addFlags.apply(m)
	}

	saved, err := mappingService.Add(context.Background(), m)
	if err != nil {
		return fmt.Errorf("failed to add mapping: %w", err)
	}
	cmd.Printf("Saved mapping %s\n", saved.Label())
	return nil
}

func runMappingAddChild(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errMappingServiceMissing
	}
	parentID, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx := context.Background()

	root, err := mappingService.Tree(ctx, parentID)
	if err != nil {
		return fmt.Errorf("failed to get parent mapping: %w", err)
	}
	tr, err := tree.New(root, nil)
	if err != nil {
		return fmt.Errorf("failed to load mapping tree: %w", err)
	}
	editor := tree.NewEditor(tr)
	if err := editor.Select(parentID); err != nil {
		return err
	}
	child, err := editor.AddChild()
	if err != nil {
		return err
	}
	addChildFlags.apply(child)

	saved, err := mappingService.Add(ctx, child)
	if err != nil {
		return fmt.Errorf("failed to add mapping: %w", err)
	}
	cmd.Printf("Saved mapping %s under #%d\n", saved.Label(), parentID)
	return nil
}

func runMappingDelete(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errMappingServiceMissing
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := mappingService.Delete(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	cmd.Printf("Deleted mapping #%d\n", id)
	return nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid mapping id %q: %w", arg, domain.ErrInvalidInput)
	}
	return id, nil
}
