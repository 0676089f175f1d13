package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Keep versioned copies of the stored mappings",
}

var snapshotTakeCmd = &cobra.Command{
	Use:   "take [name]",
	Short: "Snapshot the stored mappings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshotTake,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore [snapshot-id]",
	Short: "Replace the stored mappings with a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotRestore,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete [snapshot-id]",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

func init() {
	snapshotCmd.AddCommand(snapshotTakeCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotTake(cmd *cobra.Command, args []string) error {
	if snapshotService == nil {
		return errSnapshotServiceMissing
	}
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	snapshot, created, err := snapshotService.Take(context.Background(), name)
	if err != nil {
		return fmt.Errorf("failed to take snapshot: %w", err)
	}
	if !created {
		st := stylesFor(cmd.OutOrStdout())
		cmd.Println(st.Warning.Render("Mappings unchanged since snapshot " + snapshot.ID))
		return nil
	}
	cmd.Printf("Created snapshot %s (%d root mappings)\n", snapshot.ID, snapshot.MappingCount)
	return nil
}

func runSnapshotList(cmd *cobra.Command, _ []string) error {
	if snapshotService == nil {
		return errSnapshotServiceMissing
	}

	snapshots, err := snapshotService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(snapshots) == 0 {
		cmd.Println("No snapshots.")
		return nil
	}

	st := stylesFor(cmd.OutOrStdout())
	for i := range snapshots {
		s := &snapshots[i]
		cmd.Printf("  %s  %s  %d root mappings", st.ID.Render(s.ID), s.CreatedAt.Local().Format("2006-01-02 15:04:05"), s.MappingCount)
		if s.Name != "" {
			cmd.Printf("  %s", s.Name)
		}
		cmd.Println()
	}
	return nil
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	if snapshotService == nil {
		return errSnapshotServiceMissing
	}

	n, err := snapshotService.Restore(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	cmd.Printf("Restored %d root mappings from snapshot %s\n", n, args[0])
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	if snapshotService == nil {
		return errSnapshotServiceMissing
	}

	if err := snapshotService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	cmd.Printf("Deleted snapshot %s\n", args[0])
	return nil
}
