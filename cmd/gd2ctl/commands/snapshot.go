package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glustolibs/go-gd2/pkg/gd2"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage volume snapshots",
	}
	cmd.AddCommand(
		snapshotCreateCmd(), snapshotActivateCmd(), snapshotDeactivateCmd(),
		snapshotCloneCmd(), snapshotRestoreCmd(), snapshotListCmd(),
		snapshotInfoCmd(), snapshotStatusCmd(), snapshotDeleteCmd(),
	)
	return cmd
}

func snapshotCreateCmd() *cobra.Command {
	var (
		description string
		timestamp   bool
		force       bool
	)
	cmd := &cobra.Command{
		Use:   "create <snapname> <volname>",
		Short: "Take a snapshot of a volume",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			snap, err := cluster.Client().CreateSnapshot(ctx, gd2.SnapCreateReq{
				SnapName:    args[0],
				VolName:     args[1],
				Description: description,
				Timestamp:   timestamp,
				Force:       force,
			})
			if err != nil {
				return err
			}
			fmt.Printf("snapshot %s of volume %s created\n", snap.SnapInfo.Name, args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "snapshot description")
	cmd.Flags().BoolVar(&timestamp, "timestamp", false, "append a timestamp to the snapshot name")
	cmd.Flags().BoolVar(&force, "force", false, "force creation")
	return cmd
}

func snapshotActivateCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "activate <snapname>",
		Short: "Activate a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.Client().ActivateSnapshot(ctx, args[0], force); err != nil {
				return err
			}
			fmt.Printf("snapshot %s: activated\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "force activation")
	return cmd
}

func snapshotDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <snapname>",
		Short: "Deactivate a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.Client().DeactivateSnapshot(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("snapshot %s: deactivated\n", args[0])
			return nil
		},
	}
}

func snapshotCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <snapname> <clonename>",
		Short: "Create a writable volume from a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			vol, err := cluster.Client().CloneSnapshot(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			renderVolumeDetail(os.Stdout, vol)
			return nil
		},
	}
}

func snapshotRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <volname> <snapname>",
		Short: "Stop a volume, restore it to a snapshot and start it again",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.Client().RestoreSnapshotComplete(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("volume %s: restored to snapshot %s\n", args[0], args[1])
			return nil
		},
	}
}

func snapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots grouped by parent volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			lists, err := cluster.Client().Snapshots(ctx)
			if err != nil {
				return err
			}
			renderSnapTable(os.Stdout, lists)
			return nil
		},
	}
}

func snapshotInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <snapname>",
		Short: "Show detailed snapshot information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			snap, err := cluster.Client().SnapshotInfo(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Name:        %s\n", snap.SnapInfo.Name)
			fmt.Printf("Parent:      %s\n", snap.SnapInfo.ParentVol)
			fmt.Printf("Created at:  %s\n", snap.SnapInfo.CreatedAt)
			if snap.SnapInfo.Description != "" {
				fmt.Printf("Description: %s\n", snap.SnapInfo.Description)
			}
			if snap.VolInfo != nil {
				fmt.Printf("State:       %s\n", snap.VolInfo.State)
			}
			return nil
		},
	}
}

func snapshotStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <snapname>",
		Short: "Show the state of a snapshot's brick processes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			statuses, err := cluster.Client().SnapshotStatus(ctx, args[0])
			if err != nil {
				return err
			}
			bricks := make([]gd2.BrickStatus, 0, len(statuses))
			for _, s := range statuses {
				bricks = append(bricks, s.Brick)
			}
			renderBrickStatusTable(os.Stdout, bricks)
			return nil
		},
	}
}

func snapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <snapname>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.Client().DeleteSnapshot(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("snapshot %s: deleted\n", args[0])
			return nil
		},
	}
}
