package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glustolibs/go-gd2/pkg/gd2"
)

func volumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volume",
		Short: "Manage volumes",
	}
	cmd.AddCommand(
		volumeCreateCmd(), volumeSetupCmd(), volumeStartCmd(), volumeStopCmd(),
		volumeDeleteCmd(), volumeCleanupCmd(), volumeListCmd(), volumeInfoCmd(),
		volumeStatusCmd(), volumeExpandCmd(), volumeSetCmd(), volumeResetCmd(),
		volumeGetCmd(),
	)
	return cmd
}

func volumeCreateCmd() *cobra.Command {
	var (
		replica   int
		arbiter   int
		transport string
		force     bool
		start     bool
	)
	cmd := &cobra.Command{
		Use:   "create <volname> <peerid>:<path>...",
		Short: "Create a volume from explicit bricks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			client := cluster.Client()
			vol, err := client.CreateVolume(ctx, gd2.VolumeCreateReq{
				Name:         args[0],
				Bricks:       args[1:],
				ReplicaCount: replica,
				ArbiterCount: arbiter,
				Transport:    transport,
				Force:        force,
			})
			if err != nil {
				return err
			}
			if start {
				if err := client.StartVolume(ctx, vol.Name, false); err != nil {
					return err
				}
			}
			renderVolumeDetail(os.Stdout, vol)
			return nil
		},
	}
	cmd.Flags().IntVar(&replica, "replica", 0, "replica count")
	cmd.Flags().IntVar(&arbiter, "arbiter", 0, "arbiter count")
	cmd.Flags().StringVar(&transport, "transport", "", "transport (tcp, rdma or tcp,rdma)")
	cmd.Flags().BoolVar(&force, "force", false, "force creation")
	cmd.Flags().BoolVar(&start, "start", false, "start the volume after creating it")
	return cmd
}

func volumeSetupCmd() *cobra.Command {
	var (
		voltype string
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "setup [volname]",
		Short: "Create and start a volume from the cluster config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			vol, err := cluster.Config.VolumeFor(voltype)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				vol.Name = args[0]
			}
			if err := cluster.SetupVolume(ctx, vol, force || cluster.Config.Gluster.VolumeCreateForce); err != nil {
				return err
			}
			fmt.Printf("volume %s: setup complete\n", vol.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&voltype, "type", "distributed", "volume type from the config table")
	cmd.Flags().BoolVar(&force, "force", false, "force brick reuse on create")
	return cmd
}

func volumeStartCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "start <volname>",
		Short: "Start a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.Client().StartVolume(ctx, args[0], force); err != nil {
				return err
			}
			fmt.Printf("volume %s: started\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "force-start bricks")
	return cmd
}

func volumeStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <volname>",
		Short: "Stop a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.Client().StopVolume(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("volume %s: stopped\n", args[0])
			return nil
		},
	}
}

func volumeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <volname>",
		Short: "Delete a stopped volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.Client().DeleteVolume(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("volume %s: deleted\n", args[0])
			return nil
		},
	}
}

func volumeCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <volname>",
		Short: "Stop and delete a volume, its snapshots and its brick dirs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.CleanupVolume(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("volume %s: cleaned up\n", args[0])
			return nil
		},
	}
}

func volumeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all volumes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			vols, err := cluster.Client().Volumes(ctx)
			if err != nil {
				return err
			}
			renderVolumeTable(os.Stdout, vols)
			return nil
		},
	}
}

func volumeInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <volname>",
		Short: "Show detailed volume information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			vol, err := cluster.Client().VolumeInfo(ctx, args[0])
			if err != nil {
				return err
			}
			renderVolumeDetail(os.Stdout, vol)
			return nil
		},
	}
}

func volumeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <volname>",
		Short: "Show the state of a volume's brick processes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			statuses, err := cluster.Client().BrickStatus(ctx, args[0])
			if err != nil {
				return err
			}
			renderBrickStatusTable(os.Stdout, statuses)
			return nil
		},
	}
}

func volumeExpandCmd() *cobra.Command {
	var (
		replica int
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "expand <volname> <peerid>:<path>...",
		Short: "Add bricks to a volume",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			vol, err := cluster.Client().ExpandVolume(ctx, args[0], args[1:], replica, force)
			if err != nil {
				return err
			}
			renderVolumeDetail(os.Stdout, vol)
			return nil
		},
	}
	cmd.Flags().IntVar(&replica, "replica", 0, "new replica count")
	cmd.Flags().BoolVar(&force, "force", false, "force expansion")
	return cmd
}

func parseOptionPairs(pairs []string) (map[string]string, error) {
	options := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("bad option %q, want key=value", pair)
		}
		options[key] = value
	}
	return options, nil
}

func volumeSetCmd() *cobra.Command {
	var (
		advanced     bool
		experimental bool
		deprecated   bool
	)
	cmd := &cobra.Command{
		Use:   "set <volname> <key>=<value>...",
		Short: "Set volume options",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			options, err := parseOptionPairs(args[1:])
			if err != nil {
				return err
			}
			flags := gd2.OptionFlags{
				AllowAdvanced:     advanced,
				AllowExperimental: experimental,
				AllowDeprecated:   deprecated,
			}
			if err := cluster.Client().SetVolumeOptions(ctx, args[0], options, flags); err != nil {
				return err
			}
			fmt.Printf("volume %s: %d option(s) set\n", args[0], len(options))
			return nil
		},
	}
	cmd.Flags().BoolVar(&advanced, "advanced", false, "allow advanced options")
	cmd.Flags().BoolVar(&experimental, "experimental", false, "allow experimental options")
	cmd.Flags().BoolVar(&deprecated, "deprecated", false, "allow deprecated options")
	return cmd
}

func volumeResetCmd() *cobra.Command {
	var (
		force bool
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "reset <volname> [option]...",
		Short: "Reset volume options to their defaults",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.Client().ResetVolumeOptions(ctx, args[0], args[1:], force, all); err != nil {
				return err
			}
			fmt.Printf("volume %s: options reset\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "reset options that need a graph change")
	cmd.Flags().BoolVar(&all, "all", false, "reset every modified option")
	return cmd
}

func volumeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <volname> [option]",
		Short: "Show volume options",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			client := cluster.Client()

			if len(args) == 2 {
				opt, err := client.VolumeOption(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s\n", opt.Name, opt.Value)
				return nil
			}

			opts, err := client.VolumeOptions(ctx, args[0])
			if err != nil {
				return err
			}
			for _, opt := range opts {
				fmt.Printf("%s: %s\n", opt.Name, opt.Value)
			}
			return nil
		},
	}
}
