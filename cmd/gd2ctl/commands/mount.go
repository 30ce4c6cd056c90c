package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glustolibs/go-gd2/pkg/harness"
)

func mountCmd() *cobra.Command {
	var (
		protocol   string
		client     string
		mountpoint string
		options    string
		fromConfig bool
	)
	cmd := &cobra.Command{
		Use:   "mount <volname>",
		Short: "Mount a volume on the clients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			mounts, err := resolveMounts(args[0], protocol, client, mountpoint, options, fromConfig)
			if err != nil {
				return err
			}
			if err := harness.MountAll(ctx, mounts); err != nil {
				return err
			}
			for _, m := range mounts {
				fmt.Printf("%s mounted on %s:%s\n", args[0], m.Client, m.Mountpoint)
			}
			return nil
		},
	}
	addMountFlags(cmd, &protocol, &client, &mountpoint, &options, &fromConfig)
	return cmd
}

func umountCmd() *cobra.Command {
	var (
		protocol   string
		client     string
		mountpoint string
		options    string
		fromConfig bool
	)
	cmd := &cobra.Command{
		Use:   "umount <volname>",
		Short: "Unmount a volume from the clients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			mounts, err := resolveMounts(args[0], protocol, client, mountpoint, options, fromConfig)
			if err != nil {
				return err
			}
			if err := harness.UnmountAll(ctx, mounts); err != nil {
				return err
			}
			for _, m := range mounts {
				fmt.Printf("%s unmounted from %s:%s\n", args[0], m.Client, m.Mountpoint)
			}
			return nil
		},
	}
	addMountFlags(cmd, &protocol, &client, &mountpoint, &options, &fromConfig)
	return cmd
}

func addMountFlags(cmd *cobra.Command, protocol, client, mountpoint, options *string, fromConfig *bool) {
	cmd.Flags().StringVar(protocol, "protocol", "glusterfs", "mount protocol")
	cmd.Flags().StringVar(client, "client", "", "client host (default: first configured client)")
	cmd.Flags().StringVar(mountpoint, "mountpoint", "", "mountpoint on the client")
	cmd.Flags().StringVar(options, "options", "", "mount options")
	cmd.Flags().BoolVar(fromConfig, "from-config", false, "use the mount list from the cluster config")
}

func resolveMounts(volname, protocol, client, mountpoint, options string, fromConfig bool) ([]*harness.Mount, error) {
	if fromConfig {
		return cluster.MountsFromConfig(volname, protocol)
	}
	if client == "" {
		if len(cluster.Config.Clients) == 0 {
			return nil, fmt.Errorf("no client given and none configured")
		}
		client = cluster.Config.Clients[0]
	}
	m, err := cluster.NewMount(harness.MountConfig{
		Protocol:   protocol,
		Client:     client,
		VolName:    volname,
		Mountpoint: mountpoint,
		Options:    options,
	})
	if err != nil {
		return nil, err
	}
	return []*harness.Mount{m}, nil
}
