package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glustolibs/go-gd2/pkg/gd2"
)

func deviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage block devices on peers",
	}
	cmd.AddCommand(deviceAddCmd(), deviceRegisterCmd(), deviceListCmd(), deviceInfoCmd(), deviceEditCmd())
	return cmd
}

func deviceRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register every device listed in the cluster config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.RegisterDevices(ctx); err != nil {
				return err
			}
			fmt.Println("devices registered")
			return nil
		},
	}
}

// resolvePeerID accepts either a peer UUID or a server address.
func resolvePeerID(arg string) (string, error) {
	ctx, cancel := cmdContext()
	defer cancel()
	if _, err := cluster.Client().Peer(ctx, arg); err == nil {
		return arg, nil
	}
	return cluster.Client().PeerID(ctx, arg)
}

func deviceAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <peer> <device>",
		Short: "Hand a block device to glusterd2 for brick provisioning",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peerID, err := resolvePeerID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()
			dev, err := cluster.Client().AddDevice(ctx, peerID, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("device %s added on peer %s\n", dev.Device, peerID)
			return nil
		},
	}
}

func deviceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [peer]",
		Short: "List devices, optionally for one peer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				devs []gd2.Device
				err  error
			)
			if len(args) == 1 {
				var peerID string
				peerID, err = resolvePeerID(args[0])
				if err != nil {
					return err
				}
				ctx, cancel := cmdContext()
				defer cancel()
				devs, err = cluster.Client().PeerDevices(ctx, peerID)
			} else {
				ctx, cancel := cmdContext()
				defer cancel()
				devs, err = cluster.Client().Devices(ctx)
			}
			if err != nil {
				return err
			}
			renderDeviceTable(os.Stdout, devs)
			return nil
		},
	}
}

func deviceInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <peer> <device>",
		Short: "Show one device on a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peerID, err := resolvePeerID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()
			dev, err := cluster.Client().DeviceInfo(ctx, peerID, args[1])
			if err != nil {
				return err
			}
			renderDeviceTable(os.Stdout, []gd2.Device{*dev})
			return nil
		},
	}
}

func deviceEditCmd() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "edit <peer> <device>",
		Short: "Enable or disable a device for provisioning",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peerID, err := resolvePeerID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()
			dev, err := cluster.Client().EditDevice(ctx, peerID, args[1], state)
			if err != nil {
				return err
			}
			fmt.Printf("device %s on peer %s: %s\n", dev.Device, peerID, dev.State)
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", gd2.DeviceEnabled, "device state (enabled or disabled)")
	return cmd
}
