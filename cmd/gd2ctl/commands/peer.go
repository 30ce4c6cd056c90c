package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func peerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peer",
		Short: "Manage peers in the trusted storage pool",
	}
	cmd.AddCommand(peerProbeCmd(), peerDetachCmd(), peerListCmd(), peerStatusCmd(), peerEditCmd())
	return cmd
}

func peerProbeCmd() *cobra.Command {
	var validate bool
	cmd := &cobra.Command{
		Use:   "probe <server>...",
		Short: "Add servers to the pool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.Client().ProbePeers(ctx, args, validate); err != nil {
				return err
			}
			fmt.Println("peer probe: success")
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", true, "wait until probed peers are connected")
	return cmd
}

func peerDetachCmd() *cobra.Command {
	var validate bool
	cmd := &cobra.Command{
		Use:   "detach <server>...",
		Short: "Remove servers from the pool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.Client().DetachPeers(ctx, args, validate); err != nil {
				return err
			}
			fmt.Println("peer detach: success")
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", true, "wait until detached peers are out of the pool")
	return cmd
}

func peerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all peers in the pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			peers, err := cluster.Client().Peers(ctx)
			if err != nil {
				return err
			}
			renderPeerTable(os.Stdout, peers)
			return nil
		},
	}
}

func peerStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [server]",
		Short: "Show the status of one peer, or all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			client := cluster.Client()

			if len(args) == 0 {
				peers, err := client.Peers(ctx)
				if err != nil {
					return err
				}
				renderPeerTable(os.Stdout, peers)
				return nil
			}

			peerID, err := client.PeerID(ctx, args[0])
			if err != nil {
				return err
			}
			peer, err := client.Peer(ctx, peerID)
			if err != nil {
				return err
			}
			renderPeerDetail(os.Stdout, peer)
			return nil
		},
	}
}

func peerEditCmd() *cobra.Command {
	var zone string
	cmd := &cobra.Command{
		Use:   "edit <peerid>",
		Short: "Update the zone metadata of a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			peer, err := cluster.Client().EditPeer(ctx, args[0], zone)
			if err != nil {
				return err
			}
			renderPeerDetail(os.Stdout, peer)
			return nil
		},
	}
	cmd.Flags().StringVar(&zone, "zone", "", "zone to set")
	cmd.MarkFlagRequired("zone")
	return cmd
}
