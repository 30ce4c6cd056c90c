package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/glustolibs/go-gd2/pkg/harness"
)

func glusterdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glusterd",
		Short: "Control the glusterd2 service on the servers",
	}
	cmd.AddCommand(glusterdStartCmd(), glusterdStopCmd(), glusterdRestartCmd(), glusterdStatusCmd())
	return cmd
}

func glusterdStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [server]...",
		Short: "Start glusterd2 on the given servers, or all",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.StartGlusterd(ctx, args...); err != nil {
				return err
			}
			fmt.Println("glusterd2: started")
			return nil
		},
	}
}

func glusterdStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [server]...",
		Short: "Stop glusterd2 on the given servers, or all",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.StopGlusterd(ctx, args...); err != nil {
				return err
			}
			fmt.Println("glusterd2: stopped")
			return nil
		},
	}
}

func glusterdRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart [server]...",
		Short: "Restart glusterd2 on the given servers, or all",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			if err := cluster.RestartGlusterd(ctx, args...); err != nil {
				return err
			}
			fmt.Println("glusterd2: restarted")
			return nil
		},
	}
}

func glusterdStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [server]...",
		Short: "Report whether glusterd2 runs on the given servers, or all",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			state, err := cluster.IsGlusterdRunning(ctx, args...)
			if err != nil {
				return err
			}
			switch state {
			case harness.GlusterdRunning:
				fmt.Println("glusterd2: running on all servers")
			case harness.GlusterdStopped:
				fmt.Println("glusterd2: stopped on all servers")
			default:
				fmt.Println("glusterd2: stale process without an active unit")
			}

			ok, pids, err := cluster.GlusterdPIDs(ctx, args...)
			if err != nil {
				return err
			}
			hosts := make([]string, 0, len(pids))
			for host := range pids {
				hosts = append(hosts, host)
			}
			sort.Strings(hosts)
			for _, host := range hosts {
				fmt.Printf("  %s: %v\n", host, pids[host])
			}
			if !ok {
				fmt.Println("warning: a server reports more than one glusterd2 process")
			}
			return nil
		},
	}
}
