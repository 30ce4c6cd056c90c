package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/glustolibs/go-gd2/internal/buildinfo"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gd2ctl %s\n", buildinfo.Version)
			fmt.Printf("  build id:   %s\n", buildinfo.BuildID)
			fmt.Printf("  build time: %s\n", buildinfo.BuildTime)
			fmt.Printf("  go version: %s\n", runtime.Version())
		},
	}
}
