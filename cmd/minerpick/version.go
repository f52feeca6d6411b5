package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			commit := "unknown"

			if info, ok := debug.ReadBuildInfo(); ok {
				for _, s := range info.Settings {
					if s.Key == "vcs.revision" {
						commit = s.Value
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "minerpick %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Go:     %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "  Commit: %s\n", commit)
		},
	}
}
