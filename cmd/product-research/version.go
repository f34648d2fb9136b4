package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// commit is set at build time via ldflags.
var commit = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the product-research build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("product-research %s (commit %s, %s %s/%s)\n",
			version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
