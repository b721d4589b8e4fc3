// Command xgohook drives the xhook library from the shell: register hooks
// declaratively from a YAML config, trigger a refresh, and inspect the
// audit trail of what got patched.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zboralski/xgohook"
	"github.com/zboralski/xgohook/internal/version"
)

var debug bool

func main() {
	root := &cobra.Command{
		Use:   "xgohook",
		Short: "Runtime PLT/GOT hook registry and map reconciler",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				xhook.SetDebug(true)
			}
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging")

	root.AddCommand(
		newRegisterCmd(),
		newRefreshCmd(),
		newStatusCmd(),
		newWatchCmd(),
		newClearCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the xgohook version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version.String())
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every registered hook and reset the reconciler",
		RunE: func(cmd *cobra.Command, args []string) error {
			xhook.Clear()
			return nil
		},
	}
}
