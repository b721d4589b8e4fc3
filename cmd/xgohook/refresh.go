package main

import (
	"github.com/spf13/cobra"

	"github.com/zboralski/xgohook"
)

func newRefreshCmd() *cobra.Command {
	var async bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reconcile registered hooks against currently loaded objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return xhook.Refresh(async)
		},
	}

	cmd.Flags().BoolVar(&async, "async", false, "dispatch to the background worker instead of blocking")

	return cmd
}
