package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zboralski/xgohook"
	"github.com/zboralski/xgohook/internal/xhconfig"
)

func newRegisterCmd() *cobra.Command {
	var (
		configPath  string
		pattern     string
		symbol      string
		replacement string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register one hook spec, or a whole config file's worth",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return registerFromConfig(configPath)
			}
			if pattern == "" || symbol == "" || replacement == "" {
				return fmt.Errorf("register: --config, or all of --pattern/--symbol/--replacement, are required")
			}

			addr, err := xhconfig.ParseAddr(replacement)
			if err != nil {
				return err
			}
			return xhook.Register(pattern, symbol, addr, nil)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML hook list")
	cmd.Flags().StringVar(&pattern, "pattern", "", "pathname regex to match")
	cmd.Flags().StringVar(&symbol, "symbol", "", "symbol name to hook")
	cmd.Flags().StringVar(&replacement, "replacement", "", "replacement address (hex or decimal)")

	return cmd
}

func registerFromConfig(path string) error {
	cfg, err := xhconfig.Load(path)
	if err != nil {
		return err
	}

	if cfg.Debug {
		xhook.SetDebug(true)
	}

	for _, h := range cfg.Hooks {
		addr, err := xhconfig.ParseAddr(h.Replacement)
		if err != nil {
			return fmt.Errorf("register: %s: %w", h.Pattern, err)
		}
		if err := xhook.Register(h.Pattern, h.Symbol, addr, nil); err != nil {
			return fmt.Errorf("register: %s: %w", h.Pattern, err)
		}
	}

	return nil
}
