package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zboralski/xgohook"
	"github.com/zboralski/xgohook/internal/audit"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	patchedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	faultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the recent hook lifecycle audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			events := xhook.Default().Trail().Recent()
			if len(events) == 0 {
				fmt.Println(dimStyle.Render("no events recorded yet"))
				return nil
			}

			fmt.Println(headerStyle.Render(fmt.Sprintf("%-10s %-10s %-30s %s", "KIND", "REFRESH", "PATHNAME", "DETAIL")))
			for _, e := range events {
				fmt.Println(renderEvent(e))
			}
			return nil
		},
	}
}

func renderEvent(e audit.Event) string {
	style := dimStyle
	switch e.Kind {
	case audit.Patched:
		style = patchedStyle
	case audit.Skipped:
		style = skippedStyle
	case audit.ProbeFault:
		style = faultStyle
	}

	detail := e.Detail
	if e.Symbol != "" {
		detail = e.Symbol + " " + detail
	}

	return style.Render(fmt.Sprintf("%-10s %-10s %-30s %s", e.Kind, shortID(e.RefreshID), e.Pathname, detail))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
