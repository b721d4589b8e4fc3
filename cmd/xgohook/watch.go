package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zboralski/xgohook"
)

const watchInterval = 2 * time.Second

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live view of refresh sweeps and patched objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(newWatchModel())
			_, err := p.Run()
			return err
		},
	}
}

type tickMsg time.Time

type watchModel struct {
	table    table.Model
	lastSize int
}

func newWatchModel() watchModel {
	columns := []table.Column{
		{Title: "Kind", Width: 12},
		{Title: "Refresh", Width: 10},
		{Title: "Pathname", Width: 40},
		{Title: "Symbol", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(20),
	)

	style := table.DefaultStyles()
	style.Header = style.Header.Bold(true).Foreground(lipgloss.Color("212"))
	style.Selected = style.Selected.Bold(false)
	t.SetStyles(style)

	return watchModel{table: t}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(tick(), triggerRefresh)
}

func tick() tea.Cmd {
	return tea.Tick(watchInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func triggerRefresh() tea.Msg {
	_ = xhook.Refresh(false)
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.refreshRows()
		return m, tea.Batch(tick(), triggerRefresh)
	}
	return m, nil
}

func (m *watchModel) refreshRows() {
	events := xhook.Default().Trail().Recent()

	rows := make([]table.Row, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		rows = append(rows, table.Row{string(e.Kind), shortID(e.RefreshID), e.Pathname, e.Symbol})
	}
	m.table.SetRows(rows)
	m.lastSize = len(events)
}

func (m watchModel) View() string {
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).
		Render(fmt.Sprintf("%d events, q to quit", m.lastSize))
	return m.table.View() + "\n" + footer
}
