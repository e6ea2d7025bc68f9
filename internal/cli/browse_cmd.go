package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	var at *dateValue

	cmd := &cobra.Command{
		Use:   "browse ORDER",
		Short: "Explore an order's progress interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := resolveOrderID(context.Background(), app, args[0])
			if err != nil {
				return err
			}
			model := newBrowseModel(app, orderID, at.orDefault(app.today()))
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(cmd.OutOrStdout())).Run()
			return err
		},
	}

	at = addAtFlag(cmd)
	return cmd
}
