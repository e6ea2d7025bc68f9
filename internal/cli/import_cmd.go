package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import an order tree with advances from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.importOrderUseCase().ImportOrder(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %s [%s]: %d nodes, %d assignments, %d measurements\n",
				formatter.StyleGreen.Render("✔"),
				formatter.Bold(result.Order.Name), result.Order.Code,
				result.NodeCount, result.AssignmentCount, result.MeasurementCount)
			return nil
		},
	}
}
