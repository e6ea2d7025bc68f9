package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/spf13/cobra"
)

func newProgressCmd(app *App) *cobra.Command {
	var at *dateValue
	selections := newSelectionsValue()

	cmd := &cobra.Command{
		Use:   "progress ORDER",
		Short: "Show an order's progress tree",
		Long: `Show an order's progress tree.

Each group reports through its children by default. --select NODE=TYPE makes
the group report through another indirect type for this report only; use
NODE=none to leave the group without a global source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
			if err != nil {
				return err
			}

			req := contract.NewProgressRequest(orderID)
			req.IncludeAssignments = false
			day := at.orDefault(app.today())
			req.At = &day
			for ref, typeName := range selections.pairs {
				nodeID, err := resolveNodeID(ctx, app, ref, orderID)
				if err != nil {
					return err
				}
				req.Selections[nodeID] = typeName
			}

			resp, err := app.progressUseCase().GetProgress(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProgress(resp))
			return nil
		},
	}

	at = addAtFlag(cmd)
	cmd.Flags().Var(selections, "select", "Indirect type a group reports through (repeatable)")
	return cmd
}

func newIndirectCmd(app *App) *cobra.Command {
	var orderFlag string
	var at *dateValue

	cmd := &cobra.Command{
		Use:   "indirect NODE",
		Short: "Show the advances a group derives from its descendants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			nodeID, err := nodeFromArgs(ctx, app, orderFlag, args[0])
			if err != nil {
				return err
			}
			views, err := app.Advances.Indirect(ctx, nodeID, at.orDefault(app.today()))
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Lines have no indirect advances.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatIndirect(views))
			return nil
		},
	}

	cmd.Flags().StringVar(&orderFlag, "order", "", "Order code or ID (needed for #seq)")
	at = addAtFlag(cmd)
	return cmd
}

func newFakeCmd(app *App) *cobra.Command {
	var orderFlag string
	var at *dateValue

	cmd := &cobra.Command{
		Use:   "fake NODE TYPE",
		Short: "Show the consolidated measurements of an indirect advance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			nodeID, err := nodeFromArgs(ctx, app, orderFlag, args[0])
			if err != nil {
				return err
			}
			view, err := app.Advances.Fake(ctx, nodeID, args[1], at.orDefault(app.today()))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatFake(view))
			return nil
		},
	}

	cmd.Flags().StringVar(&orderFlag, "order", "", "Order code or ID (needed for #seq)")
	at = addAtFlag(cmd)
	return cmd
}
