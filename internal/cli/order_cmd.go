package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/spf13/cobra"
)

func newOrderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Manage orders",
	}

	cmd.AddCommand(
		newOrderAddCmd(app),
		newOrderListCmd(app),
		newOrderShowCmd(app),
		newOrderRemoveCmd(app),
	)

	return cmd
}

func newOrderAddCmd(app *App) *cobra.Command {
	var code, name, weight string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new order",
		RunE: func(cmd *cobra.Command, args []string) error {
			o := &domain.Order{
				Code:        code,
				Name:        name,
				WeightBasis: domain.WeightBasis(weight),
			}
			if err := app.Orders.Create(context.Background(), o); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created order %s [%s]\n", o.Name, o.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Order code (2-10 uppercase letters or digits, e.g. ORD24)")
	cmd.Flags().StringVar(&name, "name", "", "Order name")
	cmd.Flags().StringVar(&weight, "weight", "", "Weight basis for averaging children (hours|budget)")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newOrderListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := app.Orders.List(context.Background())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No orders found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOrderList(orders))
			return nil
		},
	}
}

func newOrderShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ORDER",
		Short: "Show an order and its node tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
			if err != nil {
				return err
			}
			o, err := app.Orders.GetByID(ctx, orderID)
			if err != nil {
				return err
			}
			nodes, err := app.Nodes.ListByOrder(ctx, orderID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  %s\n\n", formatter.StyleHeader.Render(o.Code), formatter.Bold(o.Name),
				formatter.Dim("weighted by "+string(o.WeightBasis)))
			if len(nodes) == 0 {
				fmt.Fprintln(out, formatter.Dim("No nodes yet."))
				return nil
			}
			fmt.Fprint(out, formatter.FormatNodeTree(nodes, o.WeightBasis))
			return nil
		},
	}
}

func newOrderRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ORDER",
		Short: "Delete an order with its nodes and advances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Orders.Delete(ctx, orderID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed order %s\n", args[0])
			return nil
		},
	}
}
