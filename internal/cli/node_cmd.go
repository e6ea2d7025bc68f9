package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newNodeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage work nodes",
	}

	cmd.AddCommand(
		newNodeAddCmd(app),
		newNodeListCmd(app),
		newNodeShowCmd(app),
		newNodeUpdateCmd(app),
		newNodeRemoveCmd(app),
	)

	return cmd
}

func newNodeAddCmd(app *App) *cobra.Command {
	var orderFlag, name, code, kind, parent string
	var hours, index int
	var budget decimal.Decimal

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new work node",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, orderFlag)
			if err != nil {
				return err
			}

			n := &domain.WorkNode{
				OrderID:    orderID,
				Name:       name,
				Code:       code,
				Kind:       domain.NodeKind(kind),
				OrderIndex: index,
				Hours:      hours,
				Budget:     budget,
			}
			if parent != "" {
				parentID, err := resolveNodeID(ctx, app, parent, orderID)
				if err != nil {
					return err
				}
				n.ParentID = &parentID
			}

			if err := app.Nodes.Create(ctx, n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s #%d %s\n", n.Kind, n.Seq, n.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&orderFlag, "order", "", "Order code or ID")
	cmd.Flags().StringVar(&name, "name", "", "Node name")
	cmd.Flags().StringVar(&code, "code", "", "Node code")
	cmd.Flags().StringVar(&kind, "kind", string(domain.NodeLine), "Node kind (group|line)")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent group (#seq or ID)")
	cmd.Flags().IntVar(&hours, "hours", 0, "Planned hours")
	cmd.Flags().Var(newDecimalValue(&budget), "budget", "Planned budget")
	cmd.Flags().IntVar(&index, "index", 0, "Position among siblings")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newNodeListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list ORDER",
		Short: "Show the node tree of an order",
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
			if len(nodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No nodes found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNodeTree(nodes, o.WeightBasis))
			return nil
		},
	}
}

func newNodeShowCmd(app *App) *cobra.Command {
	var orderFlag string

	cmd := &cobra.Command{
		Use:   "show NODE",
		Short: "Show node details and direct assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderForFlag(ctx, app, orderFlag)
			if err != nil {
				return err
			}
			nodeID, err := resolveNodeID(ctx, app, args[0], orderID)
			if err != nil {
				return err
			}
			n, err := app.Nodes.GetByID(ctx, nodeID)
			if err != nil {
				return err
			}
			o, err := app.Orders.GetByID(ctx, n.OrderID)
			if err != nil {
				return err
			}
			views, err := app.Advances.ListAssignments(ctx, nodeID, app.today())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatNodeDetail(n, o))
			if len(views) > 0 {
				fmt.Fprintln(out)
				fmt.Fprint(out, formatter.FormatAssignments(views))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&orderFlag, "order", "", "Order code or ID (needed for #seq)")
	return cmd
}

func newNodeUpdateCmd(app *App) *cobra.Command {
	var orderFlag, name, code, parent string
	var hours, index int
	var budget decimal.Decimal

	cmd := &cobra.Command{
		Use:   "update NODE",
		Short: "Update a work node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderForFlag(ctx, app, orderFlag)
			if err != nil {
				return err
			}
			nodeID, err := resolveNodeID(ctx, app, args[0], orderID)
			if err != nil {
				return err
			}
			n, err := app.Nodes.GetByID(ctx, nodeID)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				n.Name = name
			}
			if flags.Changed("code") {
				n.Code = code
			}
			if flags.Changed("hours") {
				n.Hours = hours
			}
			if flags.Changed("budget") {
				n.Budget = budget
			}
			if flags.Changed("index") {
				n.OrderIndex = index
			}
			if flags.Changed("parent") {
				if parent == "" {
					n.ParentID = nil
				} else {
					parentID, err := resolveNodeID(ctx, app, parent, n.OrderID)
					if err != nil {
						return err
					}
					n.ParentID = &parentID
				}
			}

			if err := app.Nodes.Update(ctx, n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d %s\n", n.Seq, n.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&orderFlag, "order", "", "Order code or ID (needed for #seq)")
	cmd.Flags().StringVar(&name, "name", "", "Node name")
	cmd.Flags().StringVar(&code, "code", "", "Node code")
	cmd.Flags().StringVar(&parent, "parent", "", "New parent group (#seq or ID, empty for top level)")
	cmd.Flags().IntVar(&hours, "hours", 0, "Planned hours")
	cmd.Flags().Var(newDecimalValue(&budget), "budget", "Planned budget")
	cmd.Flags().IntVar(&index, "index", 0, "Position among siblings")

	return cmd
}

func newNodeRemoveCmd(app *App) *cobra.Command {
	var orderFlag string

	cmd := &cobra.Command{
		Use:   "remove NODE",
		Short: "Delete a node with its subtree and advances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderForFlag(ctx, app, orderFlag)
			if err != nil {
				return err
			}
			nodeID, err := resolveNodeID(ctx, app, args[0], orderID)
			if err != nil {
				return err
			}
			if err := app.Nodes.Delete(ctx, nodeID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed node %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&orderFlag, "order", "", "Order code or ID (needed for #seq)")
	return cmd
}
