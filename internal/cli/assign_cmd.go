package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// nodeFromArgs resolves a NODE argument against an optional --order flag.
func nodeFromArgs(ctx context.Context, app *App, orderFlag, input string) (string, error) {
	orderID, err := resolveOrderForFlag(ctx, app, orderFlag)
	if err != nil {
		return "", err
	}
	return resolveNodeID(ctx, app, input, orderID)
}

func newAssignCmd(app *App) *cobra.Command {
	var orderFlag string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Manage direct advance assignments",
	}
	cmd.PersistentFlags().StringVar(&orderFlag, "order", "", "Order code or ID (needed for #seq)")

	cmd.AddCommand(
		newAssignAddCmd(app, &orderFlag),
		newAssignRemoveCmd(app, &orderFlag),
		newAssignGlobalCmd(app, &orderFlag),
		newAssignMaxCmd(app, &orderFlag),
		newAssignListCmd(app, &orderFlag),
	)

	return cmd
}

func newAssignAddCmd(app *App, orderFlag *string) *cobra.Command {
	var maxValue decimal.Decimal
	var global bool
	maxFlag := newDecimalValue(&maxValue)

	cmd := &cobra.Command{
		Use:   "add NODE TYPE",
		Short: "Track a node's progress with an advance type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			nodeID, err := nodeFromArgs(ctx, app, *orderFlag, args[0])
			if err != nil {
				return err
			}
			a, err := app.Advances.AddAssignment(ctx, nodeID, args[1], maxFlag.ptr(), global)
			if err != nil {
				return err
			}
			suffix := ""
			if a.ReportGlobalAdvance {
				suffix = " " + formatter.StyleGreen.Render("(global)")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s with max %s%s\n", a.AdvanceType, args[0], a.MaxValue, suffix)
			return nil
		},
	}

	cmd.Flags().Var(maxFlag, "max", "Max value (defaults to the type's)")
	cmd.Flags().BoolVar(&global, "global", false, "Report the node's overall progress through this type")
	return cmd
}

func newAssignRemoveCmd(app *App, orderFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NODE TYPE",
		Short: "Remove an assignment and its measurements",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			nodeID, err := nodeFromArgs(ctx, app, *orderFlag, args[0])
			if err != nil {
				return err
			}
			if err := app.Advances.RemoveAssignment(ctx, nodeID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", args[1], args[0])
			return nil
		},
	}
}

func newAssignGlobalCmd(app *App, orderFlag *string) *cobra.Command {
	var none bool

	cmd := &cobra.Command{
		Use:   "global NODE [TYPE]",
		Short: "Choose which assignment reports the node's overall progress",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if none == (len(args) == 2) {
				return fmt.Errorf("give either a TYPE or --none")
			}
			ctx := context.Background()
			nodeID, err := nodeFromArgs(ctx, app, *orderFlag, args[0])
			if err != nil {
				return err
			}
			typeName := ""
			if len(args) == 2 {
				typeName = args[1]
			}
			if err := app.Advances.SetGlobal(ctx, nodeID, typeName); err != nil {
				return err
			}
			if typeName == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s no longer reports global progress\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s reports global progress through %s\n", args[0], typeName)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&none, "none", false, "Leave the node without a global assignment")
	return cmd
}

func newAssignMaxCmd(app *App, orderFlag *string) *cobra.Command {
	var maxValue decimal.Decimal

	cmd := &cobra.Command{
		Use:   "max NODE TYPE",
		Short: "Change an assignment's max value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			nodeID, err := nodeFromArgs(ctx, app, *orderFlag, args[0])
			if err != nil {
				return err
			}
			if err := app.Advances.UpdateMaxValue(ctx, nodeID, args[1], maxValue); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Max value of %s on %s is now %s\n", args[1], args[0], maxValue)
			return nil
		},
	}

	cmd.Flags().Var(newDecimalValue(&maxValue), "max", "New max value")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}

func newAssignListCmd(app *App, orderFlag *string) *cobra.Command {
	var at *dateValue

	cmd := &cobra.Command{
		Use:   "list NODE",
		Short: "List a node's direct assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			nodeID, err := nodeFromArgs(ctx, app, *orderFlag, args[0])
			if err != nil {
				return err
			}
			views, err := app.Advances.ListAssignments(ctx, nodeID, at.orDefault(app.today()))
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No assignments.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAssignments(views))
			return nil
		},
	}

	at = addAtFlag(cmd)
	return cmd
}
