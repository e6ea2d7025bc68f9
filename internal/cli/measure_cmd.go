package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newMeasureCmd(app *App) *cobra.Command {
	var orderFlag string

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Record advance measurements",
	}
	cmd.PersistentFlags().StringVar(&orderFlag, "order", "", "Order code or ID (needed for #seq)")

	cmd.AddCommand(
		newMeasureAddCmd(app, &orderFlag),
		newMeasureRemoveCmd(app, &orderFlag),
		newMeasureListCmd(app, &orderFlag),
	)

	return cmd
}

func newMeasureAddCmd(app *App, orderFlag *string) *cobra.Command {
	var value decimal.Decimal
	var date time.Time
	valueFlag := newDecimalValue(&value)
	dateFlag := newDateValue(&date)

	cmd := &cobra.Command{
		Use:   "add NODE TYPE",
		Short: "Record a measurement; the same day is overwritten",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			nodeID, err := nodeFromArgs(ctx, app, *orderFlag, args[0])
			if err != nil {
				return err
			}
			typeName := args[1]
			day := dateFlag.orDefault(app.today())

			if valueFlag.ptr() == nil {
				if !app.interactive() {
					return fmt.Errorf("--value is required")
				}
				view, err := findAssignment(ctx, app, nodeID, typeName)
				if err != nil {
					return err
				}
				valueText, dayText := "", day.Format(dateLayout)
				if err := measurementForm(typeName, view.MaxValue, &valueText, &dayText).Run(); err != nil {
					return err
				}
				value, day, err = parseMeasurementInput(valueText, dayText)
				if err != nil {
					return err
				}
			}

			if err := app.Advances.AddMeasurement(ctx, nodeID, typeName, day, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Recorded %s %s on %s\n",
				formatter.StyleGreen.Render("✔"), value, typeName, day.Format(dateLayout))
			return nil
		},
	}

	cmd.Flags().Var(valueFlag, "value", "Measured value (prompted when omitted in a terminal)")
	cmd.Flags().Var(dateFlag, "date", "Measurement date (YYYY-MM-DD, default today)")
	return cmd
}

func newMeasureRemoveCmd(app *App, orderFlag *string) *cobra.Command {
	var date time.Time

	cmd := &cobra.Command{
		Use:   "remove NODE TYPE",
		Short: "Delete the measurement of one day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			nodeID, err := nodeFromArgs(ctx, app, *orderFlag, args[0])
			if err != nil {
				return err
			}
			if err := app.Advances.RemoveMeasurement(ctx, nodeID, args[1], date); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s measurement of %s\n", args[1], date.Format(dateLayout))
			return nil
		},
	}

	cmd.Flags().Var(newDateValue(&date), "date", "Measurement date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newMeasureListCmd(app *App, orderFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list NODE TYPE",
		Short: "List the measurements of an assignment, latest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			nodeID, err := nodeFromArgs(ctx, app, *orderFlag, args[0])
			if err != nil {
				return err
			}
			view, err := findAssignment(ctx, app, nodeID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMeasurements(view.Measurements))
			return nil
		},
	}
}

func findAssignment(ctx context.Context, app *App, nodeID, typeName string) (*contract.AssignmentView, error) {
	views, err := app.Advances.ListAssignments(ctx, nodeID, app.today())
	if err != nil {
		return nil, err
	}
	for i := range views {
		if views[i].Type == typeName {
			return &views[i], nil
		}
	}
	return nil, fmt.Errorf("node has no %s assignment", typeName)
}
