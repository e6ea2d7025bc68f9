package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newTypeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type",
		Short: "Manage advance types",
	}

	cmd.AddCommand(
		newTypeAddCmd(app),
		newTypeListCmd(app),
		newTypeRemoveCmd(app),
	)

	return cmd
}

func newTypeAddCmd(app *App) *cobra.Command {
	var maxValue decimal.Decimal
	var precision int
	var percentage bool

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a custom advance type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at := &domain.AdvanceType{
				Name:            args[0],
				DefaultMaxValue: maxValue,
				Precision:       int32(precision),
				Percentage:      percentage,
			}
			if err := app.Types.Create(context.Background(), at); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created advance type %s (max %s)\n", at.Name, at.DefaultMaxValue)
			return nil
		},
	}

	cmd.Flags().Var(newDecimalValue(&maxValue), "max", "Default and upper max value")
	cmd.Flags().IntVar(&precision, "precision", domain.DefaultAdvancePrecision, "Decimal places of percentages")
	cmd.Flags().BoolVar(&percentage, "percentage", false, "Values are percentages")
	_ = cmd.MarkFlagRequired("max")

	return cmd
}

func newTypeListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List advance types",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := app.Types.List(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAdvanceTypes(types))
			return nil
		},
	}
}

func newTypeRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Delete a custom advance type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Types.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed advance type %s\n", args[0])
			return nil
		},
	}
}
