package cli

import (
	"time"

	"github.com/alexanderramin/tally/internal/app"
	"github.com/alexanderramin/tally/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Orders   service.OrderService
	Nodes    service.NodeService
	Types    service.AdvanceTypeService
	Advances service.AdvanceService
	Progress service.ProgressService
	Import   service.ImportService

	// Use-case ports. When nil the matching service above is used.
	ProgressReport app.ProgressUseCase
	ImportOrder    app.ImportOrderUseCase

	// Today is the date reports and new measurements default to.
	Today func() time.Time

	// IsInteractive reports whether stdin is a terminal. Forms are only
	// offered when it returns true.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "tally" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tally",
		Short:         "Order progress from advance measurements",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newOrderCmd(app),
		newNodeCmd(app),
		newTypeCmd(app),
		newAssignCmd(app),
		newMeasureCmd(app),
		newProgressCmd(app),
		newIndirectCmd(app),
		newFakeCmd(app),
		newBrowseCmd(app),
		newImportCmd(app),
	)

	return root
}

func (a *App) today() time.Time {
	if a.Today != nil {
		return a.Today()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}
