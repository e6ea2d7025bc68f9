package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/tally/internal/cli"
	"github.com/alexanderramin/tally/internal/config"
	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/alexanderramin/tally/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	orderRepo := repository.NewSQLiteOrderRepo(database)
	nodeRepo := repository.NewSQLiteWorkNodeRepo(database)
	typeRepo := repository.NewSQLiteAdvanceTypeRepo(database)
	assignmentRepo := repository.NewSQLiteAdvanceAssignmentRepo(database)

	opts := []service.Option{
		service.WithClock(cfg.Clock()),
		service.WithDefaultWeightBasis(cfg.WeightBasis),
	}
	var uowOpts []db.UoWOption
	if cfg.LogUseCases {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		opts = append(opts,
			service.WithObserver(service.NewSlogUseCaseObserver(logger)),
			service.WithEngineLogger(logger),
		)
		uowOpts = append(uowOpts, db.WithTxLogger(logger))
	}
	uow := db.NewSQLiteUnitOfWork(database, uowOpts...)

	progressSvc := service.NewProgressService(orderRepo, nodeRepo, typeRepo, assignmentRepo, opts...)
	importSvc := service.NewImportService(orderRepo, typeRepo, uow, opts...)

	app := &cli.App{
		Orders:   service.NewOrderService(orderRepo, opts...),
		Nodes:    service.NewNodeService(nodeRepo, uow),
		Types:    service.NewAdvanceTypeService(typeRepo, uow),
		Advances: service.NewAdvanceService(orderRepo, nodeRepo, typeRepo, assignmentRepo, uow, opts...),
		Progress: progressSvc,
		Import:   importSvc,

		ProgressReport: progressSvc,
		ImportOrder:    importSvc,

		Today: cfg.Clock(),
	}

	// Prompts and the browser only run on a real terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
