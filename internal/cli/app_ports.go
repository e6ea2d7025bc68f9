package cli

import "github.com/alexanderramin/tally/internal/app"

func (a *App) progressUseCase() app.ProgressUseCase {
	if a.ProgressReport != nil {
		return a.ProgressReport
	}
	return a.Progress
}

func (a *App) importOrderUseCase() app.ImportOrderUseCase {
	if a.ImportOrder != nil {
		return a.ImportOrder
	}
	return a.Import
}
