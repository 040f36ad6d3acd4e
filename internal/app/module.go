package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gochamado/internal/chamado"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.chamado.enabled") {
		closer, err := chamado.New(chamado.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			ID:        a.uuid,
			HistoryID: a.snowflake,
		})
		if err != nil {
			slog.Error("failed to init module chamado", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			a.addCloser("Chamado", closer)
		}
	}
}
