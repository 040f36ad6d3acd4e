package app

import (
	"context"
	"net/http"
	"time"

	"github.com/shandysiswandi/gochamado/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkglog"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkguid"
)

const defaultShutdownTimeout = 30 * time.Second

// closer releases one resource during shutdown.
type closer struct {
	name string
	fn   func(context.Context) error
}

// App owns the process lifecycle: config, shared libraries, the HTTP
// server and the modules registered on it.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config pkgconfig.Config

	uuid      pkguid.StringID
	snowflake pkguid.StringID
	goroutine *pkgroutine.Manager

	router     *pkgrouter.Router
	httpServer *http.Server

	// closed in reverse order of registration, after the HTTP server
	closers []closer
}

func New() *App {
	pkglog.InitLogging()

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initLibraries()
	app.initHTTPServer()
	app.initModules()

	return app
}

// ShutdownTimeout bounds Stop. A batch in flight keeps its request open, so
// the value comes from server.shutdown_timeout.
func (a *App) ShutdownTimeout() time.Duration {
	if d := a.config.GetDuration("server.shutdown_timeout"); d > 0 {
		return d
	}
	return defaultShutdownTimeout
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}
