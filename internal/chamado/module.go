package chamado

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/chamado/event"
	"github.com/shandysiswandi/gochamado/internal/chamado/inbound"
	"github.com/shandysiswandi/gochamado/internal/chamado/outbound"
	"github.com/shandysiswandi/gochamado/internal/chamado/store"
	"github.com/shandysiswandi/gochamado/internal/chamado/usecase"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
	HistoryID pkguid.StringID
}

func New(dep Dependency) (func(context.Context) error, error) {
	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}
	if dep.HistoryID == nil {
		dep.HistoryID = dep.ID
	}

	fluigCfg, err := fluigConfig(dep.Config)
	if err != nil {
		return nil, err
	}

	client, err := outbound.NewClient(fluigCfg)
	if err != nil {
		return nil, fmt.Errorf("fluig client: %w", err)
	}

	catalog, err := outbound.NewFileCatalog(dep.Config.GetString("storage.catalog_dir"), fluigCfg.Env)
	if err != nil {
		return nil, err
	}

	rows, err := store.NewFileRowStore(dep.Config.GetString("storage.rows_dir"))
	if err != nil {
		return nil, err
	}

	reports := store.NewInMemoryStore(
		int(dep.Config.GetInt("modules.chamado.max_reports")),
		int(dep.Config.GetInt("modules.chamado.max_history")),
	)

	bus := event.NewBus(int(dep.Config.GetInt("events.buffer")))
	consumer := event.NewTicketConsumer(bus, event.NewHistoryRecorder(reports, dep.HistoryID), event.ConsumerConfig{
		Workers:     int(dep.Config.GetInt("events.workers")),
		MaxRetries:  int(dep.Config.GetInt("events.max_retries")),
		BaseBackoff: dep.Config.GetDuration("events.base_backoff"),
		MaxSeen:     int(dep.Config.GetInt("events.max_seen")),
	})
	consumer.Start()

	renew := dep.Config.GetDuration("fluig.session_renew_interval")
	if renew <= 0 {
		renew = 10 * time.Minute
	}
	dep.Goroutine.Loop(dep.Context, "fluig session renewal", renew, client.RenewSession)

	uc := usecase.New(usecase.Dependency{
		Rows:    rows,
		Reports: reports,
		Fluig:   client,
		Catalog: catalog,
		Events:  bus,
		ID:      dep.ID,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return consumer.Stop, nil
}

// fluigConfig reads the section of the selected environment, e.g. fluig.prd.* for PRD.
func fluigConfig(cfg pkgconfig.Config) (outbound.Config, error) {
	env := entity.Environment(strings.ToUpper(strings.TrimSpace(cfg.GetString("fluig.env"))))
	if env == "" {
		env = entity.EnvironmentPRD
	}
	if env != entity.EnvironmentPRD && env != entity.EnvironmentQLD {
		return outbound.Config{}, errors.New("fluig.env must be PRD or QLD")
	}

	prefix := "fluig." + strings.ToLower(string(env)) + "."

	return outbound.Config{
		Env:            env,
		BaseURL:        cfg.GetString(prefix + "base_url"),
		ConsumerKey:    cfg.GetString(prefix + "consumer_key"),
		ConsumerSecret: cfg.GetString(prefix + "consumer_secret"),
		Token:          cfg.GetString(prefix + "token"),
		TokenSecret:    cfg.GetString(prefix + "token_secret"),
		Username:       cfg.GetString(prefix + "username"),
		Password:       cfg.GetString(prefix + "password"),
		TaskUserID:     cfg.GetString(prefix + "task_user_id"),
		Timeout:        cfg.GetDuration("fluig.timeout"),
		SessionDir:     cfg.GetString("storage.session_dir"),
	}, nil
}
