package inbound

import (
	"context"
	"io"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/chamado/usecase"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgrouter"
)

type uc interface {
	OpenTicket(ctx context.Context, in usecase.OpenTicketInput) (usecase.TicketResult, error)
	LoadSheet(ctx context.Context, requester, filename string, r io.Reader) (usecase.SheetResult, error)
	ClearSheet(ctx context.Context, requester string) error
	Preview(ctx context.Context, in usecase.BatchInput) (usecase.PreviewResult, error)
	OpenBatch(ctx context.Context, in usecase.BatchInput) (entity.BatchReport, error)
	OpenBatchFromUpload(ctx context.Context, in usecase.BatchInput, filename string, r io.Reader) (entity.BatchReport, error)
	Report(ctx context.Context, batchID string, filter usecase.OutcomeFilter, page, pageSize int) (usecase.ReportResult, error)
	History(ctx context.Context, requester string, limit int) ([]entity.HistoryEntry, error)
	TicketDetails(ctx context.Context, ticketID string) (entity.TicketDetails, error)
	ListServices(ctx context.Context) ([]entity.Service, error)
	FindService(ctx context.Context, name string) (usecase.ServiceResult, error)
	ServiceDetails(ctx context.Context, documentID string) (usecase.ServiceResult, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}
	upload := pkgrouter.LimitBody(maxUploadSize)

	r.POST("/chamados", end.OpenTicket)
	r.POST("/chamados/planilha", end.UploadSheet, upload)
	r.DELETE("/chamados/planilha", end.ClearSheet)
	r.POST("/chamados/preview", end.Preview)
	r.POST("/chamados/lote", end.OpenBatch, upload)
	r.GET("/chamados/lote/:id", end.BatchReport) // ?status=&page=&page_size=
	r.GET("/chamados/historico", end.History)    // ?limit=
	r.GET("/chamados/detalhes/:id", end.TicketDetails)

	r.GET("/servicos", end.ListServices)
	r.GET("/servicos/:id", end.ServiceDetails)
	r.POST("/servicos/busca", end.FindService)
}
