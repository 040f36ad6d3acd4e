package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
)

const maxHistory = 100

func (u *Usecase) Report(ctx context.Context, batchID string, filter OutcomeFilter, page, pageSize int) (ReportResult, error) {
	if strings.TrimSpace(batchID) == "" {
		return ReportResult{}, pkgerror.NewInvalidInput(errors.New("batch id is required"))
	}

	if page < 1 || pageSize < 1 {
		return ReportResult{}, pkgerror.NewInvalidInput(errors.New("invalid pagination"))
	}

	outcomes, total, report, err := u.reports.ListOutcomes(ctx, batchID, filter, page, pageSize)
	if err != nil {
		return ReportResult{}, mapStoreErr(err, "batch")
	}

	return ReportResult{
		Report:   report,
		Outcomes: outcomes,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

func (u *Usecase) History(ctx context.Context, requester string, limit int) ([]entity.HistoryEntry, error) {
	requester = strings.TrimSpace(requester)
	if requester == "" {
		return nil, pkgerror.NewInvalidInput(entity.ErrEmptyRequester)
	}
	if limit < 1 || limit > maxHistory {
		limit = maxHistory
	}

	entries, err := u.reports.ListHistory(ctx, requester, limit)
	if err != nil {
		return nil, normalizeErr(err)
	}

	return entries, nil
}

func (u *Usecase) ListServices(ctx context.Context) ([]entity.Service, error) {
	if u.catalog == nil {
		return nil, pkgerror.NewBusiness("service catalog not configured", pkgerror.CodeNotFound)
	}

	services, err := u.catalog.List(ctx)
	if err != nil {
		return nil, mapStoreErr(err, "service catalog")
	}

	return services, nil
}

// FindService looks a service up by exact name and returns its details.
func (u *Usecase) FindService(ctx context.Context, name string) (ServiceResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ServiceResult{}, pkgerror.NewInvalidInput(errors.New("service name is required"))
	}

	services, err := u.ListServices(ctx)
	if err != nil {
		return ServiceResult{}, err
	}

	for _, s := range services {
		if strings.TrimSpace(s.Name) == name {
			return u.ServiceDetails(ctx, s.DocumentID)
		}
	}

	return ServiceResult{}, pkgerror.NewBusiness("service "+name+" not found", pkgerror.CodeNotFound)
}

// ServiceDetails reads the local cache first and falls back to Fluig, caching the answer.
func (u *Usecase) ServiceDetails(ctx context.Context, documentID string) (ServiceResult, error) {
	documentID = strings.TrimSpace(documentID)
	if _, err := strconv.ParseUint(documentID, 10, 64); err != nil {
		return ServiceResult{}, pkgerror.NewInvalidInput(errors.New("service id must be numeric"))
	}

	if u.catalog != nil {
		cached, err := u.catalog.CachedDetails(ctx, documentID)
		if err == nil {
			return ServiceResult{Service: cached, Source: entity.ServiceSourceLocal}, nil
		}
		if !errors.Is(err, pkgerror.ErrNotFound) {
			return ServiceResult{}, normalizeErr(err)
		}
	}

	if u.fluig == nil {
		return ServiceResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	service, err := u.fluig.ServiceDetails(ctx, documentID)
	if err != nil {
		if errors.Is(err, pkgerror.ErrNotFound) {
			return ServiceResult{}, pkgerror.NewBusiness("service "+documentID+" not found", pkgerror.CodeNotFound)
		}
		return ServiceResult{}, mapFluigErr(err)
	}

	if u.catalog != nil {
		if err := u.catalog.SaveDetails(ctx, service); err != nil {
			slog.WarnContext(ctx, "failed to cache service details", "document_id", documentID, "error", err)
		}
	}

	return ServiceResult{Service: service, Source: entity.ServiceSourceAPI}, nil
}

// TicketDetails returns the Fluig workflow view of a chamado.
func (u *Usecase) TicketDetails(ctx context.Context, ticketID string) (entity.TicketDetails, error) {
	ticketID = strings.TrimSpace(ticketID)
	if n, err := strconv.ParseInt(ticketID, 10, 64); err != nil || n <= 0 {
		return entity.TicketDetails{}, pkgerror.NewInvalidInput(errors.New("ticket id must be a positive number"))
	}

	if u.fluig == nil {
		return entity.TicketDetails{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	details, err := u.fluig.TicketDetails(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pkgerror.ErrNotFound) {
			return entity.TicketDetails{}, pkgerror.NewBusiness("ticket "+ticketID+" not found", pkgerror.CodeNotFound)
		}
		return entity.TicketDetails{}, mapFluigErr(err)
	}

	return details, nil
}
