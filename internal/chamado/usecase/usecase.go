package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkguid"
)

// RowStore persists the rows of the last upload of each requester.
type RowStore interface {
	Save(ctx context.Context, requester string, rows *entity.RowStore) error
	Load(ctx context.Context, requester string) (*entity.RowStore, error)
	Delete(ctx context.Context, requester string) error
}

type ReportStore interface {
	CreateReport(ctx context.Context, report entity.BatchReport) error
	ListOutcomes(ctx context.Context, batchID string, filter OutcomeFilter, page, pageSize int) ([]entity.RowOutcome, int, entity.BatchReport, error)
	ListHistory(ctx context.Context, requester string, limit int) ([]entity.HistoryEntry, error)
}

// Fluig is the subset of the Fluig API used to open tickets.
// Lookups return pkgerror.ErrNotFound when the dataset has no match.
type Fluig interface {
	FindColleague(ctx context.Context, user string) (entity.Colleague, error)
	FindEmployee(ctx context.Context, user string) (entity.Employee, error)
	ServiceDetails(ctx context.Context, documentID string) (entity.Service, error)
	StartProcess(ctx context.Context, payload entity.ProcessStart) (string, error)
	TicketDetails(ctx context.Context, ticketID string) (entity.TicketDetails, error)
}

// Catalog is the local copy of the ITSM service catalog.
type Catalog interface {
	List(ctx context.Context) ([]entity.Service, error)
	CachedDetails(ctx context.Context, documentID string) (entity.Service, error)
	SaveDetails(ctx context.Context, service entity.Service) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.TicketCreatedEvent) error
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Rows    RowStore
	Reports ReportStore
	Fluig   Fluig
	Catalog Catalog
	Events  EventPublisher
	Clock   Clock
	ID      pkguid.StringID
}

type Usecase struct {
	rows    RowStore
	reports ReportStore
	fluig   Fluig
	catalog Catalog
	events  EventPublisher
	clock   Clock
	id      pkguid.StringID
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	id := dep.ID
	if id == nil {
		id = pkguid.NewUUID()
	}

	return &Usecase{
		rows:    dep.Rows,
		reports: dep.Reports,
		fluig:   dep.Fluig,
		catalog: dep.Catalog,
		events:  dep.Events,
		clock:   clock,
		id:      id,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (u *Usecase) OpenTicket(ctx context.Context, in OpenTicketInput) (TicketResult, error) {
	req := entity.TicketRequest{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Requester:    strings.TrimSpace(in.Requester),
		Phone:        in.Phone,
		ServiceID:    strings.TrimSpace(in.ServiceID),
		AttendedUser: in.AttendedUser,
	}

	ticket, err := u.openTicket(ctx, req, "", 0)
	if err != nil {
		return TicketResult{}, err
	}

	return TicketResult{TicketID: ticket.ID, Kind: ticket.Kind, Title: ticket.Title}, nil
}

// openTicket files one chamado in Fluig and publishes TicketCreatedEvent on success.
func (u *Usecase) openTicket(ctx context.Context, req entity.TicketRequest, batchID string, row int) (entity.Ticket, error) {
	if u.fluig == nil {
		return entity.Ticket{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if err := req.Validate(); err != nil {
		return entity.Ticket{}, pkgerror.NewInvalidInput(err)
	}

	colleague, err := u.fluig.FindColleague(ctx, req.Requester)
	if err != nil {
		if errors.Is(err, pkgerror.ErrNotFound) {
			return entity.Ticket{}, pkgerror.NewBusiness(
				fmt.Sprintf("requester %s not found in Fluig", req.Requester), pkgerror.CodeNotFound)
		}
		return entity.Ticket{}, mapFluigErr(err)
	}
	if colleague.ID == "" {
		return entity.Ticket{}, pkgerror.NewBusiness(
			fmt.Sprintf("requester %s has no colleague id in Fluig", req.Requester), pkgerror.CodeNotFound)
	}

	now := u.clock.Now()
	var payload entity.ProcessStart

	switch req.Kind() {
	case entity.TicketKindClassified:
		employee, err := u.fluig.FindEmployee(ctx, req.Requester)
		if err != nil {
			slog.WarnContext(ctx, "employee data not found, using empty values", "requester", req.Requester, "error", err)
			employee = entity.Employee{}
		}

		result, err := u.ServiceDetails(ctx, req.ServiceID)
		if err != nil {
			return entity.Ticket{}, err
		}
		if result.Service.Name == "" {
			return entity.Ticket{}, pkgerror.NewBusiness(
				fmt.Sprintf("service %s has no name in the catalog", req.ServiceID), pkgerror.CodeNotFound)
		}

		payload = classifiedPayload(req, colleague, employee, result.Service, now)
	default:
		payload = normalPayload(req, colleague, now)
	}

	ticketID, err := u.fluig.StartProcess(ctx, payload)
	if err != nil {
		return entity.Ticket{}, mapFluigErr(err)
	}

	ticket := entity.Ticket{ID: ticketID, Kind: req.Kind(), Title: req.Title, Requester: req.Requester}
	slog.InfoContext(ctx, "ticket created", "ticket_id", ticketID, "kind", ticket.Kind, "batch_id", batchID, "row", row)

	u.publishCreated(ctx, ticket, batchID, row, now)

	return ticket, nil
}

func (u *Usecase) publishCreated(ctx context.Context, ticket entity.Ticket, batchID string, row int, now time.Time) {
	if u.events == nil {
		return
	}

	event := entity.TicketCreatedEvent{
		EventID:   u.id.Generate(),
		TicketID:  ticket.ID,
		Kind:      ticket.Kind,
		Requester: ticket.Requester,
		Title:     ticket.Title,
		BatchID:   batchID,
		Row:       row,
		CreatedAt: now,
	}
	if err := u.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "event_id", event.EventID, "ticket_id", ticket.ID, "error", err)
	}
}

func mapStoreErr(err error, what string) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness(what+" not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func mapFluigErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerror.NewBusiness("fluig did not answer in time", pkgerror.CodeTimeout)
	}
	return pkgerror.NewUpstream(err, "fluig request failed: "+err.Error())
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
