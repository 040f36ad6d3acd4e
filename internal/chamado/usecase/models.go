package usecase

import (
	"slices"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
)

type OpenTicketInput struct {
	Requester    string
	Title        string
	Description  string
	Phone        string
	ServiceID    string
	AttendedUser string
}

type TicketResult struct {
	TicketID string
	Kind     entity.TicketKind
	Title    string
}

type SheetResult struct {
	Rows     int
	FirstRow int
	LastRow  int
}

// BatchInput drives both Preview and OpenBatch; ticket fields are ignored by Preview.
type BatchInput struct {
	Requester    string
	Title        string
	Description  string
	Count        int
	Start        int
	SkipHeader   bool
	Phone        string
	ServiceID    string
	AttendedUser string
}

type PreviewItem struct {
	Row            int
	Title          string
	Description    string
	MissingColumns []string
}

type PreviewResult struct {
	TotalRows int
	Items     []PreviewItem
}

type ReportResult struct {
	Report   entity.BatchReport
	Outcomes []entity.RowOutcome
	Page     int
	PageSize int
	Total    int
}

type ServiceResult struct {
	Service entity.Service
	Source  entity.ServiceSource
}

type OutcomeFilter struct {
	Statuses []entity.OutcomeStatus
}

func (f OutcomeFilter) Matches(o entity.RowOutcome) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status()) {
		return false
	}

	return true
}
