package inbound

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
)

type OpenTicketRequest struct {
	Requester    string `json:"requester" validate:"max=254"`
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required"`
	Phone        string `json:"phone" validate:"max=20"`
	ServiceID    string `json:"service_id" validate:"omitempty,numeric"`
	AttendedUser string `json:"attended_user" validate:"max=254"`
}

// BatchRequest is shared by the preview and the batch endpoints. Start
// defaults to 1 and SkipHeader to true when omitted.
type BatchRequest struct {
	Requester    string `json:"requester" validate:"max=254"`
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Count        int    `json:"count" validate:"min=1"`
	Start        int    `json:"start" validate:"min=0"`
	SkipHeader   *bool  `json:"skip_header"`
	Phone        string `json:"phone" validate:"max=20"`
	ServiceID    string `json:"service_id" validate:"omitempty,numeric"`
	AttendedUser string `json:"attended_user" validate:"max=254"`
}

type FindServiceRequest struct {
	Name string `json:"name" validate:"required"`
}

type TicketResponse struct {
	TicketID string            `json:"ticket_id"`
	Kind     entity.TicketKind `json:"kind"`
	Title    string            `json:"title"`
}

func (TicketResponse) StatusCode() int {
	return http.StatusCreated
}

func (TicketResponse) Message() string {
	return "ticket created"
}

type SheetResponse struct {
	Rows     int `json:"rows"`
	FirstRow int `json:"first_row"`
	LastRow  int `json:"last_row"`
}

func (SheetResponse) Message() string {
	return "spreadsheet loaded"
}

type PreviewItem struct {
	Row            int      `json:"row"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

type PreviewResponse struct {
	TotalRows int           `json:"total_rows"`
	Items     []PreviewItem `json:"items"`
}

type Outcome struct {
	Row      int                  `json:"row"`
	Status   entity.OutcomeStatus `json:"status"`
	Message  string               `json:"message"`
	Title    string               `json:"title,omitempty"`
	TicketID string               `json:"ticket_id,omitempty"`
}

type BatchResponse struct {
	BatchID   string    `json:"batch_id"`
	Requester string    `json:"requester"`
	Processed int       `json:"processed"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"outcomes"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

func (BatchResponse) Message() string {
	return "batch finished"
}

type BatchReportResponse struct {
	BatchResponse
	page     int
	pageSize int
	total    int
}

func (BatchReportResponse) Message() string {
	return "request has been successfully"
}

func (r BatchReportResponse) Meta() map[string]any {
	return map[string]any{
		"page":      r.page,
		"page_size": r.pageSize,
		"total":     r.total,
	}
}

type HistoryItem struct {
	TicketID  string            `json:"ticket_id"`
	Kind      entity.TicketKind `json:"kind"`
	Title     string            `json:"title"`
	BatchID   string            `json:"batch_id,omitempty"`
	Row       int               `json:"row,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type HistoryResponse struct {
	Requester string        `json:"requester"`
	Tickets   []HistoryItem `json:"tickets"`
}

type Service struct {
	DocumentID    string `json:"document_id"`
	Name          string `json:"name"`
	Group         string `json:"group"`
	Item          string `json:"item"`
	UrgencyHigh   string `json:"urgency_high,omitempty"`
	UrgencyMedium string `json:"urgency_medium,omitempty"`
	UrgencyLow    string `json:"urgency_low,omitempty"`
	Responsible   string `json:"responsible,omitempty"`
	Team          string `json:"team,omitempty"`
	Impact        string `json:"impact,omitempty"`
	KeyUser       string `json:"key_user,omitempty"`
}

type ServiceListResponse struct {
	Services []Service `json:"services"`
}

// TicketDetailsResponse carries the Fluig workflow view as Fluig sent it.
type TicketDetailsResponse struct {
	TicketID string          `json:"ticket_id"`
	Details  json.RawMessage `json:"details"`
}

type ServiceDetailsResponse struct {
	Service Service              `json:"service"`
	Source  entity.ServiceSource `json:"source"`
}
