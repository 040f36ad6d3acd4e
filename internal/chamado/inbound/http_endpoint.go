package inbound

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/chamado/usecase"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgrouter"
)

const (
	sheetField      = "planilha"
	maxUploadMemory = 8 << 20
	maxUploadSize   = 32 << 20

	defaultPageSize = 50
	maxPageSize     = 500
	maxPage         = 1 << 20
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) OpenTicket(ctx context.Context, r *http.Request) (any, error) {
	var req OpenTicketRequest
	if err := pkgrouter.BindJSON(r, &req); err != nil {
		return nil, err
	}

	result, err := h.uc.OpenTicket(ctx, usecase.OpenTicketInput{
		Requester:    requester(ctx, req.Requester),
		Title:        req.Title,
		Description:  req.Description,
		Phone:        req.Phone,
		ServiceID:    req.ServiceID,
		AttendedUser: req.AttendedUser,
	})
	if err != nil {
		return nil, err
	}

	return TicketResponse{TicketID: result.TicketID, Kind: result.Kind, Title: result.Title}, nil
}

func (h *HTTPEndpoint) UploadSheet(ctx context.Context, r *http.Request) (any, error) {
	form, err := parseMultipart(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = form.RemoveAll() }()

	file, filename, err := sheetFile(form)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	result, err := h.uc.LoadSheet(ctx, requester(ctx, formValue(form, "requester")), filename, file)
	if err != nil {
		return nil, err
	}

	return SheetResponse{Rows: result.Rows, FirstRow: result.FirstRow, LastRow: result.LastRow}, nil
}

func (h *HTTPEndpoint) ClearSheet(ctx context.Context, r *http.Request) (any, error) {
	if err := h.uc.ClearSheet(ctx, requester(ctx, r.URL.Query().Get("requester"))); err != nil {
		return nil, err
	}

	return nil, nil
}

func (h *HTTPEndpoint) Preview(ctx context.Context, r *http.Request) (any, error) {
	var req BatchRequest
	if err := pkgrouter.BindJSON(r, &req); err != nil {
		return nil, err
	}

	result, err := h.uc.Preview(ctx, toBatchInput(ctx, req))
	if err != nil {
		return nil, err
	}

	items := make([]PreviewItem, 0, len(result.Items))
	for _, it := range result.Items {
		items = append(items, PreviewItem{
			Row:            it.Row,
			Title:          it.Title,
			Description:    it.Description,
			MissingColumns: it.MissingColumns,
		})
	}

	return PreviewResponse{TotalRows: result.TotalRows, Items: items}, nil
}

// OpenBatch runs over the stored rows for a JSON body, or over the attached
// spreadsheet for a multipart body.
func (h *HTTPEndpoint) OpenBatch(ctx context.Context, r *http.Request) (any, error) {
	if !isMultipart(r) {
		var req BatchRequest
		if err := pkgrouter.BindJSON(r, &req); err != nil {
			return nil, err
		}

		report, err := h.uc.OpenBatch(ctx, toBatchInput(ctx, req))
		if err != nil {
			return nil, err
		}
		return toBatchResponse(report), nil
	}

	form, err := parseMultipart(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = form.RemoveAll() }()

	req, err := batchRequestFromForm(form)
	if err != nil {
		return nil, err
	}

	file, filename, err := sheetFile(form)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	report, err := h.uc.OpenBatchFromUpload(ctx, toBatchInput(ctx, req), filename, file)
	if err != nil {
		return nil, err
	}

	return toBatchResponse(report), nil
}

func (h *HTTPEndpoint) BatchReport(ctx context.Context, r *http.Request) (any, error) {
	batchID := pkgrouter.GetParam(ctx, "id")

	page, err := pkgrouter.QueryInt(r, "page", 1, maxPage)
	if err != nil {
		return nil, err
	}

	pageSize, err := pkgrouter.QueryInt(r, "page_size", defaultPageSize, maxPageSize)
	if err != nil {
		return nil, err
	}

	filter, err := parseOutcomeFilter(r.URL.Query().Get("status"))
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Report(ctx, batchID, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	resp := toBatchResponse(result.Report)
	resp.Outcomes = toOutcomes(result.Outcomes)

	return BatchReportResponse{
		BatchResponse: resp,
		page:          result.Page,
		pageSize:      result.PageSize,
		total:         result.Total,
	}, nil
}

func (h *HTTPEndpoint) History(ctx context.Context, r *http.Request) (any, error) {
	limit, err := pkgrouter.QueryInt(r, "limit", 0, 0)
	if err != nil {
		return nil, err
	}

	who := requester(ctx, r.URL.Query().Get("requester"))
	entries, err := h.uc.History(ctx, who, limit)
	if err != nil {
		return nil, err
	}

	tickets := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		tickets = append(tickets, HistoryItem{
			TicketID:  e.TicketID,
			Kind:      e.Kind,
			Title:     e.Title,
			BatchID:   e.BatchID,
			Row:       e.Row,
			CreatedAt: e.CreatedAt,
		})
	}

	return HistoryResponse{Requester: who, Tickets: tickets}, nil
}

func (h *HTTPEndpoint) ListServices(ctx context.Context, r *http.Request) (any, error) {
	services, err := h.uc.ListServices(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Service, 0, len(services))
	for _, s := range services {
		out = append(out, toHTTPService(s))
	}

	return ServiceListResponse{Services: out}, nil
}

func (h *HTTPEndpoint) TicketDetails(ctx context.Context, r *http.Request) (any, error) {
	details, err := h.uc.TicketDetails(ctx, pkgrouter.GetParam(ctx, "id"))
	if err != nil {
		return nil, err
	}

	return TicketDetailsResponse{TicketID: details.ID, Details: details.Raw}, nil
}

func (h *HTTPEndpoint) ServiceDetails(ctx context.Context, r *http.Request) (any, error) {
	result, err := h.uc.ServiceDetails(ctx, pkgrouter.GetParam(ctx, "id"))
	if err != nil {
		return nil, err
	}

	return ServiceDetailsResponse{Service: toHTTPService(result.Service), Source: result.Source}, nil
}

func (h *HTTPEndpoint) FindService(ctx context.Context, r *http.Request) (any, error) {
	var req FindServiceRequest
	if err := pkgrouter.BindJSON(r, &req); err != nil {
		return nil, err
	}

	result, err := h.uc.FindService(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	return ServiceDetailsResponse{Service: toHTTPService(result.Service), Source: result.Source}, nil
}

// requester prefers the authenticated user header over a value sent by the client.
func requester(ctx context.Context, fallback string) string {
	if who := pkgrouter.GetRequester(ctx); who != "" {
		return who
	}
	return strings.TrimSpace(fallback)
}

func toBatchInput(ctx context.Context, req BatchRequest) usecase.BatchInput {
	start := req.Start
	if start == 0 {
		start = 1
	}

	skipHeader := true
	if req.SkipHeader != nil {
		skipHeader = *req.SkipHeader
	}

	return usecase.BatchInput{
		Requester:    requester(ctx, req.Requester),
		Title:        req.Title,
		Description:  req.Description,
		Count:        req.Count,
		Start:        start,
		SkipHeader:   skipHeader,
		Phone:        req.Phone,
		ServiceID:    req.ServiceID,
		AttendedUser: req.AttendedUser,
	}
}

func toBatchResponse(report entity.BatchReport) BatchResponse {
	return BatchResponse{
		BatchID:   report.ID,
		Requester: report.Requester,
		Processed: report.Processed,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Outcomes:  toOutcomes(report.Outcomes),
		StartedAt: report.StartedAt,
		EndedAt:   report.EndedAt,
	}
}

func toOutcomes(outcomes []entity.RowOutcome) []Outcome {
	out := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, Outcome{
			Row:      o.Row,
			Status:   o.Status(),
			Message:  o.Message,
			Title:    o.Title,
			TicketID: o.TicketID,
		})
	}
	return out
}

func toHTTPService(s entity.Service) Service {
	return Service{
		DocumentID:    s.DocumentID,
		Name:          s.Name,
		Group:         s.Group,
		Item:          s.Item,
		UrgencyHigh:   s.UrgencyHigh,
		UrgencyMedium: s.UrgencyMedium,
		UrgencyLow:    s.UrgencyLow,
		Responsible:   s.Responsible,
		Team:          s.Team,
		Impact:        s.Impact,
		KeyUser:       s.KeyUser,
	}
}

func parseOutcomeFilter(statusRaw string) (usecase.OutcomeFilter, error) {
	filter := usecase.OutcomeFilter{}

	for _, value := range strings.Split(statusRaw, ",") {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch strings.ToUpper(value) {
		case string(entity.OutcomeStatusSuccess):
			filter.Statuses = append(filter.Statuses, entity.OutcomeStatusSuccess)
		case string(entity.OutcomeStatusFailed):
			filter.Statuses = append(filter.Statuses, entity.OutcomeStatusFailed)
		default:
			return filter, pkgerror.NewInvalidInput(errors.New("invalid status filter"))
		}
	}

	return filter, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.EqualFold(mediaType, "multipart/form-data")
}

func parseMultipart(r *http.Request) (*multipart.Form, error) {
	if !isMultipart(r) {
		return nil, pkgerror.NewInvalidInput(errors.New("multipart/form-data body is required"))
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerror.NewInvalidFields(err, map[string]string{sheetField: "file is too large"})
		}
		return nil, pkgerror.NewInvalidFormat()
	}

	return r.MultipartForm, nil
}

func sheetFile(form *multipart.Form) (multipart.File, string, error) {
	files := form.File[sheetField]
	if len(files) == 0 {
		return nil, "", pkgerror.NewInvalidFields(
			errors.New("spreadsheet is required"), map[string]string{sheetField: "is required"})
	}

	file, err := files[0].Open()
	if err != nil {
		return nil, "", pkgerror.NewServer(err)
	}

	return file, files[0].Filename, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func batchRequestFromForm(form *multipart.Form) (BatchRequest, error) {
	req := BatchRequest{
		Requester:    formValue(form, "requester"),
		Title:        formValue(form, "title"),
		Description:  formValue(form, "description"),
		Phone:        formValue(form, "phone"),
		ServiceID:    formValue(form, "service_id"),
		AttendedUser: formValue(form, "attended_user"),
	}

	fields := map[string]string{}
	var err error
	if req.Count, err = formInt(form, "count"); err != nil {
		fields["count"] = "must be a number"
	}
	if req.Start, err = formInt(form, "start"); err != nil {
		fields["start"] = "must be a number"
	}
	if req.SkipHeader, err = formBool(form, "skip_header"); err != nil {
		fields["skip_header"] = "must be true or false"
	}
	if len(fields) > 0 {
		return req, pkgerror.NewInvalidFields(errors.New("invalid form fields"), fields)
	}

	return req, pkgrouter.Validate(req)
}

func formInt(form *multipart.Form, key string) (int, error) {
	raw := formValue(form, key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// formBool returns nil when the field is absent.
func formBool(form *multipart.Form, key string) (*bool, error) {
	var value bool
	switch raw := strings.ToLower(formValue(form, key)); raw {
	case "":
		return nil, nil
	case "on", "sim":
		value = true
	case "off", "nao", "não":
		value = false
	default:
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		value = parsed
	}
	return &value, nil
}
