package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/chamado/sheet"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
)

// LoadSheet parses an upload and replaces the requester row store with it.
func (u *Usecase) LoadSheet(ctx context.Context, requester, filename string, r io.Reader) (SheetResult, error) {
	requester = strings.TrimSpace(requester)
	if requester == "" {
		return SheetResult{}, pkgerror.NewInvalidInput(entity.ErrEmptyRequester)
	}

	rows, err := sheet.Parse(ctx, r, filename)
	if err != nil {
		if errors.Is(err, sheet.ErrUnsupportedFormat) || errors.Is(err, sheet.ErrNoRows) {
			return SheetResult{}, pkgerror.NewInvalidInput(err)
		}
		return SheetResult{}, pkgerror.NewInvalidInput(fmt.Errorf("invalid spreadsheet: %w", err))
	}

	if err := u.rows.Save(ctx, requester, rows); err != nil {
		return SheetResult{}, normalizeErr(err)
	}

	numbers := rows.Numbers()
	slog.InfoContext(ctx, "spreadsheet loaded", "file", filename, "rows", len(numbers))

	return SheetResult{Rows: len(numbers), FirstRow: numbers[0], LastRow: numbers[len(numbers)-1]}, nil
}

func (u *Usecase) ClearSheet(ctx context.Context, requester string) error {
	requester = strings.TrimSpace(requester)
	if requester == "" {
		return pkgerror.NewInvalidInput(entity.ErrEmptyRequester)
	}

	if err := u.rows.Delete(ctx, requester); err != nil {
		return normalizeErr(err)
	}

	return nil
}

func validateWindow(in BatchInput, needTemplate bool) error {
	var errs []error
	if strings.TrimSpace(in.Requester) == "" {
		errs = append(errs, entity.ErrEmptyRequester)
	}
	if needTemplate && strings.TrimSpace(in.Title) == "" {
		errs = append(errs, entity.ErrEmptyTitle)
	}
	if needTemplate && strings.TrimSpace(in.Description) == "" {
		errs = append(errs, entity.ErrEmptyDescription)
	}
	if in.Count < 1 {
		errs = append(errs, errors.New("count must be at least 1"))
	}
	if in.Start < 1 {
		errs = append(errs, errors.New("start must be at least 1"))
	}
	if err := errors.Join(errs...); err != nil {
		return pkgerror.NewInvalidInput(err)
	}
	return nil
}

// Preview shows the substituted title and description of the rows a batch would file.
func (u *Usecase) Preview(ctx context.Context, in BatchInput) (PreviewResult, error) {
	if err := validateWindow(in, false); err != nil {
		return PreviewResult{}, err
	}

	rows, err := u.rows.Load(ctx, strings.TrimSpace(in.Requester))
	if err != nil {
		return PreviewResult{}, mapStoreErr(err, "spreadsheet")
	}

	selected := selectRows(rows.Numbers(), in.SkipHeader, in.Start, in.Count)
	items := make([]PreviewItem, 0, len(selected))
	for _, n := range selected {
		row, _ := rows.Get(n)
		title, missingTitle := substitute(ctx, in.Title, row)
		desc, missingDesc := substitute(ctx, in.Description, row)
		items = append(items, PreviewItem{
			Row:            n,
			Title:          title,
			Description:    desc,
			MissingColumns: append(missingTitle, missingDesc...),
		})
	}

	return PreviewResult{TotalRows: rows.Len(), Items: items}, nil
}

// OpenBatch files one ticket per selected row of the requester spreadsheet.
//
// Rows are filed one at a time and a failing row never stops the batch. Setup
// failures (no spreadsheet, empty selection) still produce a report with a single
// failed outcome so the caller always gets a report back.
func (u *Usecase) OpenBatch(ctx context.Context, in BatchInput) (entity.BatchReport, error) {
	if err := validateWindow(in, true); err != nil {
		return entity.BatchReport{}, err
	}
	if u.rows == nil || u.reports == nil {
		return entity.BatchReport{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	// the batch is not abandoned half way when the client goes away
	ctx = context.WithoutCancel(ctx)

	requester := strings.TrimSpace(in.Requester)
	report := entity.BatchReport{
		ID:        u.id.Generate(),
		Requester: requester,
		StartedAt: u.clock.Now(),
	}

	rows, err := u.rows.Load(ctx, requester)
	switch {
	case err != nil:
		msg := "failed to load spreadsheet rows: " + err.Error()
		if errors.Is(err, pkgerror.ErrNotFound) {
			msg = "no spreadsheet loaded for " + requester
		}
		slog.WarnContext(ctx, "batch aborted", "batch_id", report.ID, "error", err)
		report.Record(entity.RowOutcome{Row: 0, Message: msg})
	default:
		u.runBatch(ctx, &report, rows, in)
	}

	report.EndedAt = u.clock.Now()
	if err := u.reports.CreateReport(ctx, report); err != nil {
		slog.ErrorContext(ctx, "failed to store batch report", "batch_id", report.ID, "error", err)
	}

	slog.InfoContext(ctx, "batch finished",
		"batch_id", report.ID,
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
	)

	return report, nil
}

func (u *Usecase) runBatch(ctx context.Context, report *entity.BatchReport, rows *entity.RowStore, in BatchInput) {
	selected := selectRows(rows.Numbers(), in.SkipHeader, in.Start, in.Count)
	if len(selected) == 0 {
		report.Record(entity.RowOutcome{
			Row:     in.Start,
			Message: fmt.Sprintf("no rows to process from row %d", in.Start),
		})
		return
	}

	report.Processed = len(selected)
	for _, n := range selected {
		row, _ := rows.Get(n)
		title, _ := substitute(ctx, in.Title, row)
		desc, _ := substitute(ctx, in.Description, row)

		ticket, err := u.openTicket(ctx, entity.TicketRequest{
			Title:        strings.TrimSpace(title),
			Description:  strings.TrimSpace(desc),
			Requester:    report.Requester,
			Phone:        in.Phone,
			ServiceID:    strings.TrimSpace(in.ServiceID),
			AttendedUser: in.AttendedUser,
		}, report.ID, n)
		if err != nil {
			slog.WarnContext(ctx, "row failed", "batch_id", report.ID, "row", n, "error", err)
			report.Record(entity.RowOutcome{Row: n, Message: err.Error(), Title: title})
			continue
		}

		report.Record(entity.RowOutcome{
			Row:      n,
			Success:  true,
			Message:  "ticket created",
			Title:    ticket.Title,
			TicketID: ticket.ID,
		})
	}
}

// OpenBatchFromUpload loads the upload, runs the batch and discards the rows afterwards.
func (u *Usecase) OpenBatchFromUpload(ctx context.Context, in BatchInput, filename string, r io.Reader) (entity.BatchReport, error) {
	if err := validateWindow(in, true); err != nil {
		return entity.BatchReport{}, err
	}

	if _, err := u.LoadSheet(ctx, in.Requester, filename, r); err != nil {
		return entity.BatchReport{}, err
	}
	defer func() {
		if err := u.ClearSheet(context.WithoutCancel(ctx), in.Requester); err != nil {
			slog.WarnContext(ctx, "failed to discard spreadsheet rows", "error", err)
		}
	}()

	return u.OpenBatch(ctx, in)
}
