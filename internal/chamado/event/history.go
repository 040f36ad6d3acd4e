package event

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkguid"
)

type HistoryStore interface {
	AddHistory(ctx context.Context, entry entity.HistoryEntry) error
}

// HistoryRecorder writes every created ticket to the requester history.
type HistoryRecorder struct {
	store HistoryStore
	id    pkguid.StringID
}

func NewHistoryRecorder(store HistoryStore, id pkguid.StringID) *HistoryRecorder {
	return &HistoryRecorder{store: store, id: id}
}

func (h *HistoryRecorder) Handle(ctx context.Context, event entity.TicketCreatedEvent) error {
	if event.TicketID == "" {
		return errors.New("missing ticket id")
	}

	err := h.store.AddHistory(ctx, entity.HistoryEntry{
		ID:        h.id.Generate(),
		TicketID:  event.TicketID,
		Kind:      event.Kind,
		Requester: event.Requester,
		Title:     event.Title,
		BatchID:   event.BatchID,
		Row:       event.Row,
		CreatedAt: event.CreatedAt,
	})
	// a replayed event already has its entry
	var perr *pkgerror.Error
	if errors.As(err, &perr) && perr.Code() == pkgerror.CodeConflict {
		return nil
	}
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "ticket recorded in history", "ticket_id", event.TicketID, "requester", event.Requester)
	return nil
}
