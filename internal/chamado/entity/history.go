package entity

import "time"

// TicketCreatedEvent is published after Fluig confirms a new chamado.
type TicketCreatedEvent struct {
	EventID   string
	TicketID  string
	Kind      TicketKind
	Requester string
	Title     string
	BatchID   string // empty for single tickets
	Row       int
	CreatedAt time.Time
}

// HistoryEntry is a created ticket kept for the requester's history view.
type HistoryEntry struct {
	ID        string
	TicketID  string
	Kind      TicketKind
	Requester string
	Title     string
	BatchID   string
	Row       int
	CreatedAt time.Time
}
