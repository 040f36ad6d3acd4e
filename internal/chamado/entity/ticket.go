package entity

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyDescription = errors.New("description is required")
	ErrEmptyRequester   = errors.New("requester is required")
)

// TicketRequest is everything needed to open one chamado.
type TicketRequest struct {
	Title        string
	Description  string
	Requester    string // e-mail or badge of the person opening the ticket
	Phone        string
	ServiceID    string // catalog document id; empty for a normal ticket
	AttendedUser string
}

// Kind reports whether the request files a classified or a normal ticket.
func (t TicketRequest) Kind() TicketKind {
	if strings.TrimSpace(t.ServiceID) != "" {
		return TicketKindClassified
	}
	return TicketKindNormal
}

func (t TicketRequest) Validate() error {
	var errs []error
	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, ErrEmptyTitle)
	}
	if strings.TrimSpace(t.Description) == "" {
		errs = append(errs, ErrEmptyDescription)
	}
	if strings.TrimSpace(t.Requester) == "" {
		errs = append(errs, ErrEmptyRequester)
	}
	return errors.Join(errs...)
}

// Ticket is a chamado created in Fluig.
type Ticket struct {
	ID        string // Fluig processInstanceId
	Kind      TicketKind
	Title     string
	Requester string
}

// TicketDetails is the Fluig workflow view of an opened chamado. Fluig owns
// the shape of Raw; it is passed through untouched.
type TicketDetails struct {
	ID  string
	Raw json.RawMessage
}
