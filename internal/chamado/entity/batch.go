package entity

import "time"

// RowOutcome is the result of filing the ticket for one row.
type RowOutcome struct {
	Row      int
	Success  bool
	Message  string
	Title    string
	TicketID string
}

func (o RowOutcome) Status() OutcomeStatus {
	if o.Success {
		return OutcomeStatusSuccess
	}
	return OutcomeStatusFailed
}

// BatchReport aggregates one batch run.
type BatchReport struct {
	ID        string
	Requester string
	Processed int
	Succeeded int
	Failed    int
	Outcomes  []RowOutcome
	StartedAt time.Time
	EndedAt   time.Time
}

// Record appends an outcome and updates the counters.
func (b *BatchReport) Record(o RowOutcome) {
	b.Outcomes = append(b.Outcomes, o)
	if o.Success {
		b.Succeeded++
	} else {
		b.Failed++
	}
}
