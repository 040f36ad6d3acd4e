package store

import (
	"context"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/chamado/usecase"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
)

// InMemoryStore keeps batch reports and ticket history for the process lifetime.
// When more than maxReports reports or maxHistory history entries are stored
// the oldest ones are dropped. A limit of zero or less means unbounded.
type InMemoryStore struct {
	mu           sync.RWMutex
	maxReports   int
	maxHistory   int
	order        []string
	reports      map[string]*reportRecord
	history      map[string][]entity.HistoryEntry
	historyOrder []historyKey
	tickets      map[string]struct{}
}

type historyKey struct {
	ticketID  string
	requester string
}

type reportRecord struct {
	mu     sync.RWMutex
	report entity.BatchReport
}

func NewInMemoryStore(maxReports, maxHistory int) *InMemoryStore {
	return &InMemoryStore{
		maxReports: maxReports,
		maxHistory: maxHistory,
		reports:    make(map[string]*reportRecord),
		history:    make(map[string][]entity.HistoryEntry),
		tickets:    make(map[string]struct{}),
	}
}

func (s *InMemoryStore) CreateReport(ctx context.Context, report entity.BatchReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		return pkgerror.NewBusiness("batch report already exists", pkgerror.CodeConflict)
	}

	report.Outcomes = slices.Clone(report.Outcomes)
	s.reports[report.ID] = &reportRecord{report: report}
	s.order = append(s.order, report.ID)

	if s.maxReports > 0 && len(s.order) > s.maxReports {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.reports, oldest)
	}

	return nil
}

func (s *InMemoryStore) GetReport(ctx context.Context, batchID string) (entity.BatchReport, error) {
	rec, err := s.get(batchID)
	if err != nil {
		return entity.BatchReport{}, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	report := rec.report
	report.Outcomes = slices.Clone(rec.report.Outcomes)

	return report, nil
}

func (s *InMemoryStore) ListOutcomes(ctx context.Context, batchID string, filter usecase.OutcomeFilter, page, pageSize int) ([]entity.RowOutcome, int, entity.BatchReport, error) {
	rec, err := s.get(batchID)
	if err != nil {
		return nil, 0, entity.BatchReport{}, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	total := 0
	start, end := pageBounds(page, pageSize)
	items := make([]entity.RowOutcome, 0, min(max(pageSize, 0), len(rec.report.Outcomes)))

	for _, o := range rec.report.Outcomes {
		if !filter.Matches(o) {
			continue
		}

		if total >= start && total < end {
			items = append(items, o)
		}
		total++
	}

	summary := rec.report
	summary.Outcomes = nil

	return items, total, summary, nil
}

// AddHistory records a created ticket once; a repeated ticket id is a conflict.
func (s *InMemoryStore) AddHistory(ctx context.Context, entry entity.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tickets[entry.TicketID]; exists {
		return pkgerror.NewBusiness("ticket already recorded", pkgerror.CodeConflict)
	}

	key := strings.ToLower(entry.Requester)
	s.tickets[entry.TicketID] = struct{}{}
	s.history[key] = append(s.history[key], entry)
	s.historyOrder = append(s.historyOrder, historyKey{ticketID: entry.TicketID, requester: key})

	if s.maxHistory > 0 && len(s.historyOrder) > s.maxHistory {
		oldest := s.historyOrder[0]
		s.historyOrder = s.historyOrder[1:]
		delete(s.tickets, oldest.ticketID)

		// entries of one requester are appended in global order, so the oldest is first
		if rest := s.history[oldest.requester][1:]; len(rest) > 0 {
			s.history[oldest.requester] = rest
		} else {
			delete(s.history, oldest.requester)
		}
	}

	return nil
}

// ListHistory returns up to limit entries of the requester, newest first.
func (s *InMemoryStore) ListHistory(ctx context.Context, requester string, limit int) ([]entity.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[strings.ToLower(requester)]
	out := make([]entity.HistoryEntry, 0, min(len(entries), max(limit, 0)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}

	return out, nil
}

// pageBounds returns the [start, end) window of a 1-based page. Pages past
// the addressable range yield an empty window.
func pageBounds(page, pageSize int) (int, int) {
	if page < 1 || pageSize < 1 {
		return 0, 0
	}
	if page-1 > (math.MaxInt-pageSize)/pageSize {
		return math.MaxInt, math.MaxInt
	}

	start := (page - 1) * pageSize
	return start, start + pageSize
}

func (s *InMemoryStore) get(batchID string) (*reportRecord, error) {
	s.mu.RLock()
	rec, ok := s.reports[batchID]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return rec, nil
}
