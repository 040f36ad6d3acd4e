package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
)

type testRows struct {
	mu      sync.Mutex
	stores  map[string]*entity.RowStore
	deleted []string
}

func newTestRows() *testRows {
	return &testRows{stores: make(map[string]*entity.RowStore)}
}

func (s *testRows) Save(ctx context.Context, requester string, rows *entity.RowStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[requester] = rows
	return nil
}

func (s *testRows) Load(ctx context.Context, requester string) (*entity.RowStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.stores[requester]
	if !ok {
		return nil, pkgerror.ErrNotFound
	}
	return rows, nil
}

func (s *testRows) Delete(ctx context.Context, requester string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, requester)
	s.deleted = append(s.deleted, requester)
	return nil
}

type testReports struct {
	mu      sync.Mutex
	reports map[string]entity.BatchReport
	history []entity.HistoryEntry
}

func newTestReports() *testReports {
	return &testReports{reports: make(map[string]entity.BatchReport)}
}

func (s *testReports) CreateReport(ctx context.Context, report entity.BatchReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = report
	return nil
}

func (s *testReports) ListOutcomes(ctx context.Context, batchID string, filter OutcomeFilter, page, pageSize int) ([]entity.RowOutcome, int, entity.BatchReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[batchID]
	if !ok {
		return nil, 0, entity.BatchReport{}, pkgerror.ErrNotFound
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	total := 0
	items := make([]entity.RowOutcome, 0, pageSize)
	for _, o := range report.Outcomes {
		if !filter.Matches(o) {
			continue
		}
		if total >= start && total < end {
			items = append(items, o)
		}
		total++
	}
	return items, total, report, nil
}

func (s *testReports) ListHistory(ctx context.Context, requester string, limit int) ([]entity.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.HistoryEntry
	for _, h := range s.history {
		if h.Requester == requester && len(out) < limit {
			out = append(out, h)
		}
	}
	return out, nil
}

// testFluig fails StartProcess for titles listed in failTitles.
type testFluig struct {
	mu         sync.Mutex
	colleagues map[string]entity.Colleague
	employees  map[string]entity.Employee
	services   map[string]entity.Service
	failTitles map[string]error
	started    []entity.ProcessStart
	nextID     int
	detailsErr error
}

func newTestFluig() *testFluig {
	return &testFluig{
		colleagues: map[string]entity.Colleague{
			"ana@uisa.com.br": {ID: "c-ana", Name: "Ana Souza", Mail: "ana@uisa.com.br"},
		},
		employees:  map[string]entity.Employee{},
		services:   map[string]entity.Service{},
		failTitles: map[string]error{},
		nextID:     1000,
	}
}

func (f *testFluig) FindColleague(ctx context.Context, user string) (entity.Colleague, error) {
	c, ok := f.colleagues[strings.ToLower(user)]
	if !ok {
		return entity.Colleague{}, pkgerror.ErrNotFound
	}
	return c, nil
}

func (f *testFluig) FindEmployee(ctx context.Context, user string) (entity.Employee, error) {
	e, ok := f.employees[strings.ToLower(user)]
	if !ok {
		return entity.Employee{}, pkgerror.ErrNotFound
	}
	return e, nil
}

func (f *testFluig) ServiceDetails(ctx context.Context, documentID string) (entity.Service, error) {
	s, ok := f.services[documentID]
	if !ok {
		return entity.Service{}, pkgerror.ErrNotFound
	}
	return s, nil
}

func (f *testFluig) StartProcess(ctx context.Context, payload entity.ProcessStart) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTitles[payload.FormFields["ds_titulo"]]; ok {
		return "", err
	}
	f.started = append(f.started, payload)
	f.nextID++
	return fmt.Sprintf("%d", f.nextID), nil
}

func (f *testFluig) TicketDetails(ctx context.Context, ticketID string) (entity.TicketDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailsErr != nil {
		return entity.TicketDetails{}, f.detailsErr
	}
	return entity.TicketDetails{ID: ticketID, Raw: json.RawMessage(`{"content":{"processInstanceId":` + ticketID + `}}`)}, nil
}

type testCatalog struct {
	services []entity.Service
	cached   map[string]entity.Service
	saved    []entity.Service
}

func (c *testCatalog) List(ctx context.Context) ([]entity.Service, error) {
	if c.services == nil {
		return nil, pkgerror.ErrNotFound
	}
	return c.services, nil
}

func (c *testCatalog) CachedDetails(ctx context.Context, documentID string) (entity.Service, error) {
	s, ok := c.cached[documentID]
	if !ok {
		return entity.Service{}, pkgerror.ErrNotFound
	}
	return s, nil
}

func (c *testCatalog) SaveDetails(ctx context.Context, service entity.Service) error {
	c.saved = append(c.saved, service)
	return nil
}

type testPublisher struct {
	mu     sync.Mutex
	events []entity.TicketCreatedEvent
}

func (p *testPublisher) Publish(ctx context.Context, event entity.TicketCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type testID struct {
	mu sync.Mutex
	n  int
}

func (t *testID) Generate() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n++
	return fmt.Sprintf("id-%d", t.n)
}

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

type testEnv struct {
	uc      *Usecase
	rows    *testRows
	reports *testReports
	fluig   *testFluig
	catalog *testCatalog
	events  *testPublisher
}

func newTestEnv() *testEnv {
	env := &testEnv{
		rows:    newTestRows(),
		reports: newTestReports(),
		fluig:   newTestFluig(),
		catalog: &testCatalog{cached: map[string]entity.Service{}},
		events:  &testPublisher{},
	}
	env.uc = New(Dependency{
		Rows:    env.rows,
		Reports: env.reports,
		Fluig:   env.fluig,
		Catalog: env.catalog,
		Events:  env.events,
		Clock:   fixedClock{now: time.Date(2026, 3, 9, 14, 5, 0, 0, time.UTC)},
		ID:      &testID{},
	})
	return env
}

// sampleRows is a header row plus four data rows; row 4 is blank in the sheet.
func sampleRows() *entity.RowStore {
	return entity.NewRowStore([]entity.Row{
		{Number: 1, Cells: map[string]string{"A": "Equipamento", "B": "Local"}},
		{Number: 2, Cells: map[string]string{"A": "Impressora", "B": "Sala 1"}},
		{Number: 3, Cells: map[string]string{"A": "Monitor", "B": "Sala 2"}},
		{Number: 5, Cells: map[string]string{"A": "Teclado"}},
		{Number: 6, Cells: map[string]string{"A": "Mouse", "B": "Sala 4"}},
	})
}
