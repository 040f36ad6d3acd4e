package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
)

type Handler interface {
	Handle(ctx context.Context, event entity.TicketCreatedEvent) error
}

const defaultMaxSeen = 10_000

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
	// MaxSeen bounds how many event ids are remembered for deduplication.
	MaxSeen int
}

// TicketConsumer drains the bus with a fixed pool of workers. Events are
// handled at most once per event id among the last MaxSeen ids and failed
// handlers are retried with exponential backoff.
type TicketConsumer struct {
	bus         *Bus
	handler     Handler
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        *seenSet
	wg          sync.WaitGroup
}

// seenSet remembers the most recent event ids, forgetting the oldest first.
type seenSet struct {
	mu    sync.Mutex
	limit int
	ids   map[string]struct{}
	order []string
}

func newSeenSet(limit int) *seenSet {
	return &seenSet{limit: limit, ids: make(map[string]struct{})}
}

// add reports whether id was not seen before.
func (s *seenSet) add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false
	}

	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) > s.limit {
		delete(s.ids, s.order[0])
		s.order = s.order[1:]
	}

	return true
}

func NewTicketConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *TicketConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 2
	}

	maxRetries := max(cfg.MaxRetries, 0)

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	maxSeen := cfg.MaxSeen
	if maxSeen <= 0 {
		maxSeen = defaultMaxSeen
	}

	return &TicketConsumer{
		bus:         bus,
		handler:     handler,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		seen:        newSeenSet(maxSeen),
	}
}

func (c *TicketConsumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

// Stop closes the bus and waits for queued events to be handled.
func (c *TicketConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *TicketConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *TicketConsumer) processEvent(event entity.TicketCreatedEvent) {
	if c.handler == nil {
		return
	}

	if event.EventID != "" {
		if !c.seen.add(event.EventID) {
			slog.Info("skip duplicate ticket event", "event_id", event.EventID, "ticket_id", event.TicketID)
			return
		}
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.handler.Handle(context.Background(), event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.Error("failed to handle ticket event after retries", "event_id", event.EventID, "ticket_id", event.TicketID, "error", err)
			return
		}

		time.Sleep(backoff)
		backoff *= 2
	}
}
