package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

// MockOutboxRepository implements ports.OutboxRepository in memory.
type MockOutboxRepository struct {
	mu     sync.Mutex
	events []ports.OutboxEvent

	AppendError error
	FetchError  error
}

// Ensure MockOutboxRepository implements ports.OutboxRepository at compile time.
var _ ports.OutboxRepository = (*MockOutboxRepository)(nil)

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Append(ctx context.Context, evt ports.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendError != nil {
		return m.AppendError
	}
	m.events = append(m.events, evt)
	return nil
}

func (m *MockOutboxRepository) FetchUnprocessed(ctx context.Context, limit int64) ([]ports.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchError != nil {
		return nil, m.FetchError
	}

	out := make([]ports.OutboxEvent, 0)
	for _, evt := range m.events {
		if evt.ProcessedAt == nil {
			out = append(out, evt)
			if int64(len(out)) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkProcessed(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id {
			now := time.Now().UTC()
			m.events[i].ProcessedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

// Events returns a copy of everything appended so far.
func (m *MockOutboxRepository) Events() []ports.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Unprocessed counts events not yet marked processed.
func (m *MockOutboxRepository) Unprocessed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, evt := range m.events {
		if evt.ProcessedAt == nil {
			n++
		}
	}
	return n
}
