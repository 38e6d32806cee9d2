package mocks

import (
	"context"
	"sync"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

// MockDonationEventPublisher implements ports.DonationEventPublisher for
// testing the outbox relay without a real RabbitMQ connection.
type MockDonationEventPublisher struct {
	mu sync.RWMutex

	// Track published events for verification
	PublishedEvents []ports.DonationEvent

	// Error injection for testing error scenarios
	PublishError error

	// Track number of calls
	PublishCallCount int
}

// Ensure MockDonationEventPublisher implements ports.DonationEventPublisher
// at compile time.
var _ ports.DonationEventPublisher = (*MockDonationEventPublisher)(nil)

func NewMockDonationEventPublisher() *MockDonationEventPublisher {
	return &MockDonationEventPublisher{
		PublishedEvents: make([]ports.DonationEvent, 0),
	}
}

func (m *MockDonationEventPublisher) PublishDonationEvent(ctx context.Context, evt ports.DonationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}

	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of all events that were published.
func (m *MockDonationEventPublisher) GetPublishedEvents() []ports.DonationEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.DonationEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

// Reset clears all tracking data.
func (m *MockDonationEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedEvents = make([]ports.DonationEvent, 0)
	m.PublishError = nil
	m.PublishCallCount = 0
}
