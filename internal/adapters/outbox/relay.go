package outbox

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/config"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

const (
	// Event processing timeouts
	batchProcessTimeout = 60 * time.Second
	pollInterval        = 5 * time.Second

	// Health check configuration
	healthCheckStaleThreshold = 5 * time.Minute

	// Batch processing limits
	maxEventsPerBatch = 100
)

// Relay drains unprocessed outbox events from the document store and
// publishes them to RabbitMQ. The store has no notification channel, so the
// relay polls; delivery is at-least-once and consumers dedupe on event id.
type Relay struct {
	outboxRepo ports.OutboxRepository
	publisher  ports.DonationEventPublisher
	storeCB    *gobreaker.CircuitBreaker

	// Written by the Start loop, read by the health HTTP goroutine.
	lastProcessed atomic.Int64 // unix nanoseconds
	healthy       atomic.Bool
}

// NewRelay creates a new outbox relay polling the given repository.
func NewRelay(outboxRepo ports.OutboxRepository, publisher ports.DonationEventPublisher) *Relay {
	r := &Relay{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		storeCB:    config.NewCircuitBreaker("Relay-MongoDB"),
	}
	r.lastProcessed.Store(time.Now().UnixNano())
	r.healthy.Store(true)
	return r
}

// IsHealthy returns true if the relay process is alive and responding.
// This is designed for Liveness probes - keeps checks simple to avoid false
// positives.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady returns true if the relay can process events (for readiness probes).
func (r *Relay) IsReady() bool {
	if r.storeCB.State() == gobreaker.StateOpen {
		return false
	}
	last := time.Unix(0, r.lastProcessed.Load())
	if time.Since(last) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy.Load()
}

// Start begins polling for outbox events and publishing them.
// This is a blocking call that runs until the context is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	log.Printf("outbox relay: polling every %s for unprocessed events...", pollInterval)

	// Process any backlog on startup (catch-up)
	if err := r.processUnprocessedEvents(ctx); err != nil {
		log.Printf("outbox relay: error processing startup backlog: %v", err)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("outbox relay: shutting down...")
			return ctx.Err()

		case <-ticker.C:
			if err := r.processUnprocessedEvents(ctx); err != nil {
				log.Printf("outbox relay: error in periodic processing: %v", err)
				r.healthy.Store(false)
				continue
			}
			r.lastProcessed.Store(time.Now().UnixNano())
			r.healthy.Store(true)
		}
	}
}

// processUnprocessedEvents publishes one batch of pending events, oldest
// first. A publish failure stops the batch so ordering is preserved on
// retry.
func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	eventsAny, err := r.storeCB.Execute(func() (interface{}, error) {
		return r.outboxRepo.FetchUnprocessed(ctx, maxEventsPerBatch)
	})
	if err != nil {
		return err
	}
	events := eventsAny.([]ports.OutboxEvent)

	for _, evt := range events {
		var payload ports.DonationEvent
		if err := json.Unmarshal(evt.Payload, &payload); err != nil {
			log.Printf("outbox relay: invalid payload for event %s: %v", evt.ID, err)
			// Mark as processed anyway to avoid infinite retries on bad data
			if _, err := r.storeCB.Execute(func() (interface{}, error) {
				return nil, r.outboxRepo.MarkProcessed(ctx, evt.ID)
			}); err != nil {
				return err
			}
			continue
		}

		if err := r.publisher.PublishDonationEvent(ctx, payload); err != nil {
			return err
		}

		if _, err := r.storeCB.Execute(func() (interface{}, error) {
			return nil, r.outboxRepo.MarkProcessed(ctx, evt.ID)
		}); err != nil {
			return err
		}
	}

	return nil
}
