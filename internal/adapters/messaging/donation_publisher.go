// Package messaging delivers donation lifecycle events to RabbitMQ for
// downstream consumers (notification workers, audit).
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/config"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

// DonationPublisher implements ports.DonationEventPublisher on a durable
// RabbitMQ queue. The relay is the only producer; consumers dedupe on the
// event id carried in MessageId, so redelivery after a relay restart is
// harmless.
type DonationPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	cb    *gobreaker.CircuitBreaker
}

var _ ports.DonationEventPublisher = (*DonationPublisher)(nil)

func NewDonationPublisher(amqpURL, queueName string) (*DonationPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Durable queue so claimed/created events survive a broker restart;
	// declare is idempotent.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	return &DonationPublisher{
		conn:  conn,
		ch:    ch,
		queue: queueName,
		cb:    config.NewCircuitBreaker("RabbitMQ-Publisher"),
	}, nil
}

func (p *DonationPublisher) PublishDonationEvent(ctx context.Context, evt ports.DonationEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.ch.PublishWithContext(ctx,
			"",      // default exchange
			p.queue, // routing key == queue name
			false,   // mandatory
			false,   // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    evt.EventID,
				Type:         evt.Type,
				Timestamp:    evt.OccurredAt,
				Body:         body,
			})
	})
	return err
}

func (p *DonationPublisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
