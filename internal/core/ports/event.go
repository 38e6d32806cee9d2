package ports

import (
	"context"
	"time"
)

const (
	EventRequestCreated = "donation.request.created"
	EventRequestClaimed = "donation.request.claimed"
)

// DonationEvent is the payload relayed to the broker when a request is
// created or claimed.
type DonationEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	RequestID      string    `json:"request_id"`
	RequesterEmail string    `json:"requester_email"`
	DonorEmail     string    `json:"donor_email,omitempty"`
	BloodGroup     string    `json:"blood_group"`
	District       string    `json:"district"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type DonationEventPublisher interface {
	PublishDonationEvent(ctx context.Context, evt DonationEvent) error
}
