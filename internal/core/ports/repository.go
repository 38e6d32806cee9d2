package ports

import (
	"context"
	"time"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
)

type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrEmailTaken when the
	// unique email index rejects the insert.
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.User, error)
	SetRole(ctx context.Context, id string, role domain.Role) error
	SetStatus(ctx context.Context, id string, status domain.UserStatus) error
	// List returns one page of users plus the total count matching the
	// status filter (empty filter matches all).
	List(ctx context.Context, status domain.UserStatus, page domain.Page) ([]domain.User, int64, error)
	// SearchDonors always scopes to role=donor, status=active.
	SearchDonors(ctx context.Context, filter domain.DonorFilter) ([]domain.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

type RequestRepository interface {
	Create(ctx context.Context, req domain.DonationRequest) (*domain.DonationRequest, error)
	FindByID(ctx context.Context, id string) (*domain.DonationRequest, error)
	// List returns one page ordered by createdAt descending plus the total
	// count matching the filter.
	List(ctx context.Context, filter domain.RequestFilter, page domain.Page) ([]domain.DonationRequest, int64, error)
	Update(ctx context.Context, id string, upd domain.RequestUpdate) error
	Delete(ctx context.Context, id string) error
	// Claim atomically moves a pending request to inprogress, recording the
	// donor. Returns false when no document matched (missing or not
	// pending) so exactly one concurrent claimer can win.
	Claim(ctx context.Context, id, donorName, donorEmail string) (bool, error)
	// CloseByOwner atomically moves an in-progress request owned by
	// requesterEmail to done or canceled. Returns false when no document
	// matched.
	CloseByOwner(ctx context.Context, id, requesterEmail string, status domain.RequestStatus) (bool, error)
	// SetStatus is the admin/volunteer override: any of the four enum
	// values, no prior-state constraint.
	SetStatus(ctx context.Context, id string, status domain.RequestStatus) error
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error)
}

// OutboxEvent is a pending lifecycle event awaiting relay to the broker.
type OutboxEvent struct {
	ID          string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type OutboxRepository interface {
	Append(ctx context.Context, evt OutboxEvent) error
	FetchUnprocessed(ctx context.Context, limit int64) ([]OutboxEvent, error)
	MarkProcessed(ctx context.Context, id string) error
}
