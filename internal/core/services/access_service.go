package services

import (
	"context"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

// Capability names what an operation requires of the caller.
type Capability int

const (
	// CapSelf: any registered user, blocked or not. Covers reads and
	// operations whose ownership rules live in the service itself.
	CapSelf Capability = iota
	// CapCreateRequest: registered and not blocked.
	CapCreateRequest
	// CapTriage: admin or volunteer.
	CapTriage
	// CapAdmin: admin only.
	CapAdmin
)

// AccessService is the single source of truth for permissions. The verified
// email is the only fact taken from the credential; role and status are
// re-resolved from the user directory on every call.
type AccessService struct {
	userRepo ports.UserRepository
}

func NewAccessService(userRepo ports.UserRepository) *AccessService {
	return &AccessService{userRepo: userRepo}
}

// Authorize resolves the caller and checks the capability. It returns
// domain.ErrNotFound when the identity was never registered and
// domain.ErrForbidden when role or status does not satisfy the capability.
func (s *AccessService) Authorize(ctx context.Context, email string, cap Capability) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	switch cap {
	case CapSelf:
		return user, nil
	case CapCreateRequest:
		if user.Status == domain.UserBlocked {
			return nil, domain.ErrForbidden
		}
		return user, nil
	case CapTriage:
		if user.Role == domain.RoleAdmin || user.Role == domain.RoleVolunteer {
			return user, nil
		}
		return nil, domain.ErrForbidden
	case CapAdmin:
		if user.Role == domain.RoleAdmin {
			return user, nil
		}
		return nil, domain.ErrForbidden
	}
	return nil, domain.ErrForbidden
}
