package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

type UserService struct {
	userRepo    ports.UserRepository
	requestRepo ports.RequestRepository
	access      *AccessService
}

var _ ports.UserService = (*UserService)(nil)

func NewUserService(userRepo ports.UserRepository, requestRepo ports.RequestRepository, access *AccessService) *UserService {
	return &UserService{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		access:      access,
	}
}

// Register creates the caller's user record. The payload email must match
// the verified token email; role and status are never taken from the client.
func (s *UserService) Register(ctx context.Context, verifiedEmail string, in ports.RegisterInput) (*domain.User, error) {
	if in.Email != verifiedEmail {
		return nil, domain.ErrForbidden
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if in.District == "" || in.Upazila == "" {
		return nil, fmt.Errorf("%w: district and upazila are required", domain.ErrInvalidInput)
	}
	if !domain.ValidBloodGroup(in.BloodGroup) {
		return nil, fmt.Errorf("%w: unknown blood group", domain.ErrInvalidInput)
	}

	user := domain.User{
		Name:       in.Name,
		Email:      in.Email,
		BloodGroup: in.BloodGroup,
		District:   in.District,
		Upazila:    in.Upazila,
		Avatar:     in.Avatar,
		Role:       domain.RoleDonor,
		Status:     domain.UserActive,
		CreatedAt:  time.Now().UTC(),
	}

	return s.userRepo.Create(ctx, user)
}

func (s *UserService) Profile(ctx context.Context, email string) (*domain.User, error) {
	return s.access.Authorize(ctx, email, CapSelf)
}

func (s *UserService) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.User, error) {
	if _, err := s.access.Authorize(ctx, email, CapSelf); err != nil {
		return nil, err
	}
	if upd.BloodGroup != nil && !domain.ValidBloodGroup(*upd.BloodGroup) {
		return nil, fmt.Errorf("%w: unknown blood group", domain.ErrInvalidInput)
	}
	if upd.Name != nil && *upd.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
	}
	return s.userRepo.UpdateProfile(ctx, email, upd)
}

func (s *UserService) Role(ctx context.Context, email string) (domain.Role, error) {
	user, err := s.access.Authorize(ctx, email, CapSelf)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *UserService) ListUsers(ctx context.Context, callerEmail string, status domain.UserStatus, page domain.Page) (*ports.UserPage, error) {
	if _, err := s.access.Authorize(ctx, callerEmail, CapAdmin); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	page = page.Normalize()
	users, total, err := s.userRepo.List(ctx, status, page)
	if err != nil {
		return nil, err
	}
	return &ports.UserPage{
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
		Users: users,
	}, nil
}

func (s *UserService) SetRole(ctx context.Context, callerEmail, userID string, role domain.Role) error {
	if _, err := s.access.Authorize(ctx, callerEmail, CapAdmin); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role", domain.ErrInvalidInput)
	}
	return s.userRepo.SetRole(ctx, userID, role)
}

func (s *UserService) SetStatus(ctx context.Context, callerEmail, userID string, status domain.UserStatus) error {
	if _, err := s.access.Authorize(ctx, callerEmail, CapAdmin); err != nil {
		return err
	}
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	return s.userRepo.SetStatus(ctx, userID, status)
}

// SearchDonors is public: no caller identity involved.
func (s *UserService) SearchDonors(ctx context.Context, filter domain.DonorFilter) (*ports.DonorSearchResult, error) {
	if filter.BloodGroup != "" && !domain.ValidBloodGroup(filter.BloodGroup) {
		return nil, fmt.Errorf("%w: unknown blood group", domain.ErrInvalidInput)
	}
	donors, total, err := s.userRepo.SearchDonors(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.DonorSearchResult{Total: total, Donors: donors}, nil
}

func (s *UserService) Stats(ctx context.Context, callerEmail string) (*ports.Stats, error) {
	if _, err := s.access.Authorize(ctx, callerEmail, CapTriage); err != nil {
		return nil, err
	}

	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ports.Stats{
		TotalUsers: totalUsers,
		Pending:    byStatus[domain.RequestPending],
		InProgress: byStatus[domain.RequestInProgress],
		Done:       byStatus[domain.RequestDone],
		Canceled:   byStatus[domain.RequestCanceled],
	}
	stats.TotalRequests = stats.Pending + stats.InProgress + stats.Done + stats.Canceled
	return stats, nil
}
