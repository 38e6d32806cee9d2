// Package mocks provides hand-written implementations of the port
// interfaces for testing. Services depend on the ports, so swapping the
// Mongo adapters for these in-memory versions exercises the same code paths
// without a running store.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

// MockUserRepository implements ports.UserRepository with an in-memory
// slice. Insertion order stands in for the store's default ordering.
type MockUserRepository struct {
	mu     sync.RWMutex
	users  []*domain.User
	nextID int

	// Call tracking for verification
	FindByEmailCalls []string
	CreateCalls      []domain.User

	// Error injection for testing error scenarios
	CreateError      error
	FindByEmailError error
	ListError        error
}

// Ensure MockUserRepository implements ports.UserRepository at compile time.
var _ ports.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// SeedUser adds a user to the mock repository for test setup, assigning an
// id when the record has none.
func (m *MockUserRepository) SeedUser(user domain.User) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		m.nextID++
		user.ID = fmt.Sprintf("user-%d", m.nextID)
	}
	m.users = append(m.users, &user)
	return user
}

func (m *MockUserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, user)

	if m.CreateError != nil {
		return nil, m.CreateError
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}

	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	m.users = append(m.users, &user)
	out := user
	return &out, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	m.FindByEmailCalls = append(m.FindByEmailCalls, email)
	err := m.FindByEmailError
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email != email {
			continue
		}
		if upd.Name != nil {
			user.Name = *upd.Name
		}
		if upd.BloodGroup != nil {
			user.BloodGroup = *upd.BloodGroup
		}
		if upd.District != nil {
			user.District = *upd.District
		}
		if upd.Upazila != nil {
			user.Upazila = *upd.Upazila
		}
		if upd.Avatar != nil {
			user.Avatar = *upd.Avatar
		}
		out := *user
		return &out, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			user.Role = role
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockUserRepository) SetStatus(ctx context.Context, id string, status domain.UserStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			user.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, status domain.UserStatus, page domain.Page) ([]domain.User, int64, error) {
	if m.ListError != nil {
		return nil, 0, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]domain.User, 0)
	for _, user := range m.users {
		if status == "" || user.Status == status {
			matched = append(matched, *user)
		}
	}
	total := int64(len(matched))

	start := page.Skip()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *MockUserRepository) SearchDonors(ctx context.Context, filter domain.DonorFilter) ([]domain.User, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]domain.User, 0)
	for _, user := range m.users {
		if user.Role != domain.RoleDonor || user.Status != domain.UserActive {
			continue
		}
		if filter.BloodGroup != "" && user.BloodGroup != filter.BloodGroup {
			continue
		}
		if filter.District != "" && user.District != filter.District {
			continue
		}
		if filter.Upazila != "" && user.Upazila != filter.Upazila {
			continue
		}
		matched = append(matched, *user)
	}
	return matched, int64(len(matched)), nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

// Reset clears all stored data and call tracking.
func (m *MockUserRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = nil
	m.nextID = 0
	m.FindByEmailCalls = nil
	m.CreateCalls = nil
	m.CreateError = nil
	m.FindByEmailError = nil
	m.ListError = nil
}
