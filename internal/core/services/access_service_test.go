package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/test/mocks"
)

func seedAccessUsers(repo *mocks.MockUserRepository) {
	repo.SeedUser(domain.User{Name: "Donor", Email: "donor@example.com", Role: domain.RoleDonor, Status: domain.UserActive})
	repo.SeedUser(domain.User{Name: "Blocked", Email: "blocked@example.com", Role: domain.RoleDonor, Status: domain.UserBlocked})
	repo.SeedUser(domain.User{Name: "Volunteer", Email: "volunteer@example.com", Role: domain.RoleVolunteer, Status: domain.UserActive})
	repo.SeedUser(domain.User{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.UserActive})
}

func TestAuthorizeCapabilityMatrix(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	seedAccessUsers(repo)
	access := NewAccessService(repo)

	tests := []struct {
		name    string
		email   string
		cap     Capability
		wantErr error
	}{
		{"self allows active donor", "donor@example.com", CapSelf, nil},
		{"self allows blocked donor", "blocked@example.com", CapSelf, nil},
		{"self allows admin", "admin@example.com", CapSelf, nil},

		{"create allows active donor", "donor@example.com", CapCreateRequest, nil},
		{"create denies blocked donor", "blocked@example.com", CapCreateRequest, domain.ErrForbidden},
		{"create allows volunteer", "volunteer@example.com", CapCreateRequest, nil},

		{"triage denies donor", "donor@example.com", CapTriage, domain.ErrForbidden},
		{"triage allows volunteer", "volunteer@example.com", CapTriage, nil},
		{"triage allows admin", "admin@example.com", CapTriage, nil},

		{"admin denies donor", "donor@example.com", CapAdmin, domain.ErrForbidden},
		{"admin denies volunteer", "volunteer@example.com", CapAdmin, domain.ErrForbidden},
		{"admin allows admin", "admin@example.com", CapAdmin, nil},

		{"unregistered identity", "ghost@example.com", CapSelf, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := access.Authorize(context.Background(), tt.email, tt.cap)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Authorize() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authorize() unexpected error: %v", err)
			}
			if user == nil || user.Email != tt.email {
				t.Errorf("Authorize() returned %+v, want user with email %s", user, tt.email)
			}
		})
	}
}

func TestAuthorizeResolvesFreshRoleAndStatus(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	user := repo.SeedUser(domain.User{Name: "Donor", Email: "donor@example.com", Role: domain.RoleDonor, Status: domain.UserActive})
	access := NewAccessService(repo)

	if _, err := access.Authorize(context.Background(), user.Email, CapCreateRequest); err != nil {
		t.Fatalf("Authorize() before block: %v", err)
	}

	if err := repo.SetStatus(context.Background(), user.ID, domain.UserBlocked); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	if _, err := access.Authorize(context.Background(), user.Email, CapCreateRequest); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Authorize() after block error = %v, want %v", err, domain.ErrForbidden)
	}
}
