package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

// MockRequestRepository implements ports.RequestRepository in memory. The
// Claim and CloseByOwner guards run under the mutex, mirroring the store's
// atomic conditional updates, so concurrency tests are meaningful.
type MockRequestRepository struct {
	mu       sync.Mutex
	requests []*domain.DonationRequest
	nextID   int

	// Call tracking for verification
	ClaimCalls     []string
	SetStatusCalls []string

	// Error injection for testing error scenarios
	CreateError error
	ClaimError  error
	ListError   error
}

// Ensure MockRequestRepository implements ports.RequestRepository at compile time.
var _ ports.RequestRepository = (*MockRequestRepository)(nil)

func NewMockRequestRepository() *MockRequestRepository {
	return &MockRequestRepository{}
}

// SeedRequest adds a request for test setup, assigning an id when the
// record has none.
func (m *MockRequestRepository) SeedRequest(req domain.DonationRequest) domain.DonationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ID == "" {
		m.nextID++
		req.ID = fmt.Sprintf("req-%d", m.nextID)
	}
	m.requests = append(m.requests, &req)
	return req
}

func (m *MockRequestRepository) Create(ctx context.Context, req domain.DonationRequest) (*domain.DonationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return nil, m.CreateError
	}

	m.nextID++
	req.ID = fmt.Sprintf("req-%d", m.nextID)
	m.requests = append(m.requests, &req)
	out := req
	return &out, nil
}

func (m *MockRequestRepository) FindByID(ctx context.Context, id string) (*domain.DonationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLocked(id)
}

func (m *MockRequestRepository) findLocked(id string) (*domain.DonationRequest, error) {
	for _, req := range m.requests {
		if req.ID == id {
			out := *req
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockRequestRepository) List(ctx context.Context, filter domain.RequestFilter, page domain.Page) ([]domain.DonationRequest, int64, error) {
	if m.ListError != nil {
		return nil, 0, m.ListError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]domain.DonationRequest, 0)
	for _, req := range m.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.RequesterEmail != "" && req.RequesterEmail != filter.RequesterEmail {
			continue
		}
		matched = append(matched, *req)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

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

func (m *MockRequestRepository) Update(ctx context.Context, id string, upd domain.RequestUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.ID != id {
			continue
		}
		if upd.RecipientName != nil {
			req.RecipientName = *upd.RecipientName
		}
		if upd.RecipientDistrict != nil {
			req.RecipientDistrict = *upd.RecipientDistrict
		}
		if upd.RecipientUpazila != nil {
			req.RecipientUpazila = *upd.RecipientUpazila
		}
		if upd.HospitalName != nil {
			req.HospitalName = *upd.HospitalName
		}
		if upd.Address != nil {
			req.Address = *upd.Address
		}
		if upd.BloodGroup != nil {
			req.BloodGroup = *upd.BloodGroup
		}
		if upd.DonationDate != nil {
			req.DonationDate = *upd.DonationDate
		}
		if upd.DonationTime != nil {
			req.DonationTime = *upd.DonationTime
		}
		if upd.Message != nil {
			req.Message = *upd.Message
		}
		return nil
	}
	return domain.ErrNotFound
}

func (m *MockRequestRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, req := range m.requests {
		if req.ID == id {
			m.requests = append(m.requests[:i], m.requests[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// Claim performs the compare-and-set under the lock: only a pending request
// matches, so exactly one concurrent caller can succeed.
func (m *MockRequestRepository) Claim(ctx context.Context, id, donorName, donorEmail string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ClaimCalls = append(m.ClaimCalls, id)

	if m.ClaimError != nil {
		return false, m.ClaimError
	}

	for _, req := range m.requests {
		if req.ID == id && req.Status == domain.RequestPending {
			req.Status = domain.RequestInProgress
			req.DonorName = donorName
			req.DonorEmail = donorEmail
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRequestRepository) CloseByOwner(ctx context.Context, id, requesterEmail string, status domain.RequestStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, req := range m.requests {
		if req.ID == id && req.Status == domain.RequestInProgress && req.RequesterEmail == requesterEmail {
			req.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRequestRepository) SetStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetStatusCalls = append(m.SetStatusCalls, id)

	for _, req := range m.requests {
		if req.ID == id {
			req.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockRequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[domain.RequestStatus]int64)
	for _, req := range m.requests {
		counts[req.Status]++
	}
	return counts, nil
}

// Reset clears all stored data and call tracking.
func (m *MockRequestRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.nextID = 0
	m.ClaimCalls = nil
	m.SetStatusCalls = nil
	m.CreateError = nil
	m.ClaimError = nil
	m.ListError = nil
}
