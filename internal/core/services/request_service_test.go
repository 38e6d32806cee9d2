package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
	"github.com/sabbirhsn/blood-aid/donation-service/test/mocks"
)

type requestFixture struct {
	svc         *RequestService
	userRepo    *mocks.MockUserRepository
	requestRepo *mocks.MockRequestRepository
	outboxRepo  *mocks.MockOutboxRepository
}

func newRequestFixture() *requestFixture {
	userRepo := mocks.NewMockUserRepository()
	requestRepo := mocks.NewMockRequestRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	svc := NewRequestService(requestRepo, outboxRepo, NewAccessService(userRepo))
	return &requestFixture{svc: svc, userRepo: userRepo, requestRepo: requestRepo, outboxRepo: outboxRepo}
}

func (f *requestFixture) seedUsers() {
	f.userRepo.SeedUser(domain.User{Name: "Requester", Email: "requester@example.com", Role: domain.RoleDonor, Status: domain.UserActive})
	f.userRepo.SeedUser(domain.User{Name: "Donor", Email: "donor@example.com", Role: domain.RoleDonor, Status: domain.UserActive})
	f.userRepo.SeedUser(domain.User{Name: "Blocked", Email: "blocked@example.com", Role: domain.RoleDonor, Status: domain.UserBlocked})
	f.userRepo.SeedUser(domain.User{Name: "Volunteer", Email: "volunteer@example.com", Role: domain.RoleVolunteer, Status: domain.UserActive})
	f.userRepo.SeedUser(domain.User{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.UserActive})
}

func validCreateInput() ports.CreateRequestInput {
	return ports.CreateRequestInput{
		RecipientName:     "Patient One",
		RecipientDistrict: "Dhaka",
		RecipientUpazila:  "Savar",
		HospitalName:      "Enam Medical",
		Address:           "Savar Bus Stand Road",
		BloodGroup:        "A+",
		DonationDate:      "2026-09-15",
		DonationTime:      "10:30",
		Message:           "urgent",
	}
}

func TestCreateRequest(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()

	created, err := f.svc.Create(context.Background(), "requester@example.com", validCreateInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.Status != domain.RequestPending {
		t.Errorf("Status = %q, want %q", created.Status, domain.RequestPending)
	}
	if created.RequesterName != "Requester" || created.RequesterEmail != "requester@example.com" {
		t.Errorf("requester fields = %q/%q, want profile values", created.RequesterName, created.RequesterEmail)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	events := f.outboxRepo.Events()
	if len(events) != 1 {
		t.Fatalf("outbox events = %d, want 1", len(events))
	}
	if events[0].EventType != ports.EventRequestCreated {
		t.Errorf("event type = %q, want %q", events[0].EventType, ports.EventRequestCreated)
	}
	var evt ports.DonationEvent
	if err := json.Unmarshal(events[0].Payload, &evt); err != nil {
		t.Fatalf("unmarshal event payload: %v", err)
	}
	if evt.RequestID != created.ID {
		t.Errorf("event request id = %q, want %q", evt.RequestID, created.ID)
	}
}

func TestCreateRequestBlockedUser(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()

	_, err := f.svc.Create(context.Background(), "blocked@example.com", validCreateInput())
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Create() by blocked user error = %v, want %v", err, domain.ErrForbidden)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()

	tests := []struct {
		name   string
		mutate func(*ports.CreateRequestInput)
	}{
		{"missing recipient name", func(in *ports.CreateRequestInput) { in.RecipientName = "" }},
		{"missing district", func(in *ports.CreateRequestInput) { in.RecipientDistrict = "" }},
		{"missing hospital", func(in *ports.CreateRequestInput) { in.HospitalName = "" }},
		{"missing date", func(in *ports.CreateRequestInput) { in.DonationDate = "" }},
		{"missing time", func(in *ports.CreateRequestInput) { in.DonationTime = "" }},
		{"bad blood group", func(in *ports.CreateRequestInput) { in.BloodGroup = "Q+" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)
			_, err := f.svc.Create(context.Background(), "requester@example.com", in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("Create() error = %v, want %v", err, domain.ErrInvalidInput)
			}
		})
	}

	if f.outboxRepo.Unprocessed() != 0 {
		t.Errorf("rejected creates appended %d outbox events", f.outboxRepo.Unprocessed())
	}
}

func TestListPendingIsPublic(t *testing.T) {
	f := newRequestFixture()
	f.requestRepo.SeedRequest(domain.DonationRequest{Status: domain.RequestPending})
	f.requestRepo.SeedRequest(domain.DonationRequest{Status: domain.RequestDone})

	page, err := f.svc.ListPending(context.Background(), domain.Page{})
	if err != nil {
		t.Fatalf("ListPending() error: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}
	if page.Requests[0].Status != domain.RequestPending {
		t.Errorf("listed status = %q, want pending", page.Requests[0].Status)
	}
}

func TestListPendingPagination(t *testing.T) {
	f := newRequestFixture()
	for i := 0; i < 17; i++ {
		f.requestRepo.SeedRequest(domain.DonationRequest{
			RequesterEmail: "requester@example.com",
			Status:         domain.RequestPending,
			CreatedAt:      time.Now().UTC().Add(time.Duration(i) * time.Minute),
		})
	}

	tests := []struct {
		name      string
		page      domain.Page
		wantItems int
		wantPage  int64
		wantLimit int64
	}{
		{"defaults", domain.Page{}, 10, 1, 10},
		{"first of five", domain.Page{Page: 1, Limit: 5}, 5, 1, 5},
		{"middle page", domain.Page{Page: 2, Limit: 5}, 5, 2, 5},
		{"short last page", domain.Page{Page: 4, Limit: 5}, 2, 4, 5},
		{"past the end", domain.Page{Page: 9, Limit: 5}, 0, 9, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.ListPending(context.Background(), tt.page)
			if err != nil {
				t.Fatalf("ListPending() error: %v", err)
			}
			// Total counts the whole filter match regardless of paging.
			if got.Total != 17 {
				t.Errorf("Total = %d, want 17", got.Total)
			}
			if len(got.Requests) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(got.Requests), tt.wantItems)
			}
			if int64(len(got.Requests)) > got.Limit {
				t.Errorf("items = %d exceeds limit %d", len(got.Requests), got.Limit)
			}
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Errorf("page/limit = %d/%d, want %d/%d", got.Page, got.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestListPendingPageOrder(t *testing.T) {
	f := newRequestFixture()
	base := time.Now().UTC()
	for i := 0; i < 6; i++ {
		f.requestRepo.SeedRequest(domain.DonationRequest{
			RecipientName: fmt.Sprintf("patient-%d", i),
			Status:        domain.RequestPending,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
	}

	first, err := f.svc.ListPending(context.Background(), domain.Page{Page: 1, Limit: 4})
	if err != nil {
		t.Fatalf("ListPending() page 1 error: %v", err)
	}
	second, err := f.svc.ListPending(context.Background(), domain.Page{Page: 2, Limit: 4})
	if err != nil {
		t.Fatalf("ListPending() page 2 error: %v", err)
	}

	// Newest first, pages contiguous: patient-5..patient-2, then patient-1, patient-0.
	if first.Requests[0].RecipientName != "patient-5" || first.Requests[3].RecipientName != "patient-2" {
		t.Errorf("first page = %q..%q, want patient-5..patient-2", first.Requests[0].RecipientName, first.Requests[3].RecipientName)
	}
	if len(second.Requests) != 2 || second.Requests[0].RecipientName != "patient-1" {
		t.Errorf("second page = %+v, want patient-1 then patient-0", second.Requests)
	}
}

func TestListAllRequiresTriage(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()
	f.requestRepo.SeedRequest(domain.DonationRequest{Status: domain.RequestPending})

	if _, err := f.svc.ListAll(context.Background(), "donor@example.com", "", domain.Page{}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("ListAll() by donor error = %v, want %v", err, domain.ErrForbidden)
	}

	page, err := f.svc.ListAll(context.Background(), "volunteer@example.com", "", domain.Page{})
	if err != nil {
		t.Fatalf("ListAll() by volunteer error: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}

	if _, err := f.svc.ListAll(context.Background(), "admin@example.com", domain.RequestStatus("bogus"), domain.Page{}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("ListAll() with bad status error = %v, want %v", err, domain.ErrInvalidStatus)
	}
}

func TestListMineScopesToCaller(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()
	f.requestRepo.SeedRequest(domain.DonationRequest{RequesterEmail: "requester@example.com", Status: domain.RequestPending})
	f.requestRepo.SeedRequest(domain.DonationRequest{RequesterEmail: "donor@example.com", Status: domain.RequestPending})

	page, err := f.svc.ListMine(context.Background(), "requester@example.com", "", domain.Page{})
	if err != nil {
		t.Fatalf("ListMine() error: %v", err)
	}
	if page.Total != 1 || page.Requests[0].RequesterEmail != "requester@example.com" {
		t.Errorf("ListMine() = %+v, want only the caller's request", page.Requests)
	}
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()
	req := f.requestRepo.SeedRequest(domain.DonationRequest{RequesterEmail: "requester@example.com", Status: domain.RequestPending})

	hospital := "Dhaka Medical"
	upd := domain.RequestUpdate{HospitalName: &hospital}

	// Volunteers get no shortcut for content edits.
	if err := f.svc.Update(context.Background(), "volunteer@example.com", req.ID, upd); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Update() by volunteer error = %v, want %v", err, domain.ErrForbidden)
	}
	if err := f.svc.Update(context.Background(), "donor@example.com", req.ID, upd); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Update() by stranger error = %v, want %v", err, domain.ErrForbidden)
	}

	if err := f.svc.Update(context.Background(), "requester@example.com", req.ID, upd); err != nil {
		t.Fatalf("Update() by owner error: %v", err)
	}
	got, _ := f.requestRepo.FindByID(context.Background(), req.ID)
	if got.HospitalName != "Dhaka Medical" {
		t.Errorf("HospitalName = %q, want Dhaka Medical", got.HospitalName)
	}

	if err := f.svc.Update(context.Background(), "admin@example.com", req.ID, upd); err != nil {
		t.Errorf("Update() by admin error: %v", err)
	}

	bogus := "X-"
	if err := f.svc.Update(context.Background(), "requester@example.com", req.ID, domain.RequestUpdate{BloodGroup: &bogus}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Update() with bad blood group error = %v, want %v", err, domain.ErrInvalidInput)
	}

	if err := f.svc.Delete(context.Background(), "donor@example.com", req.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Delete() by stranger error = %v, want %v", err, domain.ErrForbidden)
	}
	if err := f.svc.Delete(context.Background(), "requester@example.com", req.ID); err != nil {
		t.Fatalf("Delete() by owner error: %v", err)
	}
	if _, err := f.requestRepo.FindByID(context.Background(), req.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindByID after delete error = %v, want %v", err, domain.ErrNotFound)
	}

	if err := f.svc.Update(context.Background(), "requester@example.com", "missing-id", upd); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update() for missing id error = %v, want %v", err, domain.ErrNotFound)
	}
}

func TestDonate(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()
	req := f.requestRepo.SeedRequest(domain.DonationRequest{RequesterEmail: "requester@example.com", Status: domain.RequestPending, BloodGroup: "A+"})

	claimed, err := f.svc.Donate(context.Background(), "donor@example.com", req.ID, "")
	if err != nil {
		t.Fatalf("Donate() error: %v", err)
	}
	if claimed.Status != domain.RequestInProgress {
		t.Errorf("Status = %q, want %q", claimed.Status, domain.RequestInProgress)
	}
	if claimed.DonorEmail != "donor@example.com" {
		t.Errorf("DonorEmail = %q, want donor@example.com", claimed.DonorEmail)
	}
	// Blank donor name falls back to the caller's profile name.
	if claimed.DonorName != "Donor" {
		t.Errorf("DonorName = %q, want Donor", claimed.DonorName)
	}

	events := f.outboxRepo.Events()
	if len(events) != 1 || events[0].EventType != ports.EventRequestClaimed {
		t.Fatalf("outbox events = %+v, want one claimed event", events)
	}

	// Second donate: the request is no longer pending.
	if _, err := f.svc.Donate(context.Background(), "requester@example.com", req.ID, ""); !errors.Is(err, domain.ErrNotPending) {
		t.Errorf("second Donate() error = %v, want %v", err, domain.ErrNotPending)
	}

	if _, err := f.svc.Donate(context.Background(), "donor@example.com", "missing-id", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Donate() for missing id error = %v, want %v", err, domain.ErrNotFound)
	}
}

func TestDonateExplicitName(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()
	req := f.requestRepo.SeedRequest(domain.DonationRequest{RequesterEmail: "requester@example.com", Status: domain.RequestPending})

	claimed, err := f.svc.Donate(context.Background(), "donor@example.com", req.ID, "Md. Donor")
	if err != nil {
		t.Fatalf("Donate() error: %v", err)
	}
	if claimed.DonorName != "Md. Donor" {
		t.Errorf("DonorName = %q, want Md. Donor", claimed.DonorName)
	}
}

func TestDonateConcurrentSingleWinner(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()
	for i := 0; i < 10; i++ {
		f.userRepo.SeedUser(domain.User{
			Name:   "Racer",
			Email:  racerEmail(i),
			Role:   domain.RoleDonor,
			Status: domain.UserActive,
		})
	}
	req := f.requestRepo.SeedRequest(domain.DonationRequest{RequesterEmail: "requester@example.com", Status: domain.RequestPending})

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	losers := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Donate(context.Background(), racerEmail(i), req.ID, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, domain.ErrNotPending):
				losers++
			default:
				t.Errorf("Donate() unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
	if losers != 9 {
		t.Errorf("losers = %d, want 9", losers)
	}

	got, _ := f.requestRepo.FindByID(context.Background(), req.ID)
	if got.Status != domain.RequestInProgress {
		t.Errorf("final status = %q, want %q", got.Status, domain.RequestInProgress)
	}
}

func racerEmail(i int) string {
	return "racer" + string(rune('a'+i)) + "@example.com"
}

func TestUpdateStatusOwnerPath(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()
	req := f.requestRepo.SeedRequest(domain.DonationRequest{RequesterEmail: "requester@example.com", Status: domain.RequestInProgress})

	// Owner may only close to done or canceled.
	if err := f.svc.UpdateStatus(context.Background(), "requester@example.com", req.ID, domain.RequestPending); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("owner set pending error = %v, want %v", err, domain.ErrInvalidStatus)
	}
	if err := f.svc.UpdateStatus(context.Background(), "requester@example.com", req.ID, domain.RequestInProgress); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("owner set inprogress error = %v, want %v", err, domain.ErrInvalidStatus)
	}

	// A stranger never passes the ownership check.
	if err := f.svc.UpdateStatus(context.Background(), "donor@example.com", req.ID, domain.RequestDone); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger close error = %v, want %v", err, domain.ErrForbidden)
	}

	if err := f.svc.UpdateStatus(context.Background(), "requester@example.com", req.ID, domain.RequestDone); err != nil {
		t.Fatalf("owner close error: %v", err)
	}
	got, _ := f.requestRepo.FindByID(context.Background(), req.ID)
	if got.Status != domain.RequestDone {
		t.Errorf("status = %q, want done", got.Status)
	}

	// Terminal request: no further owner transition.
	if err := f.svc.UpdateStatus(context.Background(), "requester@example.com", req.ID, domain.RequestCanceled); !errors.Is(err, domain.ErrNotInProgress) {
		t.Errorf("owner close terminal error = %v, want %v", err, domain.ErrNotInProgress)
	}

	if err := f.svc.UpdateStatus(context.Background(), "requester@example.com", "missing-id", domain.RequestDone); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("owner close missing id error = %v, want %v", err, domain.ErrNotFound)
	}
	if err := f.svc.UpdateStatus(context.Background(), "requester@example.com", req.ID, domain.RequestStatus("bogus")); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("bogus status error = %v, want %v", err, domain.ErrInvalidStatus)
	}

	// Owner cannot close a request that is still pending.
	pending := f.requestRepo.SeedRequest(domain.DonationRequest{RequesterEmail: "requester@example.com", Status: domain.RequestPending})
	if err := f.svc.UpdateStatus(context.Background(), "requester@example.com", pending.ID, domain.RequestCanceled); !errors.Is(err, domain.ErrNotInProgress) {
		t.Errorf("owner close pending error = %v, want %v", err, domain.ErrNotInProgress)
	}
}

func TestUpdateStatusOverride(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()
	req := f.requestRepo.SeedRequest(domain.DonationRequest{RequesterEmail: "requester@example.com", Status: domain.RequestDone})

	// Admins and volunteers may move a request to any status, even out of a
	// terminal state.
	if err := f.svc.UpdateStatus(context.Background(), "volunteer@example.com", req.ID, domain.RequestPending); err != nil {
		t.Fatalf("volunteer override error: %v", err)
	}
	got, _ := f.requestRepo.FindByID(context.Background(), req.ID)
	if got.Status != domain.RequestPending {
		t.Errorf("status = %q, want pending", got.Status)
	}

	if err := f.svc.UpdateStatus(context.Background(), "admin@example.com", req.ID, domain.RequestCanceled); err != nil {
		t.Fatalf("admin override error: %v", err)
	}
	got, _ = f.requestRepo.FindByID(context.Background(), req.ID)
	if got.Status != domain.RequestCanceled {
		t.Errorf("status = %q, want canceled", got.Status)
	}

	if err := f.svc.UpdateStatus(context.Background(), "admin@example.com", "missing-id", domain.RequestDone); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("admin override missing id error = %v, want %v", err, domain.ErrNotFound)
	}
}

// TestRequestLifecycle walks a request through the full happy path: created
// pending, claimed by a donor, closed as done by the requester.
func TestRequestLifecycle(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()

	created, err := f.svc.Create(context.Background(), "requester@example.com", validCreateInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	board, err := f.svc.ListPending(context.Background(), domain.Page{})
	if err != nil {
		t.Fatalf("ListPending() error: %v", err)
	}
	if board.Total != 1 {
		t.Fatalf("pending board total = %d, want 1", board.Total)
	}

	if _, err := f.svc.Donate(context.Background(), "donor@example.com", created.ID, ""); err != nil {
		t.Fatalf("Donate() error: %v", err)
	}

	board, err = f.svc.ListPending(context.Background(), domain.Page{})
	if err != nil {
		t.Fatalf("ListPending() after claim error: %v", err)
	}
	if board.Total != 0 {
		t.Errorf("pending board total after claim = %d, want 0", board.Total)
	}

	if err := f.svc.UpdateStatus(context.Background(), "requester@example.com", created.ID, domain.RequestDone); err != nil {
		t.Fatalf("owner close error: %v", err)
	}

	final, err := f.svc.Get(context.Background(), "requester@example.com", created.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if final.Status != domain.RequestDone {
		t.Errorf("final status = %q, want done", final.Status)
	}
	if final.DonorEmail != "donor@example.com" {
		t.Errorf("final donor = %q, want donor@example.com", final.DonorEmail)
	}

	// One event per lifecycle transition that the relay cares about.
	if got := len(f.outboxRepo.Events()); got != 2 {
		t.Errorf("outbox events = %d, want 2", got)
	}
}

func TestCreateSurvivesOutboxFailure(t *testing.T) {
	f := newRequestFixture()
	f.seedUsers()
	f.outboxRepo.AppendError = errors.New("store down")

	created, err := f.svc.Create(context.Background(), "requester@example.com", validCreateInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected the request to be created despite the outbox failure")
	}
}
