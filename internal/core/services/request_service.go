package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

type RequestService struct {
	requestRepo ports.RequestRepository
	outboxRepo  ports.OutboxRepository
	access      *AccessService
}

var _ ports.RequestService = (*RequestService)(nil)

func NewRequestService(requestRepo ports.RequestRepository, outboxRepo ports.OutboxRepository, access *AccessService) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		outboxRepo:  outboxRepo,
		access:      access,
	}
}

// Create opens a new pending request. Requester fields come from the
// caller's stored profile, never from the payload.
func (s *RequestService) Create(ctx context.Context, callerEmail string, in ports.CreateRequestInput) (*domain.DonationRequest, error) {
	caller, err := s.access.Authorize(ctx, callerEmail, CapCreateRequest)
	if err != nil {
		return nil, err
	}
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	req := domain.DonationRequest{
		RequesterName:     caller.Name,
		RequesterEmail:    caller.Email,
		RecipientName:     in.RecipientName,
		RecipientDistrict: in.RecipientDistrict,
		RecipientUpazila:  in.RecipientUpazila,
		HospitalName:      in.HospitalName,
		Address:           in.Address,
		BloodGroup:        in.BloodGroup,
		DonationDate:      in.DonationDate,
		DonationTime:      in.DonationTime,
		Message:           in.Message,
		Status:            domain.RequestPending,
		CreatedAt:         time.Now().UTC(),
	}

	created, err := s.requestRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.appendEvent(ctx, ports.DonationEvent{
		EventID:        uuid.NewString(),
		Type:           ports.EventRequestCreated,
		RequestID:      created.ID,
		RequesterEmail: created.RequesterEmail,
		BloodGroup:     created.BloodGroup,
		District:       created.RecipientDistrict,
		OccurredAt:     created.CreatedAt,
	})

	return created, nil
}

func (s *RequestService) Get(ctx context.Context, callerEmail, id string) (*domain.DonationRequest, error) {
	if _, err := s.access.Authorize(ctx, callerEmail, CapSelf); err != nil {
		return nil, err
	}
	return s.requestRepo.FindByID(ctx, id)
}

func (s *RequestService) ListAll(ctx context.Context, callerEmail string, status domain.RequestStatus, page domain.Page) (*ports.RequestPage, error) {
	if _, err := s.access.Authorize(ctx, callerEmail, CapTriage); err != nil {
		return nil, err
	}
	return s.list(ctx, domain.RequestFilter{Status: status}, page)
}

func (s *RequestService) ListMine(ctx context.Context, callerEmail string, status domain.RequestStatus, page domain.Page) (*ports.RequestPage, error) {
	caller, err := s.access.Authorize(ctx, callerEmail, CapSelf)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, domain.RequestFilter{Status: status, RequesterEmail: caller.Email}, page)
}

// ListPending serves the public board of open requests.
func (s *RequestService) ListPending(ctx context.Context, page domain.Page) (*ports.RequestPage, error) {
	return s.list(ctx, domain.RequestFilter{Status: domain.RequestPending}, page)
}

func (s *RequestService) list(ctx context.Context, filter domain.RequestFilter, page domain.Page) (*ports.RequestPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	page = page.Normalize()
	requests, total, err := s.requestRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return &ports.RequestPage{
		Total:    total,
		Page:     page.Page,
		Limit:    page.Limit,
		Requests: requests,
	}, nil
}

// Update edits request content. Requester or admin only, at any status.
func (s *RequestService) Update(ctx context.Context, callerEmail, id string, upd domain.RequestUpdate) error {
	caller, err := s.access.Authorize(ctx, callerEmail, CapSelf)
	if err != nil {
		return err
	}
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if caller.Role != domain.RoleAdmin && req.RequesterEmail != caller.Email {
		return domain.ErrForbidden
	}
	if upd.BloodGroup != nil && !domain.ValidBloodGroup(*upd.BloodGroup) {
		return fmt.Errorf("%w: unknown blood group", domain.ErrInvalidInput)
	}
	return s.requestRepo.Update(ctx, id, upd)
}

func (s *RequestService) Delete(ctx context.Context, callerEmail, id string) error {
	caller, err := s.access.Authorize(ctx, callerEmail, CapSelf)
	if err != nil {
		return err
	}
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if caller.Role != domain.RoleAdmin && req.RequesterEmail != caller.Email {
		return domain.ErrForbidden
	}
	return s.requestRepo.Delete(ctx, id)
}

// Donate claims a pending request for the caller. The transition is a single
// conditional update, so two concurrent claimers can never both win.
func (s *RequestService) Donate(ctx context.Context, callerEmail, id, donorName string) (*domain.DonationRequest, error) {
	caller, err := s.access.Authorize(ctx, callerEmail, CapSelf)
	if err != nil {
		return nil, err
	}
	if donorName == "" {
		donorName = caller.Name
	}

	claimed, err := s.requestRepo.Claim(ctx, id, donorName, caller.Email)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Lost the race or the id is bogus; one read tells us which.
		if _, err := s.requestRepo.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotPending
	}

	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.appendEvent(ctx, ports.DonationEvent{
		EventID:        uuid.NewString(),
		Type:           ports.EventRequestClaimed,
		RequestID:      req.ID,
		RequesterEmail: req.RequesterEmail,
		DonorEmail:     caller.Email,
		BloodGroup:     req.BloodGroup,
		District:       req.RecipientDistrict,
		OccurredAt:     time.Now().UTC(),
	})

	return req, nil
}

// UpdateStatus applies either the owner transition (requester closes an
// in-progress request as done/canceled) or the admin/volunteer override
// (any enum value, no prior-state constraint).
func (s *RequestService) UpdateStatus(ctx context.Context, callerEmail, id string, status domain.RequestStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}

	caller, err := s.access.Authorize(ctx, callerEmail, CapSelf)
	if err != nil {
		return err
	}

	if caller.Role == domain.RoleAdmin || caller.Role == domain.RoleVolunteer {
		return s.requestRepo.SetStatus(ctx, id, status)
	}

	if !domain.OwnerCanSet(status) {
		return domain.ErrInvalidStatus
	}

	closed, err := s.requestRepo.CloseByOwner(ctx, id, caller.Email, status)
	if err != nil {
		return err
	}
	if closed {
		return nil
	}

	// No match: missing id, someone else's request, or not in progress.
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if req.RequesterEmail != caller.Email {
		return domain.ErrForbidden
	}
	return domain.ErrNotInProgress
}

// appendEvent stores the lifecycle event for the relay. A failed append is
// logged, not returned: the domain write already succeeded.
func (s *RequestService) appendEvent(ctx context.Context, evt ports.DonationEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("request service: marshal outbox event: %v", err)
		return
	}
	err = s.outboxRepo.Append(ctx, ports.OutboxEvent{
		ID:        evt.EventID,
		EventType: evt.Type,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("request service: append outbox event: %v", err)
	}
}

func validateCreateInput(in ports.CreateRequestInput) error {
	switch {
	case in.RecipientName == "":
		return fmt.Errorf("%w: recipientName is required", domain.ErrInvalidInput)
	case in.RecipientDistrict == "" || in.RecipientUpazila == "":
		return fmt.Errorf("%w: recipientDistrict and recipientUpazila are required", domain.ErrInvalidInput)
	case in.HospitalName == "":
		return fmt.Errorf("%w: hospitalName is required", domain.ErrInvalidInput)
	case in.DonationDate == "" || in.DonationTime == "":
		return fmt.Errorf("%w: donationDate and donationTime are required", domain.ErrInvalidInput)
	}
	if !domain.ValidBloodGroup(in.BloodGroup) {
		return fmt.Errorf("%w: unknown blood group", domain.ErrInvalidInput)
	}
	return nil
}
