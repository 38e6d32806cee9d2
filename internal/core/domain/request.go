package domain

import "time"

type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestInProgress RequestStatus = "inprogress"
	RequestDone       RequestStatus = "done"
	RequestCanceled   RequestStatus = "canceled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestInProgress, RequestDone, RequestCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further owner-path transitions exist.
func (s RequestStatus) Terminal() bool {
	return s == RequestDone || s == RequestCanceled
}

// OwnerCanSet reports whether the requester may move a request to the given
// status. The owner path only closes an in-progress request; everything else
// goes through the admin/volunteer override.
func OwnerCanSet(to RequestStatus) bool {
	return to == RequestDone || to == RequestCanceled
}

type DonationRequest struct {
	ID                string        `json:"id"`
	RequesterName     string        `json:"requesterName"`
	RequesterEmail    string        `json:"requesterEmail"`
	RecipientName     string        `json:"recipientName"`
	RecipientDistrict string        `json:"recipientDistrict"`
	RecipientUpazila  string        `json:"recipientUpazila"`
	HospitalName      string        `json:"hospitalName"`
	Address           string        `json:"address"`
	BloodGroup        string        `json:"bloodGroup"`
	DonationDate      string        `json:"donationDate"`
	DonationTime      string        `json:"donationTime"`
	Message           string        `json:"message,omitempty"`
	Status            RequestStatus `json:"status"`
	DonorName         string        `json:"donorName,omitempty"`
	DonorEmail        string        `json:"donorEmail,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// RequestUpdate carries the editable content fields of a donation request.
// Status never moves through here; it has its own transitions.
type RequestUpdate struct {
	RecipientName     *string `json:"recipientName,omitempty"`
	RecipientDistrict *string `json:"recipientDistrict,omitempty"`
	RecipientUpazila  *string `json:"recipientUpazila,omitempty"`
	HospitalName      *string `json:"hospitalName,omitempty"`
	Address           *string `json:"address,omitempty"`
	BloodGroup        *string `json:"bloodGroup,omitempty"`
	DonationDate      *string `json:"donationDate,omitempty"`
	DonationTime      *string `json:"donationTime,omitempty"`
	Message           *string `json:"message,omitempty"`
}

// RequestFilter selects donation requests for the list operations.
type RequestFilter struct {
	Status         RequestStatus
	RequesterEmail string
}

// Page is 1-indexed pagination input. Zero values fall back to the defaults.
type Page struct {
	Page  int64
	Limit int64
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Normalize applies defaults and caps, returning a page safe to hand to the
// store.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Skip() int64 {
	return (p.Page - 1) * p.Limit
}
