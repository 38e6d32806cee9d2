package ports

import (
	"context"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
)

// IdentityVerifier validates a bearer credential against the external
// identity provider and yields the verified email. Every failure is
// domain.ErrUnauthenticated.
type IdentityVerifier interface {
	Verify(ctx context.Context, bearerToken string) (string, error)
}

// RegisterInput is the self-registration payload. Email must match the
// verified token email; role and status are forced to donor/active.
type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	BloodGroup string `json:"bloodGroup"`
	District   string `json:"district"`
	Upazila    string `json:"upazila"`
	Avatar     string `json:"avatar"`
}

type UserPage struct {
	Total int64         `json:"total"`
	Page  int64         `json:"page"`
	Limit int64         `json:"limit"`
	Users []domain.User `json:"users"`
}

type DonorSearchResult struct {
	Total  int64         `json:"total"`
	Donors []domain.User `json:"donors"`
}

type Stats struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalRequests int64 `json:"totalRequests"`
	Pending       int64 `json:"pending"`
	InProgress    int64 `json:"inprogress"`
	Done          int64 `json:"done"`
	Canceled      int64 `json:"canceled"`
}

type UserService interface {
	Register(ctx context.Context, verifiedEmail string, in RegisterInput) (*domain.User, error)
	Profile(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.User, error)
	Role(ctx context.Context, email string) (domain.Role, error)
	ListUsers(ctx context.Context, callerEmail string, status domain.UserStatus, page domain.Page) (*UserPage, error)
	SetRole(ctx context.Context, callerEmail, userID string, role domain.Role) error
	SetStatus(ctx context.Context, callerEmail, userID string, status domain.UserStatus) error
	SearchDonors(ctx context.Context, filter domain.DonorFilter) (*DonorSearchResult, error)
	Stats(ctx context.Context, callerEmail string) (*Stats, error)
}

type CreateRequestInput struct {
	RecipientName     string `json:"recipientName"`
	RecipientDistrict string `json:"recipientDistrict"`
	RecipientUpazila  string `json:"recipientUpazila"`
	HospitalName      string `json:"hospitalName"`
	Address           string `json:"address"`
	BloodGroup        string `json:"bloodGroup"`
	DonationDate      string `json:"donationDate"`
	DonationTime      string `json:"donationTime"`
	Message           string `json:"message"`
}

type RequestPage struct {
	Total    int64                    `json:"total"`
	Page     int64                    `json:"page"`
	Limit    int64                    `json:"limit"`
	Requests []domain.DonationRequest `json:"requests"`
}

type RequestService interface {
	Create(ctx context.Context, callerEmail string, in CreateRequestInput) (*domain.DonationRequest, error)
	Get(ctx context.Context, callerEmail, id string) (*domain.DonationRequest, error)
	ListAll(ctx context.Context, callerEmail string, status domain.RequestStatus, page domain.Page) (*RequestPage, error)
	ListMine(ctx context.Context, callerEmail string, status domain.RequestStatus, page domain.Page) (*RequestPage, error)
	ListPending(ctx context.Context, page domain.Page) (*RequestPage, error)
	Update(ctx context.Context, callerEmail, id string, upd domain.RequestUpdate) error
	Delete(ctx context.Context, callerEmail, id string) error
	Donate(ctx context.Context, callerEmail, id, donorName string) (*domain.DonationRequest, error)
	UpdateStatus(ctx context.Context, callerEmail, id string, status domain.RequestStatus) error
}
