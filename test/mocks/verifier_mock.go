package mocks

import (
	"context"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

// StaticVerifier implements ports.IdentityVerifier with a fixed outcome,
// standing in for the external identity provider.
type StaticVerifier struct {
	Email string
	Err   error
}

var _ ports.IdentityVerifier = (*StaticVerifier)(nil)

func (v *StaticVerifier) Verify(ctx context.Context, bearerToken string) (string, error) {
	if v.Err != nil {
		return "", v.Err
	}
	if v.Email == "" {
		return "", domain.ErrUnauthenticated
	}
	return v.Email, nil
}
