package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/test/mocks"
)

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		verifier   *mocks.StaticVerifier
		wantStatus int
		wantEmail  string
	}{
		{
			name:       "missing header",
			header:     "",
			verifier:   &mocks.StaticVerifier{Email: "user@example.com"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic dXNlcjpwYXNz",
			verifier:   &mocks.StaticVerifier{Email: "user@example.com"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			header:     "Bearer",
			verifier:   &mocks.StaticVerifier{Email: "user@example.com"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "verifier rejects token",
			header:     "Bearer bad-token",
			verifier:   &mocks.StaticVerifier{Err: domain.ErrUnauthenticated},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			header:     "Bearer good-token",
			verifier:   &mocks.StaticVerifier{Email: "user@example.com"},
			wantStatus: http.StatusOK,
			wantEmail:  "user@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotEmail string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotEmail, _ = EmailFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			NewAuthMiddleware(tt.verifier).Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotEmail != tt.wantEmail {
				t.Errorf("email in context = %q, want %q", gotEmail, tt.wantEmail)
			}
		})
	}
}

func TestEmailFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if email, ok := EmailFromContext(req.Context()); ok || email != "" {
		t.Errorf("EmailFromContext on bare context = (%q, %v), want (\"\", false)", email, ok)
	}
}
