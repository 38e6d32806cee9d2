package domain

import "testing"

func TestRequestStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status RequestStatus
		want   bool
	}{
		{"pending", RequestPending, true},
		{"inprogress", RequestInProgress, true},
		{"done", RequestDone, true},
		{"canceled", RequestCanceled, true},
		{"empty", RequestStatus(""), false},
		{"unknown", RequestStatus("open"), false},
		{"case sensitive", RequestStatus("Pending"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestStatusTerminal(t *testing.T) {
	tests := []struct {
		status RequestStatus
		want   bool
	}{
		{RequestPending, false},
		{RequestInProgress, false},
		{RequestDone, true},
		{RequestCanceled, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestOwnerCanSet(t *testing.T) {
	tests := []struct {
		to   RequestStatus
		want bool
	}{
		{RequestDone, true},
		{RequestCanceled, true},
		{RequestPending, false},
		{RequestInProgress, false},
		{RequestStatus("bogus"), false},
	}

	for _, tt := range tests {
		if got := OwnerCanSet(tt.to); got != tt.want {
			t.Errorf("OwnerCanSet(%q) = %v, want %v", tt.to, got, tt.want)
		}
	}
}

func TestValidBloodGroup(t *testing.T) {
	valid := []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	for _, bg := range valid {
		if !ValidBloodGroup(bg) {
			t.Errorf("ValidBloodGroup(%q) = false, want true", bg)
		}
	}

	invalid := []string{"", "C+", "a+", "AB", "O", "O +"}
	for _, bg := range invalid {
		if ValidBloodGroup(bg) {
			t.Errorf("ValidBloodGroup(%q) = true, want false", bg)
		}
	}
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Page
		wantPage  int64
		wantLimit int64
	}{
		{"zero values get defaults", Page{}, 1, DefaultPageLimit},
		{"negative page clamped", Page{Page: -3, Limit: 5}, 1, 5},
		{"limit above cap clamped", Page{Page: 2, Limit: 500}, 2, MaxPageLimit},
		{"limit at cap unchanged", Page{Page: 1, Limit: MaxPageLimit}, 1, MaxPageLimit},
		{"ordinary values unchanged", Page{Page: 3, Limit: 25}, 3, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Errorf("Normalize() = {%d %d}, want {%d %d}", got.Page, got.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestPageSkip(t *testing.T) {
	tests := []struct {
		page Page
		want int64
	}{
		{Page{Page: 1, Limit: 10}, 0},
		{Page{Page: 2, Limit: 10}, 10},
		{Page{Page: 5, Limit: 20}, 80},
	}

	for _, tt := range tests {
		if got := tt.page.Skip(); got != tt.want {
			t.Errorf("Skip(%+v) = %d, want %d", tt.page, got, tt.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleDonor, true},
		{RoleVolunteer, true},
		{RoleAdmin, true},
		{Role(""), false},
		{Role("superadmin"), false},
	}

	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestUserStatusValid(t *testing.T) {
	tests := []struct {
		status UserStatus
		want   bool
	}{
		{UserActive, true},
		{UserBlocked, true},
		{UserStatus(""), false},
		{UserStatus("suspended"), false},
	}

	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
