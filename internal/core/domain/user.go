package domain

import "time"

type Role string

const (
	RoleDonor     Role = "donor"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserBlocked
}

// bloodGroups is the closed set of accepted ABO/Rh values.
var bloodGroups = map[string]struct{}{
	"A+": {}, "A-": {},
	"B+": {}, "B-": {},
	"AB+": {}, "AB-": {},
	"O+": {}, "O-": {},
}

func ValidBloodGroup(bg string) bool {
	_, ok := bloodGroups[bg]
	return ok
}

type User struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	BloodGroup string     `json:"bloodGroup"`
	District   string     `json:"district"`
	Upazila    string     `json:"upazila"`
	Avatar     string     `json:"avatar,omitempty"`
	Role       Role       `json:"role"`
	Status     UserStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ProfileUpdate carries the fields a user may change on their own record.
// Role and status are managed through the admin operations only.
type ProfileUpdate struct {
	Name       *string `json:"name,omitempty"`
	BloodGroup *string `json:"bloodGroup,omitempty"`
	District   *string `json:"district,omitempty"`
	Upazila    *string `json:"upazila,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
}

// DonorFilter narrows the public donor search. All fields are optional
// equality filters; role=donor and status=active are always applied.
type DonorFilter struct {
	BloodGroup string
	District   string
	Upazila    string
}
