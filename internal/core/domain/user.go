package domain

import (
	"encoding/json"
	"time"
)

// User is the account identity record owned by the practice backend.
// Internal representation is snake_case; the backend mixes snake_case and
// camelCase depending on endpoint version, so decoding accepts both.
type User struct {
	ID        uint   `json:"id"`
	Role      Role   `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Username  string `json:"username,omitempty"`
	IsActive  bool   `json:"is_active"`
}

// userAlias mirrors User plus the camelCase spellings older backend
// endpoints still emit.
type userAlias struct {
	ID            uint   `json:"id"`
	Role          Role   `json:"role"`
	FirstName     string `json:"first_name"`
	FirstNameAlt  string `json:"firstName"`
	LastName      string `json:"last_name"`
	LastNameAlt   string `json:"lastName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PhoneAlt      string `json:"phoneNumber"`
	Username      string `json:"username"`
	IsActive      *bool  `json:"is_active"`
	IsActiveAlt   *bool  `json:"isActive"`
}

// UnmarshalJSON normalizes both field spellings into the canonical
// snake_case representation.
func (u *User) UnmarshalJSON(data []byte) error {
	var a userAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	u.ID = a.ID
	u.Role = a.Role
	u.Email = a.Email
	u.Username = a.Username

	u.FirstName = a.FirstName
	if u.FirstName == "" {
		u.FirstName = a.FirstNameAlt
	}
	u.LastName = a.LastName
	if u.LastName == "" {
		u.LastName = a.LastNameAlt
	}
	u.Phone = a.Phone
	if u.Phone == "" {
		u.Phone = a.PhoneAlt
	}

	// Missing activity flag means active; deactivation is always explicit.
	u.IsActive = true
	if a.IsActive != nil {
		u.IsActive = *a.IsActive
	} else if a.IsActiveAlt != nil {
		u.IsActive = *a.IsActiveAlt
	}

	return nil
}

// FullName returns the display name for logs and responses.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// TherapistProfile is the role-specific extension record for therapists.
// The server is the source of truth; the cached copy is allowed to be
// stale between refresh cycles.
type TherapistProfile struct {
	ID                     uint   `json:"id"`
	UserID                 uint   `json:"user_id"`
	LicenseNumber          string `json:"license_number,omitempty"`
	Specialization         string `json:"specialization,omitempty"`
	AttendanceApproved     bool   `json:"attendance_approved"`
	TreatmentPlansApproved bool   `json:"treatment_plans_approved"`
}

// Equal reports whether two profile snapshots carry the same values.
// Used by the refresher to skip redundant writes and re-renders.
func (p *TherapistProfile) Equal(other *TherapistProfile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return *p == *other
}

// Session is the in-memory authenticated session restored from the store.
// The access token is attached as a bearer credential to every upstream
// request made on behalf of this session.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	User         *User
	Profile      *TherapistProfile
	ExpiresAt    time.Time
}

// Expired reports whether the session is past its lifetime.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Role returns the session's role, or the empty role when no user record
// is attached.
func (s *Session) Role() Role {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Role
}
