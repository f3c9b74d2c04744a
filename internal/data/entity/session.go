package entity

import "time"

type UserRole string

const (
	RoleEVOwner  UserRole = "evowner"
	RoleOperator UserRole = "operator"
)

// Session is the authenticated context handed to the service layer.
// It is established on login and cleared on logout or expiry.
type Session struct {
	UserID       string
	NIC          string
	Email        string
	FullName     string
	Role         UserRole
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Valid reports whether the access token can still be used at now.
// A zero ExpiresAt means the backend did not say, and the token is trusted until rejected.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(s.ExpiresAt)
}

func (s *Session) IsOperator() bool {
	return s != nil && s.Role == RoleOperator
}

// Owner holds EV owner registration data.
type Owner struct {
	NIC       string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}
