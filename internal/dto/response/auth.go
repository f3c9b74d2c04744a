package response

import (
	"time"

	"evcharge-client/internal/data/entity"
	"evcharge-client/pkg/utils"
)

type UserResponse struct {
	ID       string `json:"id"`
	NIC      string `json:"nic"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
}

type LoginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    string       `json:"expiresAt"`
	User         UserResponse `json:"user"`
}

// ToSession builds the session for role. An unreadable expiry leaves ExpiresAt
// zero and the caller falls back to the token's own claims.
func (r LoginResponse) ToSession(role entity.UserRole) *entity.Session {
	var expiresAt time.Time
	if t, err := utils.ParseOptionalISO(r.ExpiresAt); err == nil {
		expiresAt = t
	}

	if r.User.Role != "" {
		role = normalizeRole(r.User.Role, role)
	}

	return &entity.Session{
		UserID:       r.User.ID,
		NIC:          r.User.NIC,
		Email:        r.User.Email,
		FullName:     r.User.FullName,
		Role:         role,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    expiresAt,
	}
}

func normalizeRole(wire string, fallback entity.UserRole) entity.UserRole {
	switch wire {
	case "EVOwner", "evowner", "EVOWNER", "Owner":
		return entity.RoleEVOwner
	case "Operator", "operator", "StationOperator", "Backoffice", "Admin":
		return entity.RoleOperator
	}
	return fallback
}

type OwnerResponse struct {
	NIC       string `json:"nic"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (r OwnerResponse) ToEntity() entity.Owner {
	return entity.Owner{
		NIC:       r.NIC,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
	}
}
