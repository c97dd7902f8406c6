package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user within an organization
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
	RoleViewer UserRole = "viewer"
)

// Valid reports whether r is one of the known roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// User represents a dashboard user authenticated via Cognito
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name" db:"name"`
	CognitoSub string    `json:"cognito_sub" db:"cognito_sub"` // Cognito user identifier
	OrgID      uuid.UUID `json:"org_id" db:"org_id"`
	Role       UserRole  `json:"role" db:"role"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a new User instance
func NewUser(email, name, cognitoSub string, orgID uuid.UUID, role UserRole) *User {
	now := time.Now()
	return &User{
		ID:         uuid.New(),
		Email:      email,
		Name:       name,
		CognitoSub: cognitoSub,
		OrgID:      orgID,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns the name shown in the navbar, falling back to the email
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
