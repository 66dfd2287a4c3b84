package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the local role of a provisioned user
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is the local record of a Supabase identity.
// SupabaseUserID is unique and never changes once the row exists.
type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	SupabaseUserID string    `json:"supabase_user_id" db:"supabase_user_id"`
	Email          *string   `json:"email,omitempty" db:"email"`
	Role           UserRole  `json:"role" db:"role"`
	Subscription   *string   `json:"subscription,omitempty" db:"subscription"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "app_users"
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity is the caller-facing view of an authenticated request.
// ID is the identity provider subject, not the local row ID.
type Identity struct {
	ID    string   `json:"id"`
	Email string   `json:"email,omitempty"`
	Role  UserRole `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// ToIdentity projects a stored user onto the request identity
func (u *User) ToIdentity() *Identity {
	id := &Identity{
		ID:   u.SupabaseUserID,
		Role: u.Role,
	}
	if u.Email != nil {
		id.Email = *u.Email
	}
	return id
}
